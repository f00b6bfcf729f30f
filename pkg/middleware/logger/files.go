package logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDirEnv   = "MODVIEW_LOG_DIR"
	logLevelEnv = "MODVIEW_LOG_LEVEL"
)

func logDir() string {
	dir := strings.TrimSpace(os.Getenv(logDirEnv))
	if dir == "" {
		dir = "log"
	}
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

func logLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(os.Getenv(logLevelEnv)))
	if err != nil {
		return zap.InfoLevel
	}
	return lvl
}

// NewLog writes JSON lines to stdout and to a rotated file named n under the
// log directory (MODVIEW_LOG_DIR, default "log").
func NewLog(n string) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir(), n),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})
	lvl := logLevel()

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, lvl),
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(os.Stdout), lvl),
	)
	return zap.New(core)
}
