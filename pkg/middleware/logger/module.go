package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideLogger() *zap.Logger { return NewLog("system.log") }

func ProvideMiddleware() *Middleware { return New(NewLog("http-access.log")) }

var Module = fx.Options(
	fx.Provide(ProvideMiddleware),
	fx.Provide(ProvideLogger),
)
