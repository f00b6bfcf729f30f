package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joeydtaylor/modview/pkg/core"
	"github.com/joeydtaylor/modview/pkg/manifest"
	"github.com/joeydtaylor/modview/pkg/middleware/logger"
	"github.com/joeydtaylor/modview/pkg/middleware/metrics"
	"github.com/joeydtaylor/modview/pkg/render"
	"github.com/joeydtaylor/modview/pkg/store/sqlstore"
	"github.com/joeydtaylor/modview/pkg/transport/httpx"
	"github.com/joeydtaylor/modview/pkg/view"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // MODVIEW_MANIFEST
	DefaultManifest string // e.g., "modview.toml"
	ListenEnv       string // SERVER_LISTEN_ADDRESS
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY
	TemplatesEnv    string // overrides [server].templates
	DatabaseEnv     string // overrides [server].database

	registry *core.Registry
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithListenEnv(k string) Option          { return func(c *Config) { c.ListenEnv = k } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}

// WithRegistry replaces core.Default as the source of models, forms and
// callbacks named by the manifest.
func WithRegistry(r *core.Registry) Option { return func(c *Config) { c.registry = r } }

func defaultConfig() Config {
	return Config{
		Service:         "modview",
		ManifestEnv:     "MODVIEW_MANIFEST",
		DefaultManifest: "modview.toml",
		ListenEnv:       "SERVER_LISTEN_ADDRESS",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
		TemplatesEnv:    "MODVIEW_TEMPLATES",
		DatabaseEnv:     "MODVIEW_DATABASE",
	}
}

// Module returns a complete Fx option set; add app-specific fx.Invoke(...) alongside.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		// Core middleware
		logger.Module,
		metrics.Module,
		// Router impl
		fx.Provide(httpx.NewChi),
		// Config into DI
		fx.Provide(func() Config { return cfg }),
		// Manifest and its collaborators
		fx.Provide(provideManifest),
		fx.Provide(provideDatabase),
		fx.Provide(provideRenderer),
		fx.Provide(provideRegistry),
		// Router
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ResultTags(`name:"app"`),
		)),
		// Lifecycle
		fx.Invoke(registerHooks),
	)
}

// ---------- Manifest ----------

// ManifestPath resolves the manifest file: the env var first, then the
// default path when it exists, then $XDG_CONFIG_HOME/modview/<default>.
func ManifestPath(cfg Config) string {
	if p := os.Getenv(cfg.ManifestEnv); p != "" {
		return p
	}
	if fileExists(cfg.DefaultManifest) {
		return cfg.DefaultManifest
	}
	if p, err := xdg.SearchConfigFile(filepath.Join("modview", filepath.Base(cfg.DefaultManifest))); err == nil {
		return p
	}
	return cfg.DefaultManifest
}

func provideManifest(cfg Config, zl *zap.Logger) (manifest.Config, error) {
	path := ManifestPath(cfg)
	man, err := core.LoadConfig(path)
	if err != nil {
		zl.Error("manifest load failed", zap.Error(err), zap.String("path", path))
		return manifest.Config{}, err
	}
	if v := os.Getenv(cfg.TemplatesEnv); v != "" {
		man.Server.Templates = v
	}
	if v := os.Getenv(cfg.DatabaseEnv); v != "" {
		man.Server.Database = v
	}
	zl.Info("manifest loaded",
		zap.String("path", path),
		zap.Int("views", len(man.Views)),
		zap.Int("models", len(man.Models)),
		zap.Int("forms", len(man.Forms)),
	)
	return man, nil
}

// provideDatabase opens [server].database; nil when the manifest has none.
func provideDatabase(lc fx.Lifecycle, man manifest.Config, zl *zap.Logger) (*sqlstore.DB, error) {
	if man.Server.Database == "" {
		return nil, nil
	}
	db, err := sqlstore.Open(context.Background(), man.Server.Database)
	if err != nil {
		return nil, err
	}
	zl.Info("database opened", zap.String("path", db.Path()))
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return db.Close() }})
	return db, nil
}

// provideRenderer parses [server].templates; nil when the manifest has none.
func provideRenderer(man manifest.Config) (render.Renderer, error) {
	if man.Server.Templates == "" {
		return nil, nil
	}
	t, err := render.FromDir(man.Server.Templates)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func provideRegistry(cfg Config, man manifest.Config, db *sqlstore.DB) (*core.Registry, error) {
	reg := cfg.registry
	if reg == nil {
		reg = core.Default
	}
	if err := reg.Bind(context.Background(), man, db); err != nil {
		return nil, err
	}
	return reg, nil
}

// ---------- Router ----------

type routerDeps struct {
	fx.In
	Manifest manifest.Config
	LogMW    *logger.Middleware
	Metrics  http.Handler `name:"metrics"`
	Observer view.Observer
	Router   httpx.Router
	Registry *core.Registry
	Renderer render.Renderer
	Logger   *zap.Logger
}

func provideRouter(d routerDeps) (http.Handler, error) {
	return core.BuildRouter(d.Manifest, core.BuildDeps{
		LogMW:    d.LogMW,
		Metrics:  d.Metrics,
		Observer: d.Observer,
		Router:   d.Router,
		Registry: d.Registry,
		Renderer: d.Renderer,
		Logger:   d.Logger,
	})
}

// ---------- Lifecycle (HTTP server) ----------

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, cfg Config, d serverDeps) {
	addr := envOr(cfg.ListenEnv, ":4000")
	cert := os.Getenv(cfg.TLSCertEnv)
	key := os.Getenv(cfg.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", cfg.Service), zap.String("addr", addr), zap.String("cert", cert))
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
				return nil
			}
			d.Logger.Info("server starting (PLAINTEXT)",
				zap.String("service", cfg.Service), zap.String("addr", addr))
			go func() {
				srv.TLSConfig = nil
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					d.Logger.Fatal("server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping")
			return srv.Shutdown(ctx)
		},
	})
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
