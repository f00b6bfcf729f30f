// pkg/core/router.go
package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	manifest "github.com/joeydtaylor/modview/pkg/manifest"
	"github.com/joeydtaylor/modview/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/modview/pkg/middleware/metrics"
	"github.com/joeydtaylor/modview/pkg/render"
	httpx "github.com/joeydtaylor/modview/pkg/transport/httpx"
	"github.com/joeydtaylor/modview/pkg/view"
	"go.uber.org/zap"
)

type BuildDeps struct {
	LogMW    *logger.Middleware
	Metrics  http.Handler
	Observer view.Observer
	Router   httpx.Router
	Registry *Registry
	Renderer render.Renderer
	Logger   *zap.Logger
}

// BuildRouter mounts one view.Controller per manifest view.
func BuildRouter(cfg manifest.Config, d BuildDeps) (http.Handler, error) {
	if d.Registry == nil {
		d.Registry = Default
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.LogMW != nil {
		d.LogMW.LogBodies(cfg.Server.LogBodyPaths...)
		r.Use(d.LogMW.Handler)
	}
	r.Use(hmetrics.Collect())

	if d.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", d.Metrics)
	}

	for _, v := range cfg.Views {
		ctrl, err := NewController(v, d)
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", v.Name, err)
		}
		var h http.Handler = ctrl
		if v.TimeoutMS > 0 {
			h = withTimeout(h, time.Duration(v.TimeoutMS)*time.Millisecond)
		}
		for _, m := range v.Methods {
			r.Handle(m, v.Path, h)
		}
		d.Logger.Debug("view mounted",
			zap.String("view", v.Name),
			zap.String("path", v.Path),
			zap.Strings("methods", v.Methods),
			zap.Int("modules", len(ctrl.Modules())),
		)
	}
	return r.Mux(), nil
}

// NewController builds the controller of one manifest view.
func NewController(v manifest.View, d BuildDeps) (*view.Controller, error) {
	reg := d.Registry
	if reg == nil {
		reg = Default
	}
	mods, err := BuildModules(v.Modules, reg)
	if err != nil {
		return nil, err
	}
	table, err := ViewTable(v, reg)
	if err != nil {
		return nil, err
	}
	opts := []view.Option{view.WithCallbacks(table)}
	if d.Renderer != nil {
		opts = append(opts, view.WithRenderer(d.Renderer))
	}
	if d.Logger != nil {
		opts = append(opts, view.WithLogger(d.Logger))
	}
	if d.Observer != nil {
		opts = append(opts, view.WithObserver(d.Observer))
	}
	return view.NewController(v.Name, mods, opts...), nil
}

func withTimeout(next http.Handler, d time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
