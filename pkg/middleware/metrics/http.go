package metrics

import (
	"net/http"

	"github.com/joeydtaylor/modview/pkg/view"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// NewPromHttpHandler returns the /metrics handler.
func NewPromHttpHandler() http.Handler { return promhttp.Handler() }

// ProvideMetrics is the Fx provider for the /metrics handler.
func ProvideMetrics() http.Handler { return NewPromHttpHandler() }

// ProvideObserver is the Fx provider for the dispatch observer.
func ProvideObserver() view.Observer { return Dispatch{} }

var Module = fx.Options(
	fx.Provide(fx.Annotate(ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
	fx.Provide(ProvideObserver),
)
