package metrics

import "github.com/joeydtaylor/modview/pkg/view"

// Dispatch counts pipeline activity. It implements view.Observer.
type Dispatch struct{}

var _ view.Observer = Dispatch{}

func (Dispatch) StageRun(v string, stage view.Stage) {
	stageTotal.WithLabelValues(v, string(stage)).Inc()
}

func (Dispatch) ShortCircuit(v string, stage view.Stage, module string) {
	shortCircuitTotal.WithLabelValues(v, string(stage), module).Inc()
}

func (Dispatch) LoadFallback(v, model, reason string) {
	storeFallbackTotal.WithLabelValues(v, model, reason).Inc()
}
