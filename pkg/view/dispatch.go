// pkg/view/dispatch.go
package view

import (
	"fmt"
	"net/http"
)

// Observer receives dispatch events; pkg/middleware/metrics implements it.
type Observer interface {
	StageRun(view string, stage Stage)
	ShortCircuit(view string, stage Stage, module string)
	LoadFallback(view string, model string, reason string)
}

// RunStage invokes stage on each module in order and returns the first
// non-nil handler, skipping every module after it. An error also stops the
// stage. No result from any module is (nil, nil).
func RunStage(r *Request, c *Context, stage Stage, mods []Module) (http.Handler, error) {
	for _, m := range mods {
		h, err := Invoke(m, stage, r, c)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", moduleKind(m), stage, err)
		}
		if h != nil {
			if c != nil && c.obs != nil {
				c.obs.ShortCircuit(c.view, stage, moduleKind(m))
			}
			return h, nil
		}
	}
	return nil, nil
}

// RunStages runs mods for the dispatch stage and then, if nothing answered,
// for the stage named after the request method.
func RunStages(r *Request, c *Context, mods []Module) (http.Handler, error) {
	h, err := RunStage(r, c, StageDispatch, mods)
	if err != nil || h != nil {
		return h, err
	}
	stage, ok := MethodStage(r.Method)
	if !ok {
		return nil, nil
	}
	return RunStage(r, c, stage, mods)
}

// Kinded lets a module report a short kind label for logs and metrics.
type Kinded interface {
	Kind() string
}

func moduleKind(m Module) string {
	if k, ok := m.(Kinded); ok {
		return k.Kind()
	}
	return fmt.Sprintf("%T", m)
}
