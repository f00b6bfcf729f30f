package logger

import (
	"net/http"
	"strings"
)

const maxLoggedBody = 1 << 16 // 64 KiB

// LogBodies adds paths whose small JSON request bodies are logged. Bodies
// are redacted everywhere else.
func (m *Middleware) LogBodies(paths ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bodyPaths == nil {
		m.bodyPaths = map[string]struct{}{}
	}
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			m.bodyPaths[p] = struct{}{}
		}
	}
}

func (m *Middleware) shouldLogBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	if r.ContentLength <= 0 || r.ContentLength > maxLoggedBody {
		return false
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return false
	}
	m.mu.RLock()
	_, ok := m.bodyPaths[r.URL.Path]
	m.mu.RUnlock()
	return ok
}
