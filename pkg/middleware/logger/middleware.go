package logger

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Middleware writes one access log line per request.
type Middleware struct {
	access *zap.Logger

	mu        sync.RWMutex
	bodyPaths map[string]struct{}
}

func New(access *zap.Logger) *Middleware {
	if access == nil {
		access = zap.NewNop()
	}
	return &Middleware{access: access}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)

		// read and restore the body so the views can still parse it
		var body []byte
		if m.shouldLogBody(r) {
			if b, err := io.ReadAll(r.Body); err == nil {
				body = b
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}

		start := time.Now()
		defer func() {
			fields := []zap.Field{
				zap.String("dateTime", start.UTC().Format(time.RFC1123)),
				zap.String("requestId", chimd.GetReqID(r.Context())),
				zap.String("httpScheme", scheme),
				zap.String("httpProto", r.Proto),
				zap.String("httpMethod", r.Method),
				zap.String("remoteAddr", r.RemoteAddr),
				zap.String("uri", r.URL.Path),
				zap.Bool("ajax", r.Header.Get("X-Requested-With") == "XMLHttpRequest"),
				zap.Duration("lat", time.Since(start)),
				zap.Int("responseSize", ww.BytesWritten()),
				zap.Int("status", ww.Status()),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil {
				fields = append(fields, zap.String("route", rc.RoutePattern()))
			}
			if len(body) > 0 {
				fields = append(fields, zap.ByteString("requestData", body))
			}
			m.access.Info("request", fields...)
		}()

		next.ServeHTTP(ww, r)
	})
}
