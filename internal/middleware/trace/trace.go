// Package trace tags requests with an id and records their outcome.
package trace

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	cuotaslog "cuotas/internal/log"
	"cuotas/internal/metrics"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// HeaderRequestID carries the id in both directions.
const HeaderRequestID = "X-Request-ID"

// RequestID reuses a short incoming X-Request-ID or assigns a UUID, stores it
// in the context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// FromRequest is GetRequestID for extractor callbacks.
func FromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}

// Middleware times each request, observes it under its chi route pattern and
// logs the completion through the request-scoped logger.
type Middleware struct {
	metrics *metrics.Metrics
	log     *cuotaslog.StructuredLogger
}

func NewMiddleware(m *metrics.Metrics, logger *cuotaslog.Logger) *Middleware {
	return &Middleware{metrics: m, log: cuotaslog.NewStructuredLogger(logger)}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		m.metrics.ObserveHTTP(r.Method, routePattern(r), status, elapsed)
		m.log.LogHTTPEnd(r.Context(), r, status, elapsed.Milliseconds())
	})
}

// routePattern keeps metric labels bounded: ids in paths collapse into the
// pattern they matched.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
