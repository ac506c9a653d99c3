package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	cuotaslog "cuotas/internal/log"
	"cuotas/internal/metrics"
)

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromRequest(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a UUID", seen)
	}
	if rec.Header().Get(HeaderRequestID) != seen {
		t.Errorf("response header = %q, want %q", rec.Header().Get(HeaderRequestID), seen)
	}
}

func TestRequestIDReusesIncoming(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Errorf("request id = %q, want abc-123", seen)
	}

	req.Header.Set(HeaderRequestID, strings.Repeat("x", 65))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == strings.Repeat("x", 65) {
		t.Error("oversized ids must be replaced")
	}
}

func TestMiddlewareObservesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := cuotaslog.New(cuotaslog.Config{Component: cuotaslog.ComponentHTTP, Output: &buf})
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(cuotaslog.Middleware(logger, FromRequest, nil))
	r.Use(NewMiddleware(m, logger).Middleware)
	r.Get("/api/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/students/42", nil))

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() != "cuotas_http_request_duration_seconds" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == "/api/students/{id}" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("expected an observation labelled with the route pattern")
	}
	if !strings.Contains(buf.String(), "status_code=404") || !strings.Contains(buf.String(), "request_id=") {
		t.Errorf("completion log missing status: %s", buf.String())
	}
}
