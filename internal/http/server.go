package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	cuotaslog "cuotas/internal/log"
	"cuotas/internal/metrics"
	"cuotas/internal/middleware/ratelimit"
	"cuotas/internal/middleware/security"
	"cuotas/internal/middleware/trace"
	"cuotas/internal/ports"
	"cuotas/internal/services"
)

// Deps are the collaborators of the API.
type Deps struct {
	Reader  ports.LedgerReader
	Ledger  *services.LedgerService
	Reports *services.ReportService
	Metrics *metrics.Metrics
	Logger  *cuotaslog.Logger

	RateLimitPerMinute int
}

type Server struct {
	http.Server
	reader  ports.LedgerReader
	ledger  *services.LedgerService
	reports *services.ReportService
	metrics *metrics.Metrics
	logger  *cuotaslog.Logger
	limiter *ratelimit.Limiter
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = cuotaslog.New(cuotaslog.Config{Component: cuotaslog.ComponentHTTP})
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		reader:  deps.Reader,
		ledger:  deps.Ledger,
		reports: deps.Reports,
		metrics: deps.Metrics,
		logger:  logger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	detector := security.NewDetector()

	// client addresses come from detector.ExtractClientIP, which only
	// believes forwarding headers set by a trusted proxy
	r := chi.NewRouter()
	r.Use(trace.RequestID)
	r.Use(cuotaslog.Middleware(s.logger, trace.FromRequest, detector.ExtractClientIP))
	r.Use(trace.NewMiddleware(s.metrics, s.logger).Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(detector.Middleware(s.logger.WithComponent(cuotaslog.ComponentSecurity).Logger))
	r.Use(s.limiter.Middleware(detector.ExtractClientIP, ratelimit.Mutating, s.rateLimited))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/courses", s.handleListCourses)
		r.Post("/courses", s.handleCreateCourse)

		r.Route("/students", func(r chi.Router) {
			r.Get("/", s.handleListStudents)
			r.Post("/", s.handleCreateStudent)
			r.Put("/{id}", s.handleUpdateStudent)
			r.Delete("/{id}", s.handleDeleteStudent)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", s.handleListPayments)
			r.Post("/", s.handleCreatePayment)
			r.Put("/{id}", s.handleUpdatePayment)
			r.Delete("/{id}", s.handleDeletePayment)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/config", func(r chi.Router) {
			r.Get("/", s.handleGetGoal)
			r.Put("/", s.handlePutGoal)
			r.Get("/categories", s.handleListCategories)
			r.Post("/categories", s.handleCreateCategory)
			r.Put("/categories/{id}", s.handleUpdateCategory)
			r.Delete("/categories/{id}", s.handleDeleteCategory)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/totals", s.handleTotals)
			r.Get("/students", s.handleStudentReport)
			r.Get("/students/export", s.handleStudentExport)
			r.Get("/expenses", s.handleExpenseReport)
			r.Get("/expenses/export", s.handleExpenseExport)
			r.Get("/expenses/students", s.handleExpenseShares)
			r.Post("/sync", s.handleSync)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})
	return r
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.IncrRateLimited()
	cuotaslog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		cuotaslog.FieldMethod, r.Method,
		cuotaslog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// Shutdown drains connections and stops the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks that the configured backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.reader.Ping(ctx); err != nil {
		cuotaslog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", cuotaslog.FieldError, err.Error())
		ErrorResponse(http.StatusServiceUnavailable, "backend unavailable").Write(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
