package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cuotas/internal/amqp"
	"cuotas/internal/core"
	"cuotas/internal/export"
	"cuotas/internal/metrics"
)

// CourseReporter builds the reports published for a course.
type CourseReporter interface {
	CourseReports(ctx context.Context, course core.CourseID) (export.PaymentReport, export.ExpenseReport, error)
	ActiveCourses(ctx context.Context) ([]core.Course, error)
}

// ReportSink receives the reports of one course, e.g. a spreadsheet.
type ReportSink interface {
	ExportCourse(ctx context.Context, payments export.PaymentReport, expenses export.ExpenseReport) error
}

// Config holds configuration for the export worker
type Config struct {
	// RefreshInterval is how often every active course is re-exported (default: 1h)
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{RefreshInterval: time.Hour}
}

// ExportWorker publishes course reports on request and on a schedule.
type ExportWorker struct {
	reports CourseReporter
	sink    ReportSink
	metrics *metrics.Metrics
	config  Config

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportWorker(reports CourseReporter, sink ReportSink, m *metrics.Metrics, config Config) *ExportWorker {
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = DefaultConfig().RefreshInterval
	}
	return &ExportWorker{
		reports: reports,
		sink:    sink,
		metrics: m,
		config:  config,
	}
}

// HandleMessage exports the course named by an AMQP message. A course that
// no longer exists is acknowledged and dropped; any other failure is
// returned so the message can be redelivered.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.ReportExportMessage) error {
	slog.InfoContext(ctx, "Processing report export message",
		"message_id", msg.ID,
		"course_id", msg.CourseID,
		"reason", msg.Reason)

	err := w.ExportCourse(ctx, msg.CourseID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Course not found, dropping export message",
			"message_id", msg.ID,
			"course_id", msg.CourseID)
		w.metrics.IncrMessage("dropped")
		return nil
	}
	if err != nil {
		w.metrics.IncrMessage("failed")
		return err
	}
	w.metrics.IncrMessage("processed")
	return nil
}

// ExportCourse builds both reports of a course and hands them to the sink.
func (w *ExportWorker) ExportCourse(ctx context.Context, course core.CourseID) error {
	payments, expenses, err := w.reports.CourseReports(ctx, course)
	if err != nil {
		return fmt.Errorf("build reports: %w", err)
	}
	if err := w.sink.ExportCourse(ctx, payments, expenses); err != nil {
		w.metrics.IncrUpstreamError("sheets")
		return fmt.Errorf("export course %d: %w", course, err)
	}
	w.metrics.IncrExport("course", "sheets")
	return nil
}

// RefreshAll exports every active course. A failing course does not stop
// the others; all failures are returned joined.
func (w *ExportWorker) RefreshAll(ctx context.Context) error {
	courses, err := w.reports.ActiveCourses(ctx)
	if err != nil {
		return err
	}

	var errs []error
	exported := 0
	for _, c := range courses {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := w.ExportCourse(ctx, c.ID); err != nil {
			slog.ErrorContext(ctx, "Scheduled export failed", "course_id", c.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Scheduled export completed",
		"courses", len(courses),
		"exported", exported,
		"errors", len(errs))
	return errors.Join(errs...)
}

// Start begins the periodic refresh loop. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("export worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Export worker started", "refresh_interval", w.config.RefreshInterval)
	return nil
}

// Stop signals the loop and waits for the current refresh to finish.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Export worker stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export worker stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the refresh loop is active
func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ExportWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.RefreshInterval)
	defer ticker.Stop()

	// refresh immediately on startup
	w.refresh(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *ExportWorker) refresh(ctx context.Context) {
	if err := w.RefreshAll(ctx); err != nil && ctx.Err() == nil {
		slog.WarnContext(ctx, "Periodic refresh finished with errors", "error", err)
	}
}
