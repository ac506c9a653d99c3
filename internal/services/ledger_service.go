package services

import (
	"context"
	"errors"
	"fmt"

	"cuotas/internal/amqp"
	"cuotas/internal/core"
	cuotaslog "cuotas/internal/log"
	"cuotas/internal/metrics"
	"cuotas/internal/ports"
)

// ErrSyncUnavailable is returned by RequestSync when no publisher is
// configured.
var ErrSyncUnavailable = errors.New("report sync is not configured")

// LedgerService validates and writes course records, then asks the export
// worker to refresh the course reports.
type LedgerService struct {
	writer    ports.LedgerWriter
	publisher ports.ReportPublisher
	metrics   *metrics.Metrics
	log       *cuotaslog.StructuredLogger
}

// NewLedgerService accepts a nil publisher; writes then skip the refresh.
func NewLedgerService(writer ports.LedgerWriter, publisher ports.ReportPublisher, m *metrics.Metrics, logger *cuotaslog.Logger) *LedgerService {
	if logger == nil {
		logger = cuotaslog.New(cuotaslog.Config{Component: cuotaslog.ComponentLedger})
	}
	return &LedgerService{
		writer:    writer,
		publisher: publisher,
		metrics:   m,
		log:       cuotaslog.NewStructuredLogger(logger),
	}
}

func (s *LedgerService) CreateCourse(ctx context.Context, c core.Course) (core.Course, error) {
	out, err := s.writer.CreateCourse(ctx, c)
	if err != nil {
		return core.Course{}, fmt.Errorf("create course: %w", err)
	}
	s.log.LogLedgerChange(ctx, int64(out.ID), cuotaslog.OpCreate, "course", int64(out.ID))
	return out, nil
}

func (s *LedgerService) CreateStudent(ctx context.Context, st core.Student) (core.Student, error) {
	out, err := s.writer.CreateStudent(ctx, st)
	if err != nil {
		return core.Student{}, fmt.Errorf("create student: %w", err)
	}
	s.changed(ctx, out.CourseID, cuotaslog.OpCreate, "student", out.ID)
	return out, nil
}

func (s *LedgerService) UpdateStudent(ctx context.Context, st core.Student) (core.Student, error) {
	out, err := s.writer.UpdateStudent(ctx, st)
	if err != nil {
		return core.Student{}, fmt.Errorf("update student %d: %w", st.ID, err)
	}
	s.changed(ctx, out.CourseID, cuotaslog.OpUpdate, "student", out.ID)
	return out, nil
}

func (s *LedgerService) DeleteStudent(ctx context.Context, course core.CourseID, id int64) error {
	if err := s.writer.DeleteStudent(ctx, course, id); err != nil {
		return fmt.Errorf("delete student %d: %w", id, err)
	}
	s.changed(ctx, course, cuotaslog.OpDelete, "student", id)
	return nil
}

func (s *LedgerService) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := normalizePayment(&p); err != nil {
		return core.Payment{}, err
	}
	out, err := s.writer.CreatePayment(ctx, p)
	if err != nil {
		return core.Payment{}, fmt.Errorf("create payment: %w", err)
	}
	s.changed(ctx, out.CourseID, cuotaslog.OpCreate, "payment", out.ID)
	return out, nil
}

func (s *LedgerService) UpdatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := normalizePayment(&p); err != nil {
		return core.Payment{}, err
	}
	out, err := s.writer.UpdatePayment(ctx, p)
	if err != nil {
		return core.Payment{}, fmt.Errorf("update payment %d: %w", p.ID, err)
	}
	s.changed(ctx, out.CourseID, cuotaslog.OpUpdate, "payment", out.ID)
	return out, nil
}

func (s *LedgerService) DeletePayment(ctx context.Context, course core.CourseID, id int64) error {
	if err := s.writer.DeletePayment(ctx, course, id); err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}
	s.changed(ctx, course, cuotaslog.OpDelete, "payment", id)
	return nil
}

func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := normalizeExpense(&e); err != nil {
		return core.Expense{}, err
	}
	out, err := s.writer.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.changed(ctx, out.CourseID, cuotaslog.OpCreate, "expense", out.ID)
	return out, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := normalizeExpense(&e); err != nil {
		return core.Expense{}, err
	}
	out, err := s.writer.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	s.changed(ctx, out.CourseID, cuotaslog.OpUpdate, "expense", out.ID)
	return out, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, course core.CourseID, id int64) error {
	if err := s.writer.DeleteExpense(ctx, course, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	s.changed(ctx, course, cuotaslog.OpDelete, "expense", id)
	return nil
}

func (s *LedgerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := normalizeBase(&c); err != nil {
		return core.Category{}, err
	}
	out, err := s.writer.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.changed(ctx, out.CourseID, cuotaslog.OpCreate, "category", out.ID)
	return out, nil
}

func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := normalizeBase(&c); err != nil {
		return core.Category{}, err
	}
	out, err := s.writer.UpdateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, err)
	}
	s.changed(ctx, out.CourseID, cuotaslog.OpUpdate, "category", out.ID)
	return out, nil
}

func (s *LedgerService) DeleteCategory(ctx context.Context, course core.CourseID, id int64) error {
	if err := s.writer.DeleteCategory(ctx, course, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	s.changed(ctx, course, cuotaslog.OpDelete, "category", id)
	return nil
}

func (s *LedgerService) PutGoalConfig(ctx context.Context, g core.GoalConfig) (core.GoalConfig, error) {
	total, err := core.ParseNonNegativeAmount(string(g.TotalGoal))
	if err != nil {
		return core.GoalConfig{}, fmt.Errorf("total goal: %w", err)
	}
	g.TotalGoal = core.NewAmount(total)
	if g.TotalSpentGoal != "" {
		spent, err := core.ParseNonNegativeAmount(string(g.TotalSpentGoal))
		if err != nil {
			return core.GoalConfig{}, fmt.Errorf("total spent goal: %w", err)
		}
		g.TotalSpentGoal = core.NewAmount(spent)
	}

	out, err := s.writer.PutGoalConfig(ctx, g)
	if err != nil {
		return core.GoalConfig{}, fmt.Errorf("save goal config: %w", err)
	}
	s.changed(ctx, out.CourseID, cuotaslog.OpUpdate, "goal_config", int64(out.CourseID))
	return out, nil
}

// RequestSync asks for an immediate export of the course. Unlike the
// refresh after a write, a publish failure is returned to the caller.
func (s *LedgerService) RequestSync(ctx context.Context, course core.CourseID) error {
	if err := course.Validate(); err != nil {
		return err
	}
	if s.publisher == nil {
		return ErrSyncUnavailable
	}
	if err := s.publisher.PublishReportExport(ctx, course, amqp.ReasonManual); err != nil {
		s.metrics.IncrMessage("publish_failed")
		return fmt.Errorf("request sync for course %d: %w", course, err)
	}
	s.metrics.IncrMessage("published")
	return nil
}

// changed logs the write and publishes the refresh. The record is already
// stored, so a publish failure is only logged.
func (s *LedgerService) changed(ctx context.Context, course core.CourseID, op, record string, id int64) {
	s.log.LogLedgerChange(ctx, int64(course), op, record, id)

	if s.publisher == nil {
		cuotaslog.FromContext(ctx).DebugContext(ctx, "No report publisher, skipping export refresh",
			cuotaslog.FieldCourseID, int64(course))
		return
	}
	if err := s.publisher.PublishReportExport(ctx, course, amqp.ReasonLedgerChange); err != nil {
		s.metrics.IncrMessage("publish_failed")
		s.log.LogError(ctx, "Failed to publish report export", err, cuotaslog.ErrorTypeNetwork, cuotaslog.OpPublish,
			cuotaslog.NewFields().WithCourse(int64(course)))
		return
	}
	s.metrics.IncrMessage("published")
}

// normalizePayment rounds the amount to cents and rewrites the date as
// YYYY-MM-DD. Other checks are left to the store.
func normalizePayment(p *core.Payment) error {
	amount, err := core.ParsePositiveAmount(string(p.Amount))
	if err != nil {
		return err
	}
	date, ok := p.Date.Parse()
	if !ok {
		return core.ErrInvalidDate
	}
	p.Amount = core.NewAmount(amount)
	p.Date = core.NewDate(date)
	return nil
}

func normalizeExpense(e *core.Expense) error {
	amount, err := core.ParsePositiveAmount(string(e.Amount))
	if err != nil {
		return err
	}
	date, ok := e.Date.Parse()
	if !ok {
		return core.ErrInvalidDate
	}
	e.Amount = core.NewAmount(amount)
	e.Date = core.NewDate(date)
	return nil
}

func normalizeBase(c *core.Category) error {
	if c.BaseAmount == "" {
		return nil
	}
	d, err := core.ParseNonNegativeAmount(string(c.BaseAmount))
	if err != nil {
		return err
	}
	c.BaseAmount = core.NewAmount(d)
	return nil
}
