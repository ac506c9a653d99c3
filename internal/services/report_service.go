package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"cuotas/internal/core"
	"cuotas/internal/export"
	cuotaslog "cuotas/internal/log"
	"cuotas/internal/metrics"
	"cuotas/internal/ports"
	"cuotas/internal/reconcile"
)

// DefaultTrendMonths is used when a report is asked for without a window.
const DefaultTrendMonths = 6

// Snapshot is everything known about one course at one point in time.
type Snapshot struct {
	Course   core.Course
	Students []core.Student
	Payments []core.Payment
	Expenses []core.Expense
	Goal     reconcile.Goal
}

// StudentQuery narrows the student report. Zero values mean no narrowing.
type StudentQuery struct {
	Period core.PaymentPeriod
	Limit  decimal.Decimal
	Filter reconcile.ExportFilter
	Status reconcile.Status
}

type ReportOptions struct {
	TrendMonths int
	Metrics     *metrics.Metrics
	Logger      *cuotaslog.Logger
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// ReportService loads course snapshots from a ledger and runs them through
// the reconciliation engine.
type ReportService struct {
	reader      ports.LedgerReader
	trendMonths int
	metrics     *metrics.Metrics
	log         *cuotaslog.StructuredLogger
	now         func() time.Time
}

func NewReportService(reader ports.LedgerReader, opts ReportOptions) *ReportService {
	months := opts.TrendMonths
	if months <= 0 {
		months = DefaultTrendMonths
	}
	logger := opts.Logger
	if logger == nil {
		logger = cuotaslog.New(cuotaslog.Config{Component: cuotaslog.ComponentReport})
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		reader:      reader,
		trendMonths: months,
		metrics:     opts.Metrics,
		log:         cuotaslog.NewStructuredLogger(logger),
		now:         now,
	}
}

// Load fetches the course and its records concurrently. The first failure
// cancels the remaining reads.
func (s *ReportService) Load(ctx context.Context, course core.CourseID) (*Snapshot, error) {
	if err := course.Validate(); err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	var goal *core.GoalConfig

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Course, err = s.reader.GetCourse(gctx, course)
		return wrap("course", err)
	})
	g.Go(func() (err error) {
		snap.Students, err = s.reader.ListStudents(gctx, course)
		return wrap("students", err)
	})
	g.Go(func() (err error) {
		snap.Payments, err = s.reader.ListPayments(gctx, course)
		return wrap("payments", err)
	})
	g.Go(func() (err error) {
		snap.Expenses, err = s.reader.ListExpenses(gctx, course)
		return wrap("expenses", err)
	})
	g.Go(func() (err error) {
		goal, err = s.reader.GetGoalConfig(gctx, course)
		return wrap("goal config", err)
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.metrics.IncrUpstreamError("ledger")
		}
		return nil, fmt.Errorf("load course %d: %w", course, err)
	}

	snap.Goal = reconcile.NewGoal(goal)
	snap.Students = nonNil(snap.Students)
	snap.Payments = nonNil(snap.Payments)
	snap.Expenses = nonNil(snap.Expenses)
	return snap, nil
}

func (s *ReportService) Totals(ctx context.Context, course core.CourseID) (reconcile.Totals, error) {
	snap, err := s.Load(ctx, course)
	if err != nil {
		return reconcile.Totals{}, err
	}
	s.built(ctx, course, "totals", "", "")
	return reconcile.SummarizeTotals(snap.Payments, snap.Expenses), nil
}

// Students reconciles every student's payments. Summary keeps the general
// totals of the whole roster while Rows is narrowed by the query.
func (s *ReportService) Students(ctx context.Context, course core.CourseID, q StudentQuery) (export.PaymentReport, error) {
	snap, err := s.Load(ctx, course)
	if err != nil {
		return export.PaymentReport{}, err
	}
	return s.paymentReport(ctx, snap, q), nil
}

func (s *ReportService) paymentReport(ctx context.Context, snap *Snapshot, q StudentQuery) export.PaymentReport {
	filter := q.Filter
	if filter == "" {
		filter = reconcile.FilterAll
	}

	summary := reconcile.SummarizeCourse(snap.Students, snap.Payments, snap.Goal, reconcile.RosterOptions{
		Period:      q.Period,
		CustomLimit: q.Limit,
		Order:       reconcile.ByDate,
	})
	rows := reconcile.FilterRows(summary.Rows, filter)
	if q.Status != "" {
		rows = reconcile.FilterRowsByStatus(rows, q.Status)
	}

	s.built(ctx, snap.Course.ID, "students", "", string(filter))
	return export.PaymentReport{
		Course:      snap.Course,
		GeneratedAt: s.now(),
		Filter:      filter,
		Summary:     summary,
		Rows:        rows,
	}
}

// Expenses analyses the course expenses over a trend window of months,
// falling back to the configured window when months is not positive.
func (s *ReportService) Expenses(ctx context.Context, course core.CourseID, months int) (export.ExpenseReport, error) {
	snap, err := s.Load(ctx, course)
	if err != nil {
		return export.ExpenseReport{}, err
	}
	return s.expenseReport(ctx, snap, months), nil
}

func (s *ReportService) expenseReport(ctx context.Context, snap *Snapshot, months int) export.ExpenseReport {
	if months <= 0 {
		months = s.trendMonths
	}
	now := s.now()
	s.built(ctx, snap.Course.ID, "expenses", "", "")
	return export.ExpenseReport{
		Course:      snap.Course,
		GeneratedAt: now,
		Analysis:    reconcile.AnalyzeExpenses(snap.Payments, snap.Expenses, months, now),
		Expenses:    snap.Expenses,
	}
}

// ExpenseSharesReport is the dashboard pivot of spending per student.
type ExpenseSharesReport struct {
	Course      core.Course             `json:"course"`
	GeneratedAt time.Time               `json:"generated_at"`
	Shares      reconcile.ExpenseShares `json:"shares"`
}

// ExpenseShares splits the course expenses evenly across its students.
func (s *ReportService) ExpenseShares(ctx context.Context, course core.CourseID) (ExpenseSharesReport, error) {
	snap, err := s.Load(ctx, course)
	if err != nil {
		return ExpenseSharesReport{}, err
	}
	s.built(ctx, course, "expense_shares", "", "")
	return ExpenseSharesReport{
		Course:      snap.Course,
		GeneratedAt: s.now(),
		Shares:      reconcile.ExpensesPerStudent(snap.Students, snap.Expenses),
	}, nil
}

// CourseReports builds both reports from a single snapshot, as published to
// the spreadsheet.
func (s *ReportService) CourseReports(ctx context.Context, course core.CourseID) (export.PaymentReport, export.ExpenseReport, error) {
	snap, err := s.Load(ctx, course)
	if err != nil {
		return export.PaymentReport{}, export.ExpenseReport{}, err
	}
	return s.paymentReport(ctx, snap, StudentQuery{}), s.expenseReport(ctx, snap, 0), nil
}

// ActiveCourses lists the courses refreshed by the periodic export.
func (s *ReportService) ActiveCourses(ctx context.Context) ([]core.Course, error) {
	courses, err := s.reader.ListCourses(ctx, true)
	if err != nil {
		s.metrics.IncrUpstreamError("ledger")
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// RecordExport counts and logs a rendered export file.
func (s *ReportService) RecordExport(ctx context.Context, course core.CourseID, report string, format export.Format, filter string) {
	s.metrics.IncrExport(report, string(format))
	s.log.LogReportBuilt(ctx, int64(course), report, string(format), filter)
}

func (s *ReportService) built(ctx context.Context, course core.CourseID, report, format, filter string) {
	s.metrics.IncrReport(report)
	cuotaslog.FromContext(ctx).DebugContext(ctx, "Report computed",
		cuotaslog.FieldCourseID, int64(course),
		cuotaslog.FieldReport, report,
		cuotaslog.FieldFormat, format,
		cuotaslog.FieldFilter, filter)
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
