package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cuotas/internal/core"
)

// Standing is the coarse view used in payment summaries and exports.
type Standing string

const (
	StandingUpToDate Standing = "Al día"
	StandingPending  Standing = "Pendiente"
)

func standingOf(difference decimal.Decimal) Standing {
	if difference.IsNegative() {
		return StandingPending
	}
	return StandingUpToDate
}

// ExportFilter selects roster rows for the payment summary export.
type ExportFilter string

const (
	FilterAll             ExportFilter = "all"
	FilterUpToDate        ExportFilter = "up_to_date"
	FilterPending         ExportFilter = "pending"
	FilterWithPayments    ExportFilter = "with_payments"
	FilterWithoutPayments ExportFilter = "without_payments"
)

// ParseExportFilter maps the query value to a filter. Empty means all.
func ParseExportFilter(s string) (ExportFilter, error) {
	switch f := ExportFilter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterUpToDate, FilterPending, FilterWithPayments, FilterWithoutPayments:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export filter %q", s)
	}
}

// FileLabel is the fragment used in export file names.
func (f ExportFilter) FileLabel() string {
	switch f {
	case FilterUpToDate:
		return "Al_Dia"
	case FilterPending:
		return "Pendientes"
	case FilterWithPayments:
		return "Con_Pagos"
	case FilterWithoutPayments:
		return "Sin_Pagos"
	default:
		return "Todos"
	}
}

// RosterOptions narrows a course summary.
type RosterOptions struct {
	// Period keeps only payments of that period. Empty keeps all.
	Period core.PaymentPeriod
	// CustomLimit, when positive, replaces the goal as the amount expected
	// from each student.
	CustomLimit decimal.Decimal
	// Order sorts each student's payments. Nil keeps input order.
	Order Ordering
}

// StudentRow is one roster line: a student joined with their summary.
type StudentRow struct {
	Student         core.Student    `json:"student"`
	Summary         StudentSummary  `json:"summary"`
	Expected        decimal.Decimal `json:"expected"`
	Difference      decimal.Decimal `json:"difference"`
	Pending         decimal.Decimal `json:"pending"`
	Standing        Standing        `json:"standing"`
	LastPaymentDate core.Date       `json:"last_payment_date,omitempty"`
}

// CourseSummary is the roster view of a course: every student, paid or not,
// plus general totals.
type CourseSummary struct {
	Rows                 []StudentRow    `json:"rows"`
	Limit                decimal.Decimal `json:"limit"`
	TotalCollected       decimal.Decimal `json:"total_collected"`
	TotalExpected        decimal.Decimal `json:"total_expected"`
	Difference           decimal.Decimal `json:"difference"`
	Pending              decimal.Decimal `json:"pending"`
	Standing             Standing        `json:"standing"`
	StudentsWithPayments int             `json:"students_with_payments"`
	TotalStudents        int             `json:"total_students"`
	ExpectedPerStudent   decimal.Decimal `json:"expected_per_student"`
	GoalConfigured       bool            `json:"goal_configured"`
}

// FilterByPeriod returns the payments of one period. An empty period returns
// all payments.
func FilterByPeriod(payments []core.Payment, period core.PaymentPeriod) []core.Payment {
	if period == "" {
		return payments
	}
	out := make([]core.Payment, 0, len(payments))
	for _, p := range payments {
		if p.PaymentPeriod == period {
			out = append(out, p)
		}
	}
	return out
}

// EffectiveLimit is the amount expected from each student.
func EffectiveLimit(goal Goal, customLimit decimal.Decimal) decimal.Decimal {
	if customLimit.IsPositive() {
		return customLimit
	}
	return goal.Total
}

// SummarizeCourse unions the student collection with the per-student
// grouping so that students without payments appear with nothing deposited.
// Payments of students missing from the roster are not counted. Totals are
// taken over the returned rows.
func SummarizeCourse(students []core.Student, payments []core.Payment, goal Goal, opts RosterOptions) CourseSummary {
	limit := EffectiveLimit(goal, opts.CustomLimit)
	studentGoal := Goal{Total: limit, Spent: goal.Spent}
	byStudent := GroupPaymentsByStudent(FilterByPeriod(payments, opts.Period), studentGoal, opts.Order)

	cs := CourseSummary{
		Rows:               make([]StudentRow, 0, len(students)),
		Limit:              limit,
		TotalCollected:     decimal.Zero,
		TotalStudents:      len(students),
		ExpectedPerStudent: ExpectedPerStudent(goal.Total, len(students)),
		GoalConfigured:     goal.Configured,
	}

	for _, s := range students {
		summary, ok := byStudent[s.ID]
		if !ok {
			summary = summarizeStudent(s.ID, nil, studentGoal)
		}
		difference := summary.TotalDeposited.Sub(limit)
		row := StudentRow{
			Student:         s,
			Summary:         summary,
			Expected:        limit,
			Difference:      difference,
			Pending:         positive(difference.Neg()),
			Standing:        standingOf(difference),
			LastPaymentDate: lastPaymentDate(summary.Payments),
		}
		cs.Rows = append(cs.Rows, row)
		cs.TotalCollected = cs.TotalCollected.Add(summary.TotalDeposited)
		if summary.PaymentCount > 0 {
			cs.StudentsWithPayments++
		}
	}

	cs.TotalExpected = limit.Mul(decimal.NewFromInt(int64(len(students))))
	cs.Difference = cs.TotalCollected.Sub(cs.TotalExpected)
	cs.Pending = positive(cs.Difference.Neg())
	cs.Standing = standingOf(cs.Difference)
	return cs
}

// FilterRows applies an export filter to roster rows.
func FilterRows(rows []StudentRow, f ExportFilter) []StudentRow {
	out := make([]StudentRow, 0, len(rows))
	for _, r := range rows {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

// FilterRowsByStatus keeps rows whose reconciliation status is st.
func FilterRowsByStatus(rows []StudentRow, st Status) []StudentRow {
	out := make([]StudentRow, 0, len(rows))
	for _, r := range rows {
		if r.Summary.Status == st {
			out = append(out, r)
		}
	}
	return out
}

func matches(r StudentRow, f ExportFilter) bool {
	switch f {
	case FilterUpToDate:
		return !r.Difference.IsNegative()
	case FilterPending:
		return r.Difference.IsNegative()
	case FilterWithPayments:
		return r.Summary.PaymentCount > 0
	case FilterWithoutPayments:
		return r.Summary.PaymentCount == 0
	default:
		return true
	}
}

// lastPaymentDate is the latest parseable payment date, or the date of the
// last payment when none parses.
func lastPaymentDate(payments []core.Payment) core.Date {
	var (
		latest     time.Time
		latestDate core.Date
	)
	for _, p := range payments {
		if t, ok := p.Date.Parse(); ok && (latestDate == "" || t.After(latest)) {
			latest, latestDate = t, p.Date
		}
	}
	if latestDate == "" && len(payments) > 0 {
		return payments[len(payments)-1].Date
	}
	return latestDate
}
