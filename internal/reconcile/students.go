package reconcile

import (
	"slices"

	"github.com/shopspring/decimal"

	"cuotas/internal/core"
)

// Status classifies a student's deposits against the goal.
type Status string

const (
	StatusOverpaid Status = "Completado/Devolver"
	StatusComplete Status = "Completado"
	StatusShort    Status = "Falta completar"
)

// ParseStatus accepts one of the three status labels.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusOverpaid, StatusComplete, StatusShort:
		return st, true
	default:
		return "", false
	}
}

// Goal holds the per-student targets. The zero value stands for a course
// with no goal configured.
type Goal struct {
	Total decimal.Decimal
	Spent decimal.Decimal
	// Configured is false when the course has no goal stored, so callers can
	// ask for one instead of showing everyone as up to date.
	Configured bool
}

// NewGoal reads a stored configuration. A nil config yields the zero goal.
func NewGoal(cfg *core.GoalConfig) Goal {
	if cfg == nil {
		return Goal{}
	}
	return Goal{
		Total:      cfg.TotalGoal.Decimal(),
		Spent:      cfg.TotalSpentGoal.Decimal(),
		Configured: true,
	}
}

// StudentSummary is the reconciliation of one student's payments.
type StudentSummary struct {
	StudentID      int64           `json:"student_id"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	TotalGoal      decimal.Decimal `json:"total_goal"`
	DiffVsGoal     decimal.Decimal `json:"diff_vs_goal"`
	DiffVsSpent    decimal.Decimal `json:"diff_vs_spent"`
	TotalToRefund  decimal.Decimal `json:"total_to_refund"`
	Status         Status          `json:"status"`
	Payments       []core.Payment  `json:"payments"`
	PaymentCount   int             `json:"payment_count"`
}

// Ordering compares two payments of the same student. It follows the
// slices.SortStableFunc contract.
type Ordering func(a, b core.Payment) int

// ByDate orders payments oldest first. Payments with unparseable dates sort
// after dated ones and keep their relative order.
func ByDate(a, b core.Payment) int {
	ta, okA := a.Date.Parse()
	tb, okB := b.Date.Parse()
	switch {
	case okA && okB:
		return ta.Compare(tb)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

// Classify compares deposits to the goal at cent precision, truncating both
// sides so that 99.999 never counts as 100.
func Classify(deposited, goal decimal.Decimal) Status {
	switch core.Truncate2(deposited).Cmp(core.Truncate2(goal)) {
	case 1:
		return StatusOverpaid
	case 0:
		return StatusComplete
	default:
		return StatusShort
	}
}

// GroupPaymentsByStudent builds one summary per student_id found in
// payments. Each summary keeps its payments in the given order, or in input
// order when order is nil. Students without payments do not appear; see
// SummarizeCourse for the roster view.
func GroupPaymentsByStudent(payments []core.Payment, goal Goal, order Ordering) map[int64]StudentSummary {
	if payments == nil {
		panic("reconcile: nil payments collection")
	}

	grouped := make(map[int64][]core.Payment)
	for _, p := range payments {
		grouped[p.StudentID] = append(grouped[p.StudentID], p)
	}

	out := make(map[int64]StudentSummary, len(grouped))
	for id, ps := range grouped {
		if order != nil {
			slices.SortStableFunc(ps, order)
		}
		out[id] = summarizeStudent(id, ps, goal)
	}
	return out
}

// summarizeStudent computes the summary of a single student's payments,
// which may be empty.
func summarizeStudent(studentID int64, payments []core.Payment, goal Goal) StudentSummary {
	deposited := sumPayments(payments)
	diffGoal := core.Truncate2(deposited).Sub(core.Truncate2(goal.Total))
	// diff_vs_spent is intentionally not truncated.
	diffSpent := deposited.Sub(goal.Spent)

	if payments == nil {
		payments = []core.Payment{}
	}

	return StudentSummary{
		StudentID:      studentID,
		TotalDeposited: deposited,
		TotalGoal:      goal.Total,
		DiffVsGoal:     diffGoal,
		DiffVsSpent:    diffSpent,
		TotalToRefund:  positive(diffGoal).Add(positive(diffSpent)),
		Status:         Classify(deposited, goal.Total),
		Payments:       payments,
		PaymentCount:   len(payments),
	}
}

func positive(d decimal.Decimal) decimal.Decimal {
	if d.IsPositive() {
		return d
	}
	return decimal.Zero
}
