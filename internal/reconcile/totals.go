// Package reconcile turns a course snapshot (payments, expenses, students and
// the goal configuration) into the summaries shown on the dashboard and
// written to exports.
//
// Every function here is pure: no I/O, no caching, no shared state. Inputs are
// treated as immutable and are already scoped to one course by the caller.
// Amounts go through core.ParseAmount, so a malformed record contributes zero
// instead of failing the whole summary. Misuse by the caller, such as a nil
// payment collection or a non-positive trend window, panics.
package reconcile

import (
	"github.com/shopspring/decimal"

	"cuotas/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Totals is the course-wide balance.
type Totals struct {
	TotalPayments decimal.Decimal `json:"total_payments"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetBalance    decimal.Decimal `json:"net_balance"`
	PaymentCount  int             `json:"payment_count"`
	ExpenseCount  int             `json:"expense_count"`
}

// AverageExpense is TotalExpenses over the expense count, with an empty
// course dividing by one.
func (t Totals) AverageExpense() decimal.Decimal {
	n := t.ExpenseCount
	if n < 1 {
		n = 1
	}
	return t.TotalExpenses.Div(decimal.NewFromInt(int64(n)))
}

// SummarizeTotals sums both collections independently. The result does not
// depend on input order.
func SummarizeTotals(payments []core.Payment, expenses []core.Expense) Totals {
	t := Totals{
		TotalPayments: sumPayments(payments),
		TotalExpenses: sumExpenses(expenses),
		PaymentCount:  len(payments),
		ExpenseCount:  len(expenses),
	}
	t.NetBalance = t.TotalPayments.Sub(t.TotalExpenses)
	return t
}

// ExpectedPerStudent splits the course goal evenly. A course without
// students expects nothing.
func ExpectedPerStudent(totalGoal decimal.Decimal, studentCount int) decimal.Decimal {
	if studentCount < 0 {
		panic("reconcile: negative student count")
	}
	if studentCount == 0 {
		return decimal.Zero
	}
	return totalGoal.Div(decimal.NewFromInt(int64(studentCount)))
}

func sumPayments(payments []core.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount.Decimal())
	}
	return total
}

func sumExpenses(expenses []core.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount.Decimal())
	}
	return total
}
