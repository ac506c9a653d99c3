package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"cuotas/internal/core"
)

// ExpenseAnalysis gathers everything the expense report shows.
type ExpenseAnalysis struct {
	Totals         Totals              `json:"totals"`
	AverageExpense decimal.Decimal     `json:"average_expense"`
	ByCategory     []CategoryBreakdown `json:"by_category"`
	Trend          []MonthlyBucket     `json:"monthly_trend"`
}

// AnalyzeExpenses runs the totals, category and trend computations over the
// same snapshot.
func AnalyzeExpenses(payments []core.Payment, expenses []core.Expense, windowMonths int, ref time.Time) ExpenseAnalysis {
	totals := SummarizeTotals(payments, expenses)
	return ExpenseAnalysis{
		Totals:         totals,
		AverageExpense: totals.AverageExpense(),
		ByCategory:     BreakdownExpensesByCategory(expenses),
		Trend:          MonthlyTrend(expenses, windowMonths, ref),
	}
}
