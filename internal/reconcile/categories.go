package reconcile

import (
	"slices"

	"github.com/shopspring/decimal"

	"cuotas/internal/core"
)

// CategoryBreakdown is the share of total spending for one category.
type CategoryBreakdown struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Count      int             `json:"count"`
}

// BreakdownExpensesByCategory groups expenses by their resolved category
// name. Groups are sorted by amount, largest first, with ties kept in the
// order their category was first seen. Amounts are summed exactly, so the
// group amounts add up to the course total; only percentages are divided.
func BreakdownExpensesByCategory(expenses []core.Expense) []CategoryBreakdown {
	total := sumExpenses(expenses)

	index := make(map[string]int)
	groups := make([]CategoryBreakdown, 0)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(groups)
			index[e.Category] = i
			groups = append(groups, CategoryBreakdown{Category: e.Category, Amount: decimal.Zero})
		}
		groups[i].Amount = groups[i].Amount.Add(e.Amount.Decimal())
		groups[i].Count++
	}

	for i := range groups {
		groups[i].Percentage = percentage(groups[i].Amount, total)
	}

	slices.SortStableFunc(groups, func(a, b CategoryBreakdown) int {
		return b.Amount.Cmp(a.Amount)
	})
	return groups
}

func percentage(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total)
}
