package reconcile

import (
	"github.com/shopspring/decimal"

	"cuotas/internal/core"
)

// StudentExpenseShare is one student's part of the course spending.
type StudentExpenseShare struct {
	Student      core.Student               `json:"student"`
	ByCategory   map[string]decimal.Decimal `json:"by_category"`
	TotalExpense decimal.Decimal            `json:"total_expense"`
}

// ExpenseShares pivots course spending per student. Categories lists the
// category names in the order they were first seen, one column each.
type ExpenseShares struct {
	Categories []string              `json:"categories"`
	Rows       []StudentExpenseShare `json:"rows"`
}

// ExpensesPerStudent splits every expense evenly across the roster. Each
// share is rounded to cents, so the shares of one expense may differ from
// its amount by less than a cent per student. Students appear in roster
// order; a course without students has no rows but still lists its
// categories.
func ExpensesPerStudent(students []core.Student, expenses []core.Expense) ExpenseShares {
	out := ExpenseShares{
		Categories: make([]string, 0),
		Rows:       make([]StudentExpenseShare, 0, len(students)),
	}

	seen := make(map[string]bool)
	for _, e := range expenses {
		if !seen[e.Category] {
			seen[e.Category] = true
			out.Categories = append(out.Categories, e.Category)
		}
	}

	if len(students) == 0 {
		return out
	}
	n := decimal.NewFromInt(int64(len(students)))

	// a student's share of a category is the sum of the rounded shares of
	// its expenses, matching what each expense line shows
	shares := make(map[string]decimal.Decimal, len(out.Categories))
	for _, c := range out.Categories {
		shares[c] = decimal.Zero
	}
	for _, e := range expenses {
		shares[e.Category] = shares[e.Category].Add(e.Amount.Decimal().DivRound(n, 2))
	}

	for _, s := range students {
		row := StudentExpenseShare{
			Student:      s,
			ByCategory:   make(map[string]decimal.Decimal, len(out.Categories)),
			TotalExpense: decimal.Zero,
		}
		for _, c := range out.Categories {
			row.ByCategory[c] = shares[c]
			row.TotalExpense = row.TotalExpense.Add(shares[c])
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
