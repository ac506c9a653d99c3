package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuotas/internal/core"
)

func TestExpensesPerStudent(t *testing.T) {
	students := []core.Student{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Bruno"}, {ID: 3, Name: "Carla"}}
	expenses := []core.Expense{
		expense("Materiales", "30", "2025-03-01"),
		expense("Transporte", "10", "2025-03-02"),
		expense("Materiales", "15", "2025-03-03"),
		expense("Transporte", "abc", "2025-03-04"),
	}

	got := ExpensesPerStudent(students, expenses)

	assert.Equal(t, []string{"Materiales", "Transporte"}, got.Categories)
	require.Len(t, got.Rows, 3)
	for i, row := range got.Rows {
		assert.Equal(t, students[i], row.Student)
		assertDec(t, "15", row.ByCategory["Materiales"])
		// 10 / 3 rounds to 3.33; the malformed amount adds nothing
		assertDec(t, "3.33", row.ByCategory["Transporte"])
		assertDec(t, "18.33", row.TotalExpense)
	}
}

func TestExpensesPerStudent_Empty(t *testing.T) {
	got := ExpensesPerStudent([]core.Student{{ID: 1}}, nil)
	assert.Empty(t, got.Categories)
	require.Len(t, got.Rows, 1)
	assert.Empty(t, got.Rows[0].ByCategory)
	assertDec(t, "0", got.Rows[0].TotalExpense)

	got = ExpensesPerStudent(nil, []core.Expense{expense("Materiales", "10", "")})
	assert.Equal(t, []string{"Materiales"}, got.Categories)
	assert.NotNil(t, got.Rows)
	assert.Empty(t, got.Rows)
}

func TestExpensesPerStudent_RoundsEachShare(t *testing.T) {
	students := []core.Student{{ID: 1}, {ID: 2}, {ID: 3}}
	expenses := []core.Expense{expense("Paseo", "0.05", ""), expense("Paseo", "0.05", "")}

	got := ExpensesPerStudent(students, expenses)

	// each 0.05 / 3 = 0.0166.. rounds to 0.02
	assertDec(t, "0.04", got.Rows[0].ByCategory["Paseo"])
}
