package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuotas/internal/core"
)

func rosterFixture() ([]core.Student, []core.Payment) {
	students := []core.Student{
		{ID: 1, Name: "Ana", CourseID: 4},
		{ID: 2, Name: "Bruno", CourseID: 4},
		{ID: 3, Name: "Carla", CourseID: 4},
	}
	payments := []core.Payment{
		{ID: 10, StudentID: 1, Amount: "50", Date: "2025-03-01", PaymentPeriod: core.FirstPeriod},
		{ID: 11, StudentID: 1, Amount: "10", Date: "2025-08-01", PaymentPeriod: core.SecondPeriod},
		{ID: 12, StudentID: 2, Amount: "30", Date: "2025-03-05", PaymentPeriod: core.FirstPeriod},
		{ID: 13, StudentID: 99, Amount: "20", Date: "2025-03-05", PaymentPeriod: core.FirstPeriod},
	}
	return students, payments
}

func TestSummarizeCourse(t *testing.T) {
	students, payments := rosterFixture()

	cs := SummarizeCourse(students, payments, Goal{Total: dec("60")}, RosterOptions{})

	require.Len(t, cs.Rows, 3)
	ana, bruno, carla := cs.Rows[0], cs.Rows[1], cs.Rows[2]

	assertDec(t, "60", ana.Summary.TotalDeposited)
	assert.Equal(t, StatusComplete, ana.Summary.Status)
	assert.Equal(t, StandingUpToDate, ana.Standing)
	assert.Equal(t, core.Date("2025-08-01"), ana.LastPaymentDate)

	assertDec(t, "-30", bruno.Difference)
	assertDec(t, "30", bruno.Pending)
	assert.Equal(t, StandingPending, bruno.Standing)

	assert.Equal(t, 0, carla.Summary.PaymentCount)
	assert.NotNil(t, carla.Summary.Payments)
	assertDec(t, "0", carla.Summary.TotalDeposited)
	assert.Equal(t, StatusShort, carla.Summary.Status)
	assert.Equal(t, core.Date(""), carla.LastPaymentDate)

	assertDec(t, "90", cs.TotalCollected)
	assertDec(t, "180", cs.TotalExpected)
	assertDec(t, "-90", cs.Difference)
	assertDec(t, "90", cs.Pending)
	assert.Equal(t, StandingPending, cs.Standing)
	assert.Equal(t, 2, cs.StudentsWithPayments)
	assert.Equal(t, 3, cs.TotalStudents)
	assertDec(t, "20", cs.ExpectedPerStudent)
}

func TestSummarizeCourse_PeriodFilter(t *testing.T) {
	students, payments := rosterFixture()

	cs := SummarizeCourse(students, payments, Goal{Total: dec("60")}, RosterOptions{Period: core.FirstPeriod})

	assertDec(t, "50", cs.Rows[0].Summary.TotalDeposited)
	assert.Equal(t, 1, cs.Rows[0].Summary.PaymentCount)
	assertDec(t, "80", cs.TotalCollected)
}

func TestSummarizeCourse_CustomLimit(t *testing.T) {
	students, payments := rosterFixture()

	cs := SummarizeCourse(students, payments, Goal{Total: dec("60")}, RosterOptions{CustomLimit: dec("30")})

	assertDec(t, "30", cs.Limit)
	assert.Equal(t, StatusOverpaid, cs.Rows[0].Summary.Status)
	assert.Equal(t, StatusComplete, cs.Rows[1].Summary.Status)
	assertDec(t, "90", cs.TotalExpected)
	assertDec(t, "0", cs.Difference)
	assert.Equal(t, StandingUpToDate, cs.Standing)
	// the per-student split still follows the configured goal
	assertDec(t, "20", cs.ExpectedPerStudent)
}

func TestSummarizeCourse_NoStudents(t *testing.T) {
	cs := SummarizeCourse(nil, []core.Payment{}, Goal{Total: dec("60")}, RosterOptions{})

	assert.Empty(t, cs.Rows)
	assert.True(t, cs.TotalExpected.IsZero())
	assert.True(t, cs.ExpectedPerStudent.IsZero())
	assert.False(t, cs.GoalConfigured)
}

func TestFilterRows(t *testing.T) {
	students, payments := rosterFixture()
	rows := SummarizeCourse(students, payments, Goal{Total: dec("60")}, RosterOptions{}).Rows

	ids := func(rs []StudentRow) []int64 {
		out := make([]int64, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.Student.ID)
		}
		return out
	}

	tests := []struct {
		filter ExportFilter
		want   []int64
	}{
		{FilterAll, []int64{1, 2, 3}},
		{FilterUpToDate, []int64{1}},
		{FilterPending, []int64{2, 3}},
		{FilterWithPayments, []int64{1, 2}},
		{FilterWithoutPayments, []int64{3}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterRows(rows, tt.filter)))
		})
	}

	assert.Equal(t, []int64{2, 3}, ids(FilterRowsByStatus(rows, StatusShort)))
}

func TestParseExportFilter(t *testing.T) {
	f, err := ParseExportFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseExportFilter("without_payments")
	require.NoError(t, err)
	assert.Equal(t, "Sin_Pagos", f.FileLabel())

	_, err = ParseExportFilter("late")
	assert.Error(t, err)
}

func TestFilterByPeriod(t *testing.T) {
	_, payments := rosterFixture()

	assert.Len(t, FilterByPeriod(payments, ""), 4)
	assert.Len(t, FilterByPeriod(payments, core.SecondPeriod), 1)
	assert.NotNil(t, FilterByPeriod([]core.Payment{}, core.SecondPeriod))
}

func TestEffectiveLimit(t *testing.T) {
	g := Goal{Total: dec("60")}
	assertDec(t, "60", EffectiveLimit(g, decimal.Zero))
	assertDec(t, "60", EffectiveLimit(g, dec("-5")))
	assertDec(t, "45", EffectiveLimit(g, dec("45")))
}
