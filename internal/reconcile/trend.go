package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cuotas/internal/core"
)

// DefaultTrendMonths is the window used by the dashboard chart.
const DefaultTrendMonths = 6

var shortMonths = [12]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sept", "oct", "nov", "dic",
}

// MonthlyBucket is the spending of one calendar month.
type MonthlyBucket struct {
	Year  int             `json:"year"`
	Month time.Month      `json:"month_number"`
	Label string          `json:"month"`
	Total decimal.Decimal `json:"amount"`
}

// MonthLabel renders a month the way the dashboard does, e.g. "ene 2025".
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", shortMonths[month-1], year)
}

// MonthlyTrend returns exactly windowMonths buckets, oldest first, the last
// one being the calendar month of ref. Months without spending are present
// with a zero total. Expenses whose date cannot be parsed are left out.
func MonthlyTrend(expenses []core.Expense, windowMonths int, ref time.Time) []MonthlyBucket {
	if windowMonths <= 0 {
		panic("reconcile: trend window must be positive")
	}

	first := time.Date(ref.Year(), ref.Month()-time.Month(windowMonths-1), 1, 0, 0, 0, 0, time.UTC)
	buckets := make([]MonthlyBucket, windowMonths)
	for i := range buckets {
		m := first.AddDate(0, i, 0)
		buckets[i] = MonthlyBucket{
			Year:  m.Year(),
			Month: m.Month(),
			Label: MonthLabel(m.Year(), m.Month()),
			Total: decimal.Zero,
		}
	}

	for _, e := range expenses {
		t, ok := e.Date.Parse()
		if !ok {
			continue
		}
		i := monthsBetween(first, t)
		if i < 0 || i >= windowMonths {
			continue
		}
		buckets[i].Total = buckets[i].Total.Add(e.Amount.Decimal())
	}
	return buckets
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
