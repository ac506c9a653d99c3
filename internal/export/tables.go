package export

import "fmt"

// Table is a header row followed by data rows, all as display text.
type Table [][]string

// PaymentTable is the "Resumen de Pagos" layout including the general total.
func PaymentTable(r PaymentReport) Table {
	t := Table{paymentHeader}
	return append(t, paymentRows(r)...)
}

// ExpenseSummaryTable holds the financial statistics followed by the
// category breakdown.
func ExpenseSummaryTable(r ExpenseReport) Table {
	t := Table{{"ESTADÍSTICAS FINANCIERAS", ""}}
	t = append(t, statRows(r.Analysis)...)
	t = append(t,
		[]string{"", ""},
		[]string{"GASTOS POR CATEGORÍA", ""},
		[]string{"Categoría", "Monto", "Porcentaje", "Cantidad de Gastos"},
	)
	for _, c := range r.Analysis.ByCategory {
		t = append(t, []string{categoryName(c.Category), money(c.Amount), percent(c.Percentage), fmt.Sprintf("%d", c.Count)})
	}
	return t
}

func TrendTable(r ExpenseReport) Table {
	t := Table{{"MES", "MONTO GASTADO"}}
	for _, b := range r.Analysis.Trend {
		t = append(t, []string{b.Label, money(b.Total)})
	}
	return t
}
