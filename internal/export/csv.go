package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

func writeExpenseCSV(w io.Writer, r ExpenseReport) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"ESTADÍSTICAS FINANCIERAS"},
		{"Concepto", "Monto"},
	}
	records = append(records, statRows(r.Analysis)...)
	records = append(records,
		[]string{""},
		[]string{"GASTOS POR CATEGORÍA"},
		[]string{"Categoría", "Monto", "Porcentaje", "Cantidad"},
	)
	for _, c := range r.Analysis.ByCategory {
		records = append(records, []string{categoryName(c.Category), money(c.Amount), percent(c.Percentage), fmt.Sprintf("%d", c.Count)})
	}
	records = append(records,
		[]string{""},
		[]string{"TENDENCIA MENSUAL"},
		[]string{"Mes", "Monto"},
	)
	for _, b := range r.Analysis.Trend {
		records = append(records, []string{b.Label, money(b.Total)})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func writePaymentCSV(w io.Writer, r PaymentReport) error {
	cw := csv.NewWriter(w)
	records := append([][]string{paymentHeader}, paymentRows(r)...)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
