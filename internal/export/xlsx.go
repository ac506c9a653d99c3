package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary        = "Resumen"
	sheetExpenseDetail  = "Detalle de Gastos"
	sheetMonthlyTrend   = "Tendencia Mensual"
	sheetPaymentSummary = "Resumen de Pagos"
	sheetStudentStatus  = "Student Payments"
)

func writeExpenseXLSX(w io.Writer, r ExpenseReport) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := [][]any{
		{"ESTADÍSTICAS FINANCIERAS", ""},
	}
	for _, s := range statRows(r.Analysis) {
		summary = append(summary, []any{s[0], s[1]})
	}
	summary = append(summary,
		[]any{"", ""},
		[]any{"GASTOS POR CATEGORÍA", ""},
		[]any{"Categoría", "Monto", "Porcentaje", "Cantidad de Gastos"},
	)
	for _, c := range r.Analysis.ByCategory {
		summary = append(summary, []any{categoryName(c.Category), money(c.Amount), percent(c.Percentage), c.Count})
	}
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRows(f, sheetSummary, summary); err != nil {
		return err
	}

	if len(r.Expenses) > 0 {
		detail := [][]any{{"FECHA", "CATEGORÍA", "DESCRIPCIÓN", "MONTO", "OBSERVACIÓN"}}
		for _, e := range r.Expenses {
			detail = append(detail, []any{
				string(e.Date), categoryName(e.Category), e.Description, money(e.Amount.Decimal()), e.Observation,
			})
		}
		if err := addSheet(f, sheetExpenseDetail, detail); err != nil {
			return err
		}
	}

	if len(r.Analysis.Trend) > 0 {
		trend := [][]any{{"MES", "MONTO GASTADO"}}
		for _, b := range r.Analysis.Trend {
			trend = append(trend, []any{b.Label, money(b.Total)})
		}
		if err := addSheet(f, sheetMonthlyTrend, trend); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writePaymentXLSX(w io.Writer, r PaymentReport) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{toAny(paymentHeader)}
	for _, row := range paymentRows(r) {
		rows = append(rows, toAny(row))
	}
	if err := f.SetSheetName("Sheet1", sheetPaymentSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRows(f, sheetPaymentSummary, rows); err != nil {
		return err
	}

	status := [][]any{{
		"ID Estudiante", "Nombre", "Total Depositado", "Meta", "Diferencia Meta",
		"Diferencia Gasto", "Total a Devolver", "Estado",
	}}
	for _, row := range r.Rows {
		s := row.Summary
		status = append(status, []any{
			row.Student.ID, row.Student.Name, money(s.TotalDeposited), money(s.TotalGoal),
			money(s.DiffVsGoal), money(s.DiffVsSpent), money(s.TotalToRefund), string(s.Status),
		})
	}
	if err := addSheet(f, sheetStudentStatus, status); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	return setRows(f, name, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
