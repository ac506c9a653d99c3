package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cuotas/internal/core"
	"cuotas/internal/reconcile"
)

var generatedAt = time.Date(2025, 3, 15, 10, 4, 5, 0, time.UTC)

func expenseFixture() ExpenseReport {
	payments := []core.Payment{{StudentID: 1, Amount: "150"}}
	expenses := []core.Expense{
		{Category: "Materiales", Amount: "40", Date: "2025-03-02", Description: "Cartulinas y marcadores para la feria", Observation: "factura 12"},
		{Category: "", Amount: "60", Date: "2025-02-10", Description: "Bus"},
	}
	return ExpenseReport{
		Course:      core.Course{ID: 4, Level: "3ro", Parallel: "B"},
		GeneratedAt: generatedAt,
		Analysis:    reconcile.AnalyzeExpenses(payments, expenses, 6, generatedAt),
		Expenses:    expenses,
	}
}

func paymentFixture(filter reconcile.ExportFilter) PaymentReport {
	students := []core.Student{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Bruno"}}
	payments := []core.Payment{
		{StudentID: 1, Amount: "60", Date: "2025-03-01", PaymentPeriod: core.FirstPeriod},
		{StudentID: 2, Amount: "25.5", Date: "2025-03-04", PaymentPeriod: core.FirstPeriod},
	}
	summary := reconcile.SummarizeCourse(students, payments, reconcile.Goal{Total: decimal.NewFromInt(60)}, reconcile.RosterOptions{})
	return PaymentReport{
		Course:      core.Course{ID: 4, Level: "3ro", Parallel: "B"},
		GeneratedAt: generatedAt,
		Filter:      filter,
		Summary:     summary,
		Rows:        reconcile.FilterRows(summary.Rows, filter),
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("docx")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "reporte_gastos_3ro_-_B_2025-03-15.xlsx", ExpenseFileName(expenseFixture(), FormatXLSX))
	assert.Equal(t, "Resumen_Pagos_Pendientes_2025-03-15_10-04-05.csv", PaymentFileName(paymentFixture(reconcile.FilterPending), FormatCSV))
}

func TestWriteExpenseReport_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExpenseReport(&buf, FormatXLSX, expenseFixture()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Resumen", "Detalle de Gastos", "Tendencia Mensual"}, f.GetSheetList())

	summary, err := f.GetRows("Resumen")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Gastos", "$100.00"}, summary[1])
	assert.Equal(t, []string{"Balance Neto", "$50.00"}, summary[3])
	assert.Equal(t, []string{"Gastos Promedio", "$50.00"}, summary[4])
	assert.Equal(t, []string{"Sin categoría", "$60.00", "60.00%", "1"}, summary[8])
	assert.Equal(t, []string{"Materiales", "$40.00", "40.00%", "1"}, summary[9])

	detail, err := f.GetRows("Detalle de Gastos")
	require.NoError(t, err)
	require.Len(t, detail, 3)
	assert.Equal(t, "factura 12", detail[1][4])

	trend, err := f.GetRows("Tendencia Mensual")
	require.NoError(t, err)
	require.Len(t, trend, 7)
	assert.Equal(t, []string{"mar 2025", "$40.00"}, trend[6])
	assert.Equal(t, []string{"feb 2025", "$60.00"}, trend[5])
}

func TestWriteExpenseReport_XLSXWithoutExpenses(t *testing.T) {
	r := ExpenseReport{Course: core.Course{ID: 1}, GeneratedAt: generatedAt}

	var buf bytes.Buffer
	require.NoError(t, WriteExpenseReport(&buf, FormatXLSX, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Resumen"}, f.GetSheetList())
}

func TestWriteExpenseReport_PDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExpenseReport(&buf, FormatPDF, expenseFixture()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteExpenseReport_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExpenseReport(&buf, FormatCSV, expenseFixture()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "ESTADÍSTICAS FINANCIERAS\nConcepto,Monto\nTotal Gastos,$100.00\n"))
	assert.Contains(t, out, "GASTOS POR CATEGORÍA\nCategoría,Monto,Porcentaje,Cantidad\nSin categoría,$60.00,60.00%,1\n")
	assert.Contains(t, out, "TENDENCIA MENSUAL\nMes,Monto\noct 2024,$0.00\n")
	assert.True(t, strings.HasSuffix(out, "mar 2025,$40.00\n"))
}

func TestWritePaymentReport_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePaymentReport(&buf, FormatXLSX, paymentFixture(reconcile.FilterAll)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Resumen de Pagos", "Student Payments"}, f.GetSheetList())

	rows, err := f.GetRows("Resumen de Pagos")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, paymentHeader, rows[0])
	assert.Equal(t, []string{"1", "Ana", "60.00", "60.00", "0.00", "Al día", "0.00", "1", "01/03/2025"}, rows[1])
	assert.Equal(t, []string{"2", "Bruno", "25.50", "60.00", "-34.50", "Pendiente", "34.50", "1", "04/03/2025"}, rows[2])
	assert.Equal(t, []string{"TOTAL GENERAL", "RESUMEN GENERAL", "85.50", "120.00", "-34.50", "Pendiente", "34.50", "2"}, rows[3])

	status, err := f.GetRows("Student Payments")
	require.NoError(t, err)
	assert.Equal(t, "Completado", status[1][7])
	assert.Equal(t, "Falta completar", status[2][7])
}

func TestWritePaymentReport_CSVFiltered(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePaymentReport(&buf, FormatCSV, paymentFixture(reconcile.FilterUpToDate)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Ana", records[1][1])
	// the general total ignores the filter
	assert.Equal(t, "85.50", records[2][2])
}

func TestWritePaymentReport_PDFUnsupported(t *testing.T) {
	var buf bytes.Buffer
	err := WritePaymentReport(&buf, FormatPDF, paymentFixture(reconcile.FilterAll))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "Bus", shorten("Bus"))
	assert.Equal(t, "Cartulinas y marcadores p...", shorten("Cartulinas y marcadores para la feria"))
}

func TestTables(t *testing.T) {
	pt := PaymentTable(paymentFixture(reconcile.FilterAll))
	require.Len(t, pt, 4)
	assert.Equal(t, paymentHeader, pt[0])
	assert.Equal(t, "TOTAL GENERAL", pt[3][0])

	st := ExpenseSummaryTable(expenseFixture())
	assert.Equal(t, []string{"Total Gastos", "$100.00"}, st[1])
	assert.Equal(t, []string{"Materiales", "$40.00", "40.00%", "1"}, st[len(st)-1])

	tt := TrendTable(expenseFixture())
	require.Len(t, tt, 7)
	assert.Equal(t, []string{"mar 2025", "$40.00"}, tt[6])
}
