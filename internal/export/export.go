// Package export renders course reports as downloadable files.
//
// Two reports exist. The expense report carries the balance, the category
// breakdown, the monthly trend and the expense detail. The payment summary
// carries one line per student plus a general total. Layouts (sheet names,
// column titles, file names) follow what the course administrators already
// use, so they are in Spanish.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cuotas/internal/core"
	"cuotas/internal/reconcile"
)

// Format is an output file type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts xlsx, pdf and csv, case-insensitively. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatPDF, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// ExpenseReport is the input of the expense export.
type ExpenseReport struct {
	Course      core.Course
	GeneratedAt time.Time
	Analysis    reconcile.ExpenseAnalysis
	Expenses    []core.Expense
}

// PaymentReport is the input of the payment summary export. Rows are already
// filtered; Summary keeps the unfiltered general totals.
type PaymentReport struct {
	Course      core.Course
	GeneratedAt time.Time
	Filter      reconcile.ExportFilter
	Summary     reconcile.CourseSummary
	Rows        []reconcile.StudentRow
}

// WriteExpenseReport renders r in format f.
func WriteExpenseReport(w io.Writer, f Format, r ExpenseReport) error {
	switch f {
	case FormatXLSX:
		return writeExpenseXLSX(w, r)
	case FormatPDF:
		return writeExpensePDF(w, r)
	case FormatCSV:
		return writeExpenseCSV(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// WritePaymentReport renders r in format f. PDF is not offered for the
// payment summary.
func WritePaymentReport(w io.Writer, f Format, r PaymentReport) error {
	switch f {
	case FormatXLSX:
		return writePaymentXLSX(w, r)
	case FormatCSV:
		return writePaymentCSV(w, r)
	default:
		return fmt.Errorf("%w for payment summary: %q", ErrUnsupportedFormat, f)
	}
}

// ExpenseFileName is e.g. "reporte_gastos_3ro_-_B_2025-03-15.pdf".
func ExpenseFileName(r ExpenseReport, f Format) string {
	course := strings.Join(strings.Fields(r.Course.DisplayName()), "_")
	return fmt.Sprintf("reporte_gastos_%s_%s.%s", course, r.GeneratedAt.Format("2006-01-02"), f)
}

// PaymentFileName is e.g. "Resumen_Pagos_Pendientes_2025-03-15_10-04-05.xlsx".
func PaymentFileName(r PaymentReport, f Format) string {
	return fmt.Sprintf("Resumen_Pagos_%s_%s.%s", r.Filter.FileLabel(), r.GeneratedAt.Format("2006-01-02_15-04-05"), f)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

func categoryName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Sin categoría"
	}
	return name
}

func statRows(a reconcile.ExpenseAnalysis) [][]string {
	return [][]string{
		{"Total Gastos", money(a.Totals.TotalExpenses)},
		{"Total Ingresos", money(a.Totals.TotalPayments)},
		{"Balance Neto", money(a.Totals.NetBalance)},
		{"Gastos Promedio", money(a.AverageExpense)},
	}
}

var paymentHeader = []string{
	"ID Estudiante", "Nombre", "Total Pagado", "Total Esperado", "Diferencia",
	"Estado", "Monto Pendiente", "Número de Pagos", "Último Pago",
}

// paymentRows returns one line per row followed by the general total line.
func paymentRows(r PaymentReport) [][]string {
	out := make([][]string, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		last := "Sin pagos"
		if row.Summary.PaymentCount > 0 {
			last = row.LastPaymentDate.Display()
		}
		out = append(out, []string{
			fmt.Sprintf("%d", row.Student.ID),
			row.Student.Name,
			row.Summary.TotalDeposited.StringFixed(2),
			row.Expected.StringFixed(2),
			row.Difference.StringFixed(2),
			string(row.Standing),
			row.Pending.StringFixed(2),
			fmt.Sprintf("%d", row.Summary.PaymentCount),
			last,
		})
	}
	s := r.Summary
	out = append(out, []string{
		"TOTAL GENERAL",
		"RESUMEN GENERAL",
		s.TotalCollected.StringFixed(2),
		s.TotalExpected.StringFixed(2),
		s.Difference.StringFixed(2),
		string(s.Standing),
		s.Pending.StringFixed(2),
		fmt.Sprintf("%d", s.StudentsWithPayments),
		"",
	})
	return out
}
