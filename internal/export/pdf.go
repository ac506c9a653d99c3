package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin      = 20.0
	pdfDetailLimit = 10
	pdfDescLimit   = 25
)

type pdfDoc struct {
	*fpdf.Fpdf
	tr func(string) string
}

func writeExpensePDF(w io.Writer, r ExpenseReport) error {
	doc := &pdfDoc{Fpdf: fpdf.New("P", "mm", "A4", "")}
	doc.tr = doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, 25)
	doc.SetFooterFunc(func() {
		doc.SetY(-20)
		doc.SetFont("Helvetica", "", 8)
		doc.CellFormat(0, 5, doc.tr("Reporte generado automáticamente por cuotas"), "", 0, "L", false, 0, "")
	})
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 10, doc.tr("REPORTE DE ANÁLISIS DE GASTOS"), "", 1, "L", false, 0, "")
	doc.Ln(4)
	doc.SetFont("Helvetica", "", 12)
	doc.CellFormat(0, 7, doc.tr("Curso: "+r.Course.DisplayName()), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, doc.tr("Fecha de generación: "+r.GeneratedAt.Format("02/01/2006")), "", 1, "L", false, 0, "")
	doc.Ln(8)

	doc.section("ESTADÍSTICAS PRINCIPALES")
	doc.table([]string{"Concepto", "Monto"}, []float64{85, 85}, statRows(r.Analysis), 10)

	if len(r.Analysis.ByCategory) > 0 {
		rows := make([][]string, 0, len(r.Analysis.ByCategory))
		for _, c := range r.Analysis.ByCategory {
			rows = append(rows, []string{categoryName(c.Category), money(c.Amount), percent(c.Percentage), fmt.Sprintf("%d", c.Count)})
		}
		doc.section("GASTOS POR CATEGORÍA")
		doc.table([]string{"Categoría", "Monto", "Porcentaje", "Cantidad"}, []float64{70, 35, 35, 30}, rows, 10)
	}

	if len(r.Analysis.Trend) > 0 {
		rows := make([][]string, 0, len(r.Analysis.Trend))
		for _, b := range r.Analysis.Trend {
			rows = append(rows, []string{b.Label, money(b.Total)})
		}
		doc.section(fmt.Sprintf("TENDENCIA MENSUAL (ÚLTIMOS %d MESES)", len(r.Analysis.Trend)))
		doc.table([]string{"Mes", "Monto"}, []float64{85, 85}, rows, 10)
	}

	if len(r.Expenses) > 0 {
		n := min(len(r.Expenses), pdfDetailLimit)
		rows := make([][]string, 0, n)
		for _, e := range r.Expenses[:n] {
			rows = append(rows, []string{e.Date.Display(), categoryName(e.Category), shorten(e.Description), money(e.Amount.Decimal())})
		}
		doc.section(fmt.Sprintf("DETALLE DE GASTOS (PRIMEROS %d)", pdfDetailLimit))
		doc.table([]string{"Fecha", "Categoría", "Descripción", "Monto"}, []float64{30, 45, 65, 30}, rows, 8)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (d *pdfDoc) section(title string) {
	d.SetFont("Helvetica", "B", 14)
	d.CellFormat(0, 8, d.tr(title), "", 1, "L", false, 0, "")
	d.Ln(2)
}

// table draws a grid with a blue header row.
func (d *pdfDoc) table(header []string, widths []float64, rows [][]string, fontSize float64) {
	h := fontSize * 0.7
	d.SetFont("Helvetica", "B", fontSize)
	d.SetFillColor(66, 139, 202)
	d.SetTextColor(255, 255, 255)
	for i, col := range header {
		d.CellFormat(widths[i], h, d.tr(col), "1", 0, "L", true, 0, "")
	}
	d.Ln(-1)

	d.SetFont("Helvetica", "", fontSize)
	d.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for i, cell := range row {
			d.CellFormat(widths[i], h, d.tr(cell), "1", 0, "L", false, 0, "")
		}
		d.Ln(-1)
	}
	d.Ln(8)
}

func shorten(s string) string {
	r := []rune(s)
	if len(r) <= pdfDescLimit {
		return s
	}
	return string(r[:pdfDescLimit]) + "..."
}
