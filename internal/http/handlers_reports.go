package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cuotas/internal/core"
	"cuotas/internal/export"
	"cuotas/internal/reconcile"
	"cuotas/internal/services"
)

const maxTrendMonths = 36

type studentReportResponse struct {
	Course      core.Course             `json:"course"`
	GeneratedAt time.Time               `json:"generated_at"`
	Filter      reconcile.ExportFilter  `json:"filter"`
	Summary     reconcile.CourseSummary `json:"summary"`
	Rows        []reconcile.StudentRow  `json:"rows"`
}

type expenseReportResponse struct {
	Course      core.Course               `json:"course"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Analysis    reconcile.ExpenseAnalysis `json:"analysis"`
	Expenses    []core.Expense            `json:"expenses"`
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	course, err := courseParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	totals, err := s.reports.Totals(r.Context(), course)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(totals).Write(w)
}

// studentQuery reads period, limit, filter and status from the query string.
func studentQuery(r *http.Request) (services.StudentQuery, error) {
	q := r.URL.Query()
	var sq services.StudentQuery

	if p := strings.TrimSpace(q.Get("period")); p != "" {
		sq.Period = core.PaymentPeriod(p)
		if !sq.Period.IsValid() {
			return sq, fmt.Errorf("%w: %q", core.ErrInvalidPeriod, p)
		}
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
		if err != nil || limit.IsNegative() {
			return sq, fmt.Errorf("%w: limit must be a non-negative amount", core.ErrInvalidAmount)
		}
		sq.Limit = limit
	}
	filter, err := reconcile.ParseExportFilter(strings.TrimSpace(q.Get("filter")))
	if err != nil {
		return sq, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	sq.Filter = filter
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		st, ok := reconcile.ParseStatus(raw)
		if !ok {
			return sq, fmt.Errorf("%w: unknown status %q", errBadRequest, raw)
		}
		sq.Status = st
	}
	return sq, nil
}

func (s *Server) studentReport(r *http.Request) (export.PaymentReport, error) {
	course, err := courseParam(r)
	if err != nil {
		return export.PaymentReport{}, err
	}
	q, err := studentQuery(r)
	if err != nil {
		return export.PaymentReport{}, err
	}
	return s.reports.Students(r.Context(), course, q)
}

func (s *Server) handleStudentReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.studentReport(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary := rep.Summary
	// the filtered rows travel separately
	summary.Rows = nil
	NewResponse().JSON(studentReportResponse{
		Course:      rep.Course,
		GeneratedAt: rep.GeneratedAt,
		Filter:      rep.Filter,
		Summary:     summary,
		Rows:        nonNilRows(rep.Rows),
	}).Write(w)
}

func (s *Server) handleStudentExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.studentReport(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WritePaymentReport(&buf, format, rep); err != nil {
		writeError(w, r, err)
		return
	}
	s.reports.RecordExport(r.Context(), rep.Course.ID, "students", format, string(rep.Filter))
	sendFile(w, format, export.PaymentFileName(rep, format), buf.Bytes())
}

func (s *Server) expenseReport(r *http.Request) (export.ExpenseReport, error) {
	course, err := courseParam(r)
	if err != nil {
		return export.ExpenseReport{}, err
	}
	months, err := intQuery(r, "months", 1, maxTrendMonths)
	if err != nil {
		return export.ExpenseReport{}, err
	}
	return s.reports.Expenses(r.Context(), course, months)
}

func (s *Server) handleExpenseReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.expenseReport(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(expenseReportResponse{
		Course:      rep.Course,
		GeneratedAt: rep.GeneratedAt,
		Analysis:    rep.Analysis,
		Expenses:    rep.Expenses,
	}).Write(w)
}

func (s *Server) handleExpenseExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.expenseReport(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteExpenseReport(&buf, format, rep); err != nil {
		writeError(w, r, err)
		return
	}
	s.reports.RecordExport(r.Context(), rep.Course.ID, "expenses", format, "")
	sendFile(w, format, export.ExpenseFileName(rep, format), buf.Bytes())
}

// handleExpenseShares answers the dashboard table of spending per student.
func (s *Server) handleExpenseShares(w http.ResponseWriter, r *http.Request) {
	course, err := courseParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.reports.ExpenseShares(r.Context(), course)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(rep).Write(w)
}

// handleSync queues a spreadsheet refresh for one course.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	course := core.CourseID(req.CourseID)
	if _, err := s.reader.GetCourse(r.Context(), course); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.RequestSync(r.Context(), course); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusAccepted).JSON(map[string]any{
		"status":    "queued",
		"course_id": course,
	}).Write(w)
}

// sendFile writes a rendered export as an attachment. The body is buffered
// so a rendering failure can still become a JSON error.
func sendFile(w http.ResponseWriter, format export.Format, name string, body []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func nonNilRows(rows []reconcile.StudentRow) []reconcile.StudentRow {
	if rows == nil {
		return []reconcile.StudentRow{}
	}
	return rows
}
