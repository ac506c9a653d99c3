package http

import (
	"context"
	"net/http"
	"strings"

	"cuotas/internal/core"
)

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")
	courses, err := s.reader.ListCourses(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(courses).Write(w)
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	course, err := s.ledger.CreateCourse(r.Context(), req.toCourse())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(course).Write(w)
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	course, err := courseParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	students, err := s.reader.ListStudents(r.Context(), course)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(students).Write(w)
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	student, err := s.ledger.CreateStudent(r.Context(), req.toStudent(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(student).Write(w)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	student, err := s.ledger.UpdateStudent(r.Context(), req.toStudent(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(student).Write(w)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.ledger.DeleteStudent)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	course, err := courseParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	payments, err := s.reader.ListPayments(r.Context(), course)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(payments).Write(w)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := s.ledger.CreatePayment(r.Context(), req.toPayment(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(payment).Write(w)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := s.ledger.UpdatePayment(r.Context(), req.toPayment(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(payment).Write(w)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.ledger.DeletePayment)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	course, err := courseParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := s.reader.ListExpenses(r.Context(), course)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(expenses).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := s.ledger.CreateExpense(r.Context(), req.toExpense(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(expense).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := s.ledger.UpdateExpense(r.Context(), req.toExpense(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(expense).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.ledger.DeleteExpense)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	course, err := courseParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	categories, err := s.reader.ListCategories(r.Context(), course)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(categories).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := s.ledger.CreateCategory(r.Context(), req.toCategory(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(category).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := s.ledger.UpdateCategory(r.Context(), req.toCategory(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(category).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.ledger.DeleteCategory)
}

// handleGetGoal answers 404 when the course has no goal configured.
func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	course, err := courseParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goal, err := s.reader.GetGoalConfig(r.Context(), course)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if goal == nil {
		NotFoundError("goal not configured").Write(w)
		return
	}
	NewResponse().JSON(goal).Write(w)
}

func (s *Server) handlePutGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	goal, err := s.ledger.PutGoalConfig(r.Context(), req.toGoal())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(goal).Write(w)
}

// handleDelete reads {id} and the course_id query parameter, then runs del.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, course core.CourseID, id int64) error) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	course, err := courseParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := del(r.Context(), course, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
