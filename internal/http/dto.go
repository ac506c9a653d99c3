package http

import (
	"cuotas/internal/core"
)

// Request bodies. Amounts accept JSON numbers or strings; the services
// round them to cents.

type courseRequest struct {
	Level    string `json:"level" validate:"required,max=50"`
	Parallel string `json:"parallel" validate:"max=20"`
	Active   *bool  `json:"active"`
}

func (req courseRequest) toCourse() core.Course {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return core.Course{
		Level:    sanitizeInput(req.Level),
		Parallel: sanitizeInput(req.Parallel),
		Active:   active,
	}
}

type studentRequest struct {
	CourseID int64  `json:"course_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
}

func (req studentRequest) toStudent(id int64) core.Student {
	return core.Student{
		ID:       id,
		Name:     sanitizeInput(req.Name),
		Email:    sanitizeInput(req.Email),
		CourseID: core.CourseID(req.CourseID),
	}
}

type paymentRequest struct {
	CourseID      int64       `json:"course_id" validate:"required,gt=0"`
	StudentID     int64       `json:"student_id" validate:"required,gt=0"`
	Amount        core.Amount `json:"amount" validate:"required"`
	Date          core.Date   `json:"date" validate:"required"`
	PaymentPeriod string      `json:"payment_period" validate:"required,oneof=first second"`
	PaymentStatus string      `json:"payment_status" validate:"max=40"`
}

func (req paymentRequest) toPayment(id int64) core.Payment {
	return core.Payment{
		ID:            id,
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		Date:          req.Date,
		PaymentPeriod: core.PaymentPeriod(req.PaymentPeriod),
		PaymentStatus: core.PaymentStatus(sanitizeInput(req.PaymentStatus)),
		CourseID:      core.CourseID(req.CourseID),
	}
}

type expenseRequest struct {
	CourseID    int64       `json:"course_id" validate:"required,gt=0"`
	CategoryID  int64       `json:"category_id" validate:"required,gt=0"`
	Amount      core.Amount `json:"amount" validate:"required"`
	Date        core.Date   `json:"date" validate:"required"`
	Description string      `json:"description" validate:"required,max=255"`
	Observation string      `json:"observation" validate:"max=500"`
}

func (req expenseRequest) toExpense(id int64) core.Expense {
	return core.Expense{
		ID:          id,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: sanitizeInput(req.Description),
		Observation: sanitizeInput(req.Observation),
		CourseID:    core.CourseID(req.CourseID),
	}
}

type categoryRequest struct {
	CourseID    int64       `json:"course_id" validate:"required,gt=0"`
	Name        string      `json:"name" validate:"required,max=100"`
	Description string      `json:"description" validate:"max=255"`
	BaseAmount  core.Amount `json:"base_amount"`
}

func (req categoryRequest) toCategory(id int64) core.Category {
	return core.Category{
		ID:          id,
		Name:        sanitizeInput(req.Name),
		Description: sanitizeInput(req.Description),
		BaseAmount:  req.BaseAmount,
		CourseID:    core.CourseID(req.CourseID),
	}
}

type goalRequest struct {
	CourseID       int64       `json:"course_id" validate:"required,gt=0"`
	TotalGoal      core.Amount `json:"total_goal" validate:"required"`
	TotalSpentGoal core.Amount `json:"total_spent_goal"`
}

func (req goalRequest) toGoal() core.GoalConfig {
	return core.GoalConfig{
		CourseID:       core.CourseID(req.CourseID),
		TotalGoal:      req.TotalGoal,
		TotalSpentGoal: req.TotalSpentGoal,
	}
}

type syncRequest struct {
	CourseID int64 `json:"course_id" validate:"required,gt=0"`
}
