package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	FirstPeriod  PaymentPeriod = "first"
	SecondPeriod PaymentPeriod = "second"
)

const (
	StatusRegistered  PaymentStatus = "Registrado"
	StatusCredited    PaymentStatus = "Acreditado"
	StatusNotCredited PaymentStatus = "Registrado/Sin acreditar"
)

// DefaultPaymentStatus is assigned to payments created without a status.
const DefaultPaymentStatus = StatusRegistered

type (
	// CourseID scopes every read and every report. It is always passed
	// explicitly; nothing in the module keeps a "current course".
	CourseID int64

	PaymentPeriod string
	PaymentStatus string

	Course struct {
		ID       CourseID `json:"id"`
		Level    string   `json:"level"`
		Parallel string   `json:"parallel"`
		Active   bool     `json:"active"`
	}

	Student struct {
		ID       int64    `json:"id"`
		Name     string   `json:"name"`
		Email    string   `json:"email"`
		CourseID CourseID `json:"course_id"`
	}

	Payment struct {
		ID            int64         `json:"id"`
		StudentID     int64         `json:"student_id"`
		Amount        Amount        `json:"amount"`
		Date          Date          `json:"date"`
		PaymentPeriod PaymentPeriod `json:"payment_period"`
		PaymentStatus PaymentStatus `json:"payment_status"`
		CourseID      CourseID      `json:"course_id"`
	}

	Expense struct {
		ID          int64    `json:"id"`
		CategoryID  int64    `json:"category_id"`
		Category    string   `json:"category"` // resolved category name
		Amount      Amount   `json:"amount"`
		Date        Date     `json:"date"`
		Description string   `json:"description"`
		Observation string   `json:"observation"`
		CourseID    CourseID `json:"course_id"`
	}

	Category struct {
		ID          int64    `json:"id"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		BaseAmount  Amount   `json:"base_amount,omitempty"`
		CourseID    CourseID `json:"course_id"`
	}

	// GoalConfig is the per-course payment target. A course without one is
	// reported with a zero goal.
	GoalConfig struct {
		CourseID       CourseID `json:"course_id"`
		TotalGoal      Amount   `json:"total_goal"`
		TotalSpentGoal Amount   `json:"total_spent_goal,omitempty"`
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidPeriod        = errors.New("invalid payment period")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidCourse        = errors.New("invalid course")
	ErrInvalidStudent       = errors.New("invalid student")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyName            = errors.New("empty name")
	ErrDuplicateCategory    = errors.New("category name already exists in course")
	ErrCategoryInUse        = errors.New("category has expenses")
	ErrNotFound             = errors.New("not found")
	ErrReadOnly             = errors.New("backend is read-only")
)

func (c CourseID) Validate() error {
	if c <= 0 {
		return ErrInvalidCourse
	}
	return nil
}

func (c Course) Validate() error {
	if strings.TrimSpace(c.Level) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c CourseID) String() string {
	return fmt.Sprintf("%d", int64(c))
}

// DisplayName renders the course as "level - parallel", falling back to the
// numeric id when the course has no level.
func (c Course) DisplayName() string {
	level := strings.TrimSpace(c.Level)
	parallel := strings.TrimSpace(c.Parallel)
	switch {
	case level == "":
		return "Curso " + c.ID.String()
	case parallel == "":
		return level
	default:
		return level + " - " + parallel
	}
}

func (p PaymentPeriod) IsValid() bool {
	return p == FirstPeriod || p == SecondPeriod
}

func (p PaymentPeriod) Label() string {
	switch p {
	case FirstPeriod:
		return "Primer Período"
	case SecondPeriod:
		return "Segundo Período"
	default:
		return string(p)
	}
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusRegistered, StatusCredited, StatusNotCredited:
		return true
	default:
		return false
	}
}

func (s Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	return s.CourseID.Validate()
}

func (p Payment) Validate() error {
	if p.StudentID <= 0 {
		return ErrInvalidStudent
	}
	if err := p.CourseID.Validate(); err != nil {
		return err
	}
	if _, err := ParsePositiveAmount(string(p.Amount)); err != nil {
		return err
	}
	if _, ok := p.Date.Parse(); !ok {
		return ErrInvalidDate
	}
	if !p.PaymentPeriod.IsValid() {
		return ErrInvalidPeriod
	}
	if p.PaymentStatus != "" && !p.PaymentStatus.IsValid() {
		return ErrInvalidPaymentStatus
	}
	return nil
}

func (e Expense) Validate() error {
	if e.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	if err := e.CourseID.Validate(); err != nil {
		return err
	}
	if _, err := ParsePositiveAmount(string(e.Amount)); err != nil {
		return err
	}
	if _, ok := e.Date.Parse(); !ok {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.BaseAmount != "" {
		if _, err := ParseNonNegativeAmount(string(c.BaseAmount)); err != nil {
			return err
		}
	}
	return c.CourseID.Validate()
}

func (g GoalConfig) Validate() error {
	if err := g.CourseID.Validate(); err != nil {
		return err
	}
	if _, err := ParseNonNegativeAmount(string(g.TotalGoal)); err != nil {
		return fmt.Errorf("total goal: %w", err)
	}
	if g.TotalSpentGoal != "" {
		if _, err := ParseNonNegativeAmount(string(g.TotalSpentGoal)); err != nil {
			return fmt.Errorf("total spent goal: %w", err)
		}
	}
	return nil
}
