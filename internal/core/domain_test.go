package core

import (
	"errors"
	"testing"
)

func TestPaymentValidate(t *testing.T) {
	good := Payment{
		StudentID:     1,
		CourseID:      3,
		Amount:        "50.00",
		Date:          "2025-03-01",
		PaymentPeriod: FirstPeriod,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		p    Payment
		want error
	}{
		{Payment{CourseID: 3, Amount: "1", Date: "2025-03-01", PaymentPeriod: FirstPeriod}, ErrInvalidStudent},
		{Payment{StudentID: 1, Amount: "1", Date: "2025-03-01", PaymentPeriod: FirstPeriod}, ErrInvalidCourse},
		{Payment{StudentID: 1, CourseID: 3, Amount: "0", Date: "2025-03-01", PaymentPeriod: FirstPeriod}, ErrInvalidAmount},
		{Payment{StudentID: 1, CourseID: 3, Amount: "1", Date: "yesterday", PaymentPeriod: FirstPeriod}, ErrInvalidDate},
		{Payment{StudentID: 1, CourseID: 3, Amount: "1", Date: "2025-03-01", PaymentPeriod: "third"}, ErrInvalidPeriod},
		{Payment{StudentID: 1, CourseID: 3, Amount: "1", Date: "2025-03-01", PaymentPeriod: SecondPeriod, PaymentStatus: "Pagado"}, ErrInvalidPaymentStatus},
	}
	for i, tc := range bads {
		if err := tc.p.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{CategoryID: 2, CourseID: 3, Amount: "12,50", Date: "2025-03-01", Description: "Cartulinas"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{CourseID: 3, Amount: "1", Date: "2025-03-01", Description: "a"},
		{CategoryID: 2, Amount: "1", Date: "2025-03-01", Description: "a"},
		{CategoryID: 2, CourseID: 3, Amount: "x", Date: "2025-03-01", Description: "a"},
		{CategoryID: 2, CourseID: 3, Amount: "1", Date: "", Description: "a"},
		{CategoryID: 2, CourseID: 3, Amount: "1", Date: "2025-03-01", Description: "  "},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryAndGoalValidate(t *testing.T) {
	if err := (Category{Name: "Materiales", CourseID: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: "Materiales", CourseID: 1, BaseAmount: "-5"}).Validate(); err == nil {
		t.Fatalf("expected error for negative base amount")
	}
	if err := (GoalConfig{CourseID: 1, TotalGoal: "0"}).Validate(); err != nil {
		t.Fatalf("zero goal should be valid, got %v", err)
	}
	if err := (GoalConfig{CourseID: 1, TotalGoal: "100", TotalSpentGoal: "abc"}).Validate(); err == nil {
		t.Fatalf("expected error for malformed spent goal")
	}
}

func TestCourseDisplayName(t *testing.T) {
	cases := []struct {
		c    Course
		want string
	}{
		{Course{ID: 1, Level: "3ro", Parallel: "B"}, "3ro - B"},
		{Course{ID: 2, Level: "4to"}, "4to"},
		{Course{ID: 7}, "Curso 7"},
	}
	for _, tc := range cases {
		if got := tc.c.DisplayName(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestPaymentPeriodLabel(t *testing.T) {
	if FirstPeriod.Label() != "Primer Período" || SecondPeriod.Label() != "Segundo Período" {
		t.Fatalf("unexpected period labels")
	}
	if PaymentPeriod("x").IsValid() {
		t.Fatalf("unknown period should be invalid")
	}
}
