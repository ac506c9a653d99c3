// Package ports declares the boundaries between the reporting core and the
// adapters that read, write and publish course data.
package ports

import (
	"context"

	"cuotas/internal/core"
)

// Readers. Every list is scoped to one course and returns a non-nil slice.
type (
	CourseReader interface {
		ListCourses(ctx context.Context, activeOnly bool) ([]core.Course, error)
		GetCourse(ctx context.Context, id core.CourseID) (core.Course, error)
	}

	StudentReader interface {
		ListStudents(ctx context.Context, course core.CourseID) ([]core.Student, error)
	}

	PaymentReader interface {
		ListPayments(ctx context.Context, course core.CourseID) ([]core.Payment, error)
	}

	// ExpenseReader returns expenses with their category name resolved.
	ExpenseReader interface {
		ListExpenses(ctx context.Context, course core.CourseID) ([]core.Expense, error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context, course core.CourseID) ([]core.Category, error)
	}

	// GoalReader returns nil, nil when the course has no goal configured.
	GoalReader interface {
		GetGoalConfig(ctx context.Context, course core.CourseID) (*core.GoalConfig, error)
	}

	// LedgerReader is everything a report needs.
	LedgerReader interface {
		CourseReader
		StudentReader
		PaymentReader
		ExpenseReader
		CategoryReader
		GoalReader
		Ping(ctx context.Context) error
	}
)

// Writers. Updates and deletes are scoped by course as well as id and
// return core.ErrNotFound when nothing matched.
type (
	CourseWriter interface {
		CreateCourse(ctx context.Context, c core.Course) (core.Course, error)
	}

	StudentWriter interface {
		CreateStudent(ctx context.Context, s core.Student) (core.Student, error)
		UpdateStudent(ctx context.Context, s core.Student) (core.Student, error)
		DeleteStudent(ctx context.Context, course core.CourseID, id int64) error
	}

	PaymentWriter interface {
		CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
		UpdatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
		DeletePayment(ctx context.Context, course core.CourseID, id int64) error
	}

	ExpenseWriter interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, course core.CourseID, id int64) error
	}

	CategoryWriter interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, course core.CourseID, id int64) error
	}

	GoalWriter interface {
		PutGoalConfig(ctx context.Context, g core.GoalConfig) (core.GoalConfig, error)
	}

	LedgerWriter interface {
		CourseWriter
		StudentWriter
		PaymentWriter
		ExpenseWriter
		CategoryWriter
		GoalWriter
	}
)

// ReportPublisher asks the export worker to refresh a course's reports.
type ReportPublisher interface {
	PublishReportExport(ctx context.Context, course core.CourseID, reason string) error
}
