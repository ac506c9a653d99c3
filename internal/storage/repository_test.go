package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuotas/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "cuotas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedCourse(t *testing.T, repo *SQLiteRepository, level string) core.Course {
	t.Helper()
	c, err := repo.CreateCourse(context.Background(), core.Course{Level: level, Parallel: "A", Active: true})
	require.NoError(t, err)
	return c
}

func TestEmptyCourseListsAreNotNil(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	course := seedCourse(t, repo, "1ro")

	students, err := repo.ListStudents(ctx, course.ID)
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)

	payments, err := repo.ListPayments(ctx, course.ID)
	require.NoError(t, err)
	assert.NotNil(t, payments)

	expenses, err := repo.ListExpenses(ctx, course.ID)
	require.NoError(t, err)
	assert.NotNil(t, expenses)

	categories, err := repo.ListCategories(ctx, course.ID)
	require.NoError(t, err)
	assert.NotNil(t, categories)

	goal, err := repo.GetGoalConfig(ctx, course.ID)
	require.NoError(t, err)
	assert.Nil(t, goal)
}

func TestCourses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	active := seedCourse(t, repo, "2do")
	_, err := repo.CreateCourse(ctx, core.Course{Level: "3ro", Active: false})
	require.NoError(t, err)

	all, err := repo.ListCourses(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := repo.ListCourses(ctx, true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active, onlyActive[0])

	got, err := repo.GetCourse(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, "2do - A", got.DisplayName())

	_, err = repo.GetCourse(ctx, 999)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	_, err = repo.CreateCourse(ctx, core.Course{Level: "  "})
	assert.True(t, errors.Is(err, core.ErrEmptyName))
}

func TestPaymentsAreScopedToCourse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := seedCourse(t, repo, "1ro")
	b := seedCourse(t, repo, "2do")

	ana, err := repo.CreateStudent(ctx, core.Student{Name: " Ana ", CourseID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, "Ana", ana.Name)

	p, err := repo.CreatePayment(ctx, core.Payment{
		StudentID:     ana.ID,
		CourseID:      a.ID,
		Amount:        "25.50",
		Date:          "2025-03-01",
		PaymentPeriod: core.FirstPeriod,
	})
	require.NoError(t, err)
	assert.Equal(t, core.DefaultPaymentStatus, p.PaymentStatus)

	// a student from another course cannot receive payments here
	_, err = repo.CreatePayment(ctx, core.Payment{
		StudentID:     ana.ID,
		CourseID:      b.ID,
		Amount:        "10",
		Date:          "2025-03-01",
		PaymentPeriod: core.FirstPeriod,
	})
	assert.True(t, errors.Is(err, core.ErrInvalidStudent))

	got, err := repo.ListPayments(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.Amount("25.50"), got[0].Amount)
	assert.Equal(t, core.Date("2025-03-01"), got[0].Date)

	other, err := repo.ListPayments(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, other)

	p.PaymentStatus = core.StatusCredited
	p.Amount = "30"
	_, err = repo.UpdatePayment(ctx, p)
	require.NoError(t, err)
	got, err = repo.ListPayments(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCredited, got[0].PaymentStatus)
	assert.Equal(t, core.Amount("30"), got[0].Amount)

	assert.True(t, errors.Is(repo.DeletePayment(ctx, b.ID, p.ID), core.ErrNotFound))
	require.NoError(t, repo.DeletePayment(ctx, a.ID, p.ID))
	assert.True(t, errors.Is(repo.DeletePayment(ctx, a.ID, p.ID), core.ErrNotFound))
}

func TestDeleteStudentRemovesPayments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	course := seedCourse(t, repo, "1ro")

	s, err := repo.CreateStudent(ctx, core.Student{Name: "Bruno", CourseID: course.ID})
	require.NoError(t, err)
	_, err = repo.CreatePayment(ctx, core.Payment{
		StudentID: s.ID, CourseID: course.ID, Amount: "5", Date: "2025-01-02", PaymentPeriod: core.SecondPeriod,
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteStudent(ctx, course.ID, s.ID))

	payments, err := repo.ListPayments(ctx, course.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestCategoriesAndExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := seedCourse(t, repo, "1ro")
	b := seedCourse(t, repo, "2do")

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Materiales", CourseID: a.ID, BaseAmount: "10"})
	require.NoError(t, err)

	_, err = repo.CreateCategory(ctx, core.Category{Name: "Materiales", CourseID: a.ID})
	assert.True(t, errors.Is(err, core.ErrDuplicateCategory))

	// same name in another course is fine
	_, err = repo.CreateCategory(ctx, core.Category{Name: "Materiales", CourseID: b.ID})
	require.NoError(t, err)

	e, err := repo.CreateExpense(ctx, core.Expense{
		CategoryID:  cat.ID,
		CourseID:    a.ID,
		Amount:      "40",
		Date:        "2025-03-02",
		Description: "Cartulinas",
	})
	require.NoError(t, err)
	assert.Equal(t, "Materiales", e.Category)

	_, err = repo.CreateExpense(ctx, core.Expense{
		CategoryID: cat.ID, CourseID: b.ID, Amount: "1", Date: "2025-03-02", Description: "x",
	})
	assert.True(t, errors.Is(err, core.ErrInvalidCategory))

	cat.Name = "Útiles"
	_, err = repo.UpdateCategory(ctx, cat)
	require.NoError(t, err)

	expenses, err := repo.ListExpenses(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Útiles", expenses[0].Category)

	err = repo.DeleteCategory(ctx, a.ID, cat.ID)
	assert.True(t, errors.Is(err, core.ErrCategoryInUse))

	require.NoError(t, repo.DeleteExpense(ctx, a.ID, e.ID))
	require.NoError(t, repo.DeleteCategory(ctx, a.ID, cat.ID))
}

func TestPutGoalConfigUpserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	course := seedCourse(t, repo, "1ro")

	_, err := repo.PutGoalConfig(ctx, core.GoalConfig{CourseID: course.ID, TotalGoal: "100"})
	require.NoError(t, err)
	_, err = repo.PutGoalConfig(ctx, core.GoalConfig{CourseID: course.ID, TotalGoal: "120.50", TotalSpentGoal: "80"})
	require.NoError(t, err)

	g, err := repo.GetGoalConfig(ctx, course.ID)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, core.Amount("120.50"), g.TotalGoal)
	assert.Equal(t, core.Amount("80"), g.TotalSpentGoal)

	_, err = repo.PutGoalConfig(ctx, core.GoalConfig{CourseID: 999, TotalGoal: "1"})
	assert.True(t, errors.Is(err, core.ErrInvalidCourse))
}
