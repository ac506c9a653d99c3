package apiclient

import (
	"context"

	"cuotas/internal/core"
)

// The upstream data access layer is owned by another system; writes go there
// directly, never through this client.

func (c *Client) CreateCourse(context.Context, core.Course) (core.Course, error) {
	return core.Course{}, core.ErrReadOnly
}

func (c *Client) CreateStudent(context.Context, core.Student) (core.Student, error) {
	return core.Student{}, core.ErrReadOnly
}

func (c *Client) UpdateStudent(context.Context, core.Student) (core.Student, error) {
	return core.Student{}, core.ErrReadOnly
}

func (c *Client) DeleteStudent(context.Context, core.CourseID, int64) error {
	return core.ErrReadOnly
}

func (c *Client) CreatePayment(context.Context, core.Payment) (core.Payment, error) {
	return core.Payment{}, core.ErrReadOnly
}

func (c *Client) UpdatePayment(context.Context, core.Payment) (core.Payment, error) {
	return core.Payment{}, core.ErrReadOnly
}

func (c *Client) DeletePayment(context.Context, core.CourseID, int64) error {
	return core.ErrReadOnly
}

func (c *Client) CreateExpense(context.Context, core.Expense) (core.Expense, error) {
	return core.Expense{}, core.ErrReadOnly
}

func (c *Client) UpdateExpense(context.Context, core.Expense) (core.Expense, error) {
	return core.Expense{}, core.ErrReadOnly
}

func (c *Client) DeleteExpense(context.Context, core.CourseID, int64) error {
	return core.ErrReadOnly
}

func (c *Client) CreateCategory(context.Context, core.Category) (core.Category, error) {
	return core.Category{}, core.ErrReadOnly
}

func (c *Client) UpdateCategory(context.Context, core.Category) (core.Category, error) {
	return core.Category{}, core.ErrReadOnly
}

func (c *Client) DeleteCategory(context.Context, core.CourseID, int64) error {
	return core.ErrReadOnly
}

func (c *Client) PutGoalConfig(context.Context, core.GoalConfig) (core.GoalConfig, error) {
	return core.GoalConfig{}, core.ErrReadOnly
}
