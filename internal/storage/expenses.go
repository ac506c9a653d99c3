package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cuotas/internal/core"
)

func (r *SQLiteRepository) ListExpenses(ctx context.Context, course core.CourseID) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.course_id, e.category_id, COALESCE(c.name, ''), e.amount, e.date,
		       e.description, e.observation
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.course_id = ?
		ORDER BY e.date, e.id`, int64(course))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0)
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.CourseID, &e.CategoryID, &e.Category, &e.Amount, &e.Date,
			&e.Description, &e.Observation); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	name, err := r.categoryName(ctx, e.CourseID, e.CategoryID)
	if err != nil {
		return core.Expense{}, err
	}
	e.Category = name
	e.Description = strings.TrimSpace(e.Description)
	e.Observation = strings.TrimSpace(e.Observation)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (course_id, category_id, amount, date, description, observation)
		VALUES (?, ?, ?, ?, ?, ?)`,
		int64(e.CourseID), e.CategoryID, string(e.Amount), string(e.Date), e.Description, e.Observation,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"course_id", e.CourseID,
		"category", e.Category,
		"amount", e.Amount)
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	name, err := r.categoryName(ctx, e.CourseID, e.CategoryID)
	if err != nil {
		return core.Expense{}, err
	}
	e.Category = name
	e.Description = strings.TrimSpace(e.Description)
	e.Observation = strings.TrimSpace(e.Observation)

	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET category_id = ?, amount = ?, date = ?, description = ?, observation = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND course_id = ?`,
		e.CategoryID, string(e.Amount), string(e.Date), e.Description, e.Observation,
		e.ID, int64(e.CourseID),
	)
	if err := affectedOne(res, err, "update expense"); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, course core.CourseID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND course_id = ?`, id, int64(course))
	if err := affectedOne(res, err, "delete expense"); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted from SQLite", "id", id, "course_id", course)
	return nil
}
