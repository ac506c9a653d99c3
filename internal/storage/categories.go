package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cuotas/internal/core"
)

func (r *SQLiteRepository) ListCategories(ctx context.Context, course core.CourseID) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_id, name, description, base_amount
		FROM categories WHERE course_id = ? ORDER BY name`, int64(course))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.CourseID, &c.Name, &c.Description, &c.BaseAmount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := r.courseExists(ctx, c.CourseID); err != nil {
		return core.Category{}, err
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (course_id, name, description, base_amount)
		VALUES (?, ?, ?, ?)`,
		int64(c.CourseID), c.Name, c.Description, string(c.BaseAmount),
	)
	if isUniqueViolation(err) {
		return core.Category{}, fmt.Errorf("%q: %w", c.Name, core.ErrDuplicateCategory)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}

	slog.InfoContext(ctx, "Category saved to SQLite", "id", c.ID, "course_id", c.CourseID, "name", c.Name)
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)

	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, description = ?, base_amount = ?
		WHERE id = ? AND course_id = ?`,
		c.Name, c.Description, string(c.BaseAmount), c.ID, int64(c.CourseID),
	)
	if isUniqueViolation(err) {
		return core.Category{}, fmt.Errorf("%q: %w", c.Name, core.ErrDuplicateCategory)
	}
	if err := affectedOne(res, err, "update category"); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// DeleteCategory refuses to remove a category that expenses still point at.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, course core.CourseID, id int64) error {
	var used int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE category_id = ? AND course_id = ?`, id, int64(course)).Scan(&used)
	if err != nil {
		return fmt.Errorf("count category expenses: %w", err)
	}
	if used > 0 {
		return fmt.Errorf("%d expenses: %w", used, core.ErrCategoryInUse)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND course_id = ?`, id, int64(course))
	if err := affectedOne(res, err, "delete category"); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Category deleted from SQLite", "id", id, "course_id", course)
	return nil
}

// categoryName resolves a category id within the course, reporting
// core.ErrInvalidCategory when it belongs elsewhere or does not exist.
func (r *SQLiteRepository) categoryName(ctx context.Context, course core.CourseID, id int64) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM categories WHERE id = ? AND course_id = ?`, id, int64(course)).Scan(&name)
	if isNoRows(err) {
		return "", core.ErrInvalidCategory
	}
	if err != nil {
		return "", fmt.Errorf("lookup category: %w", err)
	}
	return name, nil
}
