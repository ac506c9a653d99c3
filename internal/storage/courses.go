package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cuotas/internal/core"
)

func (r *SQLiteRepository) ListCourses(ctx context.Context, activeOnly bool) ([]core.Course, error) {
	query := `SELECT id, level, parallel, active FROM courses`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY level, parallel, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]core.Course, 0)
	for rows.Next() {
		var c core.Course
		if err := rows.Scan(&c.ID, &c.Level, &c.Parallel, &c.Active); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *SQLiteRepository) GetCourse(ctx context.Context, id core.CourseID) (core.Course, error) {
	var c core.Course
	err := r.db.QueryRowContext(ctx,
		`SELECT id, level, parallel, active FROM courses WHERE id = ?`, int64(id),
	).Scan(&c.ID, &c.Level, &c.Parallel, &c.Active)
	if isNoRows(err) {
		return core.Course{}, fmt.Errorf("course %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Course{}, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCourse(ctx context.Context, c core.Course) (core.Course, error) {
	if err := c.Validate(); err != nil {
		return core.Course{}, err
	}
	c.Level = strings.TrimSpace(c.Level)
	c.Parallel = strings.TrimSpace(c.Parallel)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO courses (level, parallel, active) VALUES (?, ?, ?)`,
		c.Level, c.Parallel, c.Active,
	)
	if err != nil {
		return core.Course{}, fmt.Errorf("insert course: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Course{}, fmt.Errorf("course id: %w", err)
	}
	c.ID = core.CourseID(id)

	slog.InfoContext(ctx, "Course saved to SQLite", "id", c.ID, "name", c.DisplayName())
	return c, nil
}

// courseExists reports core.ErrInvalidCourse for an unknown course id.
func (r *SQLiteRepository) courseExists(ctx context.Context, id core.CourseID) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE id = ?`, int64(id)).Scan(&one)
	if isNoRows(err) {
		return core.ErrInvalidCourse
	}
	if err != nil {
		return fmt.Errorf("lookup course: %w", err)
	}
	return nil
}
