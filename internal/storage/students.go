package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cuotas/internal/core"
)

func (r *SQLiteRepository) ListStudents(ctx context.Context, course core.CourseID) ([]core.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, course_id, name, email FROM students WHERE course_id = ? ORDER BY name, id`, int64(course))
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := make([]core.Student, 0)
	for rows.Next() {
		var s core.Student
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Name, &s.Email); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *SQLiteRepository) CreateStudent(ctx context.Context, s core.Student) (core.Student, error) {
	if err := s.Validate(); err != nil {
		return core.Student{}, err
	}
	if err := r.courseExists(ctx, s.CourseID); err != nil {
		return core.Student{}, err
	}
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO students (course_id, name, email) VALUES (?, ?, ?)`,
		int64(s.CourseID), s.Name, s.Email,
	)
	if err != nil {
		return core.Student{}, fmt.Errorf("insert student: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return core.Student{}, fmt.Errorf("student id: %w", err)
	}

	slog.InfoContext(ctx, "Student saved to SQLite", "id", s.ID, "course_id", s.CourseID)
	return s, nil
}

func (r *SQLiteRepository) UpdateStudent(ctx context.Context, s core.Student) (core.Student, error) {
	if err := s.Validate(); err != nil {
		return core.Student{}, err
	}
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)

	res, err := r.db.ExecContext(ctx,
		`UPDATE students SET name = ?, email = ? WHERE id = ? AND course_id = ?`,
		s.Name, s.Email, s.ID, int64(s.CourseID),
	)
	if err := affectedOne(res, err, "update student"); err != nil {
		return core.Student{}, err
	}
	return s, nil
}

// DeleteStudent also removes the student's payments.
func (r *SQLiteRepository) DeleteStudent(ctx context.Context, course core.CourseID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = ? AND course_id = ?`, id, int64(course))
	if err := affectedOne(res, err, "delete student"); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Student deleted from SQLite", "id", id, "course_id", course)
	return nil
}

// studentInCourse reports core.ErrInvalidStudent when the student does not
// belong to the course.
func (r *SQLiteRepository) studentInCourse(ctx context.Context, course core.CourseID, id int64) error {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM students WHERE id = ? AND course_id = ?`, id, int64(course)).Scan(&one)
	if isNoRows(err) {
		return core.ErrInvalidStudent
	}
	if err != nil {
		return fmt.Errorf("lookup student: %w", err)
	}
	return nil
}
