package storage

import (
	"context"
	"fmt"
	"log/slog"

	"cuotas/internal/core"
)

// ListPayments returns the course's payments in insertion order.
func (r *SQLiteRepository) ListPayments(ctx context.Context, course core.CourseID) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_id, student_id, amount, date, payment_period, payment_status
		FROM payments WHERE course_id = ? ORDER BY id`, int64(course))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]core.Payment, 0)
	for rows.Next() {
		var p core.Payment
		if err := rows.Scan(&p.ID, &p.CourseID, &p.StudentID, &p.Amount, &p.Date, &p.PaymentPeriod, &p.PaymentStatus); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	if err := r.studentInCourse(ctx, p.CourseID, p.StudentID); err != nil {
		return core.Payment{}, err
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = core.DefaultPaymentStatus
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (course_id, student_id, amount, date, payment_period, payment_status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		int64(p.CourseID), p.StudentID, string(p.Amount), string(p.Date),
		string(p.PaymentPeriod), string(p.PaymentStatus),
	)
	if err != nil {
		return core.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return core.Payment{}, fmt.Errorf("payment id: %w", err)
	}

	slog.InfoContext(ctx, "Payment saved to SQLite",
		"id", p.ID,
		"course_id", p.CourseID,
		"student_id", p.StudentID,
		"amount", p.Amount,
		"period", p.PaymentPeriod)
	return p, nil
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	if err := r.studentInCourse(ctx, p.CourseID, p.StudentID); err != nil {
		return core.Payment{}, err
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = core.DefaultPaymentStatus
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET student_id = ?, amount = ?, date = ?, payment_period = ?, payment_status = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND course_id = ?`,
		p.StudentID, string(p.Amount), string(p.Date), string(p.PaymentPeriod), string(p.PaymentStatus),
		p.ID, int64(p.CourseID),
	)
	if err := affectedOne(res, err, "update payment"); err != nil {
		return core.Payment{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, course core.CourseID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ? AND course_id = ?`, id, int64(course))
	if err := affectedOne(res, err, "delete payment"); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Payment deleted from SQLite", "id", id, "course_id", course)
	return nil
}
