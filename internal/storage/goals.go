package storage

import (
	"context"
	"fmt"
	"log/slog"

	"cuotas/internal/core"
)

// GetGoalConfig returns nil, nil when the course has no goal row.
func (r *SQLiteRepository) GetGoalConfig(ctx context.Context, course core.CourseID) (*core.GoalConfig, error) {
	g := core.GoalConfig{CourseID: course}
	err := r.db.QueryRowContext(ctx,
		`SELECT total_goal, total_spent_goal FROM goal_configs WHERE course_id = ?`, int64(course),
	).Scan(&g.TotalGoal, &g.TotalSpentGoal)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal config: %w", err)
	}
	return &g, nil
}

func (r *SQLiteRepository) PutGoalConfig(ctx context.Context, g core.GoalConfig) (core.GoalConfig, error) {
	if err := g.Validate(); err != nil {
		return core.GoalConfig{}, err
	}
	if err := r.courseExists(ctx, g.CourseID); err != nil {
		return core.GoalConfig{}, err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goal_configs (course_id, total_goal, total_spent_goal)
		VALUES (?, ?, ?)
		ON CONFLICT(course_id) DO UPDATE SET
			total_goal = excluded.total_goal,
			total_spent_goal = excluded.total_spent_goal,
			updated_at = CURRENT_TIMESTAMP`,
		int64(g.CourseID), string(g.TotalGoal), string(g.TotalSpentGoal),
	)
	if err != nil {
		return core.GoalConfig{}, fmt.Errorf("upsert goal config: %w", err)
	}

	slog.InfoContext(ctx, "Goal config saved to SQLite", "course_id", g.CourseID, "total_goal", g.TotalGoal)
	return g, nil
}
