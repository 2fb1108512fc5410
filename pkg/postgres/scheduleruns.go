package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/steward-shift/pkg/core/services"
)

// InsertRun stores one optimization run record
func (s *Store) InsertRun(ctx context.Context, run *services.ScheduleRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO schedule_runs (id, created_at, start_date, duration_weeks, status, objective_value, total_shifts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.CreatedAt, run.StartDate, run.DurationWeeks, run.Status, run.ObjectiveValue, run.TotalShifts)
	if err != nil {
		return fmt.Errorf("failed to insert schedule run: %w", err)
	}
	return nil
}

// InsertAssignments stores the daily assignments of a run in one batch
func (s *Store) InsertAssignments(ctx context.Context, assignments []services.RunAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range assignments {
		_, err := tx.Exec(ctx, `
			INSERT INTO schedule_assignments (run_id, shift_date, day_of_week, employee, team)
			VALUES ($1, $2, $3, $4, $5)
		`, a.RunID, a.ShiftDate, a.DayOfWeek, a.Employee, a.Team)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit assignments: %w", err)
	}
	return nil
}

// GetRuns returns all stored runs, newest first
func (s *Store) GetRuns(ctx context.Context) ([]services.ScheduleRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, to_char(start_date, 'YYYY-MM-DD'), duration_weeks, status, objective_value, total_shifts
		FROM schedule_runs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule runs: %w", err)
	}
	defer rows.Close()

	var runs []services.ScheduleRun
	for rows.Next() {
		var run services.ScheduleRun
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.StartDate, &run.DurationWeeks,
			&run.Status, &run.ObjectiveValue, &run.TotalShifts); err != nil {
			return nil, fmt.Errorf("failed to scan schedule run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule runs: %w", err)
	}

	return runs, nil
}

// GetAssignments returns all assignments of one run in date order
func (s *Store) GetAssignments(ctx context.Context, runID string) ([]services.RunAssignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, to_char(shift_date, 'YYYY-MM-DD'), day_of_week, employee, team
		FROM schedule_assignments
		WHERE run_id = $1
		ORDER BY shift_date, employee
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []services.RunAssignment
	for rows.Next() {
		var a services.RunAssignment
		if err := rows.Scan(&a.RunID, &a.ShiftDate, &a.DayOfWeek, &a.Employee, &a.Team); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return assignments, nil
}
