package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/steward-shift/pkg/core/model"
)

// ScheduleRun is a persisted record of one optimization run
type ScheduleRun struct {
	ID             string
	CreatedAt      time.Time
	StartDate      string
	DurationWeeks  int
	Status         string
	ObjectiveValue float64
	TotalShifts    int
}

// RunAssignment is one persisted employee-day assignment of a run
type RunAssignment struct {
	RunID     string
	ShiftDate string
	DayOfWeek string
	Employee  string
	Team      string
}

// RunStore persists optimization runs and their assignments
type RunStore interface {
	InsertRun(ctx context.Context, run *ScheduleRun) error
	InsertAssignments(ctx context.Context, assignments []RunAssignment) error
	GetRuns(ctx context.Context) ([]ScheduleRun, error)
}

// SaveRun stores a completed run and, when the run is optimal, all of its
// daily assignments. It returns the generated run ID.
func SaveRun(ctx context.Context, store RunStore, logger *zap.Logger, result *model.ScheduleResult) (string, error) {
	run := &ScheduleRun{
		ID:             uuid.New().String(),
		CreatedAt:      time.Now().UTC(),
		StartDate:      result.Config.StartDate.Format("2006-01-02"),
		DurationWeeks:  result.Config.DurationWeeks,
		Status:         string(result.Status),
		ObjectiveValue: result.ObjectiveValue,
		TotalShifts:    result.TotalShiftsRequired,
	}

	logger.Debug("Saving run", zap.String("run_id", run.ID), zap.String("status", run.Status))

	if err := store.InsertRun(ctx, run); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	if !result.IsOptimal() {
		logger.Info("Run saved without assignments", zap.String("run_id", run.ID))
		return run.ID, nil
	}

	teamOf := make(map[string]string, len(result.Config.Employees))
	for _, emp := range result.Config.Employees {
		teamOf[emp.Name] = emp.Team
	}

	var assignments []RunAssignment
	for _, day := range result.DailyAssignments {
		for _, name := range day.Employees {
			assignments = append(assignments, RunAssignment{
				RunID:     run.ID,
				ShiftDate: day.Date.Format("2006-01-02"),
				DayOfWeek: day.DayOfWeek,
				Employee:  name,
				Team:      teamOf[name],
			})
		}
	}

	if err := store.InsertAssignments(ctx, assignments); err != nil {
		return "", fmt.Errorf("failed to insert assignments: %w", err)
	}

	logger.Info("Run saved",
		zap.String("run_id", run.ID),
		zap.Int("assignments", len(assignments)))

	return run.ID, nil
}

// ListRuns returns all persisted runs, newest first
func ListRuns(ctx context.Context, store RunStore, logger *zap.Logger) ([]ScheduleRun, error) {
	logger.Debug("Fetching run history")

	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	logger.Debug("Found runs", zap.Int("count", len(runs)))
	return runs, nil
}
