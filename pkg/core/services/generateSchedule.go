// Package services wires the optimizer, persistence and publishing layers
// into the operations the CLI exposes.
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/steward-shift/pkg/core/model"
	"github.com/jakechorley/steward-shift/pkg/core/optimizer"
	"github.com/jakechorley/steward-shift/pkg/lp"
)

// GenerateSchedule runs one full optimization over the config's planning
// period. An infeasible or unbounded model is a normal outcome reported in
// the result status; errors mean the run itself could not complete.
func GenerateSchedule(ctx context.Context, cfg *model.ScheduleConfig, solver lp.Solver, logger *zap.Logger) (*model.ScheduleResult, error) {
	logger.Info("Generating schedule",
		zap.String("start_date", cfg.StartDate.Format("2006-01-02")),
		zap.Int("duration_weeks", cfg.DurationWeeks),
		zap.Int("employees", len(cfg.Employees)),
		zap.Int("teams", len(cfg.Teams)))

	start := time.Now()

	opt := optimizer.NewWithSolver(cfg, solver)
	result, err := opt.Optimize(ctx)
	if err != nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}

	elapsed := time.Since(start)

	if result.IsOptimal() {
		logger.Info("Schedule generated",
			zap.String("status", string(result.Status)),
			zap.Float64("objective", result.ObjectiveValue),
			zap.Int("total_shifts", result.TotalShiftsRequired),
			zap.Duration("elapsed", elapsed))
	} else {
		logger.Warn("No optimal schedule found",
			zap.String("status", string(result.Status)),
			zap.Duration("elapsed", elapsed))
	}

	return result, nil
}
