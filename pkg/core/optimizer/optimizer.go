// Package optimizer builds the shift-scheduling integer program from a
// validated configuration, hands it to an opaque solver, and converts the
// raw variable assignment back into auditable per-day, per-employee and
// per-team statistics.
package optimizer

import (
	"context"
	"fmt"

	"github.com/jakechorley/steward-shift/pkg/core/model"
	"github.com/jakechorley/steward-shift/pkg/lp"
)

// Optimizer runs one complete, stateless optimization over the full
// horizon. It never mutates the config, so separate optimizers over
// different configs may run concurrently without coordination.
type Optimizer struct {
	cfg    *model.ScheduleConfig
	solver lp.Solver
}

// New creates an optimizer backed by the bundled branch-and-bound engine
func New(cfg *model.ScheduleConfig) *Optimizer {
	return NewWithSolver(cfg, lp.NewBranchBound())
}

// NewWithSolver creates an optimizer backed by the given engine. The
// optimizer treats the solving algorithm as opaque and works with any exact
// MIP solver honouring the lp.Solver contract.
func NewWithSolver(cfg *model.ScheduleConfig, solver lp.Solver) *Optimizer {
	return &Optimizer{cfg: cfg, solver: solver}
}

// Optimize builds the model, solves it and extracts the schedule. A
// non-optimal solver status (infeasible, unbounded) is a normal result
// carried in ScheduleResult.Status, not an error; only configuration
// problems and solver engine failures return errors.
func (o *Optimizer) Optimize(ctx context.Context) (*model.ScheduleResult, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule config: %w", err)
	}

	built, err := buildModel(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}

	sol, err := o.solver.Solve(ctx, built.lpm)
	if err != nil {
		return nil, fmt.Errorf("solver failed: %w", err)
	}

	return extractResult(o.cfg, built, sol), nil
}
