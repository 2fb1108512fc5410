package lp

import "context"

// Status is the outcome classification of a solve
type Status int

const (
	// StatusNotSolved means the solver did not reach a conclusion
	StatusNotSolved Status = iota
	// StatusOptimal means an optimal solution was found and Values is populated
	StatusOptimal
	// StatusInfeasible means no assignment satisfies the constraints
	StatusInfeasible
	// StatusUnbounded means the objective can decrease without limit
	StatusUnbounded
)

// String returns a human-readable status name
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	default:
		return "Not Solved"
	}
}

// Solution is the result of solving a model. Values holds one entry per
// declared variable, indexed by Var, and is only populated when Status is
// StatusOptimal.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Value returns the solved value of a variable
func (s *Solution) Value(v Var) float64 {
	return s.Values[v]
}

// Solver solves a mixed-integer linear model. Implementations must honour
// context cancellation on long-running solves. A non-nil error indicates an
// engine failure, not an infeasible or unbounded model; those are reported
// through Solution.Status.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}
