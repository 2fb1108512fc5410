package lp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	// intTol is how far a relaxation value may sit from an integer and
	// still count as integral
	intTol = 1e-6
	// pruneEps guards against cutting off the incumbent through floating
	// point noise in the relaxation bound
	pruneEps = 1e-7
)

// BranchBound is an exact mixed-integer solver: it solves LP relaxations
// with gonum's simplex method and branches depth-first on fractional
// integer variables, pruning nodes that cannot beat the incumbent.
type BranchBound struct{}

// NewBranchBound creates a branch-and-bound solver
func NewBranchBound() *BranchBound {
	return &BranchBound{}
}

// node is one subproblem of the search tree, defined by tightened variable
// bounds
type node struct {
	lower []float64
	upper []float64
}

// Solve finds an optimal integer solution to the model, or classifies it as
// infeasible or unbounded. The context is checked between search nodes; a
// cancelled context aborts the solve with an error.
func (s *BranchBound) Solve(ctx context.Context, m *Model) (*Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}

	root := node{
		lower: append([]float64(nil), m.lower...),
		upper: append([]float64(nil), m.upper...),
	}

	var (
		incumbent    []float64
		incumbentObj = math.Inf(1)
		stack        = []node{root}
		visitedRoot  = false
	)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("solve aborted: %w", err)
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		isRoot := !visitedRoot
		visitedRoot = true

		obj, x, err := s.solveRelaxation(m, n)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			if isRoot {
				return &Solution{Status: StatusInfeasible}, nil
			}
			continue
		case errors.Is(err, lp.ErrUnbounded):
			return &Solution{Status: StatusUnbounded}, nil
		case err != nil:
			return nil, fmt.Errorf("simplex failed: %w", err)
		}

		// Bound: this subtree cannot improve on the incumbent
		if obj >= incumbentObj-pruneEps {
			continue
		}

		branchVar := mostFractional(m, x)
		if branchVar < 0 {
			// All integer variables integral: new incumbent
			incumbent = roundIntegers(m, x)
			incumbentObj = objectiveValue(m, incumbent)
			continue
		}

		v := x[branchVar]

		// Floor branch is pushed last so it is explored first
		up := node{lower: append([]float64(nil), n.lower...), upper: append([]float64(nil), n.upper...)}
		up.lower[branchVar] = math.Ceil(v)
		if up.lower[branchVar] <= up.upper[branchVar] {
			stack = append(stack, up)
		}

		down := node{lower: append([]float64(nil), n.lower...), upper: append([]float64(nil), n.upper...)}
		down.upper[branchVar] = math.Floor(v)
		if down.lower[branchVar] <= down.upper[branchVar] {
			stack = append(stack, down)
		}
	}

	if incumbent == nil {
		// LP relaxation was feasible but no integer assignment exists
		return &Solution{Status: StatusInfeasible}, nil
	}

	return &Solution{
		Status:    StatusOptimal,
		Objective: incumbentObj,
		Values:    incumbent,
	}, nil
}

// solveRelaxation solves the LP relaxation of the model under the node's
// bounds. It converts the general-form program (inequalities, equalities,
// finite bounds) to standard form and runs the simplex method.
func (s *BranchBound) solveRelaxation(m *Model, n node) (float64, []float64, error) {
	nv := m.NumVars()

	var (
		gRows   []float64
		h       []float64
		numIneq int
		aRows   []float64
		b       []float64
		numEq   int
	)

	addIneq := func(coeffs []float64, rhs float64) {
		gRows = append(gRows, coeffs...)
		h = append(h, rhs)
		numIneq++
	}

	for _, c := range m.cons {
		row := make([]float64, nv)
		for _, t := range c.Terms {
			row[t.Var] += t.Coeff
		}
		switch c.Sense {
		case Equal:
			aRows = append(aRows, row...)
			b = append(b, c.RHS)
			numEq++
		case LessEq:
			addIneq(row, c.RHS)
		case GreaterEq:
			neg := make([]float64, nv)
			for i, v := range row {
				neg[i] = -v
			}
			addIneq(neg, -c.RHS)
		}
	}

	// Variable bounds become inequality rows: the standard-form conversion
	// treats every variable as free.
	for i := 0; i < nv; i++ {
		if !math.IsInf(n.upper[i], 1) {
			row := make([]float64, nv)
			row[i] = 1
			addIneq(row, n.upper[i])
		}
		if !math.IsInf(n.lower[i], -1) {
			row := make([]float64, nv)
			row[i] = -1
			addIneq(row, -n.lower[i])
		}
	}

	var g, a mat.Matrix
	if numIneq > 0 {
		g = mat.NewDense(numIneq, nv, gRows)
	}
	if numEq > 0 {
		a = mat.NewDense(numEq, nv, aRows)
	}

	cNew, aNew, bNew := lp.Convert(m.obj, g, h, a, b)

	obj, xStd, err := lp.Simplex(cNew, aNew, bNew, 0, nil)
	if err != nil {
		return 0, nil, err
	}

	// Standard form splits each variable into positive and negative parts
	x := make([]float64, nv)
	for i := 0; i < nv; i++ {
		x[i] = xStd[i] - xStd[nv+i]
	}

	return obj, x, nil
}

// mostFractional returns the integer variable whose relaxation value is
// furthest from an integer, or -1 if all are integral
func mostFractional(m *Model, x []float64) int {
	best := -1
	bestDist := intTol
	for i := 0; i < m.NumVars(); i++ {
		if m.kinds[i] == Continuous {
			continue
		}
		dist := math.Abs(x[i] - math.Round(x[i]))
		if dist > bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

// roundIntegers snaps integer variables to the nearest integer, leaving
// continuous variables untouched
func roundIntegers(m *Model, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if m.kinds[i] == Continuous {
			out[i] = v
		} else {
			out[i] = math.Round(v)
		}
	}
	return out
}

// objectiveValue evaluates the model objective at the given point
func objectiveValue(m *Model, x []float64) float64 {
	total := 0.0
	for i, c := range m.obj {
		total += c * x[i]
	}
	return total
}
