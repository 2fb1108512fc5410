// Package lp provides a small mixed-integer linear programming layer: a
// model type for declaring variables and linear constraints, a solver
// contract, and an exact branch-and-bound engine built on gonum's simplex
// implementation.
package lp

import (
	"fmt"
	"math"
)

// VarKind is the domain of a decision variable
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

// Var is an opaque handle to a variable in a Model
type Var int

// Sense is the direction of a linear constraint
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

// Term is one coefficient*variable entry of a linear expression
type Term struct {
	Var   Var
	Coeff float64
}

// Constraint is a named linear (in)equality over the model's variables
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is a mixed-integer linear program with a minimize objective.
// Variables are identified by the Var handles returned from AddVar.
type Model struct {
	names []string
	kinds []VarKind
	lower []float64
	upper []float64
	obj   []float64
	cons  []Constraint
}

// NewModel creates an empty model
func NewModel() *Model {
	return &Model{}
}

// AddVar declares a variable with the given domain and bounds and returns
// its handle. Binary variables are always bounded to [0, 1] regardless of
// the bounds passed.
func (m *Model) AddVar(kind VarKind, name string, lower, upper float64) Var {
	if kind == Binary {
		lower, upper = 0, 1
	}
	m.names = append(m.names, name)
	m.kinds = append(m.kinds, kind)
	m.lower = append(m.lower, lower)
	m.upper = append(m.upper, upper)
	m.obj = append(m.obj, 0)
	return Var(len(m.names) - 1)
}

// SetUpper tightens a variable's upper bound. Fixing a variable through its
// bounds keeps the equality rows of the model linearly independent, which
// an equality constraint pinning the variable would not.
func (m *Model) SetUpper(v Var, upper float64) {
	m.upper[v] = upper
}

// NumVars returns the number of declared variables
func (m *Model) NumVars() int {
	return len(m.names)
}

// NumConstraints returns the number of declared constraints
func (m *Model) NumConstraints() int {
	return len(m.cons)
}

// Name returns the name a variable was declared with
func (m *Model) Name(v Var) string {
	return m.names[v]
}

// Kind returns the domain a variable was declared with
func (m *Model) Kind(v Var) VarKind {
	return m.kinds[v]
}

// SetObjective adds coeff to the variable's objective coefficient. Calling
// it twice for the same variable accumulates.
func (m *Model) SetObjective(v Var, coeff float64) {
	m.obj[v] += coeff
}

// AddConstraint declares a named linear constraint
func (m *Model) AddConstraint(name string, sense Sense, rhs float64, terms ...Term) {
	m.cons = append(m.cons, Constraint{Name: name, Terms: terms, Sense: sense, RHS: rhs})
}

// Validate checks the model for malformed entries before solving
func (m *Model) Validate() error {
	if m.NumVars() == 0 {
		return fmt.Errorf("model has no variables")
	}
	for i := range m.names {
		if m.lower[i] > m.upper[i] {
			return fmt.Errorf("variable %q has lower bound %g above upper bound %g",
				m.names[i], m.lower[i], m.upper[i])
		}
	}
	for _, c := range m.cons {
		for _, t := range c.Terms {
			if int(t.Var) < 0 || int(t.Var) >= m.NumVars() {
				return fmt.Errorf("constraint %q references unknown variable %d", c.Name, t.Var)
			}
			if math.IsNaN(t.Coeff) || math.IsInf(t.Coeff, 0) {
				return fmt.Errorf("constraint %q has non-finite coefficient for %q", c.Name, m.names[t.Var])
			}
		}
	}
	return nil
}
