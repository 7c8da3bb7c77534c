// Package solver defines a solver-agnostic mixed-integer program model and
// the adapters that hand it to an external MIP solver. Components upstream
// build a Program; nothing outside this package touches solver internals.
package solver

import (
	"context"
	"fmt"
)

// VarKind is the domain of a decision variable.
type VarKind int

const (
	// Binary variables take values in {0, 1}.
	Binary VarKind = iota
	// Integer variables take non-negative integer values from Lower upward.
	Integer
)

// Sense is the relation of a linear constraint to its right-hand side.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "=="
	default:
		return "?"
	}
}

// Variable describes a single decision variable.
type Variable struct {
	Name  string
	Kind  VarKind
	Lower float64
}

// Term is one coefficient*variable entry of a linear expression.
type Term struct {
	Var  int
	Coef float64
}

// Constraint is a linear constraint: sum(Terms) Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Program is a complete mixed-integer program with a minimization objective.
type Program struct {
	Name        string
	Variables   []Variable
	Constraints []Constraint
	Objective   []Term
}

// NewProgram creates an empty minimization program.
func NewProgram(name string) *Program {
	return &Program{Name: name}
}

// AddBinary adds a binary variable and returns its index.
func (p *Program) AddBinary(name string) int {
	p.Variables = append(p.Variables, Variable{Name: name, Kind: Binary})
	return len(p.Variables) - 1
}

// AddInteger adds an integer variable bounded below by lower and returns its index.
func (p *Program) AddInteger(name string, lower float64) int {
	p.Variables = append(p.Variables, Variable{Name: name, Kind: Integer, Lower: lower})
	return len(p.Variables) - 1
}

// AddConstraint appends a linear constraint to the program.
func (p *Program) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	p.Constraints = append(p.Constraints, Constraint{Name: name, Terms: terms, Sense: sense, RHS: rhs})
}

// AddObjectiveTerm accumulates coef*var into the minimization objective.
func (p *Program) AddObjectiveTerm(v int, coef float64) {
	p.Objective = append(p.Objective, Term{Var: v, Coef: coef})
}

// Status classifies the outcome of a solve.
type Status int

const (
	// StatusOptimal means the solver proved optimality of the returned values.
	StatusOptimal Status = iota
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
	// StatusError covers solver failures and timeouts; values are not trustworthy.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusError:
		return "solver_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Solution carries per-variable values and the objective for an optimal solve.
// For non-optimal statuses Values is nil and Objective is meaningless.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
}

// Value returns the solved value of variable v, or 0 when no values exist.
func (s *Solution) Value(v int) float64 {
	if s.Values == nil || v < 0 || v >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}

// Solver turns a Program into a Solution. Implementations must return within
// the context's budget, reporting StatusError when it expires.
type Solver interface {
	Solve(ctx context.Context, prog *Program) (*Solution, error)
}
