package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramBuilding(t *testing.T) {
	prog := NewProgram("test")

	x := prog.AddBinary("x")
	y := prog.AddInteger("y", 2)
	assert.Equal(t, 0, x)
	assert.Equal(t, 1, y)
	assert.Equal(t, Binary, prog.Variables[x].Kind)
	assert.Equal(t, Integer, prog.Variables[y].Kind)
	assert.Equal(t, 2.0, prog.Variables[y].Lower)

	prog.AddConstraint("cap", []Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, LessEq, 5)
	prog.AddObjectiveTerm(y, 3)

	assert.Len(t, prog.Constraints, 1)
	assert.Equal(t, "cap", prog.Constraints[0].Name)
	assert.Equal(t, LessEq, prog.Constraints[0].Sense)
	assert.Equal(t, []Term{{Var: y, Coef: 3}}, prog.Objective)
}

func TestSenseString(t *testing.T) {
	assert.Equal(t, "<=", LessEq.String())
	assert.Equal(t, ">=", GreaterEq.String())
	assert.Equal(t, "==", Equal.String())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "solver_error", StatusError.String())
}

func TestSolutionValue(t *testing.T) {
	sol := &Solution{Status: StatusOptimal, Values: []float64{1, 0.5}}
	assert.Equal(t, 1.0, sol.Value(0))
	assert.Equal(t, 0.5, sol.Value(1))
	assert.Equal(t, 0.0, sol.Value(2))
	assert.Equal(t, 0.0, sol.Value(-1))

	empty := &Solution{Status: StatusInfeasible}
	assert.Equal(t, 0.0, empty.Value(0))
}
