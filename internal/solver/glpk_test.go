package solver

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glpkForTest() *GLPK {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewGLPK(log)
}

// minimize x + 2y subject to x + y == 2, binary x, integer y.
// Optimum is x=1, y=1 with objective 3.
func smallProgram() *Program {
	prog := NewProgram("small")
	x := prog.AddBinary("x")
	y := prog.AddInteger("y", 0)
	prog.AddConstraint("sum", []Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, Equal, 2)
	prog.AddObjectiveTerm(x, 1)
	prog.AddObjectiveTerm(y, 2)
	return prog
}

func TestGLPKSolveOptimal(t *testing.T) {
	sol, err := glpkForTest().Solve(context.Background(), smallProgram())
	require.NoError(t, err)

	require.Equal(t, StatusOptimal, sol.Status)
	assert.Equal(t, 1.0, sol.Value(0))
	assert.Equal(t, 1.0, sol.Value(1))
	assert.Equal(t, 3.0, sol.Objective)
}

func TestGLPKSolveInfeasible(t *testing.T) {
	prog := NewProgram("infeasible")
	x := prog.AddBinary("x")
	prog.AddConstraint("too_big", []Term{{Var: x, Coef: 1}}, GreaterEq, 2)

	sol, err := glpkForTest().Solve(context.Background(), prog)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.Nil(t, sol.Values)
}

func TestGLPKSolveExpiredContext(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	sol, err := glpkForTest().Solve(ctx, smallProgram())
	require.NoError(t, err)
	assert.Equal(t, StatusError, sol.Status)
}
