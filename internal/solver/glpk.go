package solver

import (
	"context"
	"fmt"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/sirupsen/logrus"
)

// GLPK solves programs with the GNU Linear Programming Kit via its
// branch-and-cut integer optimizer. One instance is safe for concurrent use;
// every Solve builds its own glpk problem object.
type GLPK struct {
	logger *logrus.Logger
}

// NewGLPK creates a GLPK-backed solver.
func NewGLPK(logger *logrus.Logger) *GLPK {
	return &GLPK{logger: logger}
}

type solveOutcome struct {
	sol *Solution
	err error
}

// Solve runs the program through GLPK. The wrapper exposes no interrupt hook,
// so the solve runs on its own goroutine; if ctx expires first the call
// returns StatusError immediately and the background solve is abandoned.
func (g *GLPK) Solve(ctx context.Context, prog *Program) (*Solution, error) {
	if ctx.Err() != nil {
		return &Solution{Status: StatusError}, nil
	}

	done := make(chan solveOutcome, 1)
	go func() {
		sol, err := g.solve(prog)
		done <- solveOutcome{sol: sol, err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.WithFields(logrus.Fields{
			"problem": prog.Name,
			"reason":  ctx.Err().Error(),
		}).Warn("Solve abandoned before completion")
		return &Solution{Status: StatusError}, nil
	case out := <-done:
		return out.sol, out.err
	}
}

func (g *GLPK) solve(prog *Program) (*Solution, error) {
	lp := glpk.New()
	defer lp.Delete()
	lp.SetProbName(prog.Name)
	lp.SetObjDir(glpk.ObjDir(glpk.MIN))

	// GLPK columns are 1-based; column i+1 holds Variables[i].
	for i, v := range prog.Variables {
		lp.AddCols(1)
		col := i + 1
		lp.SetColName(col, v.Name)
		if v.Kind == Binary {
			lp.SetColKind(col, glpk.VarType(glpk.BV))
		} else {
			lp.SetColKind(col, glpk.VarType(glpk.IV))
			lp.SetColBnds(col, glpk.BndsType(glpk.LO), v.Lower, 0.0)
		}
	}

	for i, c := range prog.Constraints {
		lp.AddRows(1)
		row := i + 1
		lp.SetRowName(row, c.Name)
		switch c.Sense {
		case LessEq:
			lp.SetRowBnds(row, glpk.BndsType(glpk.UP), 0.0, c.RHS)
		case GreaterEq:
			lp.SetRowBnds(row, glpk.BndsType(glpk.LO), c.RHS, 0.0)
		case Equal:
			lp.SetRowBnds(row, glpk.BndsType(glpk.FX), c.RHS, c.RHS)
		}
		// SetMatRow follows the C API convention: ind[0] and val[0] are
		// ignored, entries start at index 1.
		ind := make([]int32, len(c.Terms)+1)
		val := make([]float64, len(c.Terms)+1)
		for j, t := range c.Terms {
			ind[j+1] = int32(t.Var + 1)
			val[j+1] = t.Coef
		}
		lp.SetMatRow(row, ind, val)
	}

	for _, t := range prog.Objective {
		lp.SetObjCoef(t.Var+1, t.Coef)
	}

	param := glpk.NewSmcp()
	param.SetMsgLev(glpk.MsgLev(glpk.MSG_ERR))
	if err := lp.Simplex(param); err != nil {
		return nil, fmt.Errorf("simplex solver failed: %w", err)
	}

	// The LP relaxation already proves infeasibility of the integer program.
	if st := lp.Status(); st == glpk.NOFEAS || st == glpk.INFEAS {
		g.logger.WithField("problem", prog.Name).Info("LP relaxation infeasible")
		return &Solution{Status: StatusInfeasible}, nil
	}

	iocp := glpk.NewIocp()
	iocp.SetPresolve(true)
	iocp.SetMsgLev(glpk.MsgLev(glpk.MSG_ERR))
	if err := lp.Intopt(iocp); err != nil {
		g.logger.WithError(err).WithField("problem", prog.Name).Warn("Integer optimizer failed")
		return &Solution{Status: StatusError}, nil
	}

	switch lp.MipStatus() {
	case glpk.OPT:
	case glpk.FEAS:
		// Feasible but optimality unproven; values are unusable under an
		// exact-optimum contract.
		g.logger.WithField("problem", prog.Name).Warn("Solver stopped before proving optimality")
		return &Solution{Status: StatusError}, nil
	case glpk.NOFEAS:
		return &Solution{Status: StatusInfeasible}, nil
	default:
		return &Solution{Status: StatusError}, nil
	}

	values := make([]float64, len(prog.Variables))
	for i := range prog.Variables {
		values[i] = lp.MipColVal(i + 1)
	}
	return &Solution{
		Status:    StatusOptimal,
		Values:    values,
		Objective: lp.MipObjVal(),
	}, nil
}
