// Package optimizer turns a pattern corpus into a balanced match selection:
// it formulates the mixed-integer program, hands it to a solver, and
// repackages the solution into a scored result.
package optimizer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/matrix"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/solver"
)

// Progress is a stage update emitted during a solve, forwarded to WebSocket
// subscribers by the service layer.
type Progress struct {
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	Progress  float64   `json:"progress"`
	Timestamp time.Time `json:"timestamp"`
}

// Optimizer runs the formulate -> solve -> extract pipeline for one corpus.
// Matrices are built once at construction and shared read-only across
// invocations; each Optimize builds a fresh formulation, so concurrent solves
// with different parameters do not contaminate each other.
type Optimizer struct {
	store  *pattern.Store
	mats   *matrix.Set
	solver solver.Solver
	logger *logrus.Logger
}

// New builds the matrices for the corpus and wires in a solver.
func New(store *pattern.Store, slv solver.Solver, logger *logrus.Logger) *Optimizer {
	mats := matrix.Build(store)
	if mats.Dropped > 0 {
		logger.WithFields(logrus.Fields{
			"dropped_team_indices": mats.Dropped,
			"teams":                store.TeamCount(),
		}).Warn("Out-of-range team indices discarded during matrix construction")
	}
	return &Optimizer{store: store, mats: mats, solver: slv, logger: logger}
}

// Store returns the corpus this optimizer was built on.
func (o *Optimizer) Store() *pattern.Store { return o.store }

// Matrices returns the derived matrix set (read-only).
func (o *Optimizer) Matrices() *matrix.Set { return o.mats }

// Optimize runs one blocking solve with the given parameters.
func (o *Optimizer) Optimize(ctx context.Context, params Params) (*Result, error) {
	return o.OptimizeWithProgress(ctx, params, nil)
}

// OptimizeWithProgress runs one solve, reporting stage updates on progress
// when it is non-nil. Sends never block; a slow consumer just misses updates.
func (o *Optimizer) OptimizeWithProgress(ctx context.Context, params Params, progress chan<- Progress) (*Result, error) {
	log := o.logger.WithFields(logrus.Fields{
		"matches":        o.mats.MatchCount(),
		"teams":          o.mats.TeamCount(),
		"target_matches": params.TargetMatches,
	})
	log.Info("Starting match selection optimization")

	report(progress, "formulating", "Building integer program", 0.1)
	f, err := Formulate(o.store, o.mats, params)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"variables":   len(f.Program.Variables),
		"constraints": len(f.Program.Constraints),
	}).Debug("Formulated integer program")

	report(progress, "solving", "Running integer solver", 0.3)
	start := time.Now()
	sol, err := o.solver.Solve(ctx, f.Program)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"status":     sol.Status.String(),
		"solve_time": time.Since(start),
	}).Info("Solver finished")

	report(progress, "extracting", "Extracting selection from solution", 0.9)
	result, err := Extract(f, o.store, sol)
	if err != nil {
		return nil, err
	}

	report(progress, "completed", "Optimization completed", 1.0)
	log.WithFields(logrus.Fields{
		"selected":      result.TotalMatches,
		"balance_score": result.BalanceScore,
		"status":        result.Status.String(),
	}).Info("Optimization completed")
	return result, nil
}

func report(ch chan<- Progress, stage, message string, fraction float64) {
	if ch == nil {
		return
	}
	select {
	case ch <- Progress{Stage: stage, Message: message, Progress: fraction, Timestamp: time.Now()}:
	default:
	}
}
