package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/matrix"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/solver"
)

type stubSolver struct {
	sol *solver.Solution
	err error
}

func (s *stubSolver) Solve(ctx context.Context, prog *solver.Program) (*solver.Solution, error) {
	return s.sol, s.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestOptimizeOptimalPath(t *testing.T) {
	store := scenarioStore(t)
	params := DefaultParams(store.MatchCount())

	// The stub returns the assignment for the balanced selection {0, 2}.
	// Formulate is deterministic, so a formulation built here has the same
	// variable order as the one built inside Optimize.
	mats := matrix.Build(store)
	f, err := Formulate(store, mats, params)
	require.NoError(t, err)
	values := assignmentFor(t, f, store, mats, []int{0, 2})
	stub := &stubSolver{sol: &solver.Solution{
		Status:    solver.StatusOptimal,
		Values:    values,
		Objective: evalObjective(f.Program, values),
	}}

	opt := New(store, stub, quietLogger())
	result, err := opt.Optimize(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, solver.StatusOptimal, result.Status)
	assert.Equal(t, []int{0, 2}, result.SelectedMatches)
	assert.Equal(t, 0.0, result.BalanceScore)
}

func TestOptimizeRepeatable(t *testing.T) {
	store := scenarioStore(t)
	params := DefaultParams(store.MatchCount())

	mats := matrix.Build(store)
	f, err := Formulate(store, mats, params)
	require.NoError(t, err)
	values := assignmentFor(t, f, store, mats, []int{1, 3})
	stub := &stubSolver{sol: &solver.Solution{
		Status:    solver.StatusOptimal,
		Values:    values,
		Objective: evalObjective(f.Program, values),
	}}

	// Same corpus, same parameters, same solver answer: the pipeline must
	// report identical counts and balance score on every run.
	opt := New(store, stub, quietLogger())
	first, err := opt.Optimize(context.Background(), params)
	require.NoError(t, err)
	second, err := opt.Optimize(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []int{1, 3}, first.SelectedMatches)
	assert.Equal(t, first.TeamParticipation, second.TeamParticipation)
	assert.Equal(t, first.TeamRoleCounts, second.TeamRoleCounts)
	assert.Equal(t, first.BalanceScore, second.BalanceScore)
}

func TestOptimizeInfeasiblePath(t *testing.T) {
	store := scenarioStore(t)
	stub := &stubSolver{sol: &solver.Solution{Status: solver.StatusInfeasible}}

	opt := New(store, stub, quietLogger())
	result, err := opt.Optimize(context.Background(), DefaultParams(store.MatchCount()))
	require.NoError(t, err)

	assert.Equal(t, solver.StatusInfeasible, result.Status)
	assert.Empty(t, result.SelectedMatches)
}

func TestOptimizeSolverError(t *testing.T) {
	store := scenarioStore(t)
	stub := &stubSolver{err: errors.New("solver exploded")}

	opt := New(store, stub, quietLogger())
	_, err := opt.Optimize(context.Background(), DefaultParams(store.MatchCount()))
	assert.Error(t, err)
}

func TestOptimizeRejectsInvalidParams(t *testing.T) {
	store := scenarioStore(t)
	stub := &stubSolver{sol: &solver.Solution{Status: solver.StatusOptimal}}

	opt := New(store, stub, quietLogger())
	params := DefaultParams(store.MatchCount())
	params.TargetMatches = 99
	_, err := opt.Optimize(context.Background(), params)
	assert.Error(t, err)
}

func TestOptimizeWithProgressStages(t *testing.T) {
	store := scenarioStore(t)
	stub := &stubSolver{sol: &solver.Solution{Status: solver.StatusInfeasible}}

	opt := New(store, stub, quietLogger())
	progress := make(chan Progress, 8)
	_, err := opt.OptimizeWithProgress(context.Background(), DefaultParams(store.MatchCount()), progress)
	require.NoError(t, err)
	close(progress)

	var stages []string
	for p := range progress {
		stages = append(stages, p.Stage)
		assert.NotZero(t, p.Timestamp)
	}
	assert.Equal(t, []string{"formulating", "solving", "extracting", "completed"}, stages)
}
