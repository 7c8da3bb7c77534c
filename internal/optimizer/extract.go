package optimizer

import (
	"fmt"
	"math"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/solver"
)

// Result is the structured outcome of one solve. It is immutable after
// creation; for non-optimal statuses the selection is empty, all counts are
// zero and BalanceScore is +Inf.
type Result struct {
	SelectedMatches   []int
	TeamParticipation map[string]int
	TeamRoleCounts    map[string]map[string]int
	TotalMatches      int
	BalanceScore      float64
	Status            solver.Status
}

// Extract repackages solved variable values into a Result. Counts are read
// off the solved count variables, rounded to absorb solver floating-point
// error. The selection size is checked against the target as an internal
// consistency guard.
func Extract(f *Formulation, store *pattern.Store, sol *solver.Solution) (*Result, error) {
	nTeams := store.TeamCount()
	roles := store.Roles()

	result := &Result{
		SelectedMatches:   []int{},
		TeamParticipation: make(map[string]int, nTeams),
		TeamRoleCounts:    make(map[string]map[string]int, nTeams),
		BalanceScore:      math.Inf(1),
		Status:            sol.Status,
	}

	if sol.Status != solver.StatusOptimal {
		for t := 0; t < nTeams; t++ {
			name := store.TeamName(t)
			result.TeamParticipation[name] = 0
			counts := make(map[string]int, len(roles))
			for _, role := range roles {
				counts[role] = 0
			}
			result.TeamRoleCounts[name] = counts
		}
		return result, nil
	}

	for m, v := range f.selection {
		if sol.Value(v) > 0.5 {
			result.SelectedMatches = append(result.SelectedMatches, m)
		}
	}
	if len(result.SelectedMatches) != f.Params.TargetMatches {
		return nil, fmt.Errorf("solver selected %d matches, want exactly %d",
			len(result.SelectedMatches), f.Params.TargetMatches)
	}

	for t := 0; t < nTeams; t++ {
		name := store.TeamName(t)
		result.TeamParticipation[name] = roundCount(sol.Value(f.participation[t]))
		counts := make(map[string]int, len(roles))
		for _, role := range roles {
			counts[role] = roundCount(sol.Value(f.roleCounts[role][t]))
		}
		result.TeamRoleCounts[name] = counts
	}

	result.TotalMatches = len(result.SelectedMatches)
	result.BalanceScore = sol.Objective
	return result, nil
}

func roundCount(v float64) int {
	return int(math.Round(v))
}
