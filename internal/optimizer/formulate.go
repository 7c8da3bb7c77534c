package optimizer

import (
	"fmt"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/matrix"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/solver"
)

// Formulation is a complete mixed-integer program for one solve, together
// with the variable indices needed to read the solution back out.
type Formulation struct {
	Program *solver.Program
	Params  Params

	selection     []int            // one binary per match
	participation []int            // one integer per team
	roleCounts    map[string][]int // role -> one integer per team
}

// Formulate builds the selection program from the corpus matrices and policy
// parameters. The corpus is not consulted beyond the matrices and the
// role/team metadata; nothing here mutates shared state, so the same store
// and matrix set can serve concurrent formulations.
func Formulate(store *pattern.Store, mats *matrix.Set, params Params) (*Formulation, error) {
	nMatches := mats.MatchCount()
	nTeams := mats.TeamCount()

	if err := params.Validate(nMatches); err != nil {
		return nil, err
	}

	prog := solver.NewProgram("match_selection_optimization")
	f := &Formulation{
		Program:    prog,
		Params:     params,
		roleCounts: make(map[string][]int),
	}

	// Decision variables: one binary per match.
	f.selection = make([]int, nMatches)
	for m := 0; m < nMatches; m++ {
		f.selection[m] = prog.AddBinary(fmt.Sprintf("match_%d", m))
	}

	// Participation and per-role counts are fully determined by the
	// selection; they are modeled as variables so the spread terms stay
	// linear.
	f.participation = make([]int, nTeams)
	for t := 0; t < nTeams; t++ {
		f.participation[t] = prog.AddInteger(fmt.Sprintf("team_participation_%d", t), 0)
	}
	roles := store.Roles()
	for _, role := range roles {
		vars := make([]int, nTeams)
		for t := 0; t < nTeams; t++ {
			vars[t] = prog.AddInteger(fmt.Sprintf("team_%d_role_%s", t, role), 0)
		}
		f.roleCounts[role] = vars
	}

	// Exactly the target number of matches is selected.
	selTerms := make([]solver.Term, nMatches)
	for m := 0; m < nMatches; m++ {
		selTerms[m] = solver.Term{Var: f.selection[m], Coef: 1}
	}
	prog.AddConstraint("target_matches", selTerms, solver.Equal, float64(params.TargetMatches))

	// Link participation counts to the selection.
	for t := 0; t < nTeams; t++ {
		terms := []solver.Term{{Var: f.participation[t], Coef: 1}}
		for m := 0; m < nMatches; m++ {
			if mats.Participation.At(m, t) == 1 {
				terms = append(terms, solver.Term{Var: f.selection[m], Coef: -1})
			}
		}
		prog.AddConstraint(fmt.Sprintf("def_participation_%d", t), terms, solver.Equal, 0)
	}

	// Link role counts to the selection.
	for _, role := range roles {
		roleMat := mats.Roles[role]
		for t := 0; t < nTeams; t++ {
			terms := []solver.Term{{Var: f.roleCounts[role][t], Coef: 1}}
			for m := 0; m < nMatches; m++ {
				if roleMat.At(m, t) == 1 {
					terms = append(terms, solver.Term{Var: f.selection[m], Coef: -1})
				}
			}
			prog.AddConstraint(fmt.Sprintf("def_role_%s_%d", role, t), terms, solver.Equal, 0)
		}
	}

	// Indicator w=1 iff the team plays the role at least once in the
	// selection, linearized with the safe upper bound nMatches: no count can
	// exceed the total number of matches, so w=0 forces the count to 0 while
	// w=1 only lower-bounds it at 1.
	bigM := float64(nMatches)
	tracked := make([][]int, nTeams)
	for _, role := range roles {
		if store.ExpectedCount(role) <= 0 {
			continue
		}
		for t := 0; t < nTeams; t++ {
			if params.CountOnlySeenRoles && !mats.Seen(role, t) {
				continue
			}
			w := prog.AddBinary(fmt.Sprintf("w_team_%d_role_%s", t, role))
			tracked[t] = append(tracked[t], w)
			count := f.roleCounts[role][t]
			prog.AddConstraint(fmt.Sprintf("played_%s_%d_lb", role, t),
				[]solver.Term{{Var: count, Coef: 1}, {Var: w, Coef: -1}},
				solver.GreaterEq, 0)
			prog.AddConstraint(fmt.Sprintf("played_%s_%d_ub", role, t),
				[]solver.Term{{Var: count, Coef: 1}, {Var: w, Coef: -bigM}},
				solver.LessEq, 0)
		}
	}

	// Cap the number of zero-count roles per team:
	// sum(1-w) <= max  <=>  sum(w) >= tracked - max.
	for t := 0; t < nTeams; t++ {
		if len(tracked[t]) == 0 {
			continue
		}
		terms := make([]solver.Term, len(tracked[t]))
		for i, w := range tracked[t] {
			terms[i] = solver.Term{Var: w, Coef: 1}
		}
		rhs := float64(len(tracked[t]) - params.MaxZeroRolesPerTeam)
		prog.AddConstraint(fmt.Sprintf("max_zero_roles_%d", t), terms, solver.GreaterEq, rhs)
	}

	if params.RequireMinParticipation {
		for t := 0; t < nTeams; t++ {
			prog.AddConstraint(fmt.Sprintf("require_participation_%d", t),
				[]solver.Term{{Var: f.participation[t], Coef: 1}},
				solver.GreaterEq, 1)
		}
	}

	// Spread linearization for the objective: max >= every count,
	// min <= every count.
	maxPart := prog.AddInteger("max_participation", 0)
	minPart := prog.AddInteger("min_participation", 0)
	for t := 0; t < nTeams; t++ {
		prog.AddConstraint(fmt.Sprintf("max_participation_%d", t),
			[]solver.Term{{Var: maxPart, Coef: 1}, {Var: f.participation[t], Coef: -1}},
			solver.GreaterEq, 0)
		prog.AddConstraint(fmt.Sprintf("min_participation_%d", t),
			[]solver.Term{{Var: minPart, Coef: 1}, {Var: f.participation[t], Coef: -1}},
			solver.LessEq, 0)
	}
	prog.AddObjectiveTerm(maxPart, params.BalanceWeight)
	prog.AddObjectiveTerm(minPart, -params.BalanceWeight)

	for _, role := range roles {
		if store.ExpectedCount(role) <= 0 {
			continue
		}
		maxRole := prog.AddInteger(fmt.Sprintf("max_role_%s", role), 0)
		minRole := prog.AddInteger(fmt.Sprintf("min_role_%s", role), 0)
		for t := 0; t < nTeams; t++ {
			prog.AddConstraint(fmt.Sprintf("max_role_%s_%d", role, t),
				[]solver.Term{{Var: maxRole, Coef: 1}, {Var: f.roleCounts[role][t], Coef: -1}},
				solver.GreaterEq, 0)
			prog.AddConstraint(fmt.Sprintf("min_role_%s_%d", role, t),
				[]solver.Term{{Var: minRole, Coef: 1}, {Var: f.roleCounts[role][t], Coef: -1}},
				solver.LessEq, 0)
		}
		weight := float64(store.ExpectedCount(role))
		if weight <= 0 {
			weight = 1
		}
		prog.AddObjectiveTerm(maxRole, weight*params.BalanceWeight)
		prog.AddObjectiveTerm(minRole, -weight*params.BalanceWeight)
	}

	return f, nil
}
