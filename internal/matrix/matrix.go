// Package matrix derives the boolean participation and role-assignment
// matrices the optimizer works on. Building is a pure function of the corpus;
// a Set never changes after construction and may be shared across concurrent
// solves.
package matrix

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
)

// Set bundles the derived matrices for one corpus. Entries are 0 or 1.
// Participation is matches x teams: 1 when the team appears under any role.
// Roles holds one matches x teams matrix per declared role.
type Set struct {
	Participation *mat.Dense
	Roles         map[string]*mat.Dense

	matches int
	teams   int

	// Dropped counts team indices discarded because they fall outside
	// [0, team_count). These are data-quality discards, not errors.
	Dropped int
}

// Build constructs the matrix set from a corpus. Roles in match payloads
// outside the declared role set are ignored, as are out-of-range team
// indices (counted in Dropped).
func Build(store *pattern.Store) *Set {
	nMatches := store.MatchCount()
	nTeams := store.TeamCount()

	s := &Set{
		Participation: mat.NewDense(max(nMatches, 1), max(nTeams, 1), nil),
		Roles:         make(map[string]*mat.Dense, len(store.Roles())),
		matches:       nMatches,
		teams:         nTeams,
	}
	for _, role := range store.Roles() {
		s.Roles[role] = mat.NewDense(max(nMatches, 1), max(nTeams, 1), nil)
	}

	for m := 0; m < nMatches; m++ {
		for role, teamIdxs := range store.Match(m) {
			roleMat, known := s.Roles[role]
			for _, t := range teamIdxs {
				if t < 0 || t >= nTeams {
					s.Dropped++
					continue
				}
				s.Participation.Set(m, t, 1)
				if known {
					roleMat.Set(m, t, 1)
				}
			}
		}
	}
	return s
}

// MatchCount returns the number of matrix rows.
func (s *Set) MatchCount() int { return s.matches }

// TeamCount returns the number of matrix columns.
func (s *Set) TeamCount() int { return s.teams }

// Seen reports whether the team filled the role at least once anywhere in the
// corpus.
func (s *Set) Seen(role string, team int) bool {
	roleMat, ok := s.Roles[role]
	if !ok {
		return false
	}
	for m := 0; m < s.matches; m++ {
		if roleMat.At(m, team) == 1 {
			return true
		}
	}
	return false
}

// ParticipationCount sums the team's participation over the given match
// indices. Used for independent verification of solved counts.
func (s *Set) ParticipationCount(team int, selected []int) int {
	count := 0
	for _, m := range selected {
		if s.Participation.At(m, team) == 1 {
			count++
		}
	}
	return count
}

// RoleCount sums the team's assignments to role over the given match indices.
func (s *Set) RoleCount(role string, team int, selected []int) int {
	roleMat, ok := s.Roles[role]
	if !ok {
		return 0
	}
	count := 0
	for _, m := range selected {
		if roleMat.At(m, team) == 1 {
			count++
		}
	}
	return count
}
