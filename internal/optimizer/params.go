package optimizer

import (
	"fmt"
)

// Params are the tunable policy parameters of one solve. They shape the
// formulation only; the corpus and its matrices are fixed inputs.
type Params struct {
	// TargetMatches is the exact number of matches to select.
	TargetMatches int `json:"target_matches"`
	// BalanceWeight scales the participation-spread term against the
	// role-spread terms.
	BalanceWeight float64 `json:"balance_weight"`
	// MaxZeroRolesPerTeam caps how many relevant roles a team may end up
	// never playing within the selected subset.
	MaxZeroRolesPerTeam int `json:"max_zero_roles_per_team"`
	// CountOnlySeenRoles excludes (team, role) pairs that never occur in the
	// whole corpus from the zero-count accounting; selection cannot fix them.
	CountOnlySeenRoles bool `json:"count_only_seen_roles"`
	// RequireMinParticipation forces every team to appear at least once.
	RequireMinParticipation bool `json:"require_min_participation"`
}

// DefaultParams returns the defaults for a corpus of matchCount matches:
// select half of them, weight 1.0, no zero roles allowed, count only seen
// roles, and require minimum participation.
func DefaultParams(matchCount int) Params {
	target := matchCount / 2
	if target < 1 {
		target = 1
	}
	return Params{
		TargetMatches:           target,
		BalanceWeight:           1.0,
		MaxZeroRolesPerTeam:     0,
		CountOnlySeenRoles:      true,
		RequireMinParticipation: true,
	}
}

// Validate rejects malformed parameters before any constraint construction.
func (p Params) Validate(matchCount int) error {
	if p.TargetMatches < 0 || p.TargetMatches > matchCount {
		return fmt.Errorf("target_matches %d out of range [0, %d]", p.TargetMatches, matchCount)
	}
	if p.BalanceWeight < 0 {
		return fmt.Errorf("balance_weight must be non-negative, got %v", p.BalanceWeight)
	}
	if p.MaxZeroRolesPerTeam < 0 {
		return fmt.Errorf("max_zero_roles_per_team must be non-negative, got %d", p.MaxZeroRolesPerTeam)
	}
	return nil
}
