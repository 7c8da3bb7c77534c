// Package export turns optimization results into their outward-facing forms:
// the result JSON document, CSV tables, and the copied set of selected raw
// log files.
package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/optimizer"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
)

// Report is the serializable result document, carrying the original team and
// role mappings alongside the selection for traceability. BalanceScore is nil
// when the solve was not optimal (the in-memory sentinel +Inf has no JSON
// representation).
type Report struct {
	OptimizationStatus   string                    `json:"optimization_status"`
	TotalMatchesSelected int                       `json:"total_matches_selected"`
	BalanceScore         *float64                  `json:"balance_score"`
	SelectedMatchIndices []int                     `json:"selected_match_indices"`
	TeamParticipation    map[string]int            `json:"team_participation"`
	TeamRoleCounts       map[string]map[string]int `json:"team_role_counts"`
	OriginalData         OriginalData              `json:"original_data"`
}

// OriginalData echoes the corpus mappings the result was computed from.
type OriginalData struct {
	IdxTeamMap            map[string]string `json:"idx_team_map"`
	RoleNumMap            map[string]int    `json:"role_num_map"`
	TotalAvailableMatches int               `json:"total_available_matches"`
}

// BuildReport assembles the result document for a solve over store.
func BuildReport(result *optimizer.Result, store *pattern.Store) *Report {
	doc := store.Document()
	report := &Report{
		OptimizationStatus:   result.Status.String(),
		TotalMatchesSelected: result.TotalMatches,
		SelectedMatchIndices: result.SelectedMatches,
		TeamParticipation:    result.TeamParticipation,
		TeamRoleCounts:       result.TeamRoleCounts,
		OriginalData: OriginalData{
			IdxTeamMap:            doc.IdxTeamMap,
			RoleNumMap:            doc.RoleNumMap,
			TotalAvailableMatches: store.MatchCount(),
		},
	}
	if !math.IsInf(result.BalanceScore, 1) {
		score := result.BalanceScore
		report.BalanceScore = &score
	}
	return report
}

// SaveReport writes the report as indented JSON, creating parent directories.
func SaveReport(path string, report *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
