package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/optimizer"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
)

// WriteRoleDistribution writes the team x role count table, one row per team
// in name order, with total participation as the last column.
func WriteRoleDistribution(path string, store *pattern.Store, result *optimizer.Result) error {
	roles := store.Roles()

	header := append([]string{"Team"}, roles...)
	header = append(header, "Total_Participation")
	rows := [][]string{header}

	teams := store.Teams()
	sort.Strings(teams)
	for _, team := range teams {
		row := []string{team}
		for _, role := range roles {
			row = append(row, strconv.Itoa(result.TeamRoleCounts[team][role]))
		}
		row = append(row, strconv.Itoa(result.TeamParticipation[team]))
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

// WriteSummary writes the metric/value summary table including participation
// statistics across teams.
func WriteSummary(path string, result *optimizer.Result) error {
	participations := make([]float64, 0, len(result.TeamParticipation))
	for _, count := range result.TeamParticipation {
		participations = append(participations, float64(count))
	}

	mean, stddev, minPart, maxPart := 0.0, 0.0, 0.0, 0.0
	if len(participations) > 0 {
		sort.Float64s(participations)
		mean = stat.Mean(participations, nil)
		stddev = stat.PopStdDev(participations, nil)
		minPart = participations[0]
		maxPart = participations[len(participations)-1]
	}

	rows := [][]string{
		{"Metric", "Value"},
		{"Total Matches Selected", strconv.Itoa(result.TotalMatches)},
		{"Balance Score", fmt.Sprintf("%.2f", result.BalanceScore)},
		{"Optimization Status", result.Status.String()},
		{"Mean Team Participation", fmt.Sprintf("%.2f", mean)},
		{"Std Dev Team Participation", fmt.Sprintf("%.2f", stddev)},
		{"Min Team Participation", strconv.Itoa(int(minPart))},
		{"Max Team Participation", strconv.Itoa(int(maxPart))},
	}
	return writeCSV(path, rows)
}

// WriteSelectedMatches writes the selected match indices together with the
// gameN file names they correspond to (game numbering starts at 1).
func WriteSelectedMatches(path string, result *optimizer.Result) error {
	rows := [][]string{{"Selected_Match_Index", "Game_File"}}
	for _, idx := range result.SelectedMatches {
		rows = append(rows, []string{strconv.Itoa(idx), fmt.Sprintf("game%d", idx+1)})
	}
	return writeCSV(path, rows)
}

// WriteTables writes all three CSV tables for dataset into dir.
func WriteTables(dir, dataset string, store *pattern.Store, result *optimizer.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create table directory: %w", err)
	}
	if err := WriteRoleDistribution(filepath.Join(dir, fmt.Sprintf("role_distribution_%s.csv", dataset)), store, result); err != nil {
		return err
	}
	if err := WriteSummary(filepath.Join(dir, fmt.Sprintf("optimization_summary_%s.csv", dataset)), result); err != nil {
		return err
	}
	return WriteSelectedMatches(filepath.Join(dir, fmt.Sprintf("selected_matches_%s.csv", dataset)), result)
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create table directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
