package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/export"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/optimizer"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/solver"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/pkg/config"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logger.InitLogger("warn", cfg.IsDevelopment())

	fmt.Println("=== Match Selection Optimizer (ILP) ===")
	fmt.Println()

	patternBase := filepath.Join(cfg.DataDir, "pattern_of_matches")
	datasets, err := listDatasets(patternBase)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		return fmt.Errorf("no pattern files found in %s (expected %s/*/pattern_of_matches.json)", patternBase, patternBase)
	}

	fmt.Println("Available pattern files:")
	for i, ds := range datasets {
		fmt.Printf("  %d. %s/pattern_of_matches.json\n", i+1, ds)
	}

	reader := bufio.NewReader(os.Stdin)
	choice, err := promptInt(reader, fmt.Sprintf("\nSelect pattern file (1-%d): ", len(datasets)), 0)
	if err != nil || choice < 1 || choice > len(datasets) {
		return fmt.Errorf("invalid choice")
	}
	dataset := datasets[choice-1]
	patternPath := filepath.Join(patternBase, dataset, "pattern_of_matches.json")
	fmt.Printf("\nSelected file: %s\n", patternPath)

	store, err := pattern.Load(patternPath)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d matches with %d teams\n", store.MatchCount(), store.TeamCount())
	fmt.Printf("Teams: %s\n", strings.Join(store.Teams(), ", "))
	fmt.Printf("Roles: %s\n", strings.Join(store.Roles(), ", "))

	params := optimizer.DefaultParams(store.MatchCount())
	if target, err := promptInt(reader, "\nEnter target number of matches (or press Enter for default): ", params.TargetMatches); err == nil {
		params.TargetMatches = target
	}
	if maxZero, err := promptInt(reader, "Max zero-count roles per team (0=forbid, 1=allow one; Enter for 0): ", 0); err == nil {
		params.MaxZeroRolesPerTeam = maxZero
	}
	params.CountOnlySeenRoles = promptYesNo(reader, "Count only roles seen in data for each team? [Y/n] (Enter=Y): ")
	params.RequireMinParticipation = promptYesNo(reader, "Require each team to appear at least once? [Y/n] (Enter=Y): ")

	fmt.Println("\nRunning integer linear programming optimization...")
	runLog := logger.WithOptimizationContext(uuid.New().String(), dataset)
	runLog.WithFields(logrus.Fields{
		"target_matches": params.TargetMatches,
		"max_zero_roles": params.MaxZeroRolesPerTeam,
	}).Info("Starting solve")

	opt := optimizer.New(store, solver.NewGLPK(log), log)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.SolveTimeout)
	defer cancel()

	result, err := opt.Optimize(ctx, params)
	if err != nil {
		runLog.WithError(err).Error("Solve failed")
		return err
	}
	runLog.WithFields(logrus.Fields{
		"status":        result.Status.String(),
		"balance_score": result.BalanceScore,
	}).Info("Solve finished")

	displayResult(store, result)

	if result.TotalMatches == 0 {
		return nil
	}

	rawDir := filepath.Join(cfg.DataDir, "raw", dataset)
	selectedDir := filepath.Join(cfg.DataDir, "selected_files", dataset)
	if copied, err := export.CopySelectedFiles(rawDir, selectedDir, result.SelectedMatches, log); err != nil {
		fmt.Printf("Warning: could not copy selected files: %v\n", err)
	} else {
		fmt.Printf("\nCopied %d game files to: %s\n", copied, selectedDir)
	}

	tableDir := filepath.Join(cfg.DataDir, "table", dataset)
	if err := export.WriteTables(tableDir, dataset, store, result); err != nil {
		return err
	}
	fmt.Printf("Tables saved to: %s\n", tableDir)

	report := export.BuildReport(result, store)
	reportPath := filepath.Join(tableDir, fmt.Sprintf("optimization_result_%s.json", dataset))
	if err := export.SaveReport(reportPath, report); err != nil {
		return err
	}
	fmt.Printf("Results saved to: %s\n", reportPath)
	return nil
}

func displayResult(store *pattern.Store, result *optimizer.Result) {
	fmt.Println("\n=== Optimization Results ===")
	fmt.Printf("Status: %s\n", result.Status)
	fmt.Printf("Selected matches: %d\n", result.TotalMatches)
	fmt.Printf("Balance score: %.2f\n", result.BalanceScore)

	teams := store.Teams()
	sort.Strings(teams)

	fmt.Println("\n=== Team Participation ===")
	participations := make([]float64, 0, len(teams))
	for _, team := range teams {
		fmt.Printf("%s: %d matches\n", team, result.TeamParticipation[team])
		participations = append(participations, float64(result.TeamParticipation[team]))
	}
	if len(participations) > 0 {
		sort.Float64s(participations)
		fmt.Println("\nParticipation Statistics:")
		fmt.Printf("  Mean: %.2f\n", stat.Mean(participations, nil))
		fmt.Printf("  Std Dev: %.2f\n", stat.PopStdDev(participations, nil))
		fmt.Printf("  Min: %d, Max: %d\n", int(participations[0]), int(participations[len(participations)-1]))
	}

	fmt.Println("\n=== Role Distribution by Team ===")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	roles := store.Roles()
	fmt.Fprintf(w, "Team\t%s\tTotal_Participation\n", strings.Join(roles, "\t"))
	for _, team := range teams {
		counts := make([]string, len(roles))
		for i, role := range roles {
			counts[i] = strconv.Itoa(result.TeamRoleCounts[team][role])
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", team, strings.Join(counts, "\t"), result.TeamParticipation[team])
	}
	w.Flush()
}

func listDatasets(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("pattern directory not found: %s", baseDir)
		}
		return nil, err
	}
	var datasets []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(baseDir, entry.Name(), "pattern_of_matches.json")); err == nil {
			datasets = append(datasets, entry.Name())
		}
	}
	sort.Strings(datasets)
	return datasets, nil
}

func promptInt(reader *bufio.Reader, prompt string, fallback int) (int, error) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fallback, nil
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}
	return strconv.Atoi(line)
}

func promptYesNo(reader *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return true
	}
	return strings.ToLower(strings.TrimSpace(line)) != "n"
}
