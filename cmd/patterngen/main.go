package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
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

	fmt.Println("=== Pattern of Matches Generator ===")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	playerCount, err := promptInt(reader, "Enter player count (5 or 13): ")
	if err != nil {
		return fmt.Errorf("invalid player count: %w", err)
	}

	gen, err := pattern.NewGenerator(playerCount, log)
	if err != nil {
		return err
	}

	rawBase := filepath.Join(cfg.DataDir, "raw")
	datasets, err := listSubdirs(rawBase)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		return fmt.Errorf("no subdirectories found in %s", rawBase)
	}

	fmt.Println("Available data directories:")
	for i, ds := range datasets {
		fmt.Printf("  %d. %s\n", i+1, ds)
	}
	choice, err := promptInt(reader, fmt.Sprintf("\nSelect directory (1-%d): ", len(datasets)))
	if err != nil || choice < 1 || choice > len(datasets) {
		return fmt.Errorf("invalid choice")
	}
	dataset := datasets[choice-1]
	dataPath := filepath.Join(rawBase, dataset)

	fmt.Printf("\nSelected directory: %s\n", dataPath)
	fmt.Printf("Processing first %d lines from each game file...\n\n", playerCount)

	processed, err := gen.ProcessDirectory(dataPath)
	if err != nil {
		return err
	}
	if gen.MatchCount() == 0 {
		return fmt.Errorf("no pattern data generated, check the game files in %s", dataPath)
	}

	doc := gen.Document()

	fmt.Println("=== Summary ===")
	fmt.Printf("Total games processed: %d\n", processed)
	fmt.Printf("Total teams found: %d\n", len(gen.Teams()))
	fmt.Printf("Teams: %s\n", strings.Join(gen.Teams(), ", "))

	outputPath := filepath.Join(cfg.DataDir, "pattern_of_matches", dataset, "pattern_of_matches.json")
	if err := pattern.SaveDocument(outputPath, doc); err != nil {
		return err
	}
	fmt.Printf("\nPattern of matches saved to: %s\n", outputPath)

	printSample(doc)
	return nil
}

func printSample(doc pattern.Document) {
	sample := doc
	if len(sample.PatternOfMatches) > 3 {
		sample.PatternOfMatches = sample.PatternOfMatches[:3]
	}
	data, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return
	}
	fmt.Println("\n=== Sample Output ===")
	fmt.Println(string(data))
	if extra := len(doc.PatternOfMatches) - 3; extra > 0 {
		fmt.Printf("... and %d more matches\n", extra)
	}
}

func listSubdirs(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("base directory not found: %s", baseDir)
		}
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func promptInt(reader *bufio.Reader, prompt string) (int, error) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(line))
}
