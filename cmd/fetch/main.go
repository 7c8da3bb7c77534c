package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/fetcher"
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
	log := logger.InitLogger("info", cfg.IsDevelopment())

	fmt.Println("=== AIWolf Log Fetcher ===")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Enter the log directory URL: ")
	baseURL, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return fmt.Errorf("URL is required")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	dataset := datasetNameFromURL(baseURL)
	if dataset == "" {
		fmt.Print("Enter a name for this dataset: ")
		dataset, err = reader.ReadString('\n')
		if err != nil {
			return err
		}
		dataset = strings.ToLower(strings.TrimSpace(dataset))
		if dataset == "" {
			return fmt.Errorf("dataset name is required")
		}
	}

	outDir := filepath.Join(cfg.DataDir, "raw", dataset)
	fmt.Printf("\nOutput directory: %s\n", outDir)

	fetchLog := logger.WithFetchContext(baseURL, dataset)
	fetchLog.Info("Starting log fetch")

	client := fetcher.New(log, cfg.FetchRateLimit, cfg.FetchTimeout, cfg.FetchUserAgent)
	summary, err := client.FetchDirectory(context.Background(), baseURL, outDir)
	if err != nil {
		fetchLog.WithError(err).Error("Log fetch failed")
		return err
	}
	fetchLog.WithFields(logrus.Fields{
		"links_found": summary.LinksFound,
		"processed":   summary.Processed,
		"saved":       len(summary.Saved),
	}).Info("Log fetch finished")

	fmt.Println("\n=== Summary ===")
	fmt.Printf("Total .log links found: %d\n", summary.LinksFound)
	fmt.Printf("Successfully processed: %d\n", summary.Processed)
	fmt.Printf("Files saved: %d\n", len(summary.Saved))
	if len(summary.Saved) > 0 {
		fmt.Printf("Saved files: %s\n", strings.Join(summary.Saved, ", "))
	} else {
		fmt.Println("No files met the criteria for saving")
	}
	return nil
}

// datasetNameFromURL derives a dataset name from the last meaningful path
// segment of the URL.
func datasetNameFromURL(baseURL string) string {
	parts := strings.Split(strings.TrimRight(baseURL, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		part := parts[i]
		if part == "" || part == "log" || part == "logs" || strings.HasSuffix(part, ":") {
			continue
		}
		return strings.ToLower(part)
	}
	return ""
}
