// ABOUTME: Command-line runner for the Clara persona benchmark
// ABOUTME: Plays scripted conversations against the configured model and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harper/clara/benchmarks/persona"
	"github.com/harper/clara/internal/config"
	"github.com/harper/clara/internal/llm"
	"github.com/harper/clara/internal/session"
)

func main() {
	testIDs := make([]string, 0, len(persona.GetAllTests()))
	for _, s := range persona.GetAllTests() {
		testIDs = append(testIDs, s.ID)
	}
	validIDs := strings.Join(testIDs, ", ")

	testID := flag.String("test", "", "Run specific test ("+validIDs+"). If empty, runs all tests.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "benchmark"})

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found (continuing anyway)", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("benchmarks need a valid configuration", "err", err)
	}

	client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		ChatModel: cfg.Model,
	})
	if err != nil {
		logger.Fatal("failed to create model client", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("========================================")
	fmt.Println("Clara Persona Benchmarks")
	fmt.Println("========================================")
	fmt.Printf("Model: %s\n\n", client.ModelID())

	runner := persona.NewBenchmarkRunner(session.Options{
		Model:       client,
		Window:      cfg.HistoryWindow,
		Timeout:     cfg.Timeout,
		Temperature: float32(cfg.Temperature),
		TopP:        float32(cfg.TopP),
		MaxTokens:   cfg.MaxTokens,
	}, *verbose, os.Stdout)

	var results []persona.TestResult
	if *testID == "" {
		fmt.Println("Running all persona benchmark tests...")
		fmt.Println()
		results = runner.RunAllTests(ctx)
	} else {
		scenario, ok := persona.GetTest(*testID)
		if !ok {
			logger.Fatal(fmt.Sprintf("Unknown test ID: %s (valid options: %s)", *testID, validIDs))
		}

		fmt.Printf("Running test: %s\n\n", scenario.Name)

		result, err := runner.RunTest(ctx, scenario)
		if err != nil {
			logger.Fatal("test failed", "test", scenario.ID, "err", err)
		}
		results = []persona.TestResult{result}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		if result.ErrorMessage != "" {
			fmt.Printf("  Error: %s\n", result.ErrorMessage)
		}
		fmt.Printf("  Adherence: %.2f\n", result.AdherenceScore)
		fmt.Printf("  Recall: %.2f\n", result.RecallScore)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)
	}

	passed, failed := persona.Summary(results)
	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", len(results))
	fmt.Printf("Passed: %d\n", passed)
	fmt.Printf("Failed: %d\n", failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		logger.Fatal("failed to export results", "err", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
