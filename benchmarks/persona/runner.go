// ABOUTME: Benchmark runner that plays scripted conversations through a real session
// ABOUTME: Collects the final reply of each scenario, scores it and exports JSON results

package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/clara/internal/interactionlog"
	"github.com/harper/clara/internal/session"
	"github.com/harper/clara/internal/styler"
)

// BenchmarkRunner executes persona benchmark scenarios
type BenchmarkRunner struct {
	base    session.Options
	metrics *MetricsCalculator
	verbose bool
	out     io.Writer
}

// NewBenchmarkRunner creates a runner whose sessions start from base, which must
// name a Model. Progress goes to out when verbose.
func NewBenchmarkRunner(base session.Options, verbose bool, out io.Writer) *BenchmarkRunner {
	if out == nil {
		out = os.Stdout
	}
	return &BenchmarkRunner{
		base:    base,
		metrics: NewMetricsCalculator(),
		verbose: verbose,
		out:     out,
	}
}

// RunTest plays one scenario in a fresh session
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Description: %s\n\n", scenario.Description)
	}

	// replies are scored unstyled and never logged
	opts := r.base
	opts.Styler = styler.Plain{}
	opts.Recorder = interactionlog.New(nil, log.New(io.Discard))
	opts.Logger = log.New(io.Discard)
	s := session.New(opts)

	var finalResponse string
	for _, turn := range scenario.Turns {
		if r.verbose {
			fmt.Fprintf(r.out, "[Turn %d] User: %s\n", turn.TurnNumber, turn.UserMessage)
		}

		view, err := s.Submit(ctx, turn.UserMessage)
		if err != nil {
			return TestResult{}, fmt.Errorf("turn %d failed: %w", turn.TurnNumber, err)
		}
		response := view.Turns[len(view.Turns)-1].Text

		if r.verbose {
			fmt.Fprintf(r.out, "[Turn %d] Clara: %s\n\n", turn.TurnNumber, preview(response, 150))
		}

		if turn.TurnNumber == scenario.GroundTruth.FinalQueryTurn {
			finalResponse = response
		}
	}

	result := r.metrics.EvaluateTest(scenario, finalResponse)

	if r.verbose {
		fmt.Fprintf(r.out, "RESULTS: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "Adherence: %.2f\n", result.AdherenceScore)
		fmt.Fprintf(r.out, "Recall: %.2f\n", result.RecallScore)
		fmt.Fprintf(r.out, "Status: %s\n", result.Status)
	}

	return result, nil
}

// RunAllTests runs every scenario. A failing remote call is recorded on its result
// rather than aborting the run.
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) []TestResult {
	scenarios := GetAllTests()
	results := make([]TestResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunTest(ctx, scenario)
		if err != nil {
			result = TestResult{
				TestID:       scenario.ID,
				TestName:     scenario.Name,
				Status:       "FAIL",
				ErrorMessage: err.Error(),
			}
		}
		results = append(results, result)
	}

	return results
}

// Summary counts passing and failing results
func Summary(results []TestResult) (passed, failed int) {
	for _, result := range results {
		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// ExportResults writes the results and a summary to outputPath as JSON
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	passed, failed := Summary(results)
	summary := map[string]interface{}{
		"timestamp":   time.Now().Format(time.RFC3339),
		"model":       r.base.Model.ModelID(),
		"total_tests": len(results),
		"passed":      passed,
		"failed":      failed,
		"results":     results,
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Fprintf(r.out, "✓ Results exported to: %s\n", outputPath)
	return nil
}
