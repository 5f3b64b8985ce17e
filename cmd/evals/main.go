// Command evals runs the wikitext evaluation suites.
//
// Usage:
//
//	go run ./cmd/evals -dir ./evals -suite all
//
// The golden suite is executed against the engine and fails the command on
// any mismatch. The tool selection suite is summarized; to score an LLM,
// implement evals.ToolSelector and call evals.EvaluateToolSelection.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/powera/wiki-scripts/evals"
	"github.com/powera/wiki-scripts/internal/engine"
)

func main() {
	dir := flag.String("dir", "./evals", "Directory containing eval JSON files")
	suite := flag.String("suite", "all", "Suite to run: golden, tool_selection, or all")
	verbose := flag.Bool("verbose", false, "Show detailed test information")
	flag.Parse()

	fmt.Println("Wikitext MCP Server - Evaluation Framework")
	fmt.Println("==========================================")
	fmt.Println()

	ok := true
	switch *suite {
	case "golden":
		ok = runGolden(*dir, *verbose)
	case "tool_selection":
		loadToolSelection(*dir, *verbose)
	case "all":
		ok = runGolden(*dir, *verbose)
		loadToolSelection(*dir, *verbose)
	default:
		fmt.Fprintf(os.Stderr, "Unknown suite: %s\n", *suite)
		os.Exit(1)
	}

	if !ok {
		os.Exit(1)
	}
}

func runGolden(dir string, verbose bool) bool {
	suite, err := evals.LoadGoldenSuite(filepath.Join(dir, "golden.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading golden suite: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer eng.Close()

	metrics, results := evals.EvaluateGolden(context.Background(), suite, evals.NewEngineOperator(eng))
	fmt.Print(evals.FormatMetrics(metrics, suite.Name))

	fmt.Println("\nBy Tool:")
	for _, tool := range sortedKeys(metrics.ByTool) {
		m := metrics.ByTool[tool]
		fmt.Printf("  %-30s: %d/%d\n", tool, m.CorrectCount, m.ExpectedCount)
	}

	if verbose {
		fmt.Println("\nCases:")
		for _, r := range results {
			mark := "✓"
			if !r.Passed {
				mark = "✗"
			}
			fmt.Printf("  %s [%s] %s\n", mark, r.CaseID, r.Tool)
			for _, e := range r.Errors {
				fmt.Printf("      %s\n", e)
			}
		}
	}

	covered := make([]string, 0, len(suite.Cases))
	for _, gc := range suite.Cases {
		covered = append(covered, gc.Tool)
	}
	if missing := evals.UncoveredTools(covered); len(missing) > 0 {
		fmt.Printf("\nTools without golden cases: %v\n", missing)
	}
	fmt.Println()

	return metrics.FailedTests == 0
}

func loadToolSelection(dir string, verbose bool) {
	path := filepath.Join(dir, "tool_selection.json")
	suite, err := evals.LoadToolSelectionSuite(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tool selection suite: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Tool Selection Suite: %s\n", suite.Name)
	fmt.Printf("Version: %s\n", suite.Version)
	fmt.Printf("Description: %s\n", suite.Description)
	fmt.Printf("Total Tests: %d\n", len(suite.Tests))
	fmt.Println()

	categories := make(map[string]int)
	tools := make(map[string]int)
	for _, test := range suite.Tests {
		categories[test.Category]++
		tools[test.ExpectedTool]++
	}

	fmt.Println("Tests by Category:")
	for _, cat := range sortedKeys(categories) {
		fmt.Printf("  %-15s: %d\n", cat, categories[cat])
	}
	fmt.Println()

	fmt.Println("Tests by Tool:")
	for _, tool := range sortedKeys(tools) {
		fmt.Printf("  %-30s: %d\n", tool, tools[tool])
	}
	if missing := evals.UncoveredTools(sortedKeys(tools)); len(missing) > 0 {
		fmt.Printf("\nTools without selection tests: %v\n", missing)
	}
	fmt.Println()

	if verbose {
		fmt.Println("Test Cases:")
		for _, test := range suite.Tests {
			fmt.Printf("  [%s] %s\n", test.ID, test.Input)
			fmt.Printf("    → %s %v\n", test.ExpectedTool, test.ExpectedArgs)
			if len(test.NotTools) > 0 {
				fmt.Printf("    ✗ %v\n", test.NotTools)
			}
		}
		fmt.Println()
	}

	fmt.Println("To score an LLM, implement the evals.ToolSelector interface")
	fmt.Println("and use evals.EvaluateToolSelection()")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
