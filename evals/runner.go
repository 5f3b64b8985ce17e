// Package evals provides the evaluation framework for the wikitext tools.
// Golden suites pin the output of every tool on known pages, and tool
// selection suites check that an LLM picks the right tool and arguments
// from natural language requests.
package evals

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/powera/wiki-scripts/internal/engine"
	wikierrors "github.com/powera/wiki-scripts/internal/errors"
	"github.com/powera/wiki-scripts/tools"
	"github.com/powera/wiki-scripts/wikitext"
)

// GoldenCase is one tool invocation with its expected result.
// Expected lists only the result fields the case pins; ExpectedError names
// the error code the call must fail with instead.
type GoldenCase struct {
	ID            string         `json:"id"`
	Category      string         `json:"category"`
	Tool          string         `json:"tool"`
	Args          map[string]any `json:"args"`
	Expected      map[string]any `json:"expected,omitempty"`
	ExpectedError string         `json:"expected_error,omitempty"`
	Notes         string         `json:"notes,omitempty"`
}

// GoldenSuite contains all golden cases
type GoldenSuite struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description"`
	Cases       []GoldenCase `json:"cases"`
}

// ToolSelectionTest represents a single tool selection evaluation case
type ToolSelectionTest struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	Input        string         `json:"input"`
	ExpectedTool string         `json:"expected_tool"`
	ExpectedArgs map[string]any `json:"expected_args"`
	NotTools     []string       `json:"not_tools"`
}

// ToolSelectionSuite contains all tool selection tests
type ToolSelectionSuite struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Tests       []ToolSelectionTest `json:"tests"`
}

// GoldenResult is the outcome of one golden case
type GoldenResult struct {
	CaseID string
	Tool   string
	Passed bool
	Errors []string
}

// ToolSelectionResult represents the result of a single tool selection evaluation
type ToolSelectionResult struct {
	TestID       string
	Input        string
	ExpectedTool string
	ActualTool   string
	Passed       bool
	Errors       []string
}

// EvalMetrics contains aggregate metrics for an evaluation run
type EvalMetrics struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Accuracy      float64 // PassedTests / TotalTests
	ByCategory    map[string]*CategoryMetrics
	ByTool        map[string]*ToolMetrics
	FailedDetails []string
}

// CategoryMetrics contains metrics per category
type CategoryMetrics struct {
	Total  int
	Passed int
	Failed int
}

// ToolMetrics contains metrics per tool
type ToolMetrics struct {
	ExpectedCount  int // times tool was expected
	SelectedCount  int // times tool was actually selected
	CorrectCount   int // times tool was correctly selected or produced the golden output
	FalsePositives int // times this tool was selected instead of the expected one
	FalseNegatives int // times this tool should have been selected but wasn't
}

func newEvalMetrics() *EvalMetrics {
	return &EvalMetrics{
		ByCategory: make(map[string]*CategoryMetrics),
		ByTool:     make(map[string]*ToolMetrics),
	}
}

func (m *EvalMetrics) category(name string) *CategoryMetrics {
	c, ok := m.ByCategory[name]
	if !ok {
		c = &CategoryMetrics{}
		m.ByCategory[name] = c
	}
	return c
}

func (m *EvalMetrics) tool(name string) *ToolMetrics {
	t, ok := m.ByTool[name]
	if !ok {
		t = &ToolMetrics{}
		m.ByTool[name] = t
	}
	return t
}

// record books one finished test against its category.
func (m *EvalMetrics) record(category string, passed bool, detail string) {
	m.TotalTests++
	c := m.category(category)
	c.Total++
	if passed {
		m.PassedTests++
		c.Passed++
		return
	}
	m.FailedTests++
	c.Failed++
	m.FailedDetails = append(m.FailedDetails, detail)
}

func (m *EvalMetrics) finish() {
	if m.TotalTests > 0 {
		m.Accuracy = float64(m.PassedTests) / float64(m.TotalTests)
	}
}

func loadJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var suite T
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	return &suite, nil
}

// LoadGoldenSuite loads golden cases from a JSON file
func LoadGoldenSuite(path string) (*GoldenSuite, error) {
	return loadJSON[GoldenSuite](path)
}

// LoadToolSelectionSuite loads tool selection tests from a JSON file
func LoadToolSelectionSuite(path string) (*ToolSelectionSuite, error) {
	return loadJSON[ToolSelectionSuite](path)
}

// Operator invokes a tool by name with JSON-shaped arguments.
type Operator interface {
	Call(ctx context.Context, tool string, args map[string]any) (any, error)
}

type call func(context.Context, map[string]any) (any, error)

// EngineOperator calls the engine method behind each tool directly,
// decoding arguments the way the MCP transport does.
type EngineOperator struct {
	calls map[string]call
}

// NewEngineOperator binds every tool in tools.AllTools to eng.
func NewEngineOperator(eng *engine.Engine) *EngineOperator {
	byMethod := map[string]call{
		"Render":          bind(eng.RenderMCP),
		"Lede":            bind(eng.LedeMCP),
		"Links":           bind(eng.LinksMCP),
		"WeightedLinks":   bind(eng.WeightedLinksMCP),
		"Templates":       bind(eng.TemplatesMCP),
		"Infobox":         bind(eng.InfoboxMCP),
		"BotCheck":        bind(eng.BotCheckMCP),
		"ArticleClass":    bind(eng.ArticleClassMCP),
		"Diagnostics":     bind(eng.DiagnosticsMCP),
		"SetParam":        bind(eng.SetParamMCP),
		"RemoveParam":     bind(eng.RemoveParamMCP),
		"RemoveTemplates": bind(eng.RemoveTemplatesMCP),
		"UpsertTemplate":  bind(eng.UpsertTemplateMCP),
	}

	op := &EngineOperator{calls: make(map[string]call, len(tools.AllTools))}
	for _, spec := range tools.AllTools {
		if c, ok := byMethod[spec.Method]; ok {
			op.calls[spec.Name] = c
		}
	}
	return op
}

func bind[Args, Result any](method func(context.Context, Args) (Result, error)) call {
	return func(ctx context.Context, raw map[string]any) (any, error) {
		var args Args
		if err := remarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("decoding arguments: %w", err)
		}
		return method(ctx, args)
	}
}

// Call runs tool with args.
func (o *EngineOperator) Call(ctx context.Context, tool string, args map[string]any) (any, error) {
	c, ok := o.calls[tool]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", tool)
	}
	return c(ctx, args)
}

// remarshal copies src into dst through its JSON encoding.
func remarshal(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// EvaluateGolden runs every golden case through op
func EvaluateGolden(ctx context.Context, suite *GoldenSuite, op Operator) (*EvalMetrics, []GoldenResult) {
	metrics := newEvalMetrics()
	var results []GoldenResult

	for _, gc := range suite.Cases {
		tm := metrics.tool(gc.Tool)
		tm.ExpectedCount++

		result := GoldenResult{CaseID: gc.ID, Tool: gc.Tool}
		out, err := op.Call(ctx, gc.Tool, gc.Args)
		result.Errors = checkGolden(gc, out, err)
		result.Passed = len(result.Errors) == 0

		if result.Passed {
			tm.CorrectCount++
		}
		metrics.record(gc.Category, result.Passed,
			fmt.Sprintf("[%s] %s: %s", gc.ID, gc.Tool, strings.Join(result.Errors, "; ")))
		results = append(results, result)
	}

	metrics.finish()
	return metrics, results
}

func checkGolden(gc GoldenCase, out any, err error) []string {
	if gc.ExpectedError != "" {
		if err == nil {
			return []string{fmt.Sprintf("expected error %s, got success", gc.ExpectedError)}
		}
		if code := wikierrors.Code[wikitext.ErrorCode](err); code != gc.ExpectedError {
			return []string{fmt.Sprintf("expected error %s, got %s (%v)", gc.ExpectedError, code, err)}
		}
		return nil
	}
	if err != nil {
		return []string{fmt.Sprintf("tool error: %v", err)}
	}

	var actual map[string]any
	if err := remarshal(out, &actual); err != nil {
		return []string{fmt.Sprintf("result is not an object: %v", err)}
	}

	var errs []string
	for _, key := range sortedKeys(gc.Expected) {
		want := gc.Expected[key]
		got, exists := actual[key]
		if !exists {
			errs = append(errs, fmt.Sprintf("missing field %s (expected %v)", key, want))
		} else if !compareValues(want, got) {
			errs = append(errs, fmt.Sprintf("%s: expected %v, got %v", key, want, got))
		}
	}
	return errs
}

// ToolSelector is an interface that an LLM or mock can implement for testing
type ToolSelector interface {
	// SelectTool returns the tool name and arguments for a given natural language input
	SelectTool(input string) (toolName string, args map[string]any, err error)
}

// EvaluateToolSelection runs tool selection tests against a selector
func EvaluateToolSelection(suite *ToolSelectionSuite, selector ToolSelector) (*EvalMetrics, []ToolSelectionResult) {
	metrics := newEvalMetrics()
	var results []ToolSelectionResult

	for _, test := range suite.Tests {
		metrics.tool(test.ExpectedTool).ExpectedCount++

		actualTool, actualArgs, err := selector.SelectTool(test.Input)

		result := ToolSelectionResult{
			TestID:       test.ID,
			Input:        test.Input,
			ExpectedTool: test.ExpectedTool,
			ActualTool:   actualTool,
		}

		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("selector error: %v", err))
		}

		metrics.tool(actualTool).SelectedCount++
		if actualTool != test.ExpectedTool {
			result.Errors = append(result.Errors,
				fmt.Sprintf("wrong tool: expected %s, got %s", test.ExpectedTool, actualTool))
			metrics.tool(test.ExpectedTool).FalseNegatives++
			metrics.tool(actualTool).FalsePositives++
		} else {
			metrics.tool(test.ExpectedTool).CorrectCount++
		}

		for _, forbidden := range test.NotTools {
			if actualTool == forbidden {
				result.Errors = append(result.Errors, fmt.Sprintf("selected forbidden tool: %s", forbidden))
			}
		}

		for _, key := range sortedKeys(test.ExpectedArgs) {
			expectedValue := test.ExpectedArgs[key]
			actualValue, exists := actualArgs[key]
			if !exists {
				result.Errors = append(result.Errors,
					fmt.Sprintf("missing arg %s (expected %v)", key, expectedValue))
			} else if !compareValues(expectedValue, actualValue) {
				result.Errors = append(result.Errors,
					fmt.Sprintf("wrong arg %s: expected %v, got %v", key, expectedValue, actualValue))
			}
		}

		result.Passed = len(result.Errors) == 0
		metrics.record(test.Category, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(result.Errors, "; ")))
		results = append(results, result)
	}

	metrics.finish()
	return metrics, results
}

// compareValues compares expected and actual values, handling type differences.
// Maps match when every expected key matches; extra actual keys are ignored.
func compareValues(expected, actual any) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	ev := reflect.ValueOf(expected)
	av := reflect.ValueOf(actual)

	// JSON unmarshals every number to float64
	switch ev.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if av.Kind() == reflect.Float64 {
			return float64(ev.Int()) == av.Float()
		}
	case reflect.Float32, reflect.Float64:
		if av.Kind() == reflect.Float64 {
			return ev.Float() == av.Float()
		}
	}

	if ev.Kind() == reflect.Slice && av.Kind() == reflect.Slice {
		if ev.Len() != av.Len() {
			return false
		}
		for i := 0; i < ev.Len(); i++ {
			if !compareValues(ev.Index(i).Interface(), av.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	if ev.Kind() == reflect.Map && av.Kind() == reflect.Map {
		for _, key := range ev.MapKeys() {
			if !key.Type().AssignableTo(av.Type().Key()) {
				return false
			}
			got := av.MapIndex(key)
			if !got.IsValid() || !compareValues(ev.MapIndex(key).Interface(), got.Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(expected, actual)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UncoveredTools returns the registered tools that no name in covered mentions.
func UncoveredTools(covered []string) []string {
	seen := make(map[string]bool, len(covered))
	for _, name := range covered {
		seen[name] = true
	}
	var missing []string
	for _, spec := range tools.AllTools {
		if !seen[spec.Name] {
			missing = append(missing, spec.Name)
		}
	}
	return missing
}

// FormatMetrics returns a human-readable summary of evaluation metrics
func FormatMetrics(metrics *EvalMetrics, suiteName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== %s ===\n", suiteName)
	fmt.Fprintf(&b, "Total: %d tests\n", metrics.TotalTests)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", metrics.PassedTests, metrics.Accuracy*100)
	fmt.Fprintf(&b, "Failed: %d\n", metrics.FailedTests)

	if len(metrics.ByCategory) > 0 {
		b.WriteString("\nBy Category:\n")
		for _, cat := range sortedKeys(metrics.ByCategory) {
			m := metrics.ByCategory[cat]
			if m.Total > 0 {
				acc := float64(m.Passed) / float64(m.Total) * 100
				fmt.Fprintf(&b, "  %-25s: %d/%d (%.0f%%)\n", cat, m.Passed, m.Total, acc)
			}
		}
	}

	details := metrics.FailedDetails
	switch {
	case len(details) == 0:
	case len(details) <= 10:
		b.WriteString("\nFailed Tests:\n")
	default:
		fmt.Fprintf(&b, "\nFailed Tests (showing first 10 of %d):\n", len(details))
		details = details[:10]
	}
	for _, detail := range details {
		fmt.Fprintf(&b, "  - %s\n", detail)
	}

	return b.String()
}

// LoadAllEvals loads all evaluation suites from a directory
func LoadAllEvals(dir string) (*GoldenSuite, *ToolSelectionSuite, error) {
	golden, err := LoadGoldenSuite(filepath.Join(dir, "golden.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading golden cases: %w", err)
	}

	toolSelection, err := LoadToolSelectionSuite(filepath.Join(dir, "tool_selection.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading tool selection: %w", err)
	}

	return golden, toolSelection, nil
}
