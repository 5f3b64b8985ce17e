package evals

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/powera/wiki-scripts/internal/engine"
	"github.com/powera/wiki-scripts/tools"
)

// MockToolSelector implements ToolSelector for testing
type MockToolSelector struct {
	// Responses maps input strings to tool selections
	Responses map[string]struct {
		Tool string
		Args map[string]any
	}
	// DefaultTool is returned if input isn't in Responses
	DefaultTool string
}

func (m *MockToolSelector) SelectTool(input string) (string, map[string]any, error) {
	if resp, ok := m.Responses[input]; ok {
		return resp.Tool, resp.Args, nil
	}
	return m.DefaultTool, nil, nil
}

// PerfectToolSelector returns the expected tool for each test
type PerfectToolSelector struct {
	suite *ToolSelectionSuite
}

func (p *PerfectToolSelector) SelectTool(input string) (string, map[string]any, error) {
	for _, test := range p.suite.Tests {
		if test.Input == input {
			return test.ExpectedTool, test.ExpectedArgs, nil
		}
	}
	return "", nil, nil
}

// stubOperator returns a fixed result or error for every call
type stubOperator struct {
	out any
	err error
}

func (s stubOperator) Call(context.Context, string, map[string]any) (any, error) {
	return s.out, s.err
}

func newTestOperator(t *testing.T) *EngineOperator {
	t.Helper()
	eng := engine.New(engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(eng.Close)
	return NewEngineOperator(eng)
}

func TestLoadGoldenSuite(t *testing.T) {
	suite, err := LoadGoldenSuite(filepath.Join(".", "golden.json"))
	if err != nil {
		t.Fatalf("Failed to load golden suite: %v", err)
	}

	if suite.Name == "" {
		t.Error("Suite name should not be empty")
	}
	if len(suite.Cases) == 0 {
		t.Fatal("Suite should have cases")
	}

	ids := make(map[string]bool)
	for _, gc := range suite.Cases {
		if gc.ID == "" || gc.Tool == "" || gc.Category == "" {
			t.Errorf("Case %+v is missing id, tool or category", gc)
		}
		if ids[gc.ID] {
			t.Errorf("Duplicate case id %s", gc.ID)
		}
		ids[gc.ID] = true
		if len(gc.Expected) == 0 && gc.ExpectedError == "" {
			t.Errorf("Case %s pins nothing", gc.ID)
		}
	}
}

func TestLoadToolSelectionSuite(t *testing.T) {
	suite, err := LoadToolSelectionSuite(filepath.Join(".", "tool_selection.json"))
	if err != nil {
		t.Fatalf("Failed to load tool selection suite: %v", err)
	}

	if len(suite.Tests) == 0 {
		t.Fatal("Suite should have tests")
	}
	for _, test := range suite.Tests {
		if test.ID == "" || test.Input == "" || test.ExpectedTool == "" {
			t.Errorf("Test %+v is missing id, input or expected tool", test)
		}
	}
}

func TestLoadGoldenSuite_MissingFile(t *testing.T) {
	if _, err := LoadGoldenSuite(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEvaluateGolden(t *testing.T) {
	suite, err := LoadGoldenSuite(filepath.Join(".", "golden.json"))
	if err != nil {
		t.Fatalf("Failed to load suite: %v", err)
	}

	metrics, results := EvaluateGolden(context.Background(), suite, newTestOperator(t))

	if metrics.TotalTests != len(suite.Cases) {
		t.Errorf("Total tests: expected %d, got %d", len(suite.Cases), metrics.TotalTests)
	}
	if metrics.Accuracy != 1.0 {
		t.Errorf("Engine should pass every golden case, got %.1f%%:\n%s",
			metrics.Accuracy*100, strings.Join(metrics.FailedDetails, "\n"))
	}
	if len(results) != len(suite.Cases) {
		t.Errorf("Should have result for each case")
	}
}

func TestEvaluateGolden_Failures(t *testing.T) {
	suite := &GoldenSuite{
		Cases: []GoldenCase{
			{ID: "g-1", Category: "render", Tool: "wikitext_render", Expected: map[string]any{"output": "x"}},
			{ID: "g-2", Category: "render", Tool: "wikitext_render", Expected: map[string]any{"missing": true}},
			{ID: "g-3", Category: "errors", Tool: "wikitext_render", ExpectedError: "NESTED_TAG"},
		},
	}

	metrics, results := EvaluateGolden(context.Background(), suite,
		stubOperator{out: engine.RenderResult{Format: "wiki", Output: "y"}})

	if metrics.PassedTests != 0 || metrics.FailedTests != 3 {
		t.Errorf("metrics = %+v, want 3 failures", metrics)
	}
	for _, r := range results {
		if r.Passed || len(r.Errors) == 0 {
			t.Errorf("Case %s should fail with errors, got %+v", r.CaseID, r)
		}
	}
	if !strings.Contains(results[1].Errors[0], "missing field missing") {
		t.Errorf("missing field error = %q", results[1].Errors[0])
	}
	if metrics.ByTool["wikitext_render"].ExpectedCount != 3 {
		t.Errorf("ExpectedCount = %d, want 3", metrics.ByTool["wikitext_render"].ExpectedCount)
	}
}

func TestEvaluateGolden_ToolError(t *testing.T) {
	suite := &GoldenSuite{
		Cases: []GoldenCase{
			{ID: "g-1", Category: "render", Tool: "wikitext_render", Expected: map[string]any{"output": "x"}},
			{ID: "g-2", Category: "errors", Tool: "wikitext_render", ExpectedError: "INTERNAL"},
		},
	}

	metrics, results := EvaluateGolden(context.Background(), suite, stubOperator{err: errors.New("boom")})

	if results[0].Passed {
		t.Error("tool error should fail a case that expects output")
	}
	if !results[1].Passed {
		t.Errorf("uncoded error should match INTERNAL: %v", results[1].Errors)
	}
	if metrics.ByCategory["errors"].Passed != 1 {
		t.Errorf("errors category = %+v", metrics.ByCategory["errors"])
	}
}

func TestEngineOperator(t *testing.T) {
	op := newTestOperator(t)

	if len(op.calls) != len(tools.AllTools) {
		t.Errorf("bound %d tools, want %d", len(op.calls), len(tools.AllTools))
	}

	out, err := op.Call(context.Background(), "wikitext_links", map[string]any{"text": "[[a]]"})
	if err != nil {
		t.Fatal(err)
	}
	if links, ok := out.(engine.LinksResult); !ok || links.Count != 1 {
		t.Errorf("Call() = %#v", out)
	}

	if _, err := op.Call(context.Background(), "wikitext_nope", nil); err == nil {
		t.Error("expected error for unknown tool")
	}
	if _, err := op.Call(context.Background(), "wikitext_links", map[string]any{"text": 7}); err == nil {
		t.Error("expected decode error for non-string text")
	}
}

func TestEvaluateToolSelection(t *testing.T) {
	suite, err := LoadToolSelectionSuite(filepath.Join(".", "tool_selection.json"))
	if err != nil {
		t.Fatalf("Failed to load suite: %v", err)
	}

	// Test with perfect selector (should get 100% accuracy)
	perfectSelector := &PerfectToolSelector{suite: suite}
	metrics, results := EvaluateToolSelection(suite, perfectSelector)

	if metrics.TotalTests != len(suite.Tests) {
		t.Errorf("Total tests: expected %d, got %d", len(suite.Tests), metrics.TotalTests)
	}
	if metrics.Accuracy != 1.0 {
		t.Errorf("Perfect selector should have 100%% accuracy, got %.1f%%", metrics.Accuracy*100)
	}
	for _, result := range results {
		if !result.Passed {
			t.Errorf("Test %s should pass with perfect selector", result.TestID)
		}
	}
}

func TestEvaluateToolSelectionWithWrongAnswers(t *testing.T) {
	suite := &ToolSelectionSuite{
		Name: "Test Suite",
		Tests: []ToolSelectionTest{
			{
				ID:           "test-001",
				Category:     "links",
				Input:        "what does this page link to",
				ExpectedTool: "wikitext_links",
				NotTools:     []string{"wikitext_remove_templates"},
			},
			{
				ID:           "test-002",
				Category:     "edit",
				Input:        "set level to 3",
				ExpectedTool: "wikitext_set_param",
				ExpectedArgs: map[string]any{"key": "level"},
			},
		},
	}

	// Mock selector that always returns wrong tool
	wrongSelector := &MockToolSelector{
		DefaultTool: "wikitext_remove_templates",
	}

	metrics, results := EvaluateToolSelection(suite, wrongSelector)

	if metrics.PassedTests != 0 {
		t.Errorf("Wrong selector should have 0 passed tests, got %d", metrics.PassedTests)
	}
	if metrics.FailedTests != 2 {
		t.Errorf("Wrong selector should have 2 failed tests, got %d", metrics.FailedTests)
	}
	if metrics.ByTool["wikitext_remove_templates"].FalsePositives != 2 {
		t.Errorf("FalsePositives = %d, want 2", metrics.ByTool["wikitext_remove_templates"].FalsePositives)
	}
	if got := len(results[0].Errors); got != 2 {
		t.Errorf("test-001 errors = %v, want wrong tool and forbidden tool", results[0].Errors)
	}
}

func TestEvaluateToolSelection_WrongArgs(t *testing.T) {
	suite := &ToolSelectionSuite{
		Tests: []ToolSelectionTest{{
			ID:           "test-001",
			Category:     "render",
			Input:        "give me LaTeX",
			ExpectedTool: "wikitext_render",
			ExpectedArgs: map[string]any{"format": "latex"},
		}},
	}
	selector := &MockToolSelector{
		Responses: map[string]struct {
			Tool string
			Args map[string]any
		}{
			"give me LaTeX": {Tool: "wikitext_render", Args: map[string]any{"format": "text"}},
		},
	}

	metrics, results := EvaluateToolSelection(suite, selector)
	if metrics.PassedTests != 0 {
		t.Error("wrong argument should fail the test")
	}
	if len(results[0].Errors) != 1 || !strings.Contains(results[0].Errors[0], "wrong arg format") {
		t.Errorf("Errors = %v", results[0].Errors)
	}
	if metrics.ByTool["wikitext_render"].CorrectCount != 1 {
		t.Error("tool choice itself was correct")
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"equal strings", "test", "test", true},
		{"different strings", "test", "other", false},
		{"int vs float64", 20, float64(20), true},
		{"equal slices", []string{"a", "b"}, []string{"a", "b"}, true},
		{"json slice vs string slice", []any{"a", "b"}, []string{"a", "b"}, true},
		{"different slices", []string{"a", "b"}, []string{"a", "c"}, false},
		{"empty slices", []any{}, []any{}, true},
		{"nil values", nil, nil, true},
		{"nil vs value", nil, "test", false},
		{"equal bools", true, true, true},
		{"different bools", true, false, false},
		{"map subset", map[string]any{"kind": "A"}, map[string]any{"kind": "A", "closed": true}, true},
		{"map missing key", map[string]any{"kind": "A"}, map[string]any{"closed": true}, false},
		{"nested map", map[string]any{"params": map[string]any{"x": "1"}}, map[string]any{"params": map[string]any{"x": "2"}}, false},
		{"map key type mismatch", map[string]any{"a": 1}, map[int]any{1: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareValues(tt.expected, tt.actual)
			if got != tt.want {
				t.Errorf("compareValues(%v, %v) = %v, want %v", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

func TestFormatMetrics(t *testing.T) {
	metrics := &EvalMetrics{
		TotalTests:  10,
		PassedTests: 8,
		FailedTests: 2,
		Accuracy:    0.8,
		ByCategory: map[string]*CategoryMetrics{
			"render": {Total: 5, Passed: 4, Failed: 1},
			"edit":   {Total: 5, Passed: 4, Failed: 1},
		},
		FailedDetails: []string{
			"[test-1] input: error",
			"[test-2] input: error",
		},
	}

	output := FormatMetrics(metrics, "Test Suite")

	for _, want := range []string{"=== Test Suite ===", "80.0%", "render", "Failed Tests:", "[test-2]"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	// Categories are listed alphabetically
	if strings.Index(output, "edit") > strings.Index(output, "render") {
		t.Error("categories should be sorted")
	}
}

func TestFormatMetrics_TruncatesFailures(t *testing.T) {
	metrics := &EvalMetrics{TotalTests: 12, FailedTests: 12}
	for i := 0; i < 12; i++ {
		metrics.FailedDetails = append(metrics.FailedDetails, "[t] failure")
	}

	output := FormatMetrics(metrics, "Big Suite")
	if !strings.Contains(output, "showing first 10 of 12") {
		t.Errorf("expected truncation notice:\n%s", output)
	}
	if got := strings.Count(output, "[t] failure"); got != 10 {
		t.Errorf("listed %d failures, want 10", got)
	}
}

func TestLoadAllEvals(t *testing.T) {
	golden, toolSelection, err := LoadAllEvals(".")
	if err != nil {
		t.Fatalf("Failed to load all evals: %v", err)
	}

	var goldenTools, selectedTools []string
	for _, gc := range golden.Cases {
		goldenTools = append(goldenTools, gc.Tool)
	}
	for _, test := range toolSelection.Tests {
		selectedTools = append(selectedTools, test.ExpectedTool)
	}

	if missing := UncoveredTools(goldenTools); len(missing) != 0 {
		t.Errorf("tools without golden cases: %v", missing)
	}
	if missing := UncoveredTools(selectedTools); len(missing) != 0 {
		t.Errorf("tools without selection tests: %v", missing)
	}

	t.Logf("Loaded %d golden cases and %d selection tests", len(golden.Cases), len(toolSelection.Tests))
}
