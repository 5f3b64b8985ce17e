package main

import (
	"context"
	"strings"
	"testing"

	"github.com/powera/wiki-scripts/internal/engine"
)

func TestSyntheticPage(t *testing.T) {
	page := syntheticPage(3)
	if got := strings.Count(page, "== Section"); got != 3 {
		t.Errorf("sections = %d, want 3", got)
	}

	eng := newEngine(0)
	defer eng.Close()
	ctx := context.Background()

	res, err := eng.RenderMCP(ctx, engine.RenderArgs{Text: page})
	if err != nil {
		t.Fatal(err)
	}
	if res.Output != page {
		t.Error("synthetic page should round-trip exactly")
	}

	edit, err := eng.SetParamMCP(ctx, engine.SetParamArgs{Text: page, Kind: "Infobox settlement", Key: "population", Value: "4321"})
	if err != nil {
		t.Fatal(err)
	}
	if !edit.Changed || !strings.Contains(edit.Text, "population=4321") {
		t.Errorf("edit did not apply: %+v", edit.Changed)
	}
}

func TestNewEngine_CacheDisabled(t *testing.T) {
	eng := newEngine(0)
	defer eng.Close()
	if eng.Cache != nil {
		t.Error("zero cache entries should disable the cache")
	}
}
