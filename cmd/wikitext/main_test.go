package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/powera/wiki-scripts/internal/engine"
)

// execute runs the CLI with args and page on stdin.
func execute(t *testing.T, page string, args ...string) (string, error) {
	t.Helper()
	eng := engine.New(engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(eng.Close)

	cmd := newRootCmd(eng)
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(page))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		page string
		args []string
		want string
	}{
		{"render wiki", "'''Hi''' [[a|b]]", []string{"render"}, "'''Hi''' [[a|b]]"},
		{"render text", "'''Hello''' world", []string{"render", "--format", "text"}, "Hello world"},
		{"render latex", "50% [[Foo|bar]]", []string{"render", "--format", "latex"}, `50\% \emph{bar}`},
		{"lede", "'''Intro''' [[a|text]]\n== H ==\nbody", []string{"lede", "--format", "text"}, "Intro text\n"},
		{"links", "[[a]] [[b|c]]", []string{"links"}, "A\nB\n"},
		{"article links after marker", "[[x]]<!-- LIST -->[[b]] [[Category:C]] [[b]]", []string{"links", "--articles", "--after-marker", "<!-- LIST -->"}, "B\n"},
		{"weighted links", "{{T|<ref>[[x]]</ref>}}", []string{"links", "--weighted"}, "0.2500\tX\n"},
		{"templates", "{{Lang|fr|oui}}", []string{"templates"}, "Lang\n  1 = fr\n  2 = oui\n"},
		{"templates by kind", "{{A|x=1}}{{cn}}", []string{"templates", "--kind", "cn"}, "Cn\n"},
		{"infobox", "{{Infobox person|name=Ada}}", []string{"infobox"}, "Infobox person\n  name = Ada\n"},
		{"no infobox", "plain", []string{"infobox"}, "no infobox\n"},
		{"bot check", "{{nobots}}", []string{"bot-check", "--bot", "OtherBot"}, "OtherBot: denied\n"},
		{"class", "{{WPBS|\n{{WikiProject Bar|class=GA}}\n}}", []string{"class"}, "GA\n"},
		{"set param", "{{Vital article|level=2}}", []string{"set-param", "--kind", "vital article", "--key", "level", "--value", "3"}, "{{Vital article|level=3}}"},
		{"remove param", "{{A|x=1|y=2|x=3}}", []string{"remove-param", "--kind", "A", "--key", "x"}, "{{A|y=2}}"},
		{"remove templates", "Fact{{cn}} more{{Cn|date=May}}.", []string{"remove-templates", "--kind", "cn"}, "Fact more."},
		{"upsert", "Talk", []string{"upsert", "--kind", "Vital article", "-p", "level=4"}, "Talk\n{{Vital article|level=4}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, tt.page, tt.args...)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommands_JSON(t *testing.T) {
	got, err := execute(t, "[[a]] and [[b|c]]", "links", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var res engine.LinksResult
	if err := json.Unmarshal([]byte(got), &res); err != nil {
		t.Fatalf("decode %q: %v", got, err)
	}
	if res.Count != 2 {
		t.Errorf("Count = %d, want 2", res.Count)
	}
}

func TestCommands_FileArgument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.wiki")
	if err := os.WriteFile(path, []byte("[[From file]]"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := execute(t, "[[From stdin]]", "links", path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "From file\n" {
		t.Errorf("output = %q, want the file's link", got)
	}

	if _, err := execute(t, "", "links", filepath.Join(t.TempDir(), "missing.wiki")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCommands_Errors(t *testing.T) {
	tests := []struct {
		name string
		page string
		args []string
	}{
		{"bad format", "x", []string{"render", "--format", "html"}},
		{"latex failure", "a<br>b", []string{"render", "--format", "latex"}},
		{"missing kind", "{{A}}", []string{"set-param", "--key", "k"}},
		{"no such template", "plain", []string{"set-param", "--kind", "A", "--key", "k"}},
		{"missing marker", "[[a]]", []string{"links", "--after-marker", "<!-- LIST -->"}},
		{"bad param", "x", []string{"upsert", "--kind", "A", "-p", "novalue"}},
		{"too many files", "x", []string{"render", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.page, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"level=4", " class =B", "url=a=b", "subpage="})
	if err != nil {
		t.Fatal(err)
	}
	want := []engine.ParamValue{{Key: "level", Value: "4"}, {Key: "class", Value: "B"}, {Key: "url", Value: "a=b"}, {Key: "subpage", Value: ""}}
	if len(got) != len(want) {
		t.Fatalf("parseParams() = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("param %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
