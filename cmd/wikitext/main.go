// Command wikitext runs the wikitext engine on a page from a file or stdin.
//
// Usage:
//
//	wikitext render --format latex Article.wiki
//	wikitext links --weighted < Article.wiki
//	wikitext set-param --kind "Vital article" --key level --value 3 Talk.wiki
//
// Every command accepts --json to print the full structured result.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/powera/wiki-scripts/internal/engine"
)

func main() {
	config, err := engine.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel}))

	eng := engine.New(engine.WithConfig(config), engine.WithLogger(logger))
	err = newRootCmd(eng).Execute()
	eng.Close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(eng *engine.Engine) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wikitext",
		Short: "Parse, render, inspect and edit MediaWiki markup",
		Long: `wikitext parses a page of MediaWiki markup and renders it as wikitext,
normalized wikitext, plain text or LaTeX, lists its links and templates,
and applies template edits that leave the rest of the page byte-identical.

The page is read from the file argument, or from stdin when none is given.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Bool("json", false, "Print the full result as JSON")

	renderCmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render the page in a format",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.RenderMCP, func(cmd *cobra.Command, text string) (engine.RenderArgs, error) {
			format, err := stringFlag(cmd, "format")
			return engine.RenderArgs{Text: text, Format: format}, err
		}, func(w io.Writer, r engine.RenderResult) {
			fmt.Fprint(w, r.Output)
		}),
	}
	renderCmd.Flags().String("format", "wiki", "Output format: wiki|normalized|text|latex")

	ledeCmd := &cobra.Command{
		Use:   "lede [file]",
		Short: "Print the introduction before the first heading",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.LedeMCP, func(cmd *cobra.Command, text string) (engine.LedeArgs, error) {
			format, err := stringFlag(cmd, "format")
			return engine.LedeArgs{Text: text, Format: format}, err
		}, func(w io.Writer, r engine.LedeResult) {
			fmt.Fprint(w, r.Lede)
		}),
	}
	ledeCmd.Flags().String("format", "wiki", "Output format: wiki|normalized|text|latex")

	linksCmd := &cobra.Command{
		Use:   "links [file]",
		Short: "List link targets in document order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weighted, err := cmd.Flags().GetBool("weighted")
			if err != nil {
				return err
			}
			if weighted {
				return runTool(eng.WeightedLinksMCP, linksArgs, func(w io.Writer, r engine.WeightedLinksResult) {
					for _, l := range r.Links {
						fmt.Fprintf(w, "%.4f\t%s\n", l.Weight, l.Anchor)
					}
				})(cmd, args)
			}
			return runTool(eng.LinksMCP, linksArgs, func(w io.Writer, r engine.LinksResult) {
				for _, l := range r.Links {
					fmt.Fprintln(w, l)
				}
			})(cmd, args)
		},
	}
	linksCmd.Flags().Bool("weighted", false, "Print the importance weight of each link")
	linksCmd.Flags().String("after-marker", "", "Only read the page from this marker to its next occurrence")
	linksCmd.Flags().Bool("articles", false, "Only links without a namespace prefix")

	templatesCmd := &cobra.Command{
		Use:   "templates [file]",
		Short: "List templates with their parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.TemplatesMCP, func(cmd *cobra.Command, text string) (engine.TemplatesArgs, error) {
			kind, err := stringFlag(cmd, "kind")
			return engine.TemplatesArgs{Text: text, Kind: kind}, err
		}, func(w io.Writer, r engine.TemplatesResult) {
			for _, t := range r.Templates {
				printTemplate(w, t)
			}
		}),
	}
	templatesCmd.Flags().String("kind", "", "Only templates of this kind")

	infoboxCmd := &cobra.Command{
		Use:   "infobox [file]",
		Short: "Print the article infobox",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.InfoboxMCP, pageArgs, func(w io.Writer, r engine.InfoboxResult) {
			if !r.Found {
				fmt.Fprintln(w, "no infobox")
				return
			}
			printTemplate(w, *r.Infobox)
		}),
	}

	botCheckCmd := &cobra.Command{
		Use:   "bot-check [file]",
		Short: "Check whether a bot may edit the page",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.BotCheckMCP, func(cmd *cobra.Command, text string) (engine.BotCheckArgs, error) {
			bot, err := stringFlag(cmd, "bot")
			return engine.BotCheckArgs{Text: text, Bot: bot}, err
		}, func(w io.Writer, r engine.BotCheckResult) {
			verdict := "allowed"
			if !r.Allowed {
				verdict = "denied"
			}
			fmt.Fprintf(w, "%s: %s\n", r.Bot, verdict)
		}),
	}
	botCheckCmd.Flags().String("bot", "", "Bot account name (default from WIKITEXT_BOT_NAME)")

	classCmd := &cobra.Command{
		Use:   "class [file]",
		Short: "Print the assessment class of a talk page",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.ArticleClassMCP, pageArgs, func(w io.Writer, r engine.ArticleClassResult) {
			fmt.Fprintln(w, r.Class)
		}),
	}

	diagnosticsCmd := &cobra.Command{
		Use:   "diagnostics [file]",
		Short: "Report what the parser saw",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.DiagnosticsMCP, pageArgs, func(w io.Writer, r engine.DiagnosticsResult) {
			fmt.Fprintf(w, "bytes:            %d\n", r.Bytes)
			fmt.Fprintf(w, "tokens:           %d\n", r.Tokens)
			fmt.Fprintf(w, "top-level blocks: %d\n", r.TopLevelBlocks)
			fmt.Fprintf(w, "templates:        %d\n", r.Templates)
			fmt.Fprintf(w, "links:            %d\n", r.Links)
			fmt.Fprintf(w, "malformed links:  %d\n", r.MalformedLinks)
			if len(r.Unhandled) > 0 {
				fmt.Fprintf(w, "unhandled:        %s\n", strings.Join(r.Unhandled, " "))
			}
		}),
	}

	setParamCmd := &cobra.Command{
		Use:   "set-param [file]",
		Short: "Set one template parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.SetParamMCP, func(cmd *cobra.Command, text string) (engine.SetParamArgs, error) {
			args := engine.SetParamArgs{Text: text}
			var err error
			if args.Kind, err = stringFlag(cmd, "kind"); err != nil {
				return args, err
			}
			if args.Key, err = stringFlag(cmd, "key"); err != nil {
				return args, err
			}
			if args.Value, err = cmd.Flags().GetString("value"); err != nil {
				return args, err
			}
			args.Occurrence, err = cmd.Flags().GetInt("occurrence")
			return args, err
		}, printEdit),
	}
	setParamCmd.Flags().String("kind", "", "Template kind")
	setParamCmd.Flags().String("key", "", "Parameter name")
	setParamCmd.Flags().String("value", "", "New value")
	setParamCmd.Flags().Int("occurrence", 0, "Which template of that kind, 0-indexed")

	removeParamCmd := &cobra.Command{
		Use:   "remove-param [file]",
		Short: "Delete a template parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.RemoveParamMCP, func(cmd *cobra.Command, text string) (engine.RemoveParamArgs, error) {
			args := engine.RemoveParamArgs{Text: text}
			var err error
			if args.Kind, err = stringFlag(cmd, "kind"); err != nil {
				return args, err
			}
			if args.Key, err = stringFlag(cmd, "key"); err != nil {
				return args, err
			}
			args.Occurrence, err = cmd.Flags().GetInt("occurrence")
			return args, err
		}, printEdit),
	}
	removeParamCmd.Flags().String("kind", "", "Template kind")
	removeParamCmd.Flags().String("key", "", "Parameter name")
	removeParamCmd.Flags().Int("occurrence", 0, "Which template of that kind, 0-indexed")

	removeTemplatesCmd := &cobra.Command{
		Use:   "remove-templates [file]",
		Short: "Delete every template of a kind",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.RemoveTemplatesMCP, func(cmd *cobra.Command, text string) (engine.RemoveTemplatesArgs, error) {
			kind, err := stringFlag(cmd, "kind")
			return engine.RemoveTemplatesArgs{Text: text, Kind: kind}, err
		}, printEdit),
	}
	removeTemplatesCmd.Flags().String("kind", "", "Template kind")

	upsertCmd := &cobra.Command{
		Use:   "upsert [file]",
		Short: "Update a template or add it to the page",
		Args:  cobra.MaximumNArgs(1),
		RunE: runTool(eng.UpsertTemplateMCP, func(cmd *cobra.Command, text string) (engine.UpsertTemplateArgs, error) {
			args := engine.UpsertTemplateArgs{Text: text}
			var err error
			if args.Kind, err = stringFlag(cmd, "kind"); err != nil {
				return args, err
			}
			raw, err := cmd.Flags().GetStringArray("param")
			if err != nil {
				return args, err
			}
			if args.Params, err = parseParams(raw); err != nil {
				return args, err
			}
			args.Shells, err = cmd.Flags().GetStringSlice("shell")
			return args, err
		}, printEdit),
	}
	upsertCmd.Flags().String("kind", "", "Template kind")
	upsertCmd.Flags().StringArrayP("param", "p", nil, "Parameter as key=value, repeatable; an empty value removes it")
	upsertCmd.Flags().StringSlice("shell", nil, "Banner shell kinds to insert into")

	rootCmd.AddCommand(
		renderCmd,
		ledeCmd,
		linksCmd,
		templatesCmd,
		infoboxCmd,
		botCheckCmd,
		classCmd,
		diagnosticsCmd,
		setParamCmd,
		removeParamCmd,
		removeTemplatesCmd,
		upsertCmd,
	)
	return rootCmd
}

// runTool reads the page, builds the arguments and prints the result of
// method, as JSON when --json is set.
func runTool[Args, Result any](
	method func(context.Context, Args) (Result, error),
	build func(*cobra.Command, string) (Args, error),
	human func(io.Writer, Result),
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		text, err := readPage(cmd, args)
		if err != nil {
			return err
		}
		toolArgs, err := build(cmd, text)
		if err != nil {
			return err
		}
		result, err := method(cmd.Context(), toolArgs)
		if err != nil {
			return err
		}

		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		human(cmd.OutOrStdout(), result)
		return nil
	}
}

func linksArgs(cmd *cobra.Command, text string) (engine.LinksArgs, error) {
	args := engine.LinksArgs{Text: text}
	var err error
	if args.AfterMarker, err = cmd.Flags().GetString("after-marker"); err != nil {
		return args, err
	}
	args.ArticlesOnly, err = cmd.Flags().GetBool("articles")
	return args, err
}

// pageArgs builds the arguments of tools that only take the page text.
func pageArgs(_ *cobra.Command, text string) (engine.PageArgs, error) {
	return engine.PageArgs{Text: text}, nil
}

func readPage(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}
	return string(data), nil
}

func stringFlag(cmd *cobra.Command, name string) (string, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

// parseParams splits key=value flags. The value may itself contain '='.
func parseParams(raw []string) ([]engine.ParamValue, error) {
	params := make([]engine.ParamValue, 0, len(raw))
	for _, p := range raw {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q: want key=value", p)
		}
		params = append(params, engine.ParamValue{Key: strings.TrimSpace(key), Value: value})
	}
	return params, nil
}

func printTemplate(w io.Writer, t engine.TemplateSummary) {
	fmt.Fprintf(w, "%s\n", t.Kind)
	for i, v := range t.Positional {
		fmt.Fprintf(w, "  %d = %s\n", i+1, v)
	}
	for _, k := range t.Keys {
		fmt.Fprintf(w, "  %s = %s\n", k, t.Params[k])
	}
}

func printEdit(w io.Writer, r engine.EditResult) {
	fmt.Fprint(w, r.Text)
}
