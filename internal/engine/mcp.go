package engine

import (
	"context"
	"fmt"
	"slices"

	wikierrors "github.com/powera/wiki-scripts/internal/errors"
	"github.com/powera/wiki-scripts/wikitext"
)

// MCP Tool wrapper methods
// These methods take Args/Result types for MCP integration.

// RenderMCP renders page text in the requested format
func (e *Engine) RenderMCP(ctx context.Context, args RenderArgs) (RenderResult, error) {
	format, err := ParseFormat(args.Format)
	if err != nil {
		return RenderResult{}, err
	}
	out, cached, err := e.render(ctx, "render", args.Text, format)
	if err != nil {
		return RenderResult{}, err
	}
	return RenderResult{Format: string(format), Output: out, Cached: cached}, nil
}

// LinksMCP lists link anchors
func (e *Engine) LinksMCP(ctx context.Context, args LinksArgs) (LinksResult, error) {
	text, err := linkSource(args)
	if err != nil {
		return LinksResult{}, err
	}
	doc, err := e.parse(ctx, "links", text)
	if err != nil {
		return LinksResult{}, err
	}
	var links []string
	if args.ArticlesOnly {
		links = wikitext.ArticleLinks(doc)
	} else {
		links = wikitext.Links(doc)
	}
	if links == nil {
		links = []string{}
	}
	return LinksResult{Links: links, Count: len(links)}, nil
}

// WeightedLinksMCP lists link anchors with position and nesting weights
func (e *Engine) WeightedLinksMCP(ctx context.Context, args LinksArgs) (WeightedLinksResult, error) {
	text, err := linkSource(args)
	if err != nil {
		return WeightedLinksResult{}, err
	}
	doc, err := e.parse(ctx, "weighted_links", text)
	if err != nil {
		return WeightedLinksResult{}, err
	}
	links := wikitext.WeightedLinks(doc)
	if args.ArticlesOnly {
		// Weights keep the positions they had among all links.
		links = slices.DeleteFunc(links, func(l wikitext.WeightedLink) bool {
			return !wikitext.IsArticleAnchor(l.Anchor)
		})
	}
	if links == nil {
		links = []wikitext.WeightedLink{}
	}
	return WeightedLinksResult{Links: links, Count: len(links)}, nil
}

// linkSource returns the part of the page the link tools read.
func linkSource(args LinksArgs) (string, error) {
	if args.AfterMarker == "" {
		return args.Text, nil
	}
	section, ok := wikitext.TextAfterMarker(args.Text, args.AfterMarker)
	if !ok {
		return "", wikierrors.NewValidationError("after_marker", args.AfterMarker, "marker not found in page")
	}
	return section, nil
}

// TemplatesMCP lists the templates of a page, optionally of one kind
func (e *Engine) TemplatesMCP(ctx context.Context, args TemplatesArgs) (TemplatesResult, error) {
	doc, err := e.parse(ctx, "templates", args.Text)
	if err != nil {
		return TemplatesResult{}, err
	}

	var found []*wikitext.Template
	if args.Kind != "" {
		found = wikitext.TemplatesOfKind(doc, args.Kind)
	} else {
		found = wikitext.Templates(doc)
	}

	summaries := make([]TemplateSummary, 0, len(found))
	for _, t := range found {
		summaries = append(summaries, summarize(t))
	}
	return TemplatesResult{Templates: summaries, Count: len(summaries)}, nil
}

// SetParamMCP sets one parameter of the n-th template of a kind
func (e *Engine) SetParamMCP(ctx context.Context, args SetParamArgs) (EditResult, error) {
	if err := ValidateKind(args.Kind); err != nil {
		return EditResult{}, err
	}
	if err := ValidateKey(args.Key); err != nil {
		return EditResult{}, err
	}
	if err := ValidateOccurrence(args.Occurrence); err != nil {
		return EditResult{}, err
	}

	return e.edit(ctx, "set_param", args.Text, func(doc *wikitext.Document) (bool, error) {
		t, err := nthTemplate(doc, args.Kind, args.Occurrence)
		if err != nil {
			return false, err
		}
		t.SetParam(args.Key, args.Value)
		return true, nil
	})
}

// RemoveParamMCP deletes one parameter of the n-th template of a kind
func (e *Engine) RemoveParamMCP(ctx context.Context, args RemoveParamArgs) (EditResult, error) {
	if err := ValidateKind(args.Kind); err != nil {
		return EditResult{}, err
	}
	if err := ValidateKey(args.Key); err != nil {
		return EditResult{}, err
	}
	if err := ValidateOccurrence(args.Occurrence); err != nil {
		return EditResult{}, err
	}

	return e.edit(ctx, "remove_param", args.Text, func(doc *wikitext.Document) (bool, error) {
		t, err := nthTemplate(doc, args.Kind, args.Occurrence)
		if err != nil {
			return false, err
		}
		if !t.HasParam(args.Key) {
			return false, nil
		}
		t.RemoveParam(args.Key)
		return true, nil
	})
}

// RemoveTemplatesMCP deletes every template of a kind
func (e *Engine) RemoveTemplatesMCP(ctx context.Context, args RemoveTemplatesArgs) (EditResult, error) {
	if err := ValidateKind(args.Kind); err != nil {
		return EditResult{}, err
	}
	return e.edit(ctx, "remove_templates", args.Text, func(doc *wikitext.Document) (bool, error) {
		return wikitext.RemoveTemplatesOfKind(doc, args.Kind), nil
	})
}

// UpsertTemplateMCP updates a template or inserts it, preferring a banner shell
func (e *Engine) UpsertTemplateMCP(ctx context.Context, args UpsertTemplateArgs) (EditResult, error) {
	if err := ValidateKind(args.Kind); err != nil {
		return EditResult{}, err
	}
	params := make([]wikitext.KeyValue, 0, len(args.Params))
	for _, p := range args.Params {
		if err := ValidateKey(p.Key); err != nil {
			return EditResult{}, err
		}
		params = append(params, wikitext.KeyValue{Key: p.Key, Value: p.Value})
	}
	shells := args.Shells
	if len(shells) == 0 {
		shells = wikitext.BannerShells
	}

	return e.edit(ctx, "upsert_template", args.Text, func(doc *wikitext.Document) (bool, error) {
		wikitext.UpsertTemplate(doc, args.Kind, params, shells...)
		return true, nil
	})
}

// BotCheckMCP reports whether a bot may edit the page
func (e *Engine) BotCheckMCP(ctx context.Context, args BotCheckArgs) (BotCheckResult, error) {
	bot := args.Bot
	if bot == "" {
		bot = e.Config.BotName
	}
	doc, err := e.parse(ctx, "bot_check", args.Text)
	if err != nil {
		return BotCheckResult{}, err
	}
	return BotCheckResult{Bot: bot, Allowed: wikitext.BotsAllowed(doc, bot)}, nil
}

// LedeMCP renders the introduction of a page
func (e *Engine) LedeMCP(ctx context.Context, args LedeArgs) (LedeResult, error) {
	format, err := ParseFormat(args.Format)
	if err != nil {
		return LedeResult{}, err
	}
	doc, err := e.parse(ctx, "lede", args.Text)
	if err != nil {
		return LedeResult{}, err
	}
	lede := wikitext.Lede(doc)
	if lede == nil {
		return LedeResult{Format: string(format)}, nil
	}
	out, err := e.renderTree(ctx, "lede", lede, format)
	if err != nil {
		return LedeResult{}, err
	}
	return LedeResult{Found: true, Format: string(format), Lede: out}, nil
}

// InfoboxMCP returns the page infobox
func (e *Engine) InfoboxMCP(ctx context.Context, args PageArgs) (InfoboxResult, error) {
	doc, err := e.parse(ctx, "infobox", args.Text)
	if err != nil {
		return InfoboxResult{}, err
	}
	t := wikitext.Infobox(doc)
	if t == nil {
		return InfoboxResult{}, nil
	}
	s := summarize(t)
	return InfoboxResult{Found: true, Infobox: &s}, nil
}

// ArticleClassMCP returns the assessment class of a talk page
func (e *Engine) ArticleClassMCP(ctx context.Context, args PageArgs) (ArticleClassResult, error) {
	doc, err := e.parse(ctx, "article_class", args.Text)
	if err != nil {
		return ArticleClassResult{}, err
	}
	return ArticleClassResult{Class: wikitext.ArticleClass(doc)}, nil
}

// DiagnosticsMCP parses a page and reports what the parser saw
func (e *Engine) DiagnosticsMCP(ctx context.Context, args PageArgs) (DiagnosticsResult, error) {
	doc, err := e.parse(ctx, "diagnostics", args.Text)
	if err != nil {
		return DiagnosticsResult{}, err
	}
	d := doc.Diagnostics
	unhandled := make([]string, 0, len(d.Unhandled))
	for _, r := range d.Unhandled {
		unhandled = append(unhandled, fmt.Sprintf("%q", r))
	}
	return DiagnosticsResult{
		Bytes:          len(args.Text),
		Tokens:         d.Tokens,
		MalformedLinks: d.MalformedLinks,
		Unhandled:      unhandled,
		TopLevelBlocks: len(doc.Blocks),
		Templates:      len(wikitext.Templates(doc)),
		Links:          len(wikitext.Links(doc)),
	}, nil
}

// nthTemplate returns the n-th template of kind, or a NotFoundError.
func nthTemplate(doc *wikitext.Document, kind string, n int) (*wikitext.Template, error) {
	all := wikitext.TemplatesOfKind(doc, kind)
	if n >= len(all) {
		if len(all) == 0 {
			return nil, wikierrors.NewNotFoundError(wikitext.NormalizeKind(kind))
		}
		return nil, &wikierrors.NotFoundError{
			EntityType: "template",
			Identifier: fmt.Sprintf("%s #%d (page has %d)", wikitext.NormalizeKind(kind), n, len(all)),
		}
	}
	return all[n], nil
}

func summarize(t *wikitext.Template) TemplateSummary {
	s := TemplateSummary{
		Kind:       t.Kind(),
		Positional: t.Positional(),
		Keys:       t.Keys(),
		Closed:     t.Closed(),
		Wikitext:   wikitext.Wiki(t),
	}
	if len(s.Keys) > 0 {
		s.Params = make(map[string]string, len(s.Keys))
		for _, k := range s.Keys {
			v, _ := t.Param(k)
			s.Params[k] = v
		}
	}
	return s
}
