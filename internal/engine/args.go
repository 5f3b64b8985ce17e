package engine

import "github.com/powera/wiki-scripts/wikitext"

// RenderArgs contains parameters for rendering page text
type RenderArgs struct {
	Text   string `json:"text" jsonschema:"required" jsonschema_description:"Raw wikitext of the page"`
	Format string `json:"format,omitempty" jsonschema_description:"Output format: wiki (default, exact round trip), normalized, text, latex"`
}

// RenderResult is the rendered page
type RenderResult struct {
	Format string `json:"format"`
	Output string `json:"output"`
	Cached bool   `json:"cached,omitempty"`
}

// LinksArgs contains parameters for link extraction
type LinksArgs struct {
	Text         string `json:"text" jsonschema:"required" jsonschema_description:"Raw wikitext of the page"`
	AfterMarker  string `json:"after_marker,omitempty" jsonschema_description:"Only read the page from this marker to its next occurrence, e.g. <!-- LIST STARTS HERE -->"`
	ArticlesOnly bool   `json:"articles_only,omitempty" jsonschema_description:"Drop links with a namespace prefix (File:, Category:, ...); the plain list is also deduplicated"`
}

// LinksResult lists link anchors in document order
type LinksResult struct {
	Links []string `json:"links"`
	Count int      `json:"count"`
}

// WeightedLinksResult lists link anchors with their importance weight
type WeightedLinksResult struct {
	Links []wikitext.WeightedLink `json:"links"`
	Count int                     `json:"count"`
}

// TemplatesArgs contains parameters for template listing
type TemplatesArgs struct {
	Text string `json:"text" jsonschema:"required" jsonschema_description:"Raw wikitext of the page"`
	Kind string `json:"kind,omitempty" jsonschema_description:"Only templates of this kind (case of the first letter and spacing ignored)"`
}

// TemplateSummary describes one template
type TemplateSummary struct {
	Kind       string            `json:"kind"`
	Positional []string          `json:"positional,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	Keys       []string          `json:"keys,omitempty"` // keyed parameter order
	Closed     bool              `json:"closed"`
	Wikitext   string            `json:"wikitext"`
}

// TemplatesResult lists templates in document order
type TemplatesResult struct {
	Templates []TemplateSummary `json:"templates"`
	Count     int               `json:"count"`
}

// SetParamArgs contains parameters for setting a template parameter
type SetParamArgs struct {
	Text       string `json:"text" jsonschema:"required" jsonschema_description:"Raw wikitext of the page"`
	Kind       string `json:"kind" jsonschema:"required" jsonschema_description:"Template kind to edit"`
	Key        string `json:"key" jsonschema:"required" jsonschema_description:"Parameter name"`
	Value      string `json:"value" jsonschema_description:"New parameter value"`
	Occurrence int    `json:"occurrence,omitempty" jsonschema_description:"Which template of that kind, 0-indexed (default 0)"`
}

// RemoveParamArgs contains parameters for removing a template parameter
type RemoveParamArgs struct {
	Text       string `json:"text" jsonschema:"required" jsonschema_description:"Raw wikitext of the page"`
	Kind       string `json:"kind" jsonschema:"required" jsonschema_description:"Template kind to edit"`
	Key        string `json:"key" jsonschema:"required" jsonschema_description:"Parameter name to delete"`
	Occurrence int    `json:"occurrence,omitempty" jsonschema_description:"Which template of that kind, 0-indexed (default 0)"`
}

// RemoveTemplatesArgs contains parameters for deleting templates
type RemoveTemplatesArgs struct {
	Text string `json:"text" jsonschema:"required" jsonschema_description:"Raw wikitext of the page"`
	Kind string `json:"kind" jsonschema:"required" jsonschema_description:"Template kind to delete everywhere in the page"`
}

// ParamValue is one parameter assignment
type ParamValue struct {
	Key   string `json:"key" jsonschema:"required"`
	Value string `json:"value" jsonschema_description:"Empty removes the parameter from an existing template"`
}

// UpsertTemplateArgs contains parameters for creating or updating a template
type UpsertTemplateArgs struct {
	Text   string       `json:"text" jsonschema:"required" jsonschema_description:"Raw wikitext of the page"`
	Kind   string       `json:"kind" jsonschema:"required" jsonschema_description:"Template kind to update or insert"`
	Params []ParamValue `json:"params,omitempty" jsonschema_description:"Parameters to set, in order"`
	Shells []string     `json:"shells,omitempty" jsonschema_description:"Banner shell kinds to insert into (default WPBS, WikiProjectBannerShell, Banner holder)"`
}

// EditResult is the page after an edit
type EditResult struct {
	Text    string `json:"text"`
	Changed bool   `json:"changed"`
}

// BotCheckArgs contains parameters for a bot exclusion check
type BotCheckArgs struct {
	Text string `json:"text" jsonschema:"required" jsonschema_description:"Raw wikitext of the page"`
	Bot  string `json:"bot,omitempty" jsonschema_description:"Bot account name (default from WIKITEXT_BOT_NAME)"`
}

// BotCheckResult reports whether the bot may edit the page
type BotCheckResult struct {
	Bot     string `json:"bot"`
	Allowed bool   `json:"allowed"`
}

// LedeArgs contains parameters for lede extraction
type LedeArgs struct {
	Text   string `json:"text" jsonschema:"required" jsonschema_description:"Raw wikitext of the page"`
	Format string `json:"format,omitempty" jsonschema_description:"Output format: wiki (default), normalized, text, latex"`
}

// LedeResult is the introduction before the first heading
type LedeResult struct {
	Found  bool   `json:"found"`
	Format string `json:"format"`
	Lede   string `json:"lede,omitempty"`
}

// PageArgs is used by operations that only need page text
type PageArgs struct {
	Text string `json:"text" jsonschema:"required" jsonschema_description:"Raw wikitext of the page"`
}

// InfoboxResult describes the page infobox
type InfoboxResult struct {
	Found   bool             `json:"found"`
	Infobox *TemplateSummary `json:"infobox,omitempty"`
}

// ArticleClassResult is the assessment class of a talk page
type ArticleClassResult struct {
	Class string `json:"class"`
}

// DiagnosticsResult summarizes what the parser saw
type DiagnosticsResult struct {
	Bytes          int      `json:"bytes"`
	Tokens         int      `json:"tokens"`
	MalformedLinks int      `json:"malformed_links"`
	Unhandled      []string `json:"unhandled,omitempty"`
	TopLevelBlocks int      `json:"top_level_blocks"`
	Templates      int      `json:"templates"`
	Links          int      `json:"links"`
}
