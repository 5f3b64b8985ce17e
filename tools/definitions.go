package tools

// AllTools contains all tool specifications for the wikitext MCP server.
// Tools are organized by category for easier maintenance.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
//
// Every tool takes the raw page text; none of them fetch or save pages.
var AllTools = []ToolSpec{
	// ==========================================================================
	// RENDER TOOLS
	// ==========================================================================
	{
		Name:     "wikitext_render",
		Method:   "Render",
		Title:    "Render Wikitext",
		Category: "render",
		Description: `Render page wikitext as exact wikitext, normalized wikitext, plain text, or LaTeX.

USE WHEN: User asks "convert this article to LaTeX", "strip the markup", "give me the plain text of this page", "normalize the references".

NOT FOR: Only the introduction (use wikitext_lede). Editing templates (use the edit tools).

PARAMETERS:
- text: Raw wikitext (required)
- format: wiki (default, byte-exact round trip), normalized (reference bodies on their own lines), text, latex

RETURNS: The rendered output. LaTeX fails on edited templates, tags outside the allow-list, and gloss templates ({{lang}}, {{convert}}, ...) with too few fields.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "wikitext_lede",
		Method:   "Lede",
		Title:    "Extract Lede",
		Category: "render",
		Description: `Extract the introduction of an article: the content before the first heading, without references and page furniture templates.

USE WHEN: User asks "summarize the intro", "what does the first paragraph say", "get the lead section".

NOT FOR: The whole page (use wikitext_render).

PARAMETERS:
- text: Raw wikitext (required)
- format: wiki (default), normalized, text, latex

RETURNS: found flag and the rendered lede. Inline prose templates ({{lang}}, {{nihongo}}, {{convert}}, {{as of}}, {{sc}}) are kept.`,
		ReadOnly:   true,
		Idempotent: true,
	},

	// ==========================================================================
	// LINK TOOLS
	// ==========================================================================
	{
		Name:     "wikitext_links",
		Method:   "Links",
		Title:    "List Links",
		Category: "links",
		Description: `List the internal link targets of a page in document order.

USE WHEN: User asks "what does this article link to", "list the wikilinks".

NOT FOR: Ranking links by importance (use wikitext_weighted_links).

PARAMETERS:
- text: Raw wikitext (required)
- after_marker: Only read from this marker to its next occurrence, e.g. "<!-- LIST STARTS HERE -->" (optional)
- articles_only: Drop namespaced links (File:, Category:, ...) and repeats (optional)

RETURNS: Normalized anchors (first letter capitalized, # fragment dropped), including links inside references and templates. Empty anchors are skipped.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "wikitext_weighted_links",
		Method:   "WeightedLinks",
		Title:    "Weighted Links",
		Category: "links",
		Description: `List link targets with an importance weight.

USE WHEN: User asks "which links matter most in this article", "rank the related topics".

NOT FOR: A plain link list (use wikitext_links).

PARAMETERS:
- text: Raw wikitext (required)
- after_marker: Only read from this marker to its next occurrence (optional)
- articles_only: Drop namespaced links after weighting (optional)

RETURNS: Anchor/weight pairs in document order. Links inside references or templates count half per level; with four or more links the first quarter is boosted x1.5 and the last quarter damped x0.7.`,
		ReadOnly:   true,
		Idempotent: true,
	},

	// ==========================================================================
	// TEMPLATE TOOLS
	// ==========================================================================
	{
		Name:     "wikitext_templates",
		Method:   "Templates",
		Title:    "List Templates",
		Category: "templates",
		Description: `List the templates on a page with their parameters.

USE WHEN: User asks "what templates does this page use", "show the citation needed tags", "what are the infobox fields".

NOT FOR: Just the infobox (use wikitext_infobox).

PARAMETERS:
- text: Raw wikitext (required)
- kind: Only this template kind (optional; first letter case and spacing ignored)

RETURNS: Kind, positional values, keyed parameters, closed flag and wikitext of each template, nested ones included.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "wikitext_infobox",
		Method:   "Infobox",
		Title:    "Get Infobox",
		Category: "templates",
		Description: `Find the infobox of an article.

USE WHEN: User asks "what does the infobox say", "get the taxobox".

PARAMETERS:
- text: Raw wikitext (required)

RETURNS: The first top-level {{Infobox ...}}, {{Speciesbox}}, {{Subspeciesbox}} or {{Taxobox}} with its parameters, or found=false.`,
		ReadOnly:   true,
		Idempotent: true,
	},

	// ==========================================================================
	// PAGE TOOLS
	// ==========================================================================
	{
		Name:     "wikitext_bot_check",
		Method:   "BotCheck",
		Title:    "Check Bot Exclusion",
		Category: "page",
		Description: `Check whether a bot may edit a page under the {{bots}}/{{nobots}} exclusion markers.

USE WHEN: Before an automated edit, or user asks "does this page opt out of bots".

PARAMETERS:
- text: Raw wikitext (required)
- bot: Bot account name (default from WIKITEXT_BOT_NAME)

RETURNS: allowed flag.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "wikitext_article_class",
		Method:   "ArticleClass",
		Title:    "Article Class",
		Category: "page",
		Description: `Read the quality assessment class from a talk page.

USE WHEN: User asks "what class is this article rated", "is it a GA".

PARAMETERS:
- text: Raw wikitext of the TALK page (required)

RETURNS: class= from the first banner carrying one, looking inside banner shells. Start when none.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "wikitext_parse_diagnostics",
		Method:   "Diagnostics",
		Title:    "Parse Diagnostics",
		Category: "page",
		Description: `Parse a page and report what the parser saw.

USE WHEN: A render looks wrong, or user asks "is this markup broken", "are there unclosed links".

PARAMETERS:
- text: Raw wikitext (required)

RETURNS: Token count, links closed early by a paragraph break, characters no rule matched, and counts of blocks, templates and links.`,
		ReadOnly:   true,
		Idempotent: true,
	},

	// ==========================================================================
	// EDIT TOOLS
	// ==========================================================================
	{
		Name:     "wikitext_set_param",
		Method:   "SetParam",
		Title:    "Set Template Parameter",
		Category: "edit",
		Description: `Set one parameter of a template and return the edited page.

USE WHEN: User says "change level to 3 in the vital article template", "set the date on the cn tag".

NOT FOR: Adding a template that is not on the page (use wikitext_upsert_template).

PARAMETERS:
- text: Raw wikitext (required)
- kind: Template kind (required)
- key: Parameter name (required)
- value: New value
- occurrence: Which template of that kind, 0-indexed (default 0)

RETURNS: Edited page text. Only the edited template is re-serialized; the rest of the page is byte-identical.`,
		Idempotent: true,
	},
	{
		Name:     "wikitext_remove_param",
		Method:   "RemoveParam",
		Title:    "Remove Template Parameter",
		Category: "edit",
		Description: `Delete a parameter from a template and return the edited page.

USE WHEN: User says "drop the subpage parameter", "remove the date from the tag".

PARAMETERS:
- text: Raw wikitext (required)
- kind: Template kind (required)
- key: Parameter to delete; every occurrence is removed (required)
- occurrence: Which template of that kind, 0-indexed (default 0)

RETURNS: Edited page text and whether anything changed.`,
		Destructive: true,
		Idempotent:  true,
	},
	{
		Name:     "wikitext_remove_templates",
		Method:   "RemoveTemplates",
		Title:    "Remove Templates",
		Category: "edit",
		Description: `Delete every template of a kind anywhere in the page.

USE WHEN: User says "remove all citation needed tags", "strip the {{cn}} templates".

PARAMETERS:
- text: Raw wikitext (required)
- kind: Template kind to delete (required)

RETURNS: Edited page text and whether anything changed. Running it twice is a no-op.`,
		Destructive: true,
		Idempotent:  true,
	},
	{
		Name:     "wikitext_upsert_template",
		Method:   "UpsertTemplate",
		Title:    "Upsert Template",
		Category: "edit",
		Description: `Update a template's parameters, or add the template when the page has none.

USE WHEN: User says "mark this talk page as a level 3 vital article", "add a banner".

NOT FOR: Changing one parameter of one of several templates (use wikitext_set_param with occurrence).

PARAMETERS:
- text: Raw wikitext (required)
- kind: Template kind (required)
- params: [{key, value}] in order; an empty value removes the parameter
- shells: Banner shells to insert into (default WPBS, WikiProjectBannerShell, Banner holder)

RETURNS: Edited page text. A new template goes into the first banner shell found, otherwise at the end of the page.`,
		Idempotent: true,
	},
}
