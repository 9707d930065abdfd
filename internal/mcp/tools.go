package mcp

import "github.com/mark3labs/mcp-go/mcp"

var (
	documentTypes   = []string{"audit-finding", "audit-report", "executive-summary", "management-letter", "general"}
	englishVariants = []string{"en-GB", "en-US"}
)

// optionProps are the rewrite option arguments shared by rewrite_text and
// settings_update.
func optionProps() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithBoolean("active_voice", mcp.Description("Convert passive sentences to active voice (needs clear_ownership and owner)")),
		mcp.WithBoolean("clear_ownership", mcp.Description("Name the responsible party as the subject")),
		mcp.WithBoolean("sharper_impact", mcp.Description("Suggest stating the consequence of audit findings")),
		mcp.WithBoolean("calm_tone", mcp.Description("Soften alarmist phrasing")),
		mcp.WithBoolean("concise", mcp.Description("Drop filler openers")),
		mcp.WithBoolean("audit_safe_mode", mcp.Description("Never alter meaning; withheld changes become suggestions")),
		mcp.WithBoolean("standardise_spelling", mcp.Description("Rewrite UK/US spellings to english_variant")),
		mcp.WithString("owner", mcp.Description("Responsible party used by active voice, e.g. 'Finance'")),
		mcp.WithString("document_type", mcp.Enum(documentTypes...)),
		mcp.WithString("english_variant", mcp.Enum(englishVariants...)),
	}
}

var rewriteToolDef = mcp.NewTool("rewrite_text", append([]mcp.ToolOption{
	mcp.WithDescription("Rewrite audit or compliance prose into clear, calm, concise text. " +
		"Returns the rewritten text, a change log and suggestions. " +
		"Options given override the saved settings for this call only."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Text to rewrite")),
	mcp.WithReadOnlyHintAnnotation(true),
}, optionProps()...)...)

var storeToolDef = mcp.NewTool("example_store",
	mcp.WithDescription("Save a style example. Active examples calibrate sentence length during rewrites."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Short title")),
	mcp.WithString("text", mcp.Required(), mcp.Description("Example text in the house style")),
	mcp.WithArray("tags", mcp.WithStringItems(), mcp.Description("Optional tags")),
	mcp.WithBoolean("inactive", mcp.Description("Store without activating")),
)

var fetchToolDef = mcp.NewTool("example_fetch",
	mcp.WithDescription("Fetch one style example by ID."),
	mcp.WithString("id", mcp.Required()),
	mcp.WithReadOnlyHintAnnotation(true),
)

var listToolDef = mcp.NewTool("example_list",
	mcp.WithDescription("List style examples, most recently updated first."),
	mcp.WithString("tag", mcp.Description("Only examples with this tag")),
	mcp.WithBoolean("active", mcp.Description("Only active (true) or inactive (false) examples")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var updateToolDef = mcp.NewTool("example_update",
	mcp.WithDescription("Edit a style example, or activate/deactivate it with is_active."),
	mcp.WithString("id", mcp.Required()),
	mcp.WithString("title"),
	mcp.WithString("text"),
	mcp.WithArray("tags", mcp.WithStringItems(), mcp.Description("Replaces all tags")),
	mcp.WithBoolean("is_active"),
)

var deleteToolDef = mcp.NewTool("example_delete",
	mcp.WithDescription("Permanently delete a style example."),
	mcp.WithString("id", mcp.Required()),
	mcp.WithDestructiveHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("example_export",
	mcp.WithDescription("Export saved settings and all style examples to a JSONL file."),
	mcp.WithString("path", mcp.Description("Destination .jsonl (default ~/.cleansheet/exports/examples-<timestamp>.jsonl)")),
)

var importToolDef = mcp.NewTool("example_import",
	mcp.WithDescription("Import style examples and settings from a JSONL export or a YAML style pack."),
	mcp.WithString("path", mcp.Required(), mcp.Description(".jsonl, .yaml or .yml file")),
	mcp.WithString("mode", mcp.Enum("error", "replace", "rename"), mcp.Description("Collision handling (default error)")),
)

var settingsGetToolDef = mcp.NewTool("settings_get",
	mcp.WithDescription("Show the saved rewrite options."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var settingsUpdateToolDef = mcp.NewTool("settings_update", append([]mcp.ToolOption{
	mcp.WithDescription("Change saved rewrite options. Only the options given are changed."),
}, optionProps()...)...)
