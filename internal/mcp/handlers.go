package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/errors"
	"github.com/bigviv/CleanSheet/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// OptionArgs are the rewrite options accepted by rewrite_text and
// settings_update. Nil fields are left as saved.
type OptionArgs struct {
	ActiveVoice         *bool   `json:"active_voice,omitempty"`
	ClearOwnership      *bool   `json:"clear_ownership,omitempty"`
	SharperImpact       *bool   `json:"sharper_impact,omitempty"`
	CalmTone            *bool   `json:"calm_tone,omitempty"`
	Concise             *bool   `json:"concise,omitempty"`
	AuditSafeMode       *bool   `json:"audit_safe_mode,omitempty"`
	StandardiseSpelling *bool   `json:"standardise_spelling,omitempty"`
	Owner               *string `json:"owner,omitempty"`
	DocumentType        *string `json:"document_type,omitempty"`
	EnglishVariant      *string `json:"english_variant,omitempty"`
}

func (a OptionArgs) patch() ops.SettingsPatch {
	return ops.SettingsPatch{
		ActiveVoice:         a.ActiveVoice,
		ClearOwnership:      a.ClearOwnership,
		SharperImpact:       a.SharperImpact,
		CalmTone:            a.CalmTone,
		Concise:             a.Concise,
		AuditSafeMode:       a.AuditSafeMode,
		StandardiseSpelling: a.StandardiseSpelling,
		Owner:               a.Owner,
		DocumentType:        a.DocumentType,
		EnglishVariant:      a.EnglishVariant,
	}
}

func (a OptionArgs) empty() bool {
	return a == OptionArgs{}
}

// RewriteRequest represents the arguments for rewrite_text.
type RewriteRequest struct {
	Text string `json:"text"`
	OptionArgs
}

// StoreRequest represents the arguments for example_store.
type StoreRequest struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags,omitempty"`
	Inactive bool     `json:"inactive,omitempty"`
}

// IDRequest represents the arguments for example_fetch and example_delete.
type IDRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for example_list.
type ListRequest struct {
	Tag    string `json:"tag,omitempty"`
	Active *bool  `json:"active,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// UpdateRequest represents the arguments for example_update.
type UpdateRequest struct {
	ID       string    `json:"id"`
	Title    *string   `json:"title,omitempty"`
	Text     *string   `json:"text,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

// ExportRequest represents the arguments for example_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for example_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandleRewrite handles the rewrite_text tool call.
func (h *Handlers) HandleRewrite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RewriteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	rin := ops.RewriteInput{Text: input.Text}
	if !input.OptionArgs.empty() {
		saved, err := ops.GetSettings(ctx, h.db, h.cfg)
		if err != nil {
			return errorResult(err), nil
		}
		opts := input.OptionArgs.patch().Apply(saved.Options)
		opts.Owner = strings.TrimSpace(opts.Owner)
		rin.Options = &opts
	}

	result, err := ops.Rewrite(ctx, h.db, h.cfg, rin)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStore handles the example_store tool call.
func (h *Handlers) HandleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StoreRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.StoreExample(ctx, h.db, h.cfg, ops.StoreInput{
		Title:    input.Title,
		Text:     input.Text,
		Tags:     input.Tags,
		Inactive: input.Inactive,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the example_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.FetchExample(ctx, h.db, ops.FetchInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the example_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListExamples(ctx, h.db, ops.ListInput{
		Tag:    input.Tag,
		Active: input.Active,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdate handles the example_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.UpdateExample(ctx, h.db, h.cfg, ops.UpdateInput{
		ID:       input.ID,
		Title:    input.Title,
		Text:     input.Text,
		Tags:     input.Tags,
		IsActive: input.IsActive,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the example_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteExample(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the example_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the example_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSettingsGet handles the settings_get tool call.
func (h *Handlers) HandleSettingsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.GetSettings(ctx, h.db, h.cfg)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSettingsUpdate handles the settings_update tool call.
func (h *Handlers) HandleSettingsUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[OptionArgs](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.empty() {
		return errorResult(errors.NewInvalidRequest("at least one option must be provided")), nil
	}

	result, err := ops.UpdateSettings(ctx, h.db, h.cfg, input.patch())
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var csErr *errors.CleanSheetError
	if stderrors.As(err, &csErr) {
		// Keep any wrapping context ("line 3: ...") in front of the message.
		msg := csErr.Message
		if prefix := strings.TrimSuffix(err.Error(), csErr.Error()); prefix != err.Error() {
			msg = prefix + msg
		}
		if csErr.Code == errors.ErrInternal {
			msg = "an internal error occurred"
		}
		errorObj := map[string]any{
			"code":    csErr.Code,
			"message": msg,
			"status":  csErr.Status,
		}
		if csErr.Code != errors.ErrInternal && csErr.Details != nil {
			errorObj["details"] = csErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
