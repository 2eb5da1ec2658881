package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/quotebook/internal/config"
	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	selector *ops.Selector
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, selector *ops.Selector) *Handlers {
	return &Handlers{db: db, cfg: cfg, selector: selector}
}

// SelectRequest represents the arguments for quote_select.
type SelectRequest struct {
	Scope    string   `json:"scope,omitempty"`
	User     string   `json:"user,omitempty"`
	Global   bool     `json:"global,omitempty"`
	WithTags bool     `json:"with_tags,omitempty"`
	Filters  []string `json:"filters,omitempty"`
}

// GetRequest represents the arguments for quote_get.
type GetRequest struct {
	ID       int64 `json:"id"`
	WithTags bool  `json:"with_tags,omitempty"`
}

// ListRequest represents the arguments for quote_list.
type ListRequest struct {
	Scope   string   `json:"scope,omitempty"`
	Global  bool     `json:"global,omitempty"`
	Page    int      `json:"page,omitempty"`
	Full    bool     `json:"full,omitempty"`
	Filters []string `json:"filters,omitempty"`
}

// RemoveRequest represents the arguments for quote_remove.
type RemoveRequest struct {
	ID int64 `json:"id"`
}

// TagsRequest represents the arguments for quote_tag_add and quote_tag_remove.
type TagsRequest struct {
	ID   int64    `json:"id"`
	Tags []string `json:"tags"`
}

// HandleSelect handles the quote_select tool call.
func (h *Handlers) HandleSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SelectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.selector.Select(ctx, ops.SelectInput{
		Scope:    input.Scope,
		User:     input.User,
		Global:   input.Global,
		WithTags: input.WithTags,
		Filters:  input.Filters,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the quote_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID <= 0 {
		return errorResult(errors.NewInvalidRequest("id must be a positive integer")), nil
	}

	result, err := h.selector.Select(ctx, ops.SelectInput{
		ID:       &input.ID,
		WithTags: input.WithTags,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the quote_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.selector.Select(ctx, ops.SelectInput{
		Scope:   input.Scope,
		Global:  input.Global,
		List:    true,
		Page:    input.Page,
		Full:    input.Full,
		Filters: input.Filters,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRemove handles the quote_remove tool call.
func (h *Handlers) HandleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Remove(ctx, h.db, h.cfg.DataDir, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagAdd handles the quote_tag_add tool call.
func (h *Handlers) HandleTagAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddTags(ctx, h.db, input.ID, input.Tags)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagRemove handles the quote_tag_remove tool call.
func (h *Handlers) HandleTagRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RemoveTags(ctx, h.db, input.ID, input.Tags)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	errorObj := map[string]any{
		"code":    errors.ErrInternal,
		"message": "an internal error occurred",
		"status":  500,
	}

	if qErr, ok := errors.As(err); ok {
		errorObj = map[string]any{
			"code":    qErr.Code,
			"message": qErr.Message,
			"status":  qErr.Status,
		}
		if qErr.Code != errors.ErrInternal && qErr.Details != nil {
			errorObj["details"] = qErr.Details
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
