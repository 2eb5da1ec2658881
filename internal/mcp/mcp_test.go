package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/quotebook/internal/config"
	"github.com/hpungsan/quotebook/internal/db"
	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/ingest"
	"github.com/hpungsan/quotebook/internal/notify"
	"github.com/hpungsan/quotebook/internal/ops"
	"github.com/hpungsan/quotebook/internal/quote"
	"github.com/hpungsan/quotebook/internal/recency"
)

// testSetup creates a temporary database, config and handlers for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config, *Handlers) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(tmpDir, "quotes")
	if err := ingest.EnsureDataDir(cfg.DataDir); err != nil {
		t.Fatalf("failed to create data dir: %v", err)
	}

	janitor := ingest.NewJanitor(database, cfg.DataDir, 0, &notify.Recorder{})
	t.Cleanup(janitor.Wait)
	selector := ops.NewSelector(database, cfg, recency.NewMemory(), janitor)

	return database, cfg, NewHandlers(database, cfg, selector)
}

func insertQuote(t *testing.T, database *sql.DB, scope, content string, tags ...string) int64 {
	t.Helper()
	q := &quote.Quote{
		Content: content,
		Time:    time.Unix(1_700_000_000, 0),
		Tags:    quote.NewTagSet(append([]string{scope}, tags...)...),
		Group:   scope,
	}
	if err := db.Insert(context.Background(), database, q); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return q.ID
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleSelect(t *testing.T) {
	database, _, h := testSetup(t)
	ctx := context.Background()
	insertQuote(t, database, "42", "hello", "cat")

	t.Run("draws from scope", func(t *testing.T) {
		result, err := h.HandleSelect(ctx, makeRequest(map[string]any{"scope": "42", "with_tags": true}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := parseOutput(t, result)
		if output["rendered"] != `1:["42","cat"]hello` {
			t.Errorf("rendered = %v", output["rendered"])
		}
	})

	t.Run("filters narrow the pool", func(t *testing.T) {
		result, _ := h.HandleSelect(ctx, makeRequest(map[string]any{"scope": "42", "filters": []any{"dog"}}))
		assertErrorCode(t, result, string(errors.ErrNotFound))
	})

	t.Run("scope required", func(t *testing.T) {
		result, _ := h.HandleSelect(ctx, makeRequest(map[string]any{}))
		assertErrorCode(t, result, string(errors.ErrInvalidRequest))
	})

	t.Run("global", func(t *testing.T) {
		result, _ := h.HandleSelect(ctx, makeRequest(map[string]any{"global": true}))
		output := parseOutput(t, result)
		if output["quote"] == nil {
			t.Error("expected a quote")
		}
	})

	t.Run("bad arguments", func(t *testing.T) {
		result, _ := h.HandleSelect(ctx, makeRequest(map[string]any{"scope": 42}))
		assertErrorCode(t, result, string(errors.ErrInvalidRequest))
	})
}

func TestHandleGet(t *testing.T) {
	database, cfg, h := testSetup(t)
	ctx := context.Background()
	id := insertQuote(t, database, "42", "hello")

	result, _ := h.HandleGet(ctx, makeRequest(map[string]any{"id": float64(id)}))
	output := parseOutput(t, result)
	q := output["quote"].(map[string]any)
	if q["content"] != "hello" {
		t.Errorf("content = %v, want hello", q["content"])
	}

	result, _ = h.HandleGet(ctx, makeRequest(map[string]any{"id": float64(99)}))
	assertErrorCode(t, result, string(errors.ErrNotFound))

	result, _ = h.HandleGet(ctx, makeRequest(map[string]any{}))
	assertErrorCode(t, result, string(errors.ErrInvalidRequest))

	// A file-backed quote whose file is gone fails the integrity check
	broken := insertQuote(t, database, "42", quote.ImageMarker)
	result, _ = h.HandleGet(ctx, makeRequest(map[string]any{"id": float64(broken)}))
	assertErrorCode(t, result, string(errors.ErrIntegrityFailure))

	ok := insertQuote(t, database, "42", quote.ImageMarker)
	if err := os.WriteFile(quote.FilePath(cfg.DataDir, ok), make([]byte, 200), 0o644); err != nil {
		t.Fatal(err)
	}
	result, _ = h.HandleGet(ctx, makeRequest(map[string]any{"id": float64(ok)}))
	output = parseOutput(t, result)
	if output["rendered"] != fmt.Sprintf(`%d:<img src="%s">`, ok, quote.FileURL(cfg.DataDir, ok)) {
		t.Errorf("rendered = %v", output["rendered"])
	}
}

func TestHandleList(t *testing.T) {
	database, cfg, h := testSetup(t)
	ctx := context.Background()
	cfg.PageSize = 2
	for i := 0; i < 5; i++ {
		insertQuote(t, database, "42", fmt.Sprintf("q%d", i))
	}
	insertQuote(t, database, "7", "elsewhere")

	result, _ := h.HandleList(ctx, makeRequest(map[string]any{"scope": "42", "page": float64(3)}))
	output := parseOutput(t, result)
	items := output["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	page := output["page"].(map[string]any)
	if page["number"] != float64(3) || page["total"] != float64(3) || page["more"] != false {
		t.Errorf("page = %v", page)
	}

	result, _ = h.HandleList(ctx, makeRequest(map[string]any{"global": true, "full": true}))
	output = parseOutput(t, result)
	if got := len(output["items"].([]any)); got != 6 {
		t.Errorf("global full listing = %d items, want 6", got)
	}
}

func TestHandleRemove(t *testing.T) {
	database, cfg, h := testSetup(t)
	ctx := context.Background()
	id := insertQuote(t, database, "42", quote.ImageMarker)
	path := quote.FilePath(cfg.DataDir, id)
	if err := os.WriteFile(path, make([]byte, 200), 0o644); err != nil {
		t.Fatal(err)
	}

	result, _ := h.HandleRemove(ctx, makeRequest(map[string]any{"id": float64(id)}))
	output := parseOutput(t, result)
	if output["removed"] != true {
		t.Errorf("removed = %v, want true", output["removed"])
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file should be gone, stat err = %v", err)
	}

	result, _ = h.HandleRemove(ctx, makeRequest(map[string]any{"id": float64(id)}))
	assertErrorCode(t, result, string(errors.ErrNotFound))
}

func TestHandleTags(t *testing.T) {
	database, _, h := testSetup(t)
	ctx := context.Background()
	id := insertQuote(t, database, "42", "hello")

	result, _ := h.HandleTagAdd(ctx, makeRequest(map[string]any{"id": float64(id), "tags": []any{"cat", "dog", "cat"}}))
	output := parseOutput(t, result)
	if output["count"] != float64(2) {
		t.Errorf("added = %v, want 2", output["count"])
	}

	result, _ = h.HandleTagRemove(ctx, makeRequest(map[string]any{"id": float64(id), "tags": []any{"42", "dog", "bird"}}))
	output = parseOutput(t, result)
	if output["count"] != float64(1) {
		t.Errorf("removed = %v, want 1", output["count"])
	}
	tags := output["tags"].([]any)
	if len(tags) != 2 || tags[0] != "42" || tags[1] != "cat" {
		t.Errorf("tags = %v, want [42 cat]", tags)
	}

	result, _ = h.HandleTagAdd(ctx, makeRequest(map[string]any{"id": float64(id)}))
	assertErrorCode(t, result, string(errors.ErrInvalidRequest))

	result, _ = h.HandleTagRemove(ctx, makeRequest(map[string]any{"id": float64(99), "tags": []any{"x"}}))
	assertErrorCode(t, result, string(errors.ErrNotFound))
}

func TestServerRegistration(t *testing.T) {
	database, cfg, h := testSetup(t)

	s := NewServer(database, cfg, h.selector, "test")
	tools := s.ListTools()

	if len(tools) != len(toolRegistry) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry))
	}
	for _, name := range AllToolNames() {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg, h := testSetup(t)

	cfg.DisabledTools = []string{"quote_remove", "quote_tag_remove", "quote_remove"}
	s := NewServer(database, cfg, h.selector, "test")
	tools := s.ListTools()

	if len(tools) != len(toolRegistry)-2 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-2)
	}
	for _, name := range cfg.DisabledTools {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	database, cfg, h := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	s := NewServer(database, cfg, h.selector, "test")

	if tools := s.ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{name: "all valid", input: []string{"quote_remove", "quote_tag_add"}, wantLen: 0},
		{name: "one unknown", input: []string{"quote_remove", "quote_store"}, wantLen: 1},
		{name: "all unknown", input: []string{"foo", "bar", "baz"}, wantLen: 3},
		{name: "empty list", input: []string{}, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedError(t *testing.T) {
	r := errorResult(fmt.Errorf("tag edit: %w", errors.NewNotFound("7")))

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("boom")))
	if errObj["code"] != string(errors.ErrInternal) || errObj["message"] != "an internal error occurred" {
		t.Errorf("error = %v", errObj)
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in payload: %v", payload)
	}
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error %q, got success", expectedCode)
		return
	}
	if code := errorObject(t, result)["code"]; code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
