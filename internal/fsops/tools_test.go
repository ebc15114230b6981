package fsops

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func req(args map[string]any) mcp.CallToolRequest {
	var r mcp.CallToolRequest
	r.Params.Arguments = args
	return r
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestHandleWriteThenHandleReadRoundTrip(t *testing.T) {
	svc, root := newTestService(t)
	b := &binding{svc: svc}
	path := filepath.Join(root, "note.txt")

	writeRes, err := b.handleWrite(context.Background(), req(map[string]any{"path": path, "content": "hi"}))
	if err != nil {
		t.Fatalf("handleWrite: %v", err)
	}
	if writeRes.IsError {
		t.Fatalf("got error result: %s", resultText(t, writeRes))
	}

	readRes, err := b.handleRead(context.Background(), req(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("handleRead: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(resultText(t, readRes)), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["content"] != "hi" {
		t.Errorf("got %q, want %q", out["content"], "hi")
	}
}

func TestHandleReadOutsideAllowListIsErrorResult(t *testing.T) {
	svc, _ := newTestService(t)
	b := &binding{svc: svc}

	res, err := b.handleRead(context.Background(), req(map[string]any{"path": "/etc/hostname"}))
	if err != nil {
		t.Fatalf("handleRead: %v", err)
	}
	if !res.IsError {
		t.Fatalf("want an error result for a path outside the allow-list")
	}
}

func TestHandleSearchReturnsMatches(t *testing.T) {
	svc, root := newTestService(t)
	b := &binding{svc: svc}
	ctx := context.Background()
	if err := svc.WriteFile(ctx, filepath.Join(root, "x.go"), "x", ""); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res, err := b.handleSearch(ctx, req(map[string]any{"path": root, "pattern": "*.go"}))
	if err != nil {
		t.Fatalf("handleSearch: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	matches, ok := out["matches"].([]any)
	if !ok || len(matches) != 1 {
		t.Fatalf("got %v, want exactly one match", out["matches"])
	}
}
