package fsops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Register defines and attaches the five fs_* tools to s.
func Register(s *server.MCPServer, svc *Service) {
	b := &binding{svc: svc}

	readTool := mcp.NewTool(
		"fs_read_file",
		mcp.WithDescription("Read a file's contents; refuses any path outside the server's allowed directories"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path")),
		mcp.WithString("encoding", mcp.Description("Text codec to decode with (default utf-8)")),
	)

	writeTool := mcp.NewTool(
		"fs_write_file",
		mcp.WithDescription("Create or overwrite a file; refuses any path outside the server's allowed directories"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to write")),
		mcp.WithString("encoding", mcp.Description("Text codec to encode with (default utf-8)")),
	)

	listTool := mcp.NewTool(
		"fs_list_directory",
		mcp.WithDescription("List a directory's immediate children with name/type/size"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory path")),
	)

	searchTool := mcp.NewTool(
		"fs_search_files",
		mcp.WithDescription("Recursively search a directory for entries whose name matches a glob pattern"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory to search from")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Glob pattern matched against each entry's base name, e.g. '*.go'")),
	)

	infoTool := mcp.NewTool(
		"fs_file_info",
		mcp.WithDescription("Get a file or directory's size, mode, modification time, and resolved absolute path"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory path")),
	)

	s.AddTool(readTool, b.handleRead)
	s.AddTool(writeTool, b.handleWrite)
	s.AddTool(listTool, b.handleList)
	s.AddTool(searchTool, b.handleSearch)
	s.AddTool(infoTool, b.handleInfo)
}

type binding struct {
	svc *Service
}

func toolResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func argMap(request mcp.CallToolRequest) map[string]any {
	if m, ok := request.Params.Arguments.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func getString(args map[string]any, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func (b *binding) handleRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'path' argument"), nil
	}
	args := argMap(request)

	content, err := b.svc.ReadFile(ctx, path, getString(args, "encoding", ""))
	if err != nil {
		return toolError(err)
	}
	return toolResult(map[string]any{"path": path, "content": content})
}

func (b *binding) handleWrite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'path' argument"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'content' argument"), nil
	}
	args := argMap(request)

	if err := b.svc.WriteFile(ctx, path, content, getString(args, "encoding", "")); err != nil {
		return toolError(err)
	}
	return toolResult(map[string]any{"path": path, "written": true})
}

func (b *binding) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'path' argument"), nil
	}

	entries, err := b.svc.ListDirectory(ctx, path)
	if err != nil {
		return toolError(err)
	}
	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		kind := "file"
		if e.Dir {
			kind = "directory"
		}
		out[i] = map[string]any{"name": e.Name, "path": e.Path, "type": kind, "size": e.Size}
	}
	return toolResult(map[string]any{"entries": out})
}

func (b *binding) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'path' argument"), nil
	}
	pattern, err := request.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'pattern' argument"), nil
	}

	matches, err := b.svc.SearchFiles(ctx, path, pattern)
	if err != nil {
		return toolError(err)
	}
	return toolResult(map[string]any{"matches": matches})
}

func (b *binding) handleInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'path' argument"), nil
	}

	info, err := b.svc.FileInfo(ctx, path)
	if err != nil {
		return toolError(err)
	}
	kind := "file"
	if info.Dir {
		kind = "directory"
	}
	return toolResult(map[string]any{
		"absolute_path": info.AbsolutePath,
		"type":          kind,
		"size":          info.Size,
		"mode":          info.Mode,
		"modified":      info.ModTime,
	})
}
