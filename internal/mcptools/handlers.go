package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/relaytools/oscmd-mcp/internal/executor"
)

func toolResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError renders err's Error() string verbatim, so the typed error
// taxonomy's kind (always named in the message, e.g. "executor: invalid
// input: ...") reaches the MCP client instead of being swallowed.
func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func (b *binding) handleExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := argMap(request)
	command, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'command' argument"), nil
	}
	directory, err := request.RequireString("directory")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'directory' argument"), nil
	}

	argv := append([]string{command}, getStringSlice(args, "args")...)
	var timeout time.Duration
	if secs := getInt(args, "timeout", 0); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	result, err := b.ex.Execute(ctx, executor.ExecuteRequest{
		Argv:             argv,
		WorkingDirectory: directory,
		Stdin:            []byte(getString(args, "stdin", "")),
		Timeout:          timeout,
		EnvOverlay:       getStringMap(args, "envs"),
		Encoding:         getString(args, "encoding", ""),
		LimitLines:       getInt(args, "limit_lines", 0),
	})
	if err != nil {
		return toolError(err)
	}
	return toolResult(map[string]any{
		"process_id":     result.ProcessID,
		"stdout":         result.Stdout,
		"stderr":         result.Stderr,
		"exit_code":      result.ExitCode,
		"timed_out":      result.TimedOut,
		"execution_time": result.ExecutionTime.String(),
	})
}

func (b *binding) handleBgStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := argMap(request)
	command, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'command' argument"), nil
	}
	directory, err := request.RequireString("directory")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'directory' argument"), nil
	}

	argv := append([]string{command}, getStringSlice(args, "args")...)
	var timeout time.Duration
	if secs := getInt(args, "timeout", 0); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	rec, err := b.ex.StartBackground(ctx, executor.StartBackgroundRequest{
		Argv:             argv,
		WorkingDirectory: directory,
		Description:      getString(args, "description", ""),
		Labels:           getStringSlice(args, "labels"),
		Stdin:            []byte(getString(args, "stdin", "")),
		EnvOverlay:       getStringMap(args, "envs"),
		Encoding:         getString(args, "encoding", ""),
		Timeout:          timeout,
	})
	if err != nil {
		return toolError(err)
	}
	return toolResult(recordToMap(*rec))
}

func (b *binding) handlePsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := argMap(request)
	labels := getStringSlice(args, "labels")

	var status *executor.Status
	if s := getString(args, "status", ""); s != "" {
		st := executor.Status(s)
		status = &st
	}

	records := b.ex.List(status, labels)
	out := make([]map[string]any, len(records))
	for i, rec := range records {
		out[i] = recordToMap(rec)
	}
	return toolResult(map[string]any{"processes": out})
}

func (b *binding) handlePsStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := argMap(request)
	pid, err := request.RequireString("pid")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'pid' argument"), nil
	}
	force := getBool(args, "force", false)

	if err := b.ex.Stop(ctx, pid, force, "stopped via command_ps_stop"); err != nil {
		return toolError(err)
	}
	return toolResult(map[string]any{"process_id": pid, "stopped": true})
}

func (b *binding) handlePsLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := argMap(request)
	pid, err := request.RequireString("pid")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'pid' argument"), nil
	}

	since, err := parseOptionalTime(getString(args, "since", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'since': %v", err)), nil
	}
	until, err := parseOptionalTime(getString(args, "until", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'until': %v", err)), nil
	}

	// follow_seconds distinguishes "omitted" (default 1) from "explicit 0"
	// here, at the boundary that can tell the two apart; the executor
	// itself always treats 0 as "do not block".
	followSeconds := 1
	if _, present := args["follow_seconds"]; present {
		followSeconds = getInt(args, "follow_seconds", 1)
	}

	// with_stdout/with_stderr default to stdout-only when both are omitted
	// (the original implementation's own default), but an explicit
	// all-false request is honored as "no channels" rather than promoted
	// back to both; this is the same omitted-vs-explicit boundary check as
	// follow_seconds above.
	withStdout, withStderr := true, false
	if _, present := args["with_stdout"]; present {
		withStdout = getBool(args, "with_stdout", true)
	}
	if _, present := args["with_stderr"]; present {
		withStderr = getBool(args, "with_stderr", false)
	}

	result, err := b.ex.Logs(ctx, executor.LogsRequest{
		ProcessID:        pid,
		Tail:             getInt(args, "tail", 0),
		Since:            since,
		Until:            until,
		WithStdout:       withStdout,
		WithStderr:       withStderr,
		AddTimePrefix:    getBool(args, "add_time_prefix", false),
		TimePrefixFormat: getString(args, "time_prefix_format", ""),
		FollowSeconds:    followSeconds,
		LimitLines:       getInt(args, "limit_lines", 0),
		Grep:             getString(args, "grep", ""),
		GrepMode:         executor.GrepMode(getString(args, "grep_mode", string(executor.GrepModeLine))),
	})
	if err != nil {
		return toolError(err)
	}
	return toolResult(map[string]any{
		"header": result.Header,
		"chunks": result.Chunks,
	})
}

func (b *binding) handlePsClean(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := argMap(request)
	pids := getStringSlice(args, "pids")

	results, err := b.ex.Clean(ctx, pids)
	if err != nil {
		return toolError(err)
	}
	out := make(map[string]string, len(results))
	for id, r := range results {
		out[id] = string(r)
	}
	return toolResult(map[string]any{"results": out})
}

func (b *binding) handlePsDetail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pid, err := request.RequireString("pid")
	if err != nil {
		return mcp.NewToolResultError("Missing or invalid 'pid' argument"), nil
	}

	rec, err := b.ex.Detail(pid)
	if err != nil {
		return toolError(err)
	}
	return toolResult(recordToMap(rec))
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func recordToMap(rec executor.ProcessRecord) map[string]any {
	m := map[string]any{
		"id":                rec.ID,
		"argv":              rec.Argv,
		"working_directory": rec.WorkingDirectory,
		"description":       rec.Description,
		"labels":            rec.Labels,
		"status":            string(rec.Status),
		"started_at":        rec.StartedAt,
	}
	if rec.EndedAt != nil {
		m["ended_at"] = *rec.EndedAt
	}
	if rec.ExitCode != nil {
		m["exit_code"] = *rec.ExitCode
	}
	if rec.ErrorMessage != "" {
		m["error_message"] = rec.ErrorMessage
	}
	return m
}
