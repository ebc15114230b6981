// Package mcptools binds the Command Executor's seven logical operations to
// mark3labs/mcp-go tools: thin registrations that extract arguments,
// delegate to internal/executor, and render results/errors back as
// mcp.CallToolResult content.
package mcptools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/relaytools/oscmd-mcp/internal/executor"
)

// Register defines and attaches all seven command_* tools to s.
func Register(s *server.MCPServer, ex *executor.Executor) {
	b := &binding{ex: ex}

	executeTool := mcp.NewTool(
		"command_execute",
		mcp.WithDescription("Run a command synchronously and return its captured output, waiting for it to finish or for its timeout to expire"),
		mcp.WithString("command", mcp.Required(), mcp.Description("Program name; must be present in the server's allow-list")),
		mcp.WithArray("args", mcp.Description("Argument vector, excluding the program name")),
		mcp.WithString("directory", mcp.Required(), mcp.Description("Absolute working directory")),
		mcp.WithString("stdin", mcp.Description("Bytes to write to the process's stdin before closing it")),
		mcp.WithNumber("timeout", mcp.Description("Seconds to wait before forcing termination (default 15)")),
		mcp.WithObject("envs", mcp.Description("Environment variable overlay")),
		mcp.WithString("encoding", mcp.Description("Text codec for decoding output (default server encoding)")),
		mcp.WithNumber("limit_lines", mcp.Description("Maximum lines of stdout/stderr to include, each truncated independently (default 500)")),
	)

	bgStartTool := mcp.NewTool(
		"command_bg_start",
		mcp.WithDescription("Start a command in the background and return its process id immediately, without waiting for it to finish"),
		mcp.WithString("command", mcp.Required(), mcp.Description("Program name; must be present in the server's allow-list")),
		mcp.WithArray("args", mcp.Description("Argument vector, excluding the program name")),
		mcp.WithString("directory", mcp.Required(), mcp.Description("Absolute working directory")),
		mcp.WithString("description", mcp.Description("Human-readable description stored on the process record")),
		mcp.WithArray("labels", mcp.Description("Tags for later filtering via command_ps_list")),
		mcp.WithString("stdin", mcp.Description("Bytes to write to the process's stdin before closing it")),
		mcp.WithObject("envs", mcp.Description("Environment variable overlay")),
		mcp.WithString("encoding", mcp.Description("Text codec for decoding output (default server encoding)")),
		mcp.WithNumber("timeout", mcp.Description("Seconds before the process is force-terminated (omit for unbounded)")),
	)

	psListTool := mcp.NewTool(
		"command_ps_list",
		mcp.WithDescription("List tracked processes, optionally filtered by label set and/or status"),
		mcp.WithArray("labels", mcp.Description("Only processes whose label set is a superset of this list")),
		mcp.WithString("status", mcp.Description("Only processes in this status"), mcp.Enum("RUNNING", "COMPLETED", "FAILED", "TERMINATED", "ERROR")),
	)

	psStopTool := mcp.NewTool(
		"command_ps_stop",
		mcp.WithDescription("Stop a tracked process, gracefully by default"),
		mcp.WithString("pid", mcp.Required(), mcp.Description("Process identifier")),
		mcp.WithBoolean("force", mcp.Description("Skip the grace window and kill immediately (default false)")),
	)

	psLogsTool := mcp.NewTool(
		"command_ps_logs",
		mcp.WithDescription("Retrieve, filter, and optionally follow a tracked process's captured output"),
		mcp.WithString("pid", mcp.Required(), mcp.Description("Process identifier")),
		mcp.WithNumber("tail", mcp.Description("Return only the last N entries satisfying the other filters")),
		mcp.WithString("since", mcp.Description("RFC3339 timestamp; only entries at or after this time")),
		mcp.WithString("until", mcp.Description("RFC3339 timestamp; only entries before this time")),
		mcp.WithBoolean("with_stdout", mcp.Description("Include stdout (default true when omitted)")),
		mcp.WithBoolean("with_stderr", mcp.Description("Include stderr (default false when omitted)")),
		mcp.WithBoolean("add_time_prefix", mcp.Description("Prefix each line with its timestamp")),
		mcp.WithString("time_prefix_format", mcp.Description("Go reference-time layout for the prefix (default 2006-01-02 15:04:05.000000)")),
		mcp.WithNumber("follow_seconds", mcp.Description("If the process is still running, wait up to this many seconds for more output (default 1, max 5)")),
		mcp.WithNumber("limit_lines", mcp.Description("Maximum lines per returned chunk (default 500)")),
		mcp.WithString("grep", mcp.Description("RE2 regular expression to filter lines")),
		mcp.WithString("grep_mode", mcp.Description("'line' keeps whole matching lines, 'content' yields only the matched substrings (default line)"), mcp.Enum("line", "content")),
	)

	psCleanTool := mcp.NewTool(
		"command_ps_clean",
		mcp.WithDescription("Remove terminal process records and their logs"),
		mcp.WithArray("pids", mcp.Required(), mcp.Description("Process identifiers to remove")),
	)

	psDetailTool := mcp.NewTool(
		"command_ps_detail",
		mcp.WithDescription("Get the full record of one tracked process"),
		mcp.WithString("pid", mcp.Required(), mcp.Description("Process identifier")),
	)

	s.AddTool(executeTool, b.handleExecute)
	s.AddTool(bgStartTool, b.handleBgStart)
	s.AddTool(psListTool, b.handlePsList)
	s.AddTool(psStopTool, b.handlePsStop)
	s.AddTool(psLogsTool, b.handlePsLogs)
	s.AddTool(psCleanTool, b.handlePsClean)
	s.AddTool(psDetailTool, b.handlePsDetail)
}

// binding holds the Command Executor the handlers delegate to, replacing the
// teacher's package-level `registry` global with an explicit dependency.
type binding struct {
	ex *executor.Executor
}
