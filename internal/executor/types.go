// Package executor is the policy layer and user-facing facade over the
// Process Manager and Output Store: allow-list enforcement, synchronous
// execution with timeout-bounded partial output, background process
// operations, and filtered/chunked log retrieval.
package executor

import (
	"time"

	"github.com/relaytools/oscmd-mcp/internal/procmanager"
)

// ExecuteRequest describes a synchronous command invocation.
type ExecuteRequest struct {
	Argv             []string
	WorkingDirectory string
	Stdin            []byte
	Timeout          time.Duration // 0 means the executor's default (15s)
	EnvOverlay       map[string]string
	Encoding         string
	LimitLines       int // 0 means the executor's default (500)
}

// CommandResult is the outcome of a synchronous Execute call.
type CommandResult struct {
	ProcessID     string
	Stdout        string
	Stderr        string
	ExitCode      int
	TimedOut      bool
	ExecutionTime time.Duration
}

// StartBackgroundRequest describes a fire-and-track command invocation.
type StartBackgroundRequest struct {
	Argv             []string
	WorkingDirectory string
	Description      string
	Labels           []string
	Stdin            []byte
	EnvOverlay       map[string]string
	Encoding         string
	Timeout          time.Duration // 0 means unbounded
}

// GrepMode selects how LogsRequest.Grep is applied.
type GrepMode string

const (
	GrepModeLine    GrepMode = "line"
	GrepModeContent GrepMode = "content"
)

// LogsRequest describes a command_ps_logs-style retrieval.
type LogsRequest struct {
	ProcessID        string
	Tail             int
	Since            *time.Time
	Until            *time.Time
	WithStdout       bool
	WithStderr       bool
	AddTimePrefix    bool
	TimePrefixFormat string
	FollowSeconds    int
	LimitLines       int
	Grep             string
	GrepMode         GrepMode
}

// LogsResult is the outcome of a Logs call.
type LogsResult struct {
	Header string
	Chunks []string // each chunk has at most LimitLines lines, in order
}

// Status re-exports procmanager.Status so callers of this package's API
// surface (mcptools) never need to import procmanager directly for the one
// enum they need.
type Status = procmanager.Status

const (
	StatusRunning    = procmanager.StatusRunning
	StatusCompleted  = procmanager.StatusCompleted
	StatusFailed     = procmanager.StatusFailed
	StatusTerminated = procmanager.StatusTerminated
	StatusError      = procmanager.StatusError
)

// ProcessRecord re-exports procmanager.ProcessRecord for the same reason.
type ProcessRecord = procmanager.ProcessRecord

// CleanResult re-exports procmanager.CleanResult.
type CleanResult = procmanager.CleanResult
