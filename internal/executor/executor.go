package executor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/relaytools/oscmd-mcp/internal/outputstore"
	"github.com/relaytools/oscmd-mcp/internal/procmanager"
)

// ProcessManager is the subset of procmanager.Manager the executor needs.
type ProcessManager interface {
	Start(ctx context.Context, req procmanager.StartRequest) (*procmanager.ProcessHandle, error)
	Get(id string) (procmanager.ProcessRecord, error)
	List(status *procmanager.Status, labels []string) []procmanager.ProcessRecord
	Stop(ctx context.Context, id string, force bool, reason string) error
	Clean(ctx context.Context, ids []string) (map[string]procmanager.CleanResult, error)
}

// OutputReader is the subset of outputstore.Store the executor needs.
type OutputReader interface {
	Read(ctx context.Context, processID string, channel outputstore.Channel, opts outputstore.ReadOptions) ([]outputstore.OutputEntry, error)
}

const (
	defaultExecuteTimeout = 15 * time.Second
	defaultLimitLines     = 500
	defaultFollowSeconds  = 1
)

// Executor is the concrete Command Executor.
type Executor struct {
	manager         ProcessManager
	outputs         OutputReader
	allowedCommands map[string]struct{}
}

// New constructs an Executor that only allows argv[0] values present in
// allowedCommands (exact string match, checked before any filesystem
// resolution happens one layer down in the Process Manager).
func New(manager ProcessManager, outputs OutputReader, allowedCommands []string) *Executor {
	allow := make(map[string]struct{}, len(allowedCommands))
	for _, c := range allowedCommands {
		allow[c] = struct{}{}
	}
	return &Executor{manager: manager, outputs: outputs, allowedCommands: allow}
}

func (e *Executor) checkPolicy(argv []string, workingDirectory string) error {
	if len(argv) == 0 {
		return fmt.Errorf("%w: argv must not be empty", ErrValue)
	}
	if _, ok := e.allowedCommands[argv[0]]; !ok {
		return fmt.Errorf("%w: command %q is not in the allow-list", ErrValue, argv[0])
	}
	if !filepath.IsAbs(workingDirectory) {
		return fmt.Errorf("%w: working directory must be an absolute path", ErrValue)
	}
	return nil
}

func translateStartErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, procmanager.ErrValue) {
		return fmt.Errorf("%w: %v", ErrValue, err)
	}
	var cee *procmanager.CommandExecutionError
	if errors.As(err, &cee) {
		return fmt.Errorf("%w: %v", ErrCommandExecution, err)
	}
	return fmt.Errorf("%w: %v", ErrPermission, err)
}

// Execute runs argv synchronously, waiting for it to finish or for its
// timeout to expire, and returns the captured output either way.
func (e *Executor) Execute(ctx context.Context, req ExecuteRequest) (*CommandResult, error) {
	if err := e.checkPolicy(req.Argv, req.WorkingDirectory); err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultExecuteTimeout
	}
	limitLines := req.LimitLines
	if limitLines <= 0 {
		limitLines = defaultLimitLines
	}

	start := time.Now()
	handle, err := e.manager.Start(ctx, procmanager.StartRequest{
		Argv:             req.Argv,
		WorkingDirectory: req.WorkingDirectory,
		Stdin:            req.Stdin,
		Timeout:          timeout,
		EnvOverlay:       req.EnvOverlay,
		Encoding:         req.Encoding,
	})
	if err != nil {
		return nil, translateStartErr(err)
	}

	rec, err := e.awaitTerminal(ctx, handle.ID, timeout+2*time.Second)
	if err != nil {
		return nil, err
	}

	stdout, _ := e.readJoined(ctx, handle.ID, outputstore.Stdout, limitLines)
	stderr, _ := e.readJoined(ctx, handle.ID, outputstore.Stderr, limitLines)

	result := &CommandResult{
		ProcessID:     handle.ID,
		Stdout:        stdout,
		Stderr:        stderr,
		ExecutionTime: time.Since(start),
	}
	if rec.Status == procmanager.StatusTerminated && rec.ErrorMessage == "timeout" {
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}
	if rec.ExitCode != nil {
		result.ExitCode = *rec.ExitCode
	}
	return result, nil
}

// awaitTerminal polls the registry until rec.Status is terminal or deadline
// elapses. The Process Manager's own Stop/supervise paths already block
// until terminal; this additional poll exists because Execute has no direct
// channel into the supervisor goroutine, only the registry.
func (e *Executor) awaitTerminal(ctx context.Context, id string, deadline time.Duration) (procmanager.ProcessRecord, error) {
	timer := time.NewTimer(deadline)
	defer timer.Stop()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		rec, err := e.manager.Get(id)
		if err != nil {
			return procmanager.ProcessRecord{}, fmt.Errorf("%w: %v", ErrProcessNotFound, err)
		}
		if rec.Status.IsTerminal() {
			return rec, nil
		}
		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		case <-timer.C:
			return rec, nil
		case <-ticker.C:
		}
	}
}

func (e *Executor) readJoined(ctx context.Context, id string, channel outputstore.Channel, limitLines int) (string, error) {
	entries, err := e.outputs.Read(ctx, id, channel, outputstore.ReadOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutputRetrieval, err)
	}
	lines := make([]string, len(entries))
	for i, en := range entries {
		lines[i] = en.Text
	}
	total := len(lines)
	if limitLines > 0 && total > limitLines {
		marker := fmt.Sprintf("... (truncated, showing last %d of %d lines) ...", limitLines, total)
		lines = append([]string{marker}, lines[total-limitLines:]...)
	}
	return strings.Join(lines, "\n"), nil
}

// StartBackground spawns argv without waiting for it to finish.
func (e *Executor) StartBackground(ctx context.Context, req StartBackgroundRequest) (*ProcessRecord, error) {
	if err := e.checkPolicy(req.Argv, req.WorkingDirectory); err != nil {
		return nil, err
	}
	handle, err := e.manager.Start(ctx, procmanager.StartRequest{
		Argv:             req.Argv,
		WorkingDirectory: req.WorkingDirectory,
		Description:      req.Description,
		Labels:           req.Labels,
		Stdin:            req.Stdin,
		Timeout:          req.Timeout,
		EnvOverlay:       req.EnvOverlay,
		Encoding:         req.Encoding,
	})
	if err != nil {
		return nil, translateStartErr(err)
	}
	rec := handle.Record
	return &rec, nil
}

// List passes through to the Process Manager.
func (e *Executor) List(status *Status, labels []string) []ProcessRecord {
	return e.manager.List(status, labels)
}

// Detail returns a snapshot of one process's record.
func (e *Executor) Detail(id string) (ProcessRecord, error) {
	rec, err := e.manager.Get(id)
	if err != nil {
		return ProcessRecord{}, fmt.Errorf("%w: %v", ErrProcessNotFound, err)
	}
	return rec, nil
}

// Stop passes through to the Process Manager, translating its error
// taxonomy into the executor's own sentinels.
func (e *Executor) Stop(ctx context.Context, id string, force bool, reason string) error {
	err := e.manager.Stop(ctx, id, force, reason)
	if err == nil {
		return nil
	}
	if errors.Is(err, procmanager.ErrProcessNotFound) {
		return fmt.Errorf("%w: %v", ErrProcessNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrProcessControl, err)
}

// Clean passes through to the Process Manager.
func (e *Executor) Clean(ctx context.Context, ids []string) (map[string]CleanResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: ids must not be empty", ErrValue)
	}
	results, err := e.manager.Clean(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessClean, err)
	}
	out := make(map[string]CleanResult, len(results))
	for k, v := range results {
		out[k] = CleanResult(v)
	}
	return out, nil
}

func formatHeader(rec procmanager.ProcessRecord) string {
	exit := "-"
	if rec.ExitCode != nil {
		exit = strconv.Itoa(*rec.ExitCode)
	}
	return fmt.Sprintf("process=%s status=%s command=%q description=%q exit_code=%s",
		rec.ID, rec.Status, strings.Join(rec.Argv, " "), rec.Description, exit)
}
