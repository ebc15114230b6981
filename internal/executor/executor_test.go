package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/relaytools/oscmd-mcp/internal/outputstore"
	"github.com/relaytools/oscmd-mcp/internal/procmanager"
)

// fakeManager is an in-memory stand-in for procmanager.Manager, letting
// executor tests exercise policy and retrieval logic without spawning real
// OS processes.
type fakeManager struct {
	records map[string]procmanager.ProcessRecord
	started []procmanager.StartRequest
	nextID  int
	stopped []string
}

func newFakeManager() *fakeManager {
	return &fakeManager{records: make(map[string]procmanager.ProcessRecord)}
}

func (f *fakeManager) Start(ctx context.Context, req procmanager.StartRequest) (*procmanager.ProcessHandle, error) {
	f.nextID++
	id := "id" + string(rune('0'+f.nextID))
	rec := procmanager.ProcessRecord{
		ID:               id,
		Argv:             req.Argv,
		WorkingDirectory: req.WorkingDirectory,
		Description:      req.Description,
		Labels:           req.Labels,
		Status:           procmanager.StatusCompleted,
		StartedAt:        time.Now(),
	}
	code := 0
	rec.ExitCode = &code
	f.records[id] = rec
	f.started = append(f.started, req)
	return &procmanager.ProcessHandle{ID: id, Record: rec}, nil
}

func (f *fakeManager) Get(id string) (procmanager.ProcessRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return procmanager.ProcessRecord{}, procmanager.ErrProcessNotFound
	}
	return rec, nil
}

func (f *fakeManager) List(status *procmanager.Status, labels []string) []procmanager.ProcessRecord {
	var out []procmanager.ProcessRecord
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out
}

func (f *fakeManager) Stop(ctx context.Context, id string, force bool, reason string) error {
	if _, ok := f.records[id]; !ok {
		return procmanager.ErrProcessNotFound
	}
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeManager) Clean(ctx context.Context, ids []string) (map[string]procmanager.CleanResult, error) {
	out := make(map[string]procmanager.CleanResult)
	for _, id := range ids {
		if _, ok := f.records[id]; !ok {
			out[id] = procmanager.CleanNotFound
			continue
		}
		delete(f.records, id)
		out[id] = procmanager.CleanSuccess
	}
	return out, nil
}

// fakeOutputs is an in-memory stand-in for outputstore.Store.
type fakeOutputs struct {
	lines map[string]map[outputstore.Channel][]outputstore.OutputEntry
}

func newFakeOutputs() *fakeOutputs {
	return &fakeOutputs{lines: make(map[string]map[outputstore.Channel][]outputstore.OutputEntry)}
}

func (f *fakeOutputs) set(id string, channel outputstore.Channel, texts ...string) {
	if f.lines[id] == nil {
		f.lines[id] = make(map[outputstore.Channel][]outputstore.OutputEntry)
	}
	now := time.Now()
	var entries []outputstore.OutputEntry
	for i, t := range texts {
		entries = append(entries, outputstore.OutputEntry{Timestamp: now.Add(time.Duration(i) * time.Millisecond), Channel: channel, Text: t})
	}
	f.lines[id][channel] = entries
}

func (f *fakeOutputs) Read(ctx context.Context, processID string, channel outputstore.Channel, opts outputstore.ReadOptions) ([]outputstore.OutputEntry, error) {
	entries := f.lines[processID][channel]
	if opts.Tail > 0 && len(entries) > opts.Tail {
		entries = entries[len(entries)-opts.Tail:]
	}
	return entries, nil
}

func TestExecuteRejectsDisallowedCommand(t *testing.T) {
	mgr := newFakeManager()
	outs := newFakeOutputs()
	ex := New(mgr, outs, []string{"echo"})

	_, err := ex.Execute(context.Background(), ExecuteRequest{Argv: []string{"rm", "-rf", "/"}, WorkingDirectory: "/tmp"})
	if !errors.Is(err, ErrValue) {
		t.Fatalf("got %v, want ErrValue", err)
	}
	if len(mgr.started) != 0 {
		t.Fatalf("manager.Start was called despite disallowed command")
	}
}

func TestExecuteAllowsConfiguredCommand(t *testing.T) {
	mgr := newFakeManager()
	outs := newFakeOutputs()
	ex := New(mgr, outs, []string{"echo"})

	result, err := ex.Execute(context.Background(), ExecuteRequest{Argv: []string{"echo", "hi"}, WorkingDirectory: "/tmp"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("got exit code %d, want 0", result.ExitCode)
	}
	if len(mgr.started) != 1 {
		t.Fatalf("got %d Start calls, want 1", len(mgr.started))
	}
}

func TestExecuteRejectsRelativeWorkingDirectory(t *testing.T) {
	mgr := newFakeManager()
	outs := newFakeOutputs()
	ex := New(mgr, outs, []string{"echo"})

	_, err := ex.Execute(context.Background(), ExecuteRequest{Argv: []string{"echo"}, WorkingDirectory: "relative/path"})
	if !errors.Is(err, ErrValue) {
		t.Fatalf("got %v, want ErrValue", err)
	}
}

func TestLogsChunksOutputByLimitLines(t *testing.T) {
	mgr := newFakeManager()
	outs := newFakeOutputs()
	ex := New(mgr, outs, []string{"echo"})

	result, err := ex.Execute(context.Background(), ExecuteRequest{Argv: []string{"echo"}, WorkingDirectory: "/tmp"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	outs.set(result.ProcessID, outputstore.Stdout, "a", "b", "c")

	// Three lines with LimitLines=2 split into a two-line chunk and a
	// one-line chunk.
	logsResult, err := ex.Logs(context.Background(), LogsRequest{ProcessID: result.ProcessID, LimitLines: 2, WithStdout: true})
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(logsResult.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(logsResult.Chunks))
	}
}

func TestCleanRejectsEmptyIDList(t *testing.T) {
	mgr := newFakeManager()
	outs := newFakeOutputs()
	ex := New(mgr, outs, []string{"echo"})

	_, err := ex.Clean(context.Background(), nil)
	if !errors.Is(err, ErrValue) {
		t.Fatalf("got %v, want ErrValue", err)
	}
}

func TestLogsGrepLineModeKeepsWholeMatchingLines(t *testing.T) {
	mgr := newFakeManager()
	outs := newFakeOutputs()
	ex := New(mgr, outs, []string{"echo"})

	handle, _ := mgr.Start(context.Background(), procmanager.StartRequest{Argv: []string{"echo"}, WorkingDirectory: "/tmp"})
	outs.set(handle.ID, outputstore.Stdout, "alpha 1", "beta 2", "alpha 3")

	result, err := ex.Logs(context.Background(), LogsRequest{ProcessID: handle.ID, WithStdout: true, Grep: "alpha", GrepMode: GrepModeLine})
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(result.Chunks))
	}
	want := "alpha 1\nalpha 3"
	if result.Chunks[0] != want {
		t.Errorf("got %q, want %q", result.Chunks[0], want)
	}
}

func TestLogsGrepContentModeExtractsMatches(t *testing.T) {
	mgr := newFakeManager()
	outs := newFakeOutputs()
	ex := New(mgr, outs, []string{"echo"})

	handle, _ := mgr.Start(context.Background(), procmanager.StartRequest{Argv: []string{"echo"}, WorkingDirectory: "/tmp"})
	outs.set(handle.ID, outputstore.Stdout, "id=1 id=2", "nothing here")

	result, err := ex.Logs(context.Background(), LogsRequest{ProcessID: handle.ID, WithStdout: true, Grep: `id=\d+`, GrepMode: GrepModeContent})
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	want := "id=1\nid=2"
	if len(result.Chunks) != 1 || result.Chunks[0] != want {
		t.Errorf("got %v, want [%q]", result.Chunks, want)
	}
}

func TestLogsGrepThenTailNotTailThenGrep(t *testing.T) {
	mgr := newFakeManager()
	outs := newFakeOutputs()
	ex := New(mgr, outs, []string{"echo"})

	handle, _ := mgr.Start(context.Background(), procmanager.StartRequest{Argv: []string{"echo"}, WorkingDirectory: "/tmp"})
	outs.set(handle.ID, outputstore.Stdout, "match1", "x", "y", "z")

	result, err := ex.Logs(context.Background(), LogsRequest{ProcessID: handle.ID, WithStdout: true, Grep: "^.{2,}$", GrepMode: GrepModeLine, Tail: 3})
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	want := "match1"
	if len(result.Chunks) != 1 || result.Chunks[0] != want {
		t.Errorf("got %v, want [%q]", result.Chunks, want)
	}
}

func TestLogsInvalidRegexIsErrValue(t *testing.T) {
	mgr := newFakeManager()
	outs := newFakeOutputs()
	ex := New(mgr, outs, []string{"echo"})

	handle, _ := mgr.Start(context.Background(), procmanager.StartRequest{Argv: []string{"echo"}, WorkingDirectory: "/tmp"})

	_, err := ex.Logs(context.Background(), LogsRequest{ProcessID: handle.ID, WithStdout: true, Grep: "(unclosed"})
	if !errors.Is(err, ErrValue) {
		t.Fatalf("got %v, want ErrValue", err)
	}
}

func TestLogsUnknownProcessIsErrProcessNotFound(t *testing.T) {
	mgr := newFakeManager()
	outs := newFakeOutputs()
	ex := New(mgr, outs, []string{"echo"})

	_, err := ex.Logs(context.Background(), LogsRequest{ProcessID: "missing", WithStdout: true})
	if !errors.Is(err, ErrProcessNotFound) {
		t.Fatalf("got %v, want ErrProcessNotFound", err)
	}
}
