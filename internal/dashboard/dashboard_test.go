package dashboard

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/relaytools/oscmd-mcp/internal/applog"
	"github.com/relaytools/oscmd-mcp/internal/executor"
	"github.com/relaytools/oscmd-mcp/internal/outputstore"
	"github.com/relaytools/oscmd-mcp/internal/procmanager"
)

func newTestExecutor(t *testing.T) *executor.Executor {
	t.Helper()
	store, err := outputstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("outputstore.New: %v", err)
	}
	mgr := procmanager.New(store, procmanager.Config{})
	return executor.New(mgr, store, []string{"echo", "sh"})
}

func TestProcessesPageListsBackgroundProcesses(t *testing.T) {
	ex := newTestExecutor(t)
	_, err := ex.StartBackground(context.Background(), executor.StartBackgroundRequest{
		Argv:             []string{"echo", "hello"},
		WorkingDirectory: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("StartBackground: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	p := newProcessesPage(ex, func(string) {})
	if p.table.GetRowCount() < 2 {
		t.Fatalf("expected at least one process row, got %d rows", p.table.GetRowCount())
	}
	idCell := p.table.GetCell(1, 5)
	if idCell == nil || idCell.Text == "" {
		t.Fatalf("expected process id in column 5")
	}
}

func TestProcessesPageOpenInvokesCallback(t *testing.T) {
	ex := newTestExecutor(t)
	handle, err := ex.StartBackground(context.Background(), executor.StartBackgroundRequest{
		Argv:             []string{"echo", "hi"},
		WorkingDirectory: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("StartBackground: %v", err)
	}

	var opened string
	p := newProcessesPage(ex, func(id string) { opened = id })
	p.table.Select(1, 0)
	p.open(1, 0)

	if opened != handle.ID {
		t.Errorf("open callback got %q, want %q", opened, handle.ID)
	}
}

func TestDetailPageShowsProcessInfo(t *testing.T) {
	ex := newTestExecutor(t)
	handle, err := ex.StartBackground(context.Background(), executor.StartBackgroundRequest{
		Argv:             []string{"echo", "hi"},
		WorkingDirectory: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("StartBackground: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	d := newDetailPage(ex)
	d.setProcess(handle.ID)

	if d.info.GetText(true) == "No process selected" {
		t.Errorf("expected process info, got placeholder text")
	}
}

func TestLogsPageFiltersBySubstring(t *testing.T) {
	ring := applog.NewRingBuffer(10)
	ring.Add(applog.Entry{Timestamp: time.Now(), Level: slog.LevelInfo, Message: "server started"})
	ring.Add(applog.Entry{Timestamp: time.Now(), Level: slog.LevelError, Message: "process failed"})

	p := newLogsPage(nil, ring)
	if p.table.GetRowCount() != 3 { // header + 2 entries
		t.Fatalf("expected 3 rows before filtering, got %d", p.table.GetRowCount())
	}

	p.search.SetText("failed")
	p.refresh()
	if p.table.GetRowCount() != 2 { // header + 1 matching entry
		t.Errorf("expected 2 rows after filtering, got %d", p.table.GetRowCount())
	}
}
