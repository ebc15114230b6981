package procmanager

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/relaytools/oscmd-mcp/internal/outputstore"
)

func newTestManager(t *testing.T) (*Manager, *outputstore.Store) {
	t.Helper()
	store, err := outputstore.New(filepath.Join(t.TempDir(), "logs"))
	if err != nil {
		t.Fatalf("outputstore.New: %v", err)
	}
	mgr := New(store, Config{DefaultEncoding: "utf-8"})
	t.Cleanup(func() {
		_ = mgr.Shutdown(context.Background(), 2*time.Second)
	})
	return mgr, store
}

func waitForStatus(t *testing.T, mgr *Manager, id string, want Status, within time.Duration) ProcessRecord {
	t.Helper()
	deadline := time.Now().Add(within)
	for {
		rec, err := mgr.Get(id)
		if err != nil {
			t.Fatalf("Get(%s): %v", id, err)
		}
		if rec.Status == want {
			return rec
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for status %s, last seen %s", want, rec.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartCompletedProcessCapturesOutput(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	handle, err := mgr.Start(ctx, StartRequest{
		Argv:             []string{"echo", "hello"},
		WorkingDirectory: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	rec := waitForStatus(t, mgr, handle.ID, StatusCompleted, 2*time.Second)
	if rec.ExitCode == nil || *rec.ExitCode != 0 {
		t.Fatalf("got exit code %v, want 0", rec.ExitCode)
	}

	entries, err := store.Read(ctx, handle.ID, outputstore.Stdout, outputstore.ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "hello" {
		t.Fatalf("got %+v, want [hello]", entries)
	}
}

func TestStartNonzeroExitIsFailed(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)

	handle, err := mgr.Start(ctx, StartRequest{
		Argv:             []string{"false"},
		WorkingDirectory: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	rec := waitForStatus(t, mgr, handle.ID, StatusFailed, 2*time.Second)
	if rec.ExitCode == nil || *rec.ExitCode == 0 {
		t.Fatalf("got exit code %v, want nonzero", rec.ExitCode)
	}
}

func TestStartEmptyArgvIsErrValue(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.Start(context.Background(), StartRequest{WorkingDirectory: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for empty argv")
	}
}

func TestStartMissingWorkingDirectoryIsErrValue(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.Start(context.Background(), StartRequest{
		Argv:             []string{"echo", "hi"},
		WorkingDirectory: "/does/not/exist/at/all",
	})
	if err == nil {
		t.Fatal("expected error for missing working directory")
	}
}

func TestStartUnknownProgramIsCommandExecutionError(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.Start(context.Background(), StartRequest{
		Argv:             []string{"definitely-not-a-real-program-xyz"},
		WorkingDirectory: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for unresolvable program")
	}
	var cee *CommandExecutionError
	if !errors.As(err, &cee) {
		t.Fatalf("got %v (%T), want *CommandExecutionError", err, err)
	}
}

func TestTimeoutTerminatesProcessAndPreservesPartialOutput(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	handle, err := mgr.Start(ctx, StartRequest{
		Argv:             []string{"sh", "-c", "echo before; sleep 5; echo after"},
		WorkingDirectory: t.TempDir(),
		Timeout:          150 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	rec := waitForStatus(t, mgr, handle.ID, StatusTerminated, 3*time.Second)
	if rec.ErrorMessage != "timeout" {
		t.Fatalf("got error message %q, want %q", rec.ErrorMessage, "timeout")
	}

	entries, err := store.Read(ctx, handle.ID, outputstore.Stdout, outputstore.ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "before" {
		t.Fatalf("got %+v, want [before]", entries)
	}
}

func TestStopGracefulThenIdempotent(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)

	handle, err := mgr.Start(ctx, StartRequest{
		Argv:             []string{"sleep", "30"},
		WorkingDirectory: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := mgr.Stop(ctx, handle.ID, false, "test teardown"); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	rec, err := mgr.Get(handle.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != StatusTerminated {
		t.Fatalf("got status %s, want %s", rec.Status, StatusTerminated)
	}

	if err := mgr.Stop(ctx, handle.ID, false, "second call"); err != nil {
		t.Fatalf("second Stop should be a no-op, got: %v", err)
	}
}

func TestKillProcessFallsBackWhenProcessGroupKillFails(t *testing.T) {
	// A pid above any kernel pid limit has no process group, so the
	// process-group kill fails; killProcess must still return (via the
	// os.FindProcess/Process.Kill fallback) rather than silently swallowing
	// the failure, so Stop/supervise's timeout branch can't hang forever on a
	// platform with no process-group kill.
	if err := killProcess(1 << 30); err == nil {
		t.Fatal("expected an error for a nonexistent pid")
	}
}

func TestCleanRemovesTerminalAndRejectsRunning(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	done, err := mgr.Start(ctx, StartRequest{Argv: []string{"true"}, WorkingDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForStatus(t, mgr, done.ID, StatusCompleted, 2*time.Second)

	running, err := mgr.Start(ctx, StartRequest{Argv: []string{"sleep", "30"}, WorkingDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop(ctx, running.ID, true, "test teardown")

	results, err := mgr.Clean(ctx, []string{done.ID, running.ID, "unknown-id"})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if results[done.ID] != CleanSuccess {
		t.Errorf("got %v for completed id, want success", results[done.ID])
	}
	if results[running.ID] != CleanInUse {
		t.Errorf("got %v for running id, want in use", results[running.ID])
	}
	if results["unknown-id"] != CleanNotFound {
		t.Errorf("got %v for unknown id, want not found", results["unknown-id"])
	}

	if _, err := mgr.Get(done.ID); err != ErrProcessNotFound {
		t.Fatalf("Get after Clean: got %v, want ErrProcessNotFound", err)
	}

	// Idempotent: cleaning it again is CleanNotFound, not an error.
	results2, err := mgr.Clean(ctx, []string{done.ID})
	if err != nil {
		t.Fatalf("second Clean: %v", err)
	}
	if results2[done.ID] != CleanNotFound {
		t.Errorf("got %v on second Clean, want not found", results2[done.ID])
	}

	if _, err := store.Read(ctx, done.ID, outputstore.Stdout, outputstore.ReadOptions{}); err != outputstore.ErrProcessNotFound {
		t.Fatalf("store.Read after Clean: got %v, want ErrProcessNotFound", err)
	}
}

func TestListFiltersByStatusAndLabels(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)

	a, err := mgr.Start(ctx, StartRequest{Argv: []string{"true"}, WorkingDirectory: t.TempDir(), Labels: []string{"nightly", "ci"}})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	b, err := mgr.Start(ctx, StartRequest{Argv: []string{"true"}, WorkingDirectory: t.TempDir(), Labels: []string{"ci"}})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForStatus(t, mgr, a.ID, StatusCompleted, 2*time.Second)
	waitForStatus(t, mgr, b.ID, StatusCompleted, 2*time.Second)

	nightly := mgr.List(nil, []string{"nightly"})
	if len(nightly) != 1 || nightly[0].ID != a.ID {
		t.Fatalf("got %+v, want only %s", nightly, a.ID)
	}

	ci := mgr.List(nil, []string{"ci"})
	if len(ci) != 2 {
		t.Fatalf("got %d records, want 2", len(ci))
	}

	completed := StatusCompleted
	all := mgr.List(&completed, nil)
	if len(all) != 2 {
		t.Fatalf("got %d completed records, want 2", len(all))
	}
}
