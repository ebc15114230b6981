// Package dashboard is the read-only tcell/tview terminal UI: a process
// list, a process detail page with a live log tail, and a log search page
// over the server's in-memory log ring buffer. Unlike the teacher's TUI, it
// never mutates process state — no kill, no stdin — since interactive
// control of an already-started process is out of scope here; the
// dashboard is strictly an observation surface over the Process Manager and
// the logger, mirroring tui.go's page-switching and background-update idiom.
package dashboard

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/relaytools/oscmd-mcp/internal/applog"
	"github.com/relaytools/oscmd-mcp/internal/executor"
)

type pageID int

const (
	pageProcesses pageID = iota
	pageDetail
	pageLogs
)

// App is the dashboard's top-level tview application.
type App struct {
	app    *tview.Application
	pages  *tview.Pages
	ctx    context.Context
	cancel context.CancelFunc

	processes *processesPage
	detail    *detailPage
	logs      *logsPage
	current   pageID
}

// New builds a dashboard reading process state from ex and log history
// from ring.
func New(ex *executor.Executor, ring *applog.RingBuffer) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		ctx:    ctx,
		cancel: cancel,
	}

	a.processes = newProcessesPage(ex, a.showDetail)
	a.detail = newDetailPage(ex)
	a.logs = newLogsPage(a.app, ring)

	a.pages.AddPage("processes", a.processes.view, true, true)
	a.pages.AddPage("detail", a.detail.view, true, false)
	a.pages.AddPage("logs", a.logs.view, true, false)

	a.app.EnableMouse(true)
	a.app.SetRoot(a.pages, true)
	a.app.SetInputCapture(a.handleGlobalKeys)

	go a.pollLoop()

	return a
}

func (a *App) showDetail(processID string) {
	a.detail.setProcess(processID)
	a.switchTo(pageDetail)
}

func (a *App) switchTo(p pageID) {
	a.current = p
	switch p {
	case pageProcesses:
		a.pages.SwitchToPage("processes")
		a.processes.refresh()
	case pageDetail:
		a.pages.SwitchToPage("detail")
		a.detail.refresh()
	case pageLogs:
		a.pages.SwitchToPage("logs")
		a.logs.focusIdx = 0
		a.logs.refresh()
	}
	a.app.SetFocus(a.pages)
}

func (a *App) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	if a.current == pageLogs && a.logs.searchFocused() {
		if event.Key() == tcell.KeyTab {
			a.logs.switchFocus()
			return nil
		}
		return event
	}

	switch event.Key() {
	case tcell.KeyTab:
		a.nextPage()
		return nil
	case tcell.KeyBacktab:
		a.prevPage()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case '1':
			a.switchTo(pageProcesses)
			return nil
		case '2':
			a.switchTo(pageLogs)
			return nil
		case 'q', 'Q':
			a.confirmQuit()
			return nil
		}
	case tcell.KeyEsc:
		if a.current != pageProcesses {
			a.switchTo(pageProcesses)
		} else {
			a.confirmQuit()
		}
		return nil
	}
	return event
}

func (a *App) nextPage() {
	switch a.current {
	case pageProcesses:
		a.switchTo(pageLogs)
	case pageLogs:
		a.switchTo(pageProcesses)
	case pageDetail:
		a.switchTo(pageProcesses)
	}
}

func (a *App) prevPage() {
	a.nextPage()
}

func (a *App) confirmQuit() {
	showConfirmation(a.app, a.pages, "quit-confirmation",
		"Quit the dashboard?\n\nManaged processes keep running in the background.",
		tcell.ColorYellow, []string{"Yes", "No"}, func(buttonIndex int) {
			if buttonIndex == 0 {
				a.Stop()
			}
		})
}

// pollLoop redraws the visible page on a fixed tick, the same
// QueueUpdateDraw-from-a-goroutine pattern the teacher's update routine
// uses, simplified since this dashboard never diffs for incremental
// updates — every page rebuild here is already cheap (it snapshots at most
// a few hundred ProcessRecords or ring buffer entries).
func (a *App) pollLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				switch a.current {
				case pageProcesses:
					a.processes.refresh()
				case pageDetail:
					a.detail.refresh()
				case pageLogs:
					a.logs.refresh()
				}
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// Run blocks until the dashboard quits.
func (a *App) Run() error {
	return a.app.Run()
}

// Stop tears down the dashboard and its background poll loop.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
