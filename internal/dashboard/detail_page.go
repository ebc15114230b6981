package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/relaytools/oscmd-mcp/internal/executor"
)

// detailPage shows one process's metadata plus a live tail of its combined
// output, refreshed by re-calling Executor.Logs on every poll tick rather
// than holding a persistent stream — the same retrieval path command_ps_logs
// uses, so the dashboard and the MCP tool surface never diverge on what
// "recent output" means.
type detailPage struct {
	ex        *executor.Executor
	view      *tview.Flex
	info      *tview.TextView
	logView   *tview.TextView
	statusBar *tview.TextView
	processID string
}

func newDetailPage(ex *executor.Executor) *detailPage {
	p := &detailPage{ex: ex}

	p.info = tview.NewTextView().SetDynamicColors(true)
	p.info.SetBorder(true).SetTitle(" Process Info ").SetTitleAlign(tview.AlignLeft)

	p.logView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	p.logView.SetBorder(true).SetTitle(" Logs ").SetTitleAlign(tview.AlignLeft)

	p.statusBar = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	p.statusBar.SetBorder(true).SetTitle(" Controls ")
	p.statusBar.SetText("[yellow]Esc[white]: Back | [yellow]Tab[white]: Switch Page | [yellow]Q[white]: Quit")

	p.view = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.info, 8, 0, false).
		AddItem(p.logView, 0, 1, true).
		AddItem(p.statusBar, 3, 0, false)

	return p
}

func (p *detailPage) setProcess(processID string) {
	p.processID = processID
	p.refresh()
}

func (p *detailPage) refresh() {
	if p.processID == "" {
		p.info.SetText("No process selected")
		p.logView.SetText("")
		return
	}

	rec, err := p.ex.Detail(p.processID)
	if err != nil {
		p.info.SetText(fmt.Sprintf("process %s: %v", p.processID, err))
		return
	}

	info := fmt.Sprintf(`[yellow]ID:[white] %s
[yellow]Status:[white] %s
[yellow]Command:[white] %s
[yellow]Description:[white] %s
[yellow]Working Dir:[white] %s
[yellow]Started:[white] %s
[yellow]Uptime:[white] %s
[yellow]Exit Code:[white] %s`,
		rec.ID,
		rec.Status,
		formatArgv(rec.Argv),
		orDash(rec.Description),
		orDash(rec.WorkingDirectory),
		rec.StartedAt.Format("2006-01-02 15:04:05"),
		formatUptime(rec.StartedAt, rec.EndedAt),
		formatExitCode(rec.ExitCode))
	p.info.SetText(info)

	result, err := p.ex.Logs(context.Background(), executor.LogsRequest{
		ProcessID:  p.processID,
		Tail:       200,
		WithStdout: true,
		WithStderr: true,
	})
	if err != nil {
		p.logView.SetText(fmt.Sprintf("log retrieval failed: %v", err))
		return
	}
	p.logView.SetText(strings.Join(result.Chunks, "\n"))
	p.logView.ScrollToEnd()
}
