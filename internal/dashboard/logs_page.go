package dashboard

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/relaytools/oscmd-mcp/internal/applog"
)

// logsPage searches the server's in-memory log ring buffer by substring,
// generalizing the teacher's logs page (which filtered by a fixed LogLevel
// enum) since this repository's ring buffer entries carry free-form
// messages and attribute tails rather than a small closed set of levels.
type logsPage struct {
	app       *tview.Application
	ring      *applog.RingBuffer
	view      *tview.Flex
	table     *tview.Table
	search    *tview.InputField
	statusBar *tview.TextView
	focusIdx  int // 0: table, 1: search field
}

func newLogsPage(app *tview.Application, ring *applog.RingBuffer) *logsPage {
	p := &logsPage{app: app, ring: ring}

	p.table = tview.NewTable()
	p.table.SetBorder(true).SetTitle(" Log Search ").SetTitleAlign(tview.AlignLeft)
	p.table.SetSelectable(true, false)
	p.table.SetBorderPadding(0, 0, 1, 1)
	p.table.SetFixed(1, 0)

	p.search = tview.NewInputField()
	p.search.SetBorder(true).SetTitle(" Filter (substring) ")
	p.search.SetChangedFunc(func(text string) { p.refresh() })

	p.statusBar = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	p.statusBar.SetBorder(true).SetTitle(" Controls ")
	p.statusBar.SetText("[yellow]Tab[white]: Switch Focus | [yellow]Esc[white]: Back | [yellow]Q[white]: Quit")

	p.view = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.table, 0, 1, true).
		AddItem(p.search, 3, 0, false).
		AddItem(p.statusBar, 3, 0, false)

	p.refresh()
	return p
}

func (p *logsPage) searchFocused() bool {
	return p.focusIdx == 1
}

func (p *logsPage) switchFocus() {
	if p.focusIdx == 0 {
		p.focusIdx = 1
		p.app.SetFocus(p.search)
	} else {
		p.focusIdx = 0
		p.app.SetFocus(p.table)
	}
}

func (p *logsPage) refresh() {
	filter := strings.ToLower(p.search.GetText())

	p.table.Clear()
	headers := []string{"Time", "Level", "Message"}
	for col, h := range headers {
		p.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetAlign(tview.AlignCenter).
			SetSelectable(false))
	}

	entries := p.ring.All()
	row := 1
	for _, e := range entries {
		line := e.Message
		if e.Attrs != "" {
			line += " " + e.Attrs
		}
		if filter != "" && !strings.Contains(strings.ToLower(line), filter) {
			continue
		}
		p.table.SetCell(row, 0, tview.NewTableCell(e.Timestamp.Format("15:04:05.000")).SetTextColor(tcell.ColorLightBlue))
		p.table.SetCell(row, 1, tview.NewTableCell(e.Level.String()).SetTextColor(levelColor(e.Level.String())))
		p.table.SetCell(row, 2, tview.NewTableCell(truncate(line, 100)).SetTextColor(tcell.ColorLightGray))
		row++
	}

	p.table.SetTitle(fmt.Sprintf(" Log Search (%d) ", row-1))
	if p.table.GetRowCount() > 1 {
		p.table.Select(1, 0)
	}
}

func levelColor(level string) tcell.Color {
	switch level {
	case "ERROR":
		return tcell.ColorRed
	case "WARN":
		return tcell.ColorYellow
	case "DEBUG":
		return tcell.ColorGray
	default:
		return tcell.ColorGreen
	}
}
