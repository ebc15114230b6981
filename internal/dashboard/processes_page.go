package dashboard

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/relaytools/oscmd-mcp/internal/executor"
)

// processesPage lists every tracked process, newest first, mirroring the
// teacher's processes table layout (status/command/start time/id columns)
// minus the session grouping this repository has no concept of.
type processesPage struct {
	ex        *executor.Executor
	view      *tview.Flex
	table     *tview.Table
	statusBar *tview.TextView
	onOpen    func(processID string)
}

func newProcessesPage(ex *executor.Executor, onOpen func(processID string)) *processesPage {
	p := &processesPage{
		ex:     ex,
		table:  tview.NewTable(),
		onOpen: onOpen,
	}

	p.table.SetBorder(true).SetTitle(" Processes ").SetTitleAlign(tview.AlignLeft)
	p.table.SetSelectable(true, false)
	p.table.SetBorderPadding(0, 0, 1, 1)
	p.table.SetFixed(1, 0)
	p.table.SetSelectedFunc(func(row, col int) { p.open(row, col) })
	p.table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEnter {
			p.open(p.table.GetSelection())
			return nil
		}
		return event
	})

	p.statusBar = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	p.statusBar.SetBorder(true).SetTitle(" Controls ")
	p.statusBar.SetText("[yellow]↑↓[white]: Navigate | [yellow]Enter[white]: View Details | [yellow]Tab[white]: Switch Page | [yellow]Q[white]: Quit")

	p.view = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.table, 0, 1, true).
		AddItem(p.statusBar, 3, 0, false)

	p.refresh()
	return p
}

func (p *processesPage) open(row, _ int) {
	if row <= 0 {
		return
	}
	if cell := p.table.GetCell(row, 5); cell != nil && cell.Text != "" {
		p.onOpen(cell.Text)
	}
}

func (p *processesPage) refresh() {
	selectedID := p.selectedID()

	p.table.Clear()
	headers := []string{"Status", "Command", "Description", "Started", "Exit", "ID"}
	for col, h := range headers {
		p.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetAlign(tview.AlignCenter).
			SetSelectable(false))
	}

	records := p.ex.List(nil, nil)
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	selectedRow := 1
	for i, rec := range records {
		row := i + 1
		if rec.ID == selectedID {
			selectedRow = row
		}
		p.table.SetCell(row, 0, tview.NewTableCell(string(rec.Status)).SetTextColor(statusColor(rec.Status)))
		p.table.SetCell(row, 1, tview.NewTableCell(truncate(formatArgv(rec.Argv), 40)).SetTextColor(tcell.ColorLightGray))
		p.table.SetCell(row, 2, tview.NewTableCell(truncate(orDash(rec.Description), 24)).SetTextColor(tcell.ColorGreen))
		p.table.SetCell(row, 3, tview.NewTableCell(rec.StartedAt.Format("15:04:05")).SetTextColor(tcell.ColorLightBlue))
		p.table.SetCell(row, 4, tview.NewTableCell(formatExitCode(rec.ExitCode)).SetTextColor(tcell.ColorWhite))
		p.table.SetCell(row, 5, tview.NewTableCell(rec.ID).SetTextColor(tcell.ColorDarkGray))
	}

	p.table.SetTitle(fmt.Sprintf(" Processes (%d) ", len(records)))
	if p.table.GetRowCount() > 1 {
		p.table.Select(selectedRow, 0)
	}
}

func (p *processesPage) selectedID() string {
	row, _ := p.table.GetSelection()
	if row <= 0 {
		return ""
	}
	if cell := p.table.GetCell(row, 5); cell != nil {
		return cell.Text
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
