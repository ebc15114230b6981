package dashboard

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// showConfirmation displays a modal with the given buttons, calling onDone
// with the index of the chosen button (or -1 if dismissed via Esc).
// Generalized from the teacher's single-purpose quit confirmation dialog so
// the dashboard's one modal use case doesn't need its own copy.
func showConfirmation(app *tview.Application, pages *tview.Pages, pageName, text string, borderColor tcell.Color, buttons []string, onDone func(buttonIndex int)) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons(buttons).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			pages.RemovePage(pageName)
			onDone(buttonIndex)
		})

	modal.SetBorder(true).
		SetBorderColor(borderColor).
		SetBackgroundColor(tcell.ColorBlack)

	modal.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc {
			pages.RemovePage(pageName)
			onDone(-1)
			return nil
		}
		return event
	})

	flex := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(modal, 9, 1, true).
			AddItem(nil, 0, 1, false), 60, 1, true).
		AddItem(nil, 0, 1, false)

	pages.AddAndSwitchToPage(pageName, flex, true)
	app.SetFocus(modal)
}
