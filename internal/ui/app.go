package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"sahayak/internal/board"
	"sahayak/internal/livetest"
)

// AppOptions is everything the window needs from main.
type AppOptions struct {
	Board     *board.Controller
	Session   *livetest.Session
	ShareLink string
	ExportDir string
	// OnBoardChange runs after every committed board change, off the UI goroutine.
	OnBoardChange func()
}

func RunApp(opts AppOptions) {
	myApp := app.NewWithID("org.sahayak.dashboard")
	myWindow := myApp.NewWindow("SAHAYAK Teacher Dashboard")
	myWindow.Resize(fyne.NewSize(1280, 860))

	// Create the interactive board widget
	boardWidget := NewBoardWidget(opts.Board)
	opts.Board.OnChange(func() {
		boardWidget.Redraw()
		if opts.OnBoardChange != nil {
			opts.OnBoardChange()
		}
	})

	toolbar := NewToolbar(opts.Board, boardWidget, myWindow, opts.ExportDir)

	footer := []fyne.CanvasObject{boardWidget.Status()}
	if opts.ShareLink != "" {
		footer = append(footer, widget.NewLabel("Viewers: "+opts.ShareLink))
	}
	boardTab := container.NewBorder(toolbar.Objects(), container.NewHBox(footer...), nil, nil,
		container.NewCenter(boardWidget))

	tabs := container.NewAppTabs(
		container.NewTabItem("Digital Board", boardTab),
		container.NewTabItem("Live Test", NewLiveTestView(opts.Session, myWindow).Objects()),
	)

	myWindow.SetOnClosed(func() {
		opts.Session.End()
		opts.Board.Close()
	})
	myWindow.SetContent(tabs)
	myWindow.ShowAndRun()
}
