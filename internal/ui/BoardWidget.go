package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"sahayak/internal/board"
	"sahayak/internal/geom"
)

// BoardWidget shows the controller's composed image and turns mouse input
// into pointer gestures in board pixels.
type BoardWidget struct {
	widget.BaseWidget
	ctrl      *board.Controller
	raster    *canvas.Raster
	statusBar *widget.Label
	// where the next toolbar symbol lands; zero means pick a spot
	lastTap geom.Point
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(ctrl *board.Controller) *BoardWidget {
	b := &BoardWidget{
		ctrl:      ctrl,
		statusBar: widget.NewLabel("Ready"),
	}
	b.raster = canvas.NewRaster(func(w, h int) image.Image {
		if img := ctrl.Image(); img != nil {
			return img
		}
		return image.NewUniform(color.White)
	})
	b.raster.ScaleMode = canvas.ImageScaleFastest
	b.ExtendBaseWidget(b)
	return b
}

// SetStatus updates the status line from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() {
		b.statusBar.SetText(text)
	})
}

func (b *BoardWidget) Status() *widget.Label { return b.statusBar }

// Redraw refreshes the board from any goroutine.
func (b *BoardWidget) Redraw() {
	fyne.Do(b.Refresh)
}

// SymbolPoint is where an inserted symbol goes: the last click on the
// board, or a random spot before the first one.
func (b *BoardWidget) SymbolPoint() geom.Point {
	if b.lastTap != (geom.Point{}) {
		return b.lastTap
	}
	return geom.Pt(board.SymbolSpot())
}

// boardPoint maps a position inside a widget of the given size onto a
// board of bw by bh pixels.
func boardPoint(pos fyne.Position, size fyne.Size, bw, bh int) geom.Point {
	if size.Width <= 0 || size.Height <= 0 {
		return geom.Pt(float64(pos.X), float64(pos.Y))
	}
	return geom.Pt(
		float64(pos.X)*float64(bw)/float64(size.Width),
		float64(pos.Y)*float64(bh)/float64(size.Height),
	)
}

func (b *BoardWidget) toBoard(pos fyne.Position) geom.Point {
	w, h := b.ctrl.Size()
	return boardPoint(pos, b.Size(), w, h)
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p := b.toBoard(e.Position)
	b.lastTap = p
	b.ctrl.PointerDown(p)
	b.Refresh()
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.ctrl.PointerUp()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.ctrl.PointerMove(b.toBoard(e.Position))
	b.Refresh()
}

// DragEnd covers releases outside the widget, where MouseUp never arrives.
func (b *BoardWidget) DragEnd() {
	b.ctrl.PointerUp()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseOut()                      {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

func (b *BoardWidget) MinSize() fyne.Size {
	w, h := b.ctrl.Size()
	if w == 0 || h == 0 {
		return fyne.NewSize(300, 300)
	}
	return fyne.NewSize(float32(w), float32(h))
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 200}
	border.StrokeWidth = 1
	return widget.NewSimpleRenderer(container.NewStack(b.raster, border))
}
