package ui

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"sahayak/internal/board"
	"sahayak/internal/export"
	"sahayak/internal/intent"
	"sahayak/internal/state"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	Color    color.Color
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, Color: hexColor(hex), OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

// hexColor parses #rrggbb; anything else is black.
func hexColor(hex string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// toolLabels are the toolbar names, in state.Tools order.
var toolLabels = map[state.Tool]string{
	state.ToolPen:       "Pen",
	state.ToolEraser:    "Eraser",
	state.ToolLine:      "Line",
	state.ToolText:      "Text",
	state.ToolRectangle: "Rectangle",
	state.ToolTriangle:  "Triangle",
	state.ToolCircle:    "Circle",
	state.ToolRhombus:   "Rhombus",
	state.ToolPolygon:   "Polygon",
}

// Toolbar wires the board controls to the controller.
type Toolbar struct {
	ctrl      *board.Controller
	board     *BoardWidget
	window    fyne.Window
	exportDir string

	pageLabel *widget.Label
	generate  *widget.Button
}

func NewToolbar(ctrl *board.Controller, b *BoardWidget, w fyne.Window, exportDir string) *Toolbar {
	return &Toolbar{
		ctrl:      ctrl,
		board:     b,
		window:    w,
		exportDir: exportDirOrCwd(exportDir),
		pageLabel: widget.NewLabel(""),
	}
}

func (t *Toolbar) status(format string, args ...any) {
	t.board.SetStatus(fmt.Sprintf(format, args...))
}

func (t *Toolbar) updatePage() {
	t.pageLabel.SetText(fmt.Sprintf("Page %d", t.ctrl.Page()))
}

// Objects builds the toolbar rows shown above the board.
func (t *Toolbar) Objects() fyne.CanvasObject {
	return container.NewVBox(t.drawingRow(), t.actionRow(), t.generateRow())
}

func (t *Toolbar) drawingRow() fyne.CanvasObject {
	names := make([]string, len(state.Tools))
	for i, tool := range state.Tools {
		names[i] = toolLabels[tool]
	}
	toolSelect := widget.NewSelect(names, func(name string) {
		for tool, label := range toolLabels {
			if label == name {
				if err := t.ctrl.SelectTool(tool); err != nil {
					t.status("%v", err)
				}
				return
			}
		}
	})
	toolSelect.SetSelected(toolLabels[state.ToolPen])

	// --- Color Palette ---
	colorBox := container.NewHBox()
	for _, hex := range board.Palette {
		colorBox.Add(newColorSwatch(hex, func(h string) {
			if err := t.ctrl.SetColor(h); err != nil {
				t.status("%v", err)
			}
		}))
	}

	// --- Stroke Width Slider ---
	sizeLabel := widget.NewLabel("")
	strokeSlider := widget.NewSlider(1, float64(t.ctrl.MaxBrush()))
	strokeSlider.Step = 1
	strokeSlider.OnChanged = func(val float64) {
		if err := t.ctrl.SetSize(int(val)); err != nil {
			t.status("%v", err)
			return
		}
		sizeLabel.SetText(fmt.Sprintf("%dpx", int(val)))
	}
	strokeSlider.SetValue(float64(t.ctrl.State().Style.Width))
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	textEntry := widget.NewEntry()
	textEntry.SetPlaceHolder("Text to place")
	textEntry.OnChanged = t.ctrl.SetPendingText

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		toolSelect,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		sizeLabel,
		container.New(layout.NewGridWrapLayout(fyne.NewSize(160, 35)), textEntry),
		layout.NewSpacer(),
	)
}

func (t *Toolbar) actionRow() fyne.CanvasObject {
	symbols := container.NewHBox()
	for _, sym := range board.MathSymbols {
		symbols.Add(widget.NewButton(sym, func() {
			if err := t.ctrl.InsertSymbol(sym, t.board.SymbolPoint()); err != nil {
				t.status("%v", err)
			}
		}))
	}

	grid := widget.NewCheck("Grid", t.ctrl.SetGrid)
	t.updatePage()

	return container.NewHBox(
		widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), func() {
			if !t.ctrl.Undo() {
				t.status("Nothing to undo")
			}
		}),
		widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), t.ctrl.Clear),
		grid,
		widget.NewButtonWithIcon("New Page", theme.DocumentCreateIcon(), func() {
			t.ctrl.NextPage()
			t.updatePage()
		}),
		t.pageLabel,
		widget.NewSeparator(),
		widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), t.savePNG),
		widget.NewButtonWithIcon("Print", theme.DocumentPrintIcon(), t.printPDF),
		widget.NewSeparator(),
		symbols,
		layout.NewSpacer(),
	)
}

func (t *Toolbar) savePNG() {
	path, err := export.SavePNG(t.exportDir, t.ctrl.Page(), t.ctrl.Image(), time.Now())
	if err != nil {
		dialog.ShowError(err, t.window)
		return
	}
	t.status("Saved %s", path)
}

func (t *Toolbar) printPDF() {
	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.window)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		if err := export.WritePrintPDF(w, t.ctrl.Page(), t.ctrl.Image()); err != nil {
			dialog.ShowError(err, t.window)
			return
		}
		t.status("Wrote %s", w.URI().Name())
	}, t.window)
	save.SetFileName(fmt.Sprintf("digital-board-page-%d.pdf", t.ctrl.Page()))
	save.Show()
}

func (t *Toolbar) generateRow() fyne.CanvasObject {
	prompt := widget.NewEntry()
	prompt.SetPlaceHolder("Describe a shape, e.g. draw a triangle with 5cm sides")

	lang := widget.NewSelect(intent.Languages, nil)
	lang.SetSelected(intent.DefaultLanguage)

	t.generate = widget.NewButtonWithIcon("Generate", theme.MediaPlayIcon(), nil)
	t.generate.OnTapped = func() {
		text, language := prompt.Text, lang.Selected
		t.generate.Disable()
		t.status("Generating...")
		go func() {
			defer fyne.Do(t.generate.Enable)
			res, err := t.ctrl.GenerateShape(context.Background(), text, language)
			if err != nil {
				t.status("%v", err)
				return
			}
			t.status("%s", res.Status)
		}()
	}

	return container.NewBorder(nil, nil,
		widget.NewLabel("AI Shape:"),
		container.NewHBox(lang, t.generate),
		prompt,
	)
}

// exportDirOrCwd falls back to the working directory when dir is unset.
func exportDirOrCwd(dir string) string {
	if dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
