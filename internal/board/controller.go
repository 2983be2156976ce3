// Package board is the interaction controller of the digital board.
//
// A Controller turns pointer gestures and toolbar actions into draw calls
// on a surface.Surface, and records one history frame per completed action
// so that Undo restores both the pixels and the list of placed shapes.
package board

import (
	"context"
	"image"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"sahayak/internal/geom"
	"sahayak/internal/intent"
	"sahayak/internal/state"
	"sahayak/internal/surface"
)

var (
	ErrGenerationInProgress = errors.New("shape generation already in progress")
	ErrNoSurface            = errors.New("board has no surface")
)

const (
	DefaultMaxBrush = 40
	DefaultColor    = "#000000"
	DefaultBrush    = 3

	// SymbolSize is the font size of inserted math symbols.
	SymbolSize = 24
	// TextSize is the font size of the text tool.
	TextSize = 16
)

// Options configures a Controller. Zero values take the package defaults.
type Options struct {
	HistoryCap int
	MaxBrush   int
	Color      string
	Brush      int
	Logger     *slog.Logger
	// Generator resolves AI shape prompts. Nil uses the offline parser only.
	Generator ShapeGenerator
}

// ShapeGenerator resolves a shape description into a drawable intent.
type ShapeGenerator interface {
	Parse(ctx context.Context, prompt, language string) (intent.Result, error)
}

// frame is one undo step. shapes is clipped so later appends never write
// into it.
type frame struct {
	snap   surface.Snapshot
	shapes []state.ShapeRecord
}

type gesture struct {
	tool   state.Tool
	anchor geom.Point
	last   geom.Point
}

// Controller owns the board state. All methods are safe for concurrent use;
// a nil surface turns every drawing entry point into a no-op.
type Controller struct {
	mu       sync.RWMutex
	surface  surface.Surface
	tool     state.Tool
	style    state.StrokeStyle
	shapes   []state.ShapeRecord
	history  *History[frame]
	active   *gesture
	text     string
	page     int
	maxBrush int

	gen        ShapeGenerator
	generating atomic.Bool
	closed     atomic.Bool

	onChange func()
	log      *slog.Logger
	newID    func() string
}

// New creates a controller drawing on s and records the blank starting frame.
func New(s surface.Surface, opts Options) *Controller {
	c := &Controller{
		surface:  s,
		tool:     state.ToolPen,
		style:    state.StrokeStyle{Color: DefaultColor, Width: DefaultBrush},
		history:  NewHistory[frame](opts.HistoryCap),
		page:     1,
		maxBrush: DefaultMaxBrush,
		gen:      opts.Generator,
		log:      opts.Logger,
		newID:    uuid.NewString,
	}
	if opts.MaxBrush > 0 {
		c.maxBrush = opts.MaxBrush
	}
	if opts.Color != "" && state.ValidateColor(opts.Color) == nil {
		c.style.Color = opts.Color
	}
	if opts.Brush > 0 && opts.Brush <= c.maxBrush {
		c.style.Width = opts.Brush
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.gen == nil {
		w, h := intent.DefaultCanvasWidth, intent.DefaultCanvasHeight
		if s != nil {
			w, h = s.Size()
		}
		c.gen = intent.NewParser(nil, intent.WithCanvas(w, h), intent.WithLogger(c.log))
	}
	if s != nil {
		c.history.Push(c.frameLocked())
	}
	return c
}

// OnChange registers fn to run after every visible change. fn runs outside
// the controller lock.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.RLock()
	fn := c.onChange
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// SelectTool makes t the active tool. A gesture already in progress keeps
// the tool it started with.
func (c *Controller) SelectTool(t state.Tool) error {
	if _, err := state.ParseTool(string(t)); err != nil {
		return err
	}
	c.mu.Lock()
	c.tool = t
	c.mu.Unlock()
	return nil
}

// SetColor changes the stroke color for subsequent drawing.
func (c *Controller) SetColor(hex string) error {
	if err := state.ValidateColor(hex); err != nil {
		return err
	}
	c.mu.Lock()
	c.style.Color = hex
	c.mu.Unlock()
	return nil
}

// SetSize changes the brush width, 1 to the configured maximum.
func (c *Controller) SetSize(px int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := state.ValidateSize(px, c.maxBrush); err != nil {
		return err
	}
	c.style.Width = px
	return nil
}

// MaxBrush is the largest accepted brush size.
func (c *Controller) MaxBrush() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxBrush
}

// SetPendingText sets the string the text tool places on click.
func (c *Controller) SetPendingText(s string) {
	c.mu.Lock()
	c.text = s
	c.mu.Unlock()
}

func (c *Controller) PendingText() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text
}

// PointerDown starts a gesture at p. Shape tools place their shape
// immediately; the text tool places the pending text.
func (c *Controller) PointerDown(p geom.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.surface == nil || c.active != nil {
		return
	}
	c.active = &gesture{tool: c.tool, anchor: p, last: p}

	if kind, ok := c.tool.ShapeType(); ok {
		if _, err := c.placeShapeLocked(kind, p, DefaultShapeSize, DefaultShapeSize, ""); err != nil {
			c.log.Warn("draw shape", "shape", kind, "err", err)
		}
		return
	}
	if c.tool == state.ToolText && c.text != "" {
		if err := c.surface.DrawText(c.text, p, c.style.Color, TextSize); err != nil {
			c.log.Warn("draw text", "err", err)
		}
	}
}

// PointerMove extends a freehand gesture to p.
func (c *Controller) PointerMove(p geom.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.active
	if c.surface == nil || g == nil {
		return
	}
	if g.tool.Freehand() && p != g.last {
		if err := c.surface.StrokePath([]geom.Point{g.last, p}, InkFor(g.tool, c.style)); err != nil {
			c.log.Warn("stroke", "tool", g.tool, "err", err)
		}
	}
	g.last = p
}

// PointerUp ends the gesture and commits it to history.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	g := c.active
	if c.surface == nil || g == nil {
		c.mu.Unlock()
		return
	}
	c.active = nil
	if g.tool == state.ToolLine && g.last != g.anchor {
		if err := c.surface.StrokePath([]geom.Point{g.anchor, g.last}, InkFor(state.ToolPen, c.style)); err != nil {
			c.log.Warn("draw line", "err", err)
		}
	}
	c.history.Push(c.frameLocked())
	c.mu.Unlock()
	c.notify()
}

// Undo restores the previous frame. It reports false when there is nothing
// to undo.
func (c *Controller) Undo() bool {
	c.mu.Lock()
	if c.surface == nil {
		c.mu.Unlock()
		return false
	}
	c.active = nil
	f, ok := c.history.Undo()
	if !ok {
		c.mu.Unlock()
		return false
	}
	if err := c.surface.Restore(f.snap); err != nil {
		c.log.Error("restore snapshot", "err", err)
	}
	c.shapes = f.shapes
	c.mu.Unlock()
	c.notify()
	return true
}

// Clear wipes the board and its shape list. Clear is itself undoable.
func (c *Controller) Clear() {
	c.mu.Lock()
	if c.surface == nil {
		c.mu.Unlock()
		return
	}
	c.active = nil
	c.surface.Clear()
	c.shapes = nil
	c.history.Push(c.frameLocked())
	c.mu.Unlock()
	c.notify()
}

// NextPage starts a fresh page with an empty history and returns its number.
func (c *Controller) NextPage() int {
	c.mu.Lock()
	c.page++
	page := c.page
	if c.surface == nil {
		c.mu.Unlock()
		return page
	}
	c.active = nil
	c.surface.Clear()
	c.shapes = nil
	c.history.Reset(c.frameLocked())
	c.mu.Unlock()
	c.log.Info("new page", "page", page)
	c.notify()
	return page
}

func (c *Controller) Page() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// SetGrid toggles the grid overlay. The grid is not part of history.
func (c *Controller) SetGrid(on bool) {
	c.mu.Lock()
	if c.surface == nil {
		c.mu.Unlock()
		return
	}
	c.surface.SetGrid(on)
	c.mu.Unlock()
	c.notify()
}

// InsertSymbol writes symbol at p in the current color and commits it.
func (c *Controller) InsertSymbol(symbol string, p geom.Point) error {
	c.mu.Lock()
	if c.surface == nil {
		c.mu.Unlock()
		return ErrNoSurface
	}
	if err := c.surface.DrawText(symbol, p, c.style.Color, SymbolSize); err != nil {
		c.mu.Unlock()
		return err
	}
	c.history.Push(c.frameLocked())
	c.mu.Unlock()
	c.notify()
	return nil
}

// PlaceShape draws a shape outside of any gesture and commits it.
func (c *Controller) PlaceShape(kind state.ShapeType, center geom.Point, w, h float64, label string) (state.ShapeRecord, error) {
	c.mu.Lock()
	if c.surface == nil {
		c.mu.Unlock()
		return state.ShapeRecord{}, ErrNoSurface
	}
	rec, err := c.placeShapeLocked(kind, center, w, h, label)
	if err != nil {
		c.mu.Unlock()
		return state.ShapeRecord{}, err
	}
	c.history.Push(c.frameLocked())
	c.mu.Unlock()
	c.notify()
	return rec, nil
}

func (c *Controller) placeShapeLocked(kind state.ShapeType, center geom.Point, w, h float64, label string) (state.ShapeRecord, error) {
	if _, err := state.ParseShapeType(string(kind)); err != nil {
		return state.ShapeRecord{}, err
	}
	if w <= 0 || h <= 0 {
		return state.ShapeRecord{}, errors.Wrapf(state.ErrInvalidSize, "%gx%g", w, h)
	}
	if err := DrawShape(c.surface, kind, center.X, center.Y, w, h, c.style.Color); err != nil {
		return state.ShapeRecord{}, err
	}
	rec := state.ShapeRecord{
		ID:     c.newID(),
		Type:   kind,
		Center: center,
		Width:  w,
		Height: h,
		Color:  c.style.Color,
		Label:  label,
	}
	c.shapes = append(c.shapes, rec)
	return rec, nil
}

func (c *Controller) frameLocked() frame {
	return frame{snap: c.surface.Snapshot(), shapes: slices.Clip(c.shapes)}
}

// State returns a copy of the tool, style and placed shapes.
func (c *Controller) State() state.BoardState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return state.BoardState{Tool: c.tool, Style: c.style, Shapes: c.shapes}.Clone()
}

// Shapes returns a copy of the placed shapes in placement order.
func (c *Controller) Shapes() []state.ShapeRecord {
	return c.State().Shapes
}

// Image returns the composited board, or nil without a surface.
func (c *Controller) Image() image.Image {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.surface == nil {
		return nil
	}
	return c.surface.Image()
}

// Size returns the surface size, zero without a surface.
func (c *Controller) Size() (int, int) {
	if c.surface == nil {
		return 0, 0
	}
	return c.surface.Size()
}

func (c *Controller) CanUndo() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.CanUndo()
}

func (c *Controller) HistoryLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.Len()
}

// Close marks the controller as gone. Shape generations that finish later
// are discarded.
func (c *Controller) Close() {
	c.closed.Store(true)
}
