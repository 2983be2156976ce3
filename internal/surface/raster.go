package surface

import (
	"image"
	"image/color"
	"log/slog"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"

	"sahayak/internal/geom"
)

const (
	gridSize = 20
	gridDash = 2
)

var gridColor = color.NRGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// Raster is a software Surface backed by gg.
//
// Ink lives in its own transparent, premultiplied pixmap. Cutout strokes
// are rendered into a scratch mask that then scales down every ink channel,
// the raster equivalent of a destination-out composite.
type Raster struct {
	width, height int
	background    color.NRGBA
	grid          bool

	ink *gg.Pixmap
	dc  *gg.Context

	mask *gg.Pixmap
	mc   *gg.Context

	log *slog.Logger
}

var _ Surface = (*Raster)(nil)

// RasterOption configures a Raster.
type RasterOption func(*Raster)

// WithBackground sets the color shown wherever there is no ink.
func WithBackground(c color.Color) RasterOption {
	return func(r *Raster) {
		r.background = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
}

// WithLogger sets the logger used for rendering diagnostics.
func WithLogger(l *slog.Logger) RasterOption {
	return func(r *Raster) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRaster creates a blank white surface.
func NewRaster(width, height int, opts ...RasterOption) *Raster {
	r := &Raster{
		width:      width,
		height:     height,
		background: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.ink = gg.NewPixmap(width, height)
	r.dc = newPen(width, height, r.ink)
	r.mask = gg.NewPixmap(width, height)
	r.mc = newPen(width, height, r.mask)
	return r
}

func newPen(width, height int, pm *gg.Pixmap) *gg.Context {
	dc := gg.NewContext(width, height, gg.WithPixmap(pm))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	return dc
}

func (r *Raster) Size() (int, int) {
	return r.width, r.height
}

// StrokePath strokes the polyline through points.
func (r *Raster) StrokePath(points []geom.Point, ink Ink) error {
	if len(points) < 2 || ink.Width <= 0 {
		return nil
	}
	if ink.Mode == Cutout {
		return r.cutout(points, ink.Width)
	}

	r.dc.SetHexColor(ink.Color)
	r.dc.SetLineWidth(ink.Width)
	tracePolyline(r.dc, points)
	return r.dc.Stroke()
}

func (r *Raster) cutout(points []geom.Point, width float64) error {
	r.mask.Clear(gg.Transparent)
	r.mc.SetColor(color.White)
	r.mc.SetLineWidth(width)
	tracePolyline(r.mc, points)
	if err := r.mc.Stroke(); err != nil {
		return err
	}

	box := geom.Bounds(points, width/2+1)
	x0, y0 := clampInt(int(math.Floor(box.Min.X)), 0, r.width), clampInt(int(math.Floor(box.Min.Y)), 0, r.height)
	x1, y1 := clampInt(int(math.Ceil(box.Max.X)), 0, r.width), clampInt(int(math.Ceil(box.Max.Y)), 0, r.height)

	ink, mask := r.ink.Data(), r.mask.Data()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := (y*r.width + x) * 4
			m := uint16(mask[i+3])
			if m == 0 {
				continue
			}
			// ink is premultiplied, so every channel scales with alpha
			for c := i; c < i+4; c++ {
				ink[c] = uint8(uint16(ink[c]) * (255 - m) / 255)
			}
		}
	}
	return nil
}

// StrokeShape strokes a closed outline.
func (r *Raster) StrokeShape(o geom.Outline, ink Ink) error {
	r.dc.SetHexColor(ink.Color)
	r.dc.SetLineWidth(ink.Width)

	switch o.Kind {
	case geom.OutlineCircle:
		if o.Radius <= 0 {
			return nil
		}
		r.dc.DrawCircle(o.Center.X, o.Center.Y, o.Radius)
	default:
		if len(o.Points) < 2 {
			return nil
		}
		tracePolyline(r.dc, o.Points)
		r.dc.ClosePath()
	}
	return r.dc.Stroke()
}

// DrawText draws s with its baseline starting at at.
func (r *Raster) DrawText(s string, at geom.Point, hex string, size float64) error {
	if s == "" {
		return nil
	}
	src, err := loadFont()
	if err != nil {
		r.log.Warn("text unavailable", "err", err)
		return err
	}
	r.dc.SetFont(src.Face(size))
	r.dc.SetHexColor(hex)
	r.dc.DrawString(s, at.X, at.Y)
	return nil
}

func (r *Raster) Snapshot() Snapshot {
	return NewSnapshot(r.width, r.height, r.ink.Data())
}

func (r *Raster) Restore(s Snapshot) error {
	if s.Width() != r.width || s.Height() != r.height || !s.copyTo(r.ink.Data()) {
		return ErrSnapshotSize
	}
	return nil
}

func (r *Raster) Clear() {
	r.ink.Clear(gg.Transparent)
}

func (r *Raster) SetGrid(on bool) {
	r.grid = on
}

// Image composites background, grid and ink into a new RGBA image.
func (r *Raster) Image() image.Image {
	bounds := image.Rect(0, 0, r.width, r.height)
	out := image.NewRGBA(bounds)
	xdraw.Draw(out, bounds, image.NewUniform(r.background), image.Point{}, xdraw.Src)
	if r.grid {
		drawGrid(out)
	}

	ink := &image.RGBA{Pix: r.ink.Data(), Stride: 4 * r.width, Rect: bounds}
	xdraw.Draw(out, bounds, ink, image.Point{}, xdraw.Over)
	return out
}

func drawGrid(img *image.RGBA) {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x += gridSize {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if (y/gridDash)%2 == 0 {
				img.Set(x, y, gridColor)
			}
		}
	}
	for y := b.Min.Y; y < b.Max.Y; y += gridSize {
		for x := b.Min.X; x < b.Max.X; x++ {
			if (x/gridDash)%2 == 0 {
				img.Set(x, y, gridColor)
			}
		}
	}
}

func tracePolyline(dc *gg.Context, points []geom.Point) {
	dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		dc.LineTo(p.X, p.Y)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
