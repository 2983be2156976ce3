package board

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahayak/internal/geom"
	"sahayak/internal/state"
	"sahayak/internal/surface"
)

func TestOutline(t *testing.T) {
	rect := Outline(state.ShapeRectangle, 200, 150, 100, 100)
	assert.Equal(t, geom.OutlinePolygon, rect.Kind)
	assert.Equal(t, []geom.Point{
		geom.Pt(150, 100), geom.Pt(250, 100), geom.Pt(250, 200), geom.Pt(150, 200),
	}, rect.Points)

	tri := Outline(state.ShapeTriangle, 100, 100, 60, 40)
	assert.Equal(t, []geom.Point{
		geom.Pt(100, 80), geom.Pt(70, 120), geom.Pt(130, 120),
	}, tri.Points)

	rh := Outline(state.ShapeRhombus, 0, 0, 20, 10)
	assert.Equal(t, []geom.Point{
		geom.Pt(0, -5), geom.Pt(10, 0), geom.Pt(0, 5), geom.Pt(-10, 0),
	}, rh.Points)

	circle := Outline(state.ShapeCircle, 50, 60, 80, 120)
	assert.Equal(t, geom.OutlineCircle, circle.Kind)
	assert.Equal(t, geom.Pt(50, 60), circle.Center)
	assert.Equal(t, 40.0, circle.Radius)

	hex := Outline(state.ShapePolygon, 100, 100, 100, 100)
	require.Len(t, hex.Points, 6)
	for _, p := range hex.Points {
		assert.InDelta(t, 50, math.Hypot(p.X-100, p.Y-100), 1e-9)
	}
	assert.InDelta(t, hex.Points[4].Y, hex.Points[5].Y, 1e-9, "top edge is flat")

	assert.Empty(t, Outline("star", 0, 0, 10, 10).Points)
}

func TestInkFor(t *testing.T) {
	style := state.StrokeStyle{Color: "#ff0000", Width: 6}

	pen := InkFor(state.ToolPen, style)
	assert.Equal(t, surface.Ink{Color: "#ff0000", Width: 6, Mode: surface.Over}, pen)

	for w := 1; w <= DefaultMaxBrush; w++ {
		ink := InkFor(state.ToolEraser, state.StrokeStyle{Color: "#000000", Width: w})
		assert.Equal(t, surface.Cutout, ink.Mode)
		assert.Equal(t, float64(2*w), ink.Width)
	}
}

func TestPaletteAndSymbols(t *testing.T) {
	assert.Len(t, Palette, 16)
	for _, c := range Palette {
		assert.NoError(t, state.ValidateColor(c), c)
	}
	assert.Contains(t, MathSymbols, "π")

	for range 20 {
		x, y := SymbolSpot()
		assert.GreaterOrEqual(t, x, 100.0)
		assert.Less(t, x, 300.0)
		assert.GreaterOrEqual(t, y, 100.0)
		assert.Less(t, y, 300.0)
	}
}
