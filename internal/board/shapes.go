package board

import (
	"math"

	"sahayak/internal/geom"
	"sahayak/internal/state"
	"sahayak/internal/surface"
)

const (
	// DefaultShapeSize is the width and height of a shape placed by click.
	DefaultShapeSize = 100
	// ShapeLineWidth is the outline weight of every shape, whatever the brush size.
	ShapeLineWidth = 2
)

// Outline returns the boundary of a shape of the given type centered at
// (cx, cy). Unknown types yield an empty polygon.
func Outline(kind state.ShapeType, cx, cy, w, h float64) geom.Outline {
	hw, hh := w/2, h/2
	switch kind {
	case state.ShapeRectangle:
		return geom.Polygon(
			geom.Pt(cx-hw, cy-hh),
			geom.Pt(cx+hw, cy-hh),
			geom.Pt(cx+hw, cy+hh),
			geom.Pt(cx-hw, cy+hh),
		)
	case state.ShapeCircle:
		return geom.Circle(geom.Pt(cx, cy), math.Min(w, h)/2)
	case state.ShapeTriangle:
		return geom.Polygon(
			geom.Pt(cx, cy-hh),
			geom.Pt(cx-hw, cy+hh),
			geom.Pt(cx+hw, cy+hh),
		)
	case state.ShapeRhombus:
		return geom.Polygon(
			geom.Pt(cx, cy-hh),
			geom.Pt(cx+hw, cy),
			geom.Pt(cx, cy+hh),
			geom.Pt(cx-hw, cy),
		)
	case state.ShapePolygon:
		// flat-top hexagon
		return geom.Polygon(geom.RegularPolygon(6, geom.Pt(cx, cy), math.Min(w, h)/2, 0)...)
	}
	return geom.Outline{}
}

// DrawShape strokes the outline of a shape onto s at the fixed shape weight.
func DrawShape(s surface.Surface, kind state.ShapeType, cx, cy, w, h float64, color string) error {
	return s.StrokeShape(Outline(kind, cx, cy, w, h), surface.Ink{
		Color: color,
		Width: ShapeLineWidth,
		Mode:  surface.Over,
	})
}

// InkFor resolves the freehand ink of a tool under the given style.
// The eraser cuts at twice the brush width.
func InkFor(tool state.Tool, style state.StrokeStyle) surface.Ink {
	if tool == state.ToolEraser {
		return surface.Ink{Width: float64(style.Width) * 2, Mode: surface.Cutout}
	}
	return surface.Ink{Color: style.Color, Width: float64(style.Width), Mode: surface.Over}
}
