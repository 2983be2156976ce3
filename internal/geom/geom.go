// Package geom holds the small amount of plane geometry the board needs.
package geom

import "math"

// Point is a position on the drawing surface, in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min, Max Point
}

// Bounds returns the bounding box of pts grown by pad on every side.
func Bounds(pts []Point, pad float64) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	r.Min.X -= pad
	r.Min.Y -= pad
	r.Max.X += pad
	r.Max.Y += pad
	return r
}

// OutlineKind distinguishes closed polygons from circles.
type OutlineKind int

const (
	OutlinePolygon OutlineKind = iota
	OutlineCircle
)

// Outline is a closed shape boundary ready to be stroked.
// Polygons use Points in drawing order; circles use Center and Radius.
type Outline struct {
	Kind   OutlineKind
	Points []Point
	Center Point
	Radius float64
}

// Polygon builds a closed polygon outline.
func Polygon(pts ...Point) Outline {
	return Outline{Kind: OutlinePolygon, Points: pts}
}

// Circle builds a circle outline.
func Circle(c Point, r float64) Outline {
	return Outline{Kind: OutlineCircle, Center: c, Radius: r}
}

// RegularPolygon returns n vertices on a circle of radius r around c,
// starting at angle rotation (radians, clockwise in screen space).
func RegularPolygon(n int, c Point, r, rotation float64) []Point {
	if n < 3 {
		return nil
	}
	step := 2 * math.Pi / float64(n)
	pts := make([]Point, n)
	for i := range pts {
		a := rotation + step*float64(i)
		pts[i] = Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}
