package state

import (
	"strings"

	"github.com/pkg/errors"

	"sahayak/internal/geom"
)

// Tool is the active board tool. Exactly one is selected at a time.
type Tool string

const (
	ToolPen       Tool = "pen"
	ToolEraser    Tool = "eraser"
	ToolLine      Tool = "line"
	ToolText      Tool = "text"
	ToolRectangle Tool = "rectangle"
	ToolTriangle  Tool = "triangle"
	ToolCircle    Tool = "circle"
	ToolRhombus   Tool = "rhombus"
	ToolPolygon   Tool = "polygon"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{
	ToolPen, ToolEraser, ToolLine, ToolText,
	ToolRectangle, ToolTriangle, ToolCircle, ToolRhombus, ToolPolygon,
}

// ParseTool maps a tool name to a Tool.
func ParseTool(s string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tools {
		if t == known {
			return t, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidTool, "%q", s)
}

// ShapeType reports the shape a tool places, if any.
func (t Tool) ShapeType() (ShapeType, bool) {
	switch t {
	case ToolRectangle, ToolTriangle, ToolCircle, ToolRhombus, ToolPolygon:
		return ShapeType(t), true
	}
	return "", false
}

// Freehand reports whether the tool draws a continuous path.
func (t Tool) Freehand() bool {
	return t == ToolPen || t == ToolEraser
}

// ShapeType is a parametric shape the rasterizer knows how to outline.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeTriangle  ShapeType = "triangle"
	ShapeCircle    ShapeType = "circle"
	ShapeRhombus   ShapeType = "rhombus"
	ShapePolygon   ShapeType = "polygon"
)

// ParseShapeType maps a shape name to a ShapeType.
func ParseShapeType(s string) (ShapeType, error) {
	t, err := ParseTool(s)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidShape, "%q", s)
	}
	st, ok := t.ShapeType()
	if !ok {
		return "", errors.Wrapf(ErrInvalidShape, "%q", s)
	}
	return st, nil
}

// StrokeStyle applies to every draw operation until changed.
type StrokeStyle struct {
	Color string `json:"color" validate:"required,hex6"`
	Width int    `json:"width" validate:"gte=1"`
}

// ShapeRecord describes a placed shape independently of its pixels.
// Records are appended and never edited in place.
type ShapeRecord struct {
	ID     string     `json:"id"`
	Type   ShapeType  `json:"type"`
	Center geom.Point `json:"center"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Color  string     `json:"color"`
	Label  string     `json:"label,omitempty"`
}

// BoardState is a value copy of the controller's selection state and shapes.
type BoardState struct {
	Tool   Tool          `json:"tool"`
	Style  StrokeStyle   `json:"style"`
	Shapes []ShapeRecord `json:"shapes"`
}

// Clone returns a deep copy.
func (s BoardState) Clone() BoardState {
	out := s
	out.Shapes = append([]ShapeRecord(nil), s.Shapes...)
	return out
}
