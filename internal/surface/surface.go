// Package surface is the raster drawing target of the board.
//
// A Surface keeps its ink on a transparent layer above a solid background.
// Pen strokes composite over the ink; eraser strokes cut the ink out, which
// restores the background. Snapshots capture the ink layer only, so the
// background and the optional grid are never part of undo history.
package surface

import (
	"bytes"
	"image"

	"github.com/pkg/errors"

	"sahayak/internal/geom"
)

var ErrSnapshotSize = errors.New("snapshot dimensions do not match surface")

// Composite is how new ink combines with what is already on the surface.
type Composite int

const (
	// Over paints new ink on top of existing content.
	Over Composite = iota
	// Cutout removes existing ink wherever the stroke covers.
	Cutout
)

func (c Composite) String() string {
	if c == Cutout {
		return "cutout"
	}
	return "over"
}

// Ink is the resolved paint for one draw call.
type Ink struct {
	Color string // #RRGGBB, ignored for Cutout
	Width float64
	Mode  Composite
}

// Surface is the raster the board draws on.
type Surface interface {
	Size() (width, height int)
	StrokePath(points []geom.Point, ink Ink) error
	StrokeShape(outline geom.Outline, ink Ink) error
	DrawText(s string, at geom.Point, color string, size float64) error
	Snapshot() Snapshot
	Restore(s Snapshot) error
	Clear()
	SetGrid(on bool)
	Image() image.Image
}

// Snapshot is an immutable capture of a surface's ink layer.
type Snapshot struct {
	width, height int
	pix           []uint8
}

// NewSnapshot copies pix into a snapshot of the given size.
func NewSnapshot(width, height int, pix []uint8) Snapshot {
	return Snapshot{width: width, height: height, pix: append([]uint8(nil), pix...)}
}

func (s Snapshot) Width() int  { return s.width }
func (s Snapshot) Height() int { return s.height }

// IsZero reports whether s was never captured.
func (s Snapshot) IsZero() bool { return s.pix == nil }

// Equal reports whether both snapshots hold the same pixels.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.width == o.width && s.height == o.height && bytes.Equal(s.pix, o.pix)
}

// copyTo writes the snapshot pixels into dst, which must be the same length.
func (s Snapshot) copyTo(dst []uint8) bool {
	if len(dst) != len(s.pix) {
		return false
	}
	copy(dst, s.pix)
	return true
}
