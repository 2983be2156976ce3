package ui

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"

	"sahayak/internal/geom"
)

func TestBoardPoint(t *testing.T) {
	tests := []struct {
		name string
		pos  fyne.Position
		size fyne.Size
		want geom.Point
	}{
		{"same size", fyne.NewPos(200, 150), fyne.NewSize(800, 500), geom.Pt(200, 150)},
		{"stretched", fyne.NewPos(200, 150), fyne.NewSize(400, 250), geom.Pt(400, 300)},
		{"shrunk", fyne.NewPos(800, 500), fyne.NewSize(1600, 1000), geom.Pt(400, 250)},
		{"unsized", fyne.NewPos(12, 34), fyne.NewSize(0, 0), geom.Pt(12, 34)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := boardPoint(tt.pos, tt.size, 800, 500)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0xFF, G: 0xA5, A: 0xFF}, hexColor("#FFA500"))
	assert.Equal(t, color.NRGBA{R: 0x87, G: 0xCE, B: 0xEB, A: 0xFF}, hexColor("#87ceeb"))
	assert.Equal(t, color.Black, hexColor("orange"))
}

func TestLanguageValue(t *testing.T) {
	assert.Equal(t, "english-hindi", languageValue("English + Hindi"))
	assert.Equal(t, "english", languageValue("English"))
	assert.Equal(t, "english", languageValue("Klingon"))
}
