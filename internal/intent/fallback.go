package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sahayak/internal/geom"
	"sahayak/internal/state"
)

const (
	// PixelsPerCM is the fixed unit conversion for measurements.
	PixelsPerCM = 10
	// DefaultSize is used when a description carries no measurement.
	DefaultSize = 100
)

var measureRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(cm|px|units?)`)

// Fallback guesses a shape from text without any remote help.
// The shape is square, sized from the first measurement, and centered on a
// canvas of the given size.
func Fallback(text string, canvasWidth, canvasHeight int) Intent {
	lower := strings.ToLower(text)

	kind := state.ShapeRectangle
	switch {
	case strings.Contains(lower, "triangle"):
		kind = state.ShapeTriangle
	case strings.Contains(lower, "circle"):
		kind = state.ShapeCircle
	case strings.Contains(lower, "rhombus"), strings.Contains(lower, "diamond"):
		kind = state.ShapeRhombus
	}

	size := float64(DefaultSize)
	if m := measureRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			if m[2] == "cm" {
				v *= PixelsPerCM
			}
			size = v
		}
	}

	return Intent{
		ShapeType: kind,
		Width:     size,
		Height:    size,
		Center:    geom.Pt(float64(canvasWidth)/2, float64(canvasHeight)/2),
		Caption:   fmt.Sprintf("Generated: %s (%gpx)", kind, size),
	}
}

func fallbackStatus(in Intent) string {
	return fmt.Sprintf("Generated %s with size %gpx (offline mode)", in.ShapeType, in.Width)
}

func remoteStatus(in Intent) string {
	m := in.Measurements
	if m == "" {
		m = "default size"
	}
	return fmt.Sprintf("AI generated %s with measurements: %s", in.ShapeType, m)
}
