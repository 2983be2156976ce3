package board

import "math/rand/v2"

// Palette is the fixed set of swatches offered next to the board.
var Palette = []string{
	"#000000", "#FF0000", "#00FF00", "#0000FF",
	"#FFFF00", "#FF00FF", "#00FFFF", "#FFA500",
	"#800080", "#008000", "#800000", "#000080",
	"#FFB6C1", "#98FB98", "#87CEEB", "#DDA0DD",
}

// MathSymbols can be stamped onto the board with InsertSymbol.
var MathSymbols = []string{"+", "−", "×", "÷", "=", "π", "√", "≥", "≤", "cm²", "∠", "°"}

// SymbolSpot picks where a toolbar symbol lands when the teacher has not
// clicked a position: somewhere in [100, 300) on both axes.
func SymbolSpot() (float64, float64) {
	return 100 + rand.Float64()*200, 100 + rand.Float64()*200
}
