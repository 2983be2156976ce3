// Package intent turns a free-text shape description into a drawable shape.
//
// A remote text-generation service is asked for a constrained JSON object.
// Whenever that fails for any reason, a deterministic local heuristic takes
// over, so callers always get a usable shape. The only error a caller sees
// is an empty description.
package intent

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"sahayak/internal/geom"
	"sahayak/internal/state"
)

var (
	ErrEmptyPrompt = errors.New("please enter a shape description")
	ErrNoJSON      = errors.New("no JSON object in response")
)

// DefaultLanguage is the label language when none is chosen.
const DefaultLanguage = "english"

// Languages lists the label languages offered by the board.
var Languages = []string{
	"english", "hindi", "kannada", "telugu", "tamil",
	"marathi", "gujarati", "bengali", "punjabi", "malayalam",
}

// Label is a piece of text placed near a generated shape.
type Label struct {
	Text     string      `json:"text"`
	Position *geom.Point `json:"position,omitempty"`
	Language string      `json:"language,omitempty"`
}

// UnmarshalJSON accepts either a label object or a bare string.
func (l *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Label{Text: s}
		return nil
	}
	type plain Label
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Label(p)
	return nil
}

// Intent is a parsed shape request. It is consumed once and discarded.
type Intent struct {
	ShapeType       state.ShapeType
	Width           float64
	Height          float64
	Center          geom.Point
	Labels          []Label
	LocalizedLabels map[string]string
	Measurements    string
	Instructions    string
	// Caption is drawn under fallback shapes to describe what was guessed.
	Caption string
}

// Source tells where a Result came from.
type Source int

const (
	SourceRemote Source = iota
	SourceFallback
)

func (s Source) String() string {
	if s == SourceFallback {
		return "fallback"
	}
	return "remote"
}

// Result is either a remote parse or a fallback parse, never an error.
type Result struct {
	Intent Intent
	Source Source
	// Status is a user-facing message describing the outcome.
	Status string
}

// Fallback reports whether the offline heuristic produced the result.
func (r Result) Fallback() bool {
	return r.Source == SourceFallback
}
