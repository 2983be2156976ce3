package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"sahayak/internal/geom"
	"sahayak/internal/state"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 500
)

// Generator completes a prompt with free text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Parser resolves shape descriptions, remotely when it can.
type Parser struct {
	gen     Generator
	timeout time.Duration
	width   int
	height  int
	log     *slog.Logger
}

type Option func(*Parser)

// WithTimeout bounds each remote attempt.
func WithTimeout(d time.Duration) Option {
	return func(p *Parser) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithCanvas sets the canvas the shapes are centered on.
func WithCanvas(width, height int) Option {
	return func(p *Parser) {
		if width > 0 && height > 0 {
			p.width, p.height = width, height
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

// NewParser returns a parser backed by gen. A nil gen always falls back.
func NewParser(gen Generator, opts ...Option) *Parser {
	p := &Parser{
		gen:     gen,
		timeout: DefaultTimeout,
		width:   DefaultCanvasWidth,
		height:  DefaultCanvasHeight,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse resolves text into a shape. It fails only for empty text.
func (p *Parser) Parse(ctx context.Context, text, language string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyPrompt
	}
	if language == "" {
		language = DefaultLanguage
	}

	if p.gen != nil {
		in, err := p.remote(ctx, text, language)
		if err == nil {
			return Result{Intent: in, Source: SourceRemote, Status: remoteStatus(in)}, nil
		}
		p.log.Warn("remote shape parse failed, using offline parser", "err", err)
	}

	in := Fallback(text, p.width, p.height)
	return Result{Intent: in, Source: SourceFallback, Status: fallbackStatus(in)}, nil
}

func (p *Parser) remote(ctx context.Context, text, language string) (Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.gen.Generate(ctx, BuildPrompt(text, language, p.width, p.height))
	if err != nil {
		return Intent{}, errors.Wrap(err, "generate")
	}
	raw, ok := ExtractJSON(out)
	if !ok {
		return Intent{}, ErrNoJSON
	}
	return Decode(raw, language, p.width, p.height)
}

// BuildPrompt asks for a single JSON shape object sized for the canvas.
func BuildPrompt(text, language string, width, height int) string {
	return fmt.Sprintf(`You are a geometry assistant for a classroom drawing board.
Convert the teacher's request into one JSON object describing a single shape.

Request: "%s"
Label language: %s
Canvas: %dx%d pixels, origin at the top left.

Respond with JSON only, using exactly these fields:
{
  "shapeType": "rectangle" | "circle" | "triangle" | "rhombus" | "polygon",
  "dimensions": {"width": number, "height": number, "radius": number},
  "measurements": "human readable measurements",
  "coordinates": {"x": number, "y": number},
  "labels": [{"text": "label", "position": {"x": number, "y": number}, "language": "%s"}],
  "instructions": "one sentence describing the drawing",
  "localizedLabels": {"%s": "label in %s"}
}

Use %d pixels per centimetre. Keep the shape inside the canvas, centered unless the request says otherwise.`,
		text, language, width, height, language, language, language, PixelsPerCM)
}

// ExtractJSON returns the first well-formed JSON object embedded in s.
func ExtractJSON(s string) (json.RawMessage, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(s[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == nil {
			return raw, true
		}
	}
	return nil, false
}

type wireIntent struct {
	ShapeType  string `json:"shapeType"`
	Dimensions struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Radius float64 `json:"radius"`
	} `json:"dimensions"`
	Measurements    string            `json:"measurements"`
	Coordinates     *geom.Point       `json:"coordinates"`
	Labels          []Label           `json:"labels"`
	Instructions    string            `json:"instructions"`
	LocalizedLabels map[string]string `json:"localizedLabels"`
}

// Decode converts a remote JSON object into an Intent. Missing sizes
// default to DefaultSize and a missing center to the canvas midpoint.
// Labels are swapped for their localized text when language has one.
func Decode(raw []byte, language string, canvasWidth, canvasHeight int) (Intent, error) {
	var w wireIntent
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&w); err != nil {
		return Intent{}, errors.Wrap(err, "decode shape")
	}
	kind, err := state.ParseShapeType(strings.ToLower(strings.TrimSpace(w.ShapeType)))
	if err != nil {
		return Intent{}, err
	}

	width, height := w.Dimensions.Width, w.Dimensions.Height
	if width <= 0 && w.Dimensions.Radius > 0 {
		width = 2 * w.Dimensions.Radius
	}
	if height <= 0 && w.Dimensions.Radius > 0 {
		height = 2 * w.Dimensions.Radius
	}
	if width <= 0 {
		width = DefaultSize
	}
	if height <= 0 {
		height = DefaultSize
	}

	center := geom.Pt(float64(canvasWidth)/2, float64(canvasHeight)/2)
	if c := w.Coordinates; c != nil {
		if c.X != 0 {
			center.X = c.X
		}
		if c.Y != 0 {
			center.Y = c.Y
		}
	}

	localized := w.LocalizedLabels[language]
	labels := make([]Label, 0, len(w.Labels))
	for _, l := range w.Labels {
		if language != DefaultLanguage && localized != "" {
			l.Text = localized
		}
		if strings.TrimSpace(l.Text) == "" {
			continue
		}
		labels = append(labels, l)
	}

	return Intent{
		ShapeType:       kind,
		Width:           width,
		Height:          height,
		Center:          center,
		Labels:          labels,
		LocalizedLabels: w.LocalizedLabels,
		Measurements:    w.Measurements,
		Instructions:    w.Instructions,
	}, nil
}
