package board

import (
	"context"
	"strings"
	"unicode/utf8"

	"sahayak/internal/geom"
	"sahayak/internal/intent"
)

const (
	LabelSize       = 14
	InstructionSize = 12

	instructionColor = "#666666"
	instructionLimit = 50
)

// Generating reports whether a shape generation is in flight.
func (c *Controller) Generating() bool {
	return c.generating.Load()
}

// GenerateShape resolves prompt and draws the result. Only one generation
// runs at a time; a second call while one is in flight fails with
// ErrGenerationInProgress. Results arriving after Close are discarded.
func (c *Controller) GenerateShape(ctx context.Context, prompt, language string) (intent.Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return intent.Result{}, intent.ErrEmptyPrompt
	}
	if !c.generating.CompareAndSwap(false, true) {
		return intent.Result{}, ErrGenerationInProgress
	}
	defer c.generating.Store(false)

	res, err := c.gen.Parse(ctx, prompt, language)
	if err != nil {
		return intent.Result{}, err
	}
	if c.closed.Load() {
		c.log.Debug("board closed, discarding generated shape", "shape", res.Intent.ShapeType)
		return res, nil
	}
	if err := c.PlaceIntent(res.Intent); err != nil {
		return res, err
	}
	c.log.Info("shape generated", "shape", res.Intent.ShapeType, "source", res.Source)
	return res, nil
}

// PlaceIntent draws a parsed shape with its labels, instructions and
// caption as a single undo step.
func (c *Controller) PlaceIntent(in intent.Intent) error {
	c.mu.Lock()
	if c.surface == nil {
		c.mu.Unlock()
		return ErrNoSurface
	}

	var label string
	if len(in.Labels) > 0 {
		label = in.Labels[0].Text
	}
	rec, err := c.placeShapeLocked(in.ShapeType, in.Center, in.Width, in.Height, label)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	cx, cy := rec.Center.X, rec.Center.Y
	bottom := cy + rec.Height/2

	for _, l := range in.Labels {
		at := geom.Pt(cx, bottom+30)
		if l.Position != nil {
			if l.Position.X != 0 {
				at.X = l.Position.X
			}
			if l.Position.Y != 0 {
				at.Y = l.Position.Y
			}
		}
		c.drawTextLocked(l.Text, at, rec.Color, LabelSize)
	}
	if in.Instructions != "" {
		c.drawTextLocked("AI Generated: "+truncate(in.Instructions, instructionLimit)+"...",
			geom.Pt(cx-rec.Width/2, bottom+50), instructionColor, InstructionSize)
	}
	if in.Caption != "" {
		c.drawTextLocked(in.Caption, geom.Pt(cx-50, bottom+20), rec.Color, LabelSize)
	}

	c.history.Push(c.frameLocked())
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *Controller) drawTextLocked(s string, at geom.Point, color string, size float64) {
	if err := c.surface.DrawText(s, at, color, size); err != nil {
		c.log.Warn("draw text", "text", s, "err", err)
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
