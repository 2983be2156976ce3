package board

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahayak/internal/geom"
	"sahayak/internal/intent"
	"sahayak/internal/state"
)

type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
	result  intent.Result
}

func newBlockingGenerator(res intent.Result) *blockingGenerator {
	return &blockingGenerator{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  res,
	}
}

func (g *blockingGenerator) Parse(ctx context.Context, prompt, language string) (intent.Result, error) {
	close(g.started)
	select {
	case <-g.release:
		return g.result, nil
	case <-ctx.Done():
		return intent.Result{}, ctx.Err()
	}
}

func circleResult() intent.Result {
	return intent.Result{
		Intent: intent.Intent{
			ShapeType: state.ShapeCircle,
			Width:     80,
			Height:    80,
			Center:    geom.Pt(160, 120),
		},
		Source: intent.SourceRemote,
	}
}

func TestGenerateShapeOffline(t *testing.T) {
	c, rec := newTestBoard(t, Options{})

	res, err := c.GenerateShape(context.Background(), "draw a circle of 5cm", "english")
	require.NoError(t, err)
	assert.True(t, res.Fallback())

	shapes := c.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, state.ShapeCircle, shapes[0].Type)
	assert.Equal(t, 50.0, shapes[0].Width)
	assert.Equal(t, geom.Pt(160, 120), shapes[0].Center, "centered on the 320x240 surface")

	require.Len(t, rec.texts, 1)
	assert.Equal(t, "Generated: circle (50px)", rec.texts[0].text)
	assert.Equal(t, geom.Pt(110, 165), rec.texts[0].at)
	assert.Equal(t, 2, c.HistoryLen())
	assert.False(t, c.Generating())
}

func TestGenerateShapeEmptyPrompt(t *testing.T) {
	c, _ := newTestBoard(t, Options{})
	_, err := c.GenerateShape(context.Background(), "  ", "english")
	assert.ErrorIs(t, err, intent.ErrEmptyPrompt)
	assert.Empty(t, c.Shapes())
}

func TestGenerateShapeSingleFlight(t *testing.T) {
	gen := newBlockingGenerator(circleResult())
	c, _ := newTestBoard(t, Options{Generator: gen})

	done := make(chan error, 1)
	go func() {
		_, err := c.GenerateShape(context.Background(), "circle", "english")
		done <- err
	}()
	<-gen.started
	assert.True(t, c.Generating())

	_, err := c.GenerateShape(context.Background(), "square", "english")
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	close(gen.release)
	require.NoError(t, <-done)
	assert.False(t, c.Generating())
	assert.Len(t, c.Shapes(), 1)
}

func TestGenerateShapeDiscardedAfterClose(t *testing.T) {
	gen := newBlockingGenerator(circleResult())
	c, rec := newTestBoard(t, Options{Generator: gen})
	blank := rec.Snapshot()

	done := make(chan error, 1)
	go func() {
		_, err := c.GenerateShape(context.Background(), "circle", "english")
		done <- err
	}()
	<-gen.started
	c.Close()
	close(gen.release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("generation did not return")
	}
	assert.Empty(t, c.Shapes())
	assert.True(t, rec.Snapshot().Equal(blank))
	assert.Equal(t, 1, c.HistoryLen())
}

func TestPlaceIntentLabels(t *testing.T) {
	c, rec := newTestBoard(t, Options{})
	require.NoError(t, c.SetColor("#dc2626"))

	err := c.PlaceIntent(intent.Intent{
		ShapeType: state.ShapeRectangle,
		Width:     120,
		Height:    60,
		Center:    geom.Pt(150, 100),
		Labels: []intent.Label{
			{Text: "length"},
			{Text: "width", Position: &geom.Point{X: 40, Y: 0}},
		},
		Instructions: "Draw a rectangle that is twelve centimetres long and six centimetres wide",
	})
	require.NoError(t, err)

	shapes := c.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, "length", shapes[0].Label)

	require.Len(t, rec.texts, 3)
	assert.Equal(t, textCall{"length", geom.Pt(150, 160), "#dc2626", LabelSize}, rec.texts[0])
	assert.Equal(t, textCall{"width", geom.Pt(40, 160), "#dc2626", LabelSize}, rec.texts[1])

	ins := rec.texts[2]
	assert.Equal(t, "AI Generated: Draw a rectangle that is twelve centimetres long a...", ins.text)
	assert.Equal(t, geom.Pt(90, 180), ins.at)
	assert.Equal(t, "#666666", ins.color)
	assert.Equal(t, float64(InstructionSize), ins.size)

	require.True(t, c.Undo())
	assert.Empty(t, c.Shapes())
}
