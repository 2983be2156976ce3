package net

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	mu   sync.Mutex
	fill color.Color
	page int
	none bool
}

func (b *fakeBoard) Image() image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.none {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, b.fill)
		}
	}
	return img
}

func (b *fakeBoard) Page() int { return b.page }

func (b *fakeBoard) setFill(c color.Color) {
	b.mu.Lock()
	b.fill = c
	b.mu.Unlock()
}

func newTestServer(t *testing.T, b *fakeBoard) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(b)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Hub().Close()
		ts.Close()
	})
	return s, ts
}

func decodeFrame(t *testing.T, data []byte) color.Color {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return color.RGBAModel.Convert(img.At(3, 3))
}

func TestIndexPage(t *testing.T) {
	_, ts := newTestServer(t, &fakeBoard{fill: color.White, page: 1})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `src="/board.png"`)
	assert.Contains(t, string(body), "/ws")
}

func TestBoardPNG(t *testing.T) {
	b := &fakeBoard{fill: color.RGBA{R: 255, A: 255}, page: 1}
	s, ts := newTestServer(t, b)

	resp, err := http.Get(ts.URL + "/board.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, decodeFrame(t, data))

	b.setFill(color.RGBA{B: 255, A: 255})
	require.NoError(t, s.Publish())

	resp, err = http.Get(ts.URL + "/board.png")
	require.NoError(t, err)
	data, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, color.RGBA{B: 255, A: 255}, decodeFrame(t, data))
}

func TestBoardPDF(t *testing.T) {
	_, ts := newTestServer(t, &fakeBoard{fill: color.White, page: 4})

	resp, err := http.Get(ts.URL + "/board.pdf")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestNoBoardImage(t *testing.T) {
	s, ts := newTestServer(t, &fakeBoard{none: true})

	resp, err := http.Get(ts.URL + "/board.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	assert.ErrorIs(t, s.Publish(), ErrNoBoard)
}

func TestViewerReceivesFrames(t *testing.T) {
	b := &fakeBoard{fill: color.RGBA{G: 255, A: 255}, page: 1}
	s, ts := newTestServer(t, b)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.Hub().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, decodeFrame(t, data))

	b.setFill(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	require.NoError(t, s.Publish())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, decodeFrame(t, data))
}

func TestViewerDisconnect(t *testing.T) {
	s, ts := newTestServer(t, &fakeBoard{fill: color.White, page: 1})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Hub().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return s.Hub().Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.Hub().Broadcast([]byte("x")))
}

func TestOfferKeepsNewest(t *testing.T) {
	ch := make(chan []byte, 1)
	offer(ch, []byte("a"))
	offer(ch, []byte("b"))
	assert.Equal(t, []byte("b"), <-ch)
}

func TestShareLink(t *testing.T) {
	assert.Equal(t, "http://192.168.1.20:8888/", ShareLink("192.168.1.20", 8888))
}
