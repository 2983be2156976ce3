// Package net is the read-only classroom mirror. It serves the current board
// over HTTP, pushes a fresh frame to WebSocket viewers after each change, and
// announces itself on the local network with mDNS.
package net

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"sahayak/internal/export"
)

var ErrNoBoard = errors.New("board has nothing to show")

// Board is what the mirror reads from.
type Board interface {
	Image() image.Image
	Page() int
}

type Server struct {
	echo     *echo.Echo
	hub      *Hub
	board    Board
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu    sync.RWMutex
	frame []byte
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func NewServer(board Board, opts ...Option) *Server {
	s := &Server{
		board: board,
		log:   slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			// viewers open the page from any classroom device
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.GET("/", s.handleIndex)
	e.GET("/board.png", s.handlePNG)
	e.GET("/board.pdf", s.handlePDF)
	e.GET("/ws", s.handleWS)
	s.echo = e
	return s
}

// Handler exposes the routes for embedding or tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Hub() *Hub { return s.hub }

// Publish renders the board and pushes the frame to every viewer.
func (s *Server) Publish() error {
	frame, err := s.encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
	n := s.hub.Broadcast(frame)
	s.log.Debug("published board frame", "bytes", len(frame), "viewers", n)
	return nil
}

func (s *Server) encode() ([]byte, error) {
	img := s.board.Image()
	if img == nil {
		return nil, ErrNoBoard
	}
	var buf bytes.Buffer
	if err := export.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) latest() []byte {
	s.mu.RLock()
	frame := s.frame
	s.mu.RUnlock()
	if frame != nil {
		return frame
	}
	frame, err := s.encode()
	if err != nil {
		return nil
	}
	return frame
}

// Start listens on addr until Shutdown. It returns http.ErrServerClosed
// after a clean shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info("classroom mirror listening", "addr", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return errors.Wrap(s.echo.Shutdown(ctx), "shutdown mirror")
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.HTML(http.StatusOK, viewerPage)
}

func (s *Server) handlePNG(c echo.Context) error {
	frame := s.latest()
	if frame == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrNoBoard.Error())
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", frame)
}

func (s *Server) handlePDF(c echo.Context) error {
	img := s.board.Image()
	if img == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrNoBoard.Error())
	}
	var buf bytes.Buffer
	if err := export.WritePrintPDF(&buf, s.board.Page(), img); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) handleWS(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already replied
		s.log.Warn("websocket upgrade", "err", err)
		return nil
	}
	s.hub.Serve(conn, s.latest())
	return nil
}

const viewerPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Digital Board</title>
<style>
body { margin: 0; background: #111827; display: flex; align-items: center; justify-content: center; height: 100vh; }
img { max-width: 100vw; max-height: 100vh; background: #fff; }
</style>
</head>
<body>
<img id="board" src="/board.png" alt="board">
<script>
(function () {
  var img = document.getElementById("board");
  var url = null;
  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.binaryType = "blob";
    ws.onmessage = function (ev) {
      var next = URL.createObjectURL(new Blob([ev.data], {type: "image/png"}));
      img.src = next;
      if (url) URL.revokeObjectURL(url);
      url = next;
    };
    ws.onclose = function () { setTimeout(connect, 2000); };
  }
  connect();
})();
</script>
</body>
</html>
`
