package net

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// viewer is one connected mirror screen. send holds at most the newest
// frame; older unsent frames are replaced.
type viewer struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (v *viewer) close() {
	v.once.Do(func() {
		close(v.done)
		v.conn.Close()
	})
}

// Hub tracks connected viewers and fans board frames out to them.
type Hub struct {
	viewers map[*viewer]struct{}
	mu      sync.RWMutex
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		viewers: make(map[*viewer]struct{}),
		log:     log,
	}
}

func (h *Hub) add(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewers[v] = struct{}{}
	h.log.Info("viewer connected", "addr", v.conn.RemoteAddr().String(), "viewers", len(h.viewers))
}

func (h *Hub) remove(v *viewer) {
	h.mu.Lock()
	_, ok := h.viewers[v]
	delete(h.viewers, v)
	n := len(h.viewers)
	h.mu.Unlock()
	v.close()
	if ok {
		h.log.Info("viewer disconnected", "addr", v.conn.RemoteAddr().String(), "viewers", n)
	}
}

// Count returns the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// Broadcast queues frame for every viewer and returns how many got it.
func (h *Hub) Broadcast(frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for v := range h.viewers {
		offer(v.send, frame)
	}
	return len(h.viewers)
}

// offer replaces any pending frame with frame without blocking.
func offer(ch chan []byte, frame []byte) {
	for {
		select {
		case ch <- frame:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Serve runs conn as a viewer until it disconnects. initial, when not
// empty, is sent first.
func (h *Hub) Serve(conn *websocket.Conn, initial []byte) {
	v := &viewer{
		conn: conn,
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}
	if len(initial) > 0 {
		v.send <- initial
	}
	h.add(v)
	defer h.remove(v)

	go h.writeLoop(v)

	// viewers are read-only; reading only services control frames
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("viewer read", "err", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(v *viewer) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer h.remove(v)

	for {
		select {
		case <-v.done:
			return
		case frame := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				h.log.Warn("send frame", "addr", v.conn.RemoteAddr().String(), "err", err)
				return
			}
		case <-ticker.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	viewers := make([]*viewer, 0, len(h.viewers))
	for v := range h.viewers {
		viewers = append(viewers, v)
	}
	h.mu.Unlock()
	for _, v := range viewers {
		_ = v.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "board closed"),
			time.Now().Add(writeWait))
		h.remove(v)
	}
}
