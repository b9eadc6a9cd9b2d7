// Package spectate streams the throttled UI updates to websocket watchers.
// The hub is a throttle.Sink: the tick hands it values and never waits on
// the network. Each watcher has a small queue; a watcher that falls behind
// loses messages instead of slowing the game.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/whiteout/throttle"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	queueSize  = 16
)

// Message types.
const (
	TypeMinimap    = "minimap"
	TypeSisterHint = "sister_hint"
	TypeDemonHint  = "demon_hint"
	TypeMoving     = "moving"
	TypeState      = "state"
)

// Envelope is one message on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Point is a ground-plane position.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Demon is a live demon marker.
type Demon struct {
	ID int `json:"id"`
	Point
}

// Minimap is the wire form of throttle.Minimap.
type Minimap struct {
	At        int64   `json:"at_ms"`
	Player    Point   `json:"player"`
	CameraYaw float64 `json:"camera_yaw"`
	Facing    float64 `json:"facing"`
	Sister    Point   `json:"sister"`
	Demons    []Demon `json:"demons"`
}

// Hint carries a distance; nil means out of range.
type Hint struct {
	Distance *float64 `json:"distance"`
}

// Moving carries the player's movement flag.
type Moving struct {
	Moving bool `json:"moving"`
}

// State is a game state change.
type State struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans updates out to every connected watcher.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	watchers map[*watcher]struct{}
	dropped  uint64
	last     []byte // latest minimap, sent to new watchers
}

// NewHub creates a hub with no watchers.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		watchers: make(map[*watcher]struct{}),
	}
}

// Watchers returns the number of connected watchers.
func (h *Hub) Watchers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

// Dropped returns how many messages were discarded for slow watchers.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

func (h *Hub) Minimap(m throttle.Minimap) {
	msg := Minimap{
		At:        m.At.UnixMilli(),
		Player:    Point{m.Player.X, m.Player.Z},
		CameraYaw: m.CameraYaw,
		Facing:    m.Facing,
		Sister:    Point{m.Sister.X, m.Sister.Z},
		Demons:    make([]Demon, len(m.Demons)),
	}
	for i, d := range m.Demons {
		msg.Demons[i] = Demon{ID: d.ID, Point: Point{d.Position.X, d.Position.Z}}
	}
	data, ok := h.encode(TypeMinimap, msg)
	if !ok {
		return
	}
	h.mu.Lock()
	h.last = data
	h.mu.Unlock()
	h.broadcast(data)
}

func (h *Hub) SisterHint(d float64) { h.publish(TypeSisterHint, hint(d)) }
func (h *Hub) DemonHint(d float64)  { h.publish(TypeDemonHint, hint(d)) }
func (h *Hub) Moving(v bool)        { h.publish(TypeMoving, Moving{Moving: v}) }

// StateChanged announces a game state transition. It matches the game's
// OnStateChange hook once the states are formatted.
func (h *Hub) StateChanged(from, to string) {
	h.publish(TypeState, State{From: from, To: to})
}

func hint(d float64) Hint {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return Hint{}
	}
	return Hint{Distance: &d}
}

func (h *Hub) publish(typ string, payload any) {
	if data, ok := h.encode(typ, payload); ok {
		h.broadcast(data)
	}
}

func (h *Hub) encode(typ string, payload any) ([]byte, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("spectate encode", "type", typ, "error", err)
		return nil, false
	}
	data, err := json.Marshal(Envelope{Type: typ, Payload: raw})
	if err != nil {
		h.logger.Warn("spectate encode", "type", typ, "error", err)
		return nil, false
	}
	return data, true
}

// broadcast queues data for every watcher without blocking.
func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers {
		select {
		case w.send <- data:
		default:
			h.dropped++
		}
	}
}

func (h *Hub) add(w *watcher) {
	h.mu.Lock()
	h.watchers[w] = struct{}{}
	if h.last != nil {
		w.send <- h.last // Fresh queue, never blocks.
	}
	n := len(h.watchers)
	h.mu.Unlock()
	h.logger.Info("watcher connected", "remote", w.conn.RemoteAddr().String(), "watchers", n)
}

func (h *Hub) remove(w *watcher) {
	h.mu.Lock()
	if _, ok := h.watchers[w]; ok {
		delete(h.watchers, w)
		close(w.send)
	}
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams updates until the watcher
// disconnects. Anything the watcher sends is ignored.
func (h *Hub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	w := &watcher{conn: conn, send: make(chan []byte, queueSize)}
	h.add(w)

	go h.writeLoop(w)

	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(w)
	h.logger.Info("watcher disconnected", "remote", conn.RemoteAddr().String())
}

func (h *Hub) writeLoop(w *watcher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = w.conn.Close()
	}()
	for {
		select {
		case data, ok := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = w.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(w)
				return
			}
		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(w)
				return
			}
		}
	}
}

// Close disconnects every watcher.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers {
		delete(h.watchers, w)
		close(w.send)
	}
}

// Server serves the hub at /ws on addr.
type Server struct {
	hub *Hub
	srv *http.Server
	ln  net.Listener
}

// Listen binds addr and returns a server ready to Serve.
func Listen(addr string, hub *Hub) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	return &Server{
		hub: hub,
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Serve blocks until ctx is done or the server fails.
func (s *Server) Serve(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(s.ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.hub.Close()
		return s.srv.Shutdown(shutdownCtx)
	}
}
