package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
	"github.com/launchdash/launchdash/server/internal/metrics"
	"github.com/launchdash/launchdash/server/internal/pipeline"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// DefaultPongWait is how long to wait for a pong before treating the
	// connection as dead.
	DefaultPongWait = 60 * time.Second

	// DefaultPingPeriod must be less than DefaultPongWait.
	DefaultPingPeriod = (DefaultPongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxMessageSize bounds one selection message.
	maxMessageSize = 4096

	transport = "ws"
)

// Event names.
const (
	EventCharts = "charts"
	EventError  = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 8192,
	// Allow all origins. Apply CORS at the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event   string           `json:"event"`
	Session string           `json:"session"`
	Data    *pipeline.Charts `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Request is a filter change sent by a client. Omitted fields keep the
// session's previous value.
type Request struct {
	Site         *string   `json:"site"`
	PayloadRange []float64 `json:"payload_range"`
}

// Options tunes connection keepalive.
type Options struct {
	PingPeriod time.Duration
	PongWait   time.Duration
}

// Hub serves dashboard sessions. Each connected client owns a filter
// selection; every selection message is answered with freshly computed
// charts for that client only.
type Hub struct {
	ds   *dataset.Dataset
	rec  *metrics.Recorder
	opts Options

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket session.
type client struct {
	hub  *Hub
	id   string
	conn *websocket.Conn
	send chan []byte

	// sel is only touched by the session's readPump.
	sel types.FilterSelection
}

// New creates a Hub over ds. rec may be nil. Zero options fall back to the
// defaults.
func New(ds *dataset.Dataset, rec *metrics.Recorder, opts Options) *Hub {
	if opts.PongWait <= 0 {
		opts.PongWait = DefaultPongWait
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}
	return &Hub{
		ds:      ds,
		rec:     rec,
		opts:    opts,
		clients: make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves one
// session. Charts for the default selection are sent immediately, then the
// session answers selection messages until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		hub:  h,
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufSize),
		sel:  pipeline.DefaultSelection(h.ds),
	}
	h.register(c)
	h.rec.SessionOpened()
	slog.Debug("ws: session opened", "session", c.id, "remote", r.RemoteAddr)
	defer func() {
		h.unregister(c)
		h.rec.SessionClosed()
		slog.Debug("ws: session closed", "session", c.id)
	}()

	c.reply(c.sel)

	go c.writePump()
	c.readPump() // blocks until connection closes
}

// Count returns the number of currently connected sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// enqueue hands msg to the writer. A client whose buffer is full is
// disconnected.
func (c *client) enqueue(msg []byte) {
	c.hub.mu.RLock()
	_, live := c.hub.clients[c]
	full := false
	if live {
		select {
		case c.send <- msg:
		default:
			full = true
		}
	}
	c.hub.mu.RUnlock()

	if full {
		slog.Warn("ws: send buffer full, dropping session", "session", c.id)
		c.hub.unregister(c)
	}
}

// reply computes charts for sel. On success sel becomes the session's
// selection; on failure the previous selection is kept and an error event
// is sent.
func (c *client) reply(sel types.FilterSelection) {
	start := time.Now()
	charts, err := pipeline.BuildCharts(c.hub.ds, sel)
	c.hub.rec.Observe("charts", transport, start, err)
	if err != nil {
		if !errors.Is(err, types.ErrUnknownSite) {
			slog.Error("ws: pipeline failed", "session", c.id, "err", err)
		}
		c.fail(err.Error())
		return
	}
	c.sel = sel
	c.hub.rec.ObservePoints(len(charts.Scatter.Points))
	c.write(Message{Event: EventCharts, Session: c.id, Data: &charts})
}

func (c *client) fail(msg string) {
	c.write(Message{Event: EventError, Session: c.id, Error: msg})
}

func (c *client) write(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		slog.Error("ws: marshal message", "session", c.id, "err", err)
		return
	}
	c.enqueue(data)
}

// handle applies one selection message on top of the current selection.
func (c *client) handle(raw []byte) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		c.fail(fmt.Sprintf("invalid selection: %v", err))
		return
	}

	sel := c.sel
	if req.Site != nil {
		sel.Site = *req.Site
		if sel.Site == "" {
			sel.Site = types.AllSites
		}
	}
	if req.PayloadRange != nil {
		if len(req.PayloadRange) != 2 {
			c.fail("payload_range: want [low, high]")
			return
		}
		sel.PayloadRange = types.PayloadRange{Low: req.PayloadRange[0], High: req.PayloadRange[1]}
	}
	c.reply(sel)
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(c.hub.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads selection messages and control frames until the
// connection closes.
func (c *client) readPump() {
	defer c.conn.Close()
	pongWait := c.hub.opts.PongWait
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		kind, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("ws: read failed", "session", c.id, "err", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if kind != websocket.TextMessage {
			continue
		}
		c.handle(msg)
	}
}
