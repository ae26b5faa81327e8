package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/middleware"
	"github.com/nfrund/notebook/internal/pubsub"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
)

// client is one open websocket. A user may have several, one per tab.
type client struct {
	owner string
	conn  *websocket.Conn
	send  chan []byte
}

// Hub keeps the open sync connections grouped by owner.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}

	done      chan struct{}
	closeOnce sync.Once

	// OriginPatterns are the hosts allowed to open a connection besides the
	// page's own host.
	OriginPatterns []string
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*client]struct{}), done: make(chan struct{})}
}

// Close ends every open connection with a going away status and refuses new
// ones. Hijacked connections outlive the HTTP server's shutdown.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Start relays GuideChanged events from the bus until ctx is done.
func (h *Hub) Start(ctx context.Context, sub pubsub.Subscriber) error {
	return pubsub.Subscribe(ctx, sub, GuideChanged, func(_ context.Context, owner string, change Change) error {
		payload, err := json.Marshal(change)
		if err != nil {
			return err
		}
		h.SendDirect(owner, payload)
		return nil
	})
}

// SendDirect queues payload on every connection of owner. Connections whose
// queue is full miss the message.
func (h *Hub) SendDirect(owner string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[owner] {
		select {
		case c.send <- payload:
		default:
			slog.Warn("sync client too slow, dropping message", "event", "sync_message_dropped", "owner", owner)
		}
	}
}

// Connections reports how many connections owner has open.
func (h *Hub) Connections(owner string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[owner])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.owner] == nil {
		h.clients[c.owner] = make(map[*client]struct{})
	}
	h.clients[c.owner][c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.owner]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.owner)
	}
}

// Handler upgrades GET /app/sync to a websocket for the signed in user. The
// connection is server to client only; anything the browser sends is read
// and discarded.
func (h *Hub) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		user := middleware.UserFrom(c)
		if user == nil {
			return c.String(http.StatusUnauthorized, "not signed in")
		}
		select {
		case <-h.done:
			return c.String(http.StatusServiceUnavailable, "shutting down")
		default:
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			OriginPatterns: h.OriginPatterns,
		})
		if err != nil {
			middleware.FromContext(c.Request().Context()).Warn("websocket upgrade failed", "event", "sync_upgrade_failed", "error", err)
			return nil
		}

		cl := &client{owner: user.Key(), conn: conn, send: make(chan []byte, sendBuffer)}
		h.register(cl)
		defer h.unregister(cl)

		// CloseRead handles pings and closes ctx when the browser goes away.
		ctx := conn.CloseRead(context.Background())
		h.writeLoop(ctx, cl)
		return nil
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			c.conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-h.done:
			c.conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Debug("sync write failed", "owner", c.owner, "error", err)
				}
				c.conn.CloseNow()
				return
			}
		}
	}
}
