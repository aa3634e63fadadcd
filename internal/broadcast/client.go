package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 32
)

const (
	actionJoin  = "join"
	actionLeave = "leave"
)

// ControlMessage is what a client sends to manage its topics.
type ControlMessage struct {
	Action  string `json:"action"`
	OrderID int64  `json:"orderId"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one websocket connection subscribed to zero or more order topics.
type Client struct {
	id   string
	conn *websocket.Conn
	hub  *Hub
	send chan []byte

	mu     sync.Mutex
	closed bool
	once   sync.Once

	log *slog.Logger
}

func NewClient(conn *websocket.Conn, hub *Hub) *Client {
	id := uuid.NewString()
	return &Client{
		id:   id,
		conn: conn,
		hub:  hub,
		send: make(chan []byte, sendBuffer),
		log:  slog.With("component", "ws_client", "client_id", id),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Deliver(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Serve upgrades the request, joins the given topics and blocks until the
// connection goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topics ...string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return errors.Wrap(err, "websocket upgrade")
	}
	c := NewClient(conn, h)
	for _, t := range topics {
		h.Subscribe(t, c)
	}
	c.Run(r.Context())
	return nil
}

func (c *Client) Run(ctx context.Context) {
	go c.writePumpSafe()
	c.readPump(ctx)
}

// Close leaves every topic and stops the write pump. Idempotent.
func (c *Client) Close() {
	c.once.Do(func() {
		c.hub.UnsubscribeAll(c)
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
}

func (c *Client) writePumpSafe() {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("write pump panic", "panic", r, "stack", string(debug.Stack()))
			c.Close()
			_ = c.conn.Close()
		}
	}()
	c.writePump()
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("read pump panic", "panic", r, "stack", string(debug.Stack()))
		}
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket closed", "error", err.Error())
			}
			return
		}
		c.handleControl(raw)
	}
}

func (c *Client) handleControl(raw []byte) {
	var msg ControlMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.OrderID <= 0 {
		c.log.Debug("ignoring malformed control message")
		return
	}
	switch msg.Action {
	case actionJoin:
		c.hub.Subscribe(Topic(msg.OrderID), c)
	case actionLeave:
		c.hub.Unsubscribe(Topic(msg.OrderID), c)
	default:
		c.log.Debug("unknown control action", "action", msg.Action)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
