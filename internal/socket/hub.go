// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// sendBuffer is how many messages may wait for a slow client before it
	// is dropped.
	sendBuffer = 16
)

var ErrClientBusy = errors.New("websocket client send queue is full")

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one registered connection. A user may hold several. Writes go
// through a queue drained by the client's own goroutine, so a stalled
// connection never blocks the sender.
type Client struct {
	UserID string
	conn   Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func (cl *Client) enqueue(message []byte) error {
	select {
	case <-cl.done:
		return nil
	default:
	}
	select {
	case cl.send <- message:
		return nil
	case <-cl.done:
		return nil
	default:
		return ErrClientBusy
	}
}

// writePump is the only writer of the connection.
func (cl *Client) writePump(h *Hub) {
	for {
		select {
		case <-cl.done:
			return
		case msg := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Warn("dropping websocket client after failed write", "userId", cl.UserID, "error", err)
				h.Unregister(cl)
				return
			}
		}
	}
}

// Hub tracks the connected websocket clients.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     log,
	}
}

func (h *Hub) Register(userID string, conn Conn) *Client {
	cl := &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	go cl.writePump(h)
	h.log.Debug("websocket client registered", "userId", userID, "clients", n)
	return cl
}

func (h *Hub) Unregister(cl *Client) {
	h.mu.Lock()
	_, ok := h.clients[cl]
	delete(h.clients, cl)
	h.mu.Unlock()
	cl.once.Do(func() {
		close(cl.done)
		cl.conn.Close()
	})
	if ok {
		h.log.Debug("websocket client unregistered", "userId", cl.UserID)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send queues message for every connection of userID. An offline user is not
// an error; a connection with a full queue is.
func (h *Hub) Send(userID string, message []byte) error {
	var firstErr error
	for _, cl := range h.snapshot() {
		if cl.UserID != userID {
			continue
		}
		if err := cl.enqueue(message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Broadcast queues message for all clients and returns without waiting for
// the writes. Clients that cannot keep up are dropped.
func (h *Hub) Broadcast(message []byte) {
	for _, cl := range h.snapshot() {
		if err := cl.enqueue(message); err != nil {
			h.log.Warn("dropping slow websocket client", "userId", cl.UserID, "error", err)
			h.Unregister(cl)
		}
	}
}

// StockEvent is pushed whenever site stock for a material changes.
type StockEvent struct {
	Event   string `json:"event"`
	MatCode string `json:"matCode"`
	Action  string `json:"action"`
}

// NotifyStockChanged broadcasts a stock_changed event for matCode.
func (h *Hub) NotifyStockChanged(matCode, action string) {
	if h == nil {
		return
	}
	msg, err := json.Marshal(StockEvent{Event: "stock_changed", MatCode: matCode, Action: action})
	if err != nil {
		h.log.Error("failed to encode stock event", "error", err)
		return
	}
	h.Broadcast(msg)
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients))
	for cl := range h.clients {
		out = append(out, cl)
	}
	return out
}
