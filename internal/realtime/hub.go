// Package realtime pushes order lifecycle events to WebSocket subscribers.
package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"ordermesh/internal/orders"
)

// Event types pushed to subscribers.
const (
	EventOrderCreated  = "order_created"
	EventOrderCanceled = "order_canceled"
)

// OrderEvent is the wire envelope for one lifecycle notification.
type OrderEvent struct {
	Type  string       `json:"type"`
	Order orders.Order `json:"order"`
}

// Hub manages WebSocket clients and fans order events out to them. Publishing
// never blocks the saga: if the hub's buffer is full the event is dropped.
type Hub struct {
	connections map[*websocket.Conn]struct{}
	register    chan *websocket.Conn
	unregister  chan *websocket.Conn
	broadcast   chan []byte
	log         *slog.Logger
	mu          sync.Mutex
}

// NewHub constructs a Hub. A nil logger falls back to slog.Default.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		connections: make(map[*websocket.Conn]struct{}),
		register:    make(chan *websocket.Conn),
		unregister:  make(chan *websocket.Conn),
		broadcast:   make(chan []byte, 64),
		log:         log,
	}
}

// Run processes register/unregister/broadcast events until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = struct{}{}
			h.mu.Unlock()
		case conn := <-h.unregister:
			h.mu.Lock()
			delete(h.connections, conn)
			h.mu.Unlock()
			conn.Close()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.connections {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					conn.Close()
					delete(h.connections, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// OrderCreated publishes a creation event.
func (h *Hub) OrderCreated(order orders.Order) {
	h.publish(OrderEvent{Type: EventOrderCreated, Order: order})
}

// OrderCanceled publishes a cancellation event.
func (h *Hub) OrderCanceled(order orders.Order) {
	h.publish(OrderEvent{Type: EventOrderCanceled, Order: order})
}

func (h *Hub) publish(event OrderEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("marshal order event", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("order event dropped, hub buffer full", "type", event.Type)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS upgrades the request and registers the connection with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	h.register <- conn

	// Drain reads so close frames are processed; subscribers are write-only.
	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
