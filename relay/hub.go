package relay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// clientBufferSize is the send buffer size per client
	clientBufferSize = 16
	// sendTimeout bounds delivery to a slow client before the event is dropped
	sendTimeout = 100 * time.Millisecond
)

// Event 推送给客户端的消息信封
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type ShipmentUpdate struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
		close(c.send)
		c.conn.Close()
	}
}

type registration struct {
	room string
	c    *client
}

type emission struct {
	room    string
	payload []byte
}

// Hub maintains per-user rooms of WebSocket clients and fans events
// out to them. Delivery is at-most-once: slow or disconnected clients
// drop events, nothing is buffered for offline users.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*client]struct{}
	register   chan registration
	unregister chan registration
	emit       chan emission
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*client]struct{}),
		register:   make(chan registration),
		unregister: make(chan registration),
		emit:       make(chan emission, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. Call once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case reg := <-h.register:
			h.mu.Lock()
			if h.rooms[reg.room] == nil {
				h.rooms[reg.room] = make(map[*client]struct{})
			}
			h.rooms[reg.room][reg.c] = struct{}{}
			h.mu.Unlock()

		case reg := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[reg.room]; ok {
				if _, ok := clients[reg.c]; ok {
					delete(clients, reg.c)
					if len(clients) == 0 {
						delete(h.rooms, reg.room)
					}
					reg.c.close()
				}
			}
			h.mu.Unlock()

		case ev := <-h.emit:
			h.mu.RLock()
			for c := range h.rooms[ev.room] {
				select {
				case c.send <- ev.payload:
				case <-time.After(sendTimeout):
					// 客户端太慢，丢弃本条消息
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, clients := range h.rooms {
				for c := range clients {
					c.close()
				}
			}
			h.rooms = make(map[string]map[*client]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// EmitShipmentUpdated 向 user_{userID} 频道推送 shipmentUpdated 事件
func (h *Hub) EmitShipmentUpdated(userID, orderID, status string) {
	payload, err := json.Marshal(Event{
		Event: "shipmentUpdated",
		Data:  ShipmentUpdate{OrderID: orderID, Status: status},
	})
	if err != nil {
		log.Printf("Failed to marshal shipment event: %v", err)
		return
	}

	select {
	case h.emit <- emission{room: userRoom(userID), payload: payload}:
	default:
		// 队列已满，按最多一次语义丢弃
	}
}

// ClientCount returns the number of clients subscribed to a user's channel.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userRoom(userID)])
}

// Stop gracefully shuts the hub down, closing every connection.
func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *Hub) subscribe(userID string, conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, clientBufferSize),
		done: make(chan struct{}),
	}
	h.register <- registration{room: userRoom(userID), c: c}
	return c
}

func (h *Hub) unsubscribe(userID string, c *client) {
	select {
	case h.unregister <- registration{room: userRoom(userID), c: c}:
	case <-h.done:
	}
}

func userRoom(userID string) string {
	return "user_" + userID
}
