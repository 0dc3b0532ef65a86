package hub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Message is the envelope pushed to every websocket client.
type Message struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

// Hub fans messages out to connected websocket clients. The most recent
// message is replayed to clients as they connect.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	clients    map[*Client]bool
	broadcast  chan []byte
	last       []byte
	count      chan int
	done       chan struct{}
}

// Client is one websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// New creates a hub. Call Run before serving clients.
func New() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		count:      make(chan int),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			if h.last != nil {
				c.send <- h.last
			}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			h.last = msg
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					log.Printf("[HUB] dropping slow client %s", c.conn.RemoteAddr())
					delete(h.clients, c)
					close(c.send)
				}
			}
		case h.count <- len(h.clients):
		}
	}
}

// Clients returns the number of connected clients, or 0 once Run returned.
func (h *Hub) Clients() int {
	select {
	case n := <-h.count:
		return n
	case <-h.done:
		return 0
	}
}

// Broadcast encodes payload in a Message of the given type and queues it.
// It never blocks; when the queue is full the message is dropped.
func (h *Hub) Broadcast(typ string, payload any) {
	b, err := json.Marshal(Message{Type: typ, Payload: payload, Timestamp: time.Now().UTC().Format(time.RFC3339Nano)})
	if err != nil {
		log.Printf("[HUB] encode %s: %v", typ, err)
		return
	}
	select {
	case h.broadcast <- b:
	default:
		log.Printf("[HUB] broadcast queue full, dropping %s", typ)
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ServeWS upgrades the request and registers the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HUB] ws upgrade: %v", err)
		return
	}
	c := &Client{hub: h, conn: conn, send: make(chan []byte, 16)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames so control messages are processed and a
// closed connection is noticed.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
