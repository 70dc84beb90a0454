package live

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Topics a page can subscribe to. One per listed entity.
const (
	TopicOrders   = "orders"
	TopicPieces   = "pieces"
	TopicSections = "sections"
	TopicStages   = "stages"
	TopicUsers    = "users"
)

// Event tells subscribed pages their data is stale
type Event struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

// Hub maintains the set of connected browser tabs and fans out
// invalidation events to them.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop; it returns when ctx is done and closes
// every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("📱 Live tab connected: %s", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if h.remove(client) {
				log.Printf("📴 Live tab disconnected: %s", client.ID)
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.remove(c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with mu held; it reports whether c was registered
func (h *Hub) remove(c *Client) bool {
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	return true
}

// Publish sends an invalidation for each topic to every subscriber.
// A client whose buffer is full is dropped; publishers never wait.
func (h *Hub) Publish(topics ...string) {
	for _, topic := range topics {
		msg, err := json.Marshal(Event{Type: "invalidate", Topic: topic})
		if err != nil {
			log.Printf("Error marshaling event: %v", err)
			continue
		}

		h.mu.Lock()
		for c := range h.clients {
			if !c.wants(topic) {
				continue
			}
			select {
			case c.send <- msg:
			default:
				log.Printf("⚠️  Live tab %s too slow, dropping", c.ID)
				h.remove(c)
			}
		}
		h.mu.Unlock()
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
