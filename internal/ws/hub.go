package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is the envelope of every message pushed to a websocket client.
type Event struct {
	Type string      `json:"type"` // 'message', 'order_status', 'online_users'
	Data interface{} `json:"data"`
}

// Hub tracks live connections per user and pushes events to them.
type Hub struct {
	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Connections per user; a user may have several tabs open
	userClients map[uint]map[*Client]struct{}
	mutex       sync.RWMutex

	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		userClients: make(map[uint]map[*Client]struct{}),
		done:        make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.add(client)
		case client := <-h.Unregister:
			h.remove(client)
		case <-h.done:
			return
		}
	}
}

// Stop ends Run. Connected clients are left to their pumps.
func (h *Hub) Stop() {
	close(h.done)
}

// leave hands client to Run for removal. After Stop nobody reads
// Unregister, so it returns without waiting.
func (h *Hub) leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) add(client *Client) {
	h.mutex.Lock()
	conns, ok := h.userClients[client.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.userClients[client.UserID] = conns
	}
	conns[client] = struct{}{}
	count := len(conns)
	h.mutex.Unlock()

	log.Printf("User %d connected. Total connections for user: %d", client.UserID, count)
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns, ok := h.userClients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.Send)

	if len(conns) == 0 {
		delete(h.userClients, client.UserID)
		log.Printf("User %d disconnected (Offline)", client.UserID)
	} else {
		log.Printf("User %d disconnected (Still has %d connections)", client.UserID, len(conns))
	}
}

// SendToUser queues raw bytes on every connection of userID. Slow
// connections whose buffer is full miss the message.
func (h *Hub) SendToUser(userID uint, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.userClients[userID] {
		select {
		case client.Send <- message:
		default:
			log.Printf("Dropping message for user %d: send buffer full", userID)
		}
	}
}

// Notify marshals an event and sends it to userID.
func (h *Hub) Notify(userID uint, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	h.SendToUser(userID, payload)
}

// IsUserOnline checks if a user has any active WebSocket connection (in-memory check)
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.userClients[userID]) > 0
}
