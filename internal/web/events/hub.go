package events

import (
	"log"
	"net/http"
	"sync"
	"time"

	"homepanel/internal/models"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Event is one push message to UI clients
type Event struct {
	Type     string              `json:"type"`
	DeviceID string              `json:"device_id,omitempty"`
	State    *models.DeviceState `json:"state,omitempty"`
}

// Hub fans device-state updates out to connected websocket clients. A
// client that cannot keep up is dropped rather than blocking the rest.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			// auth happens before the upgrade; the UI may be served
			// from a different origin than the API
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleConnection upgrades the request and tracks the client until it
// disconnects
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("EVENTS: Websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("EVENTS: Client connected (%d total)", count)

	// drain reads to notice the close frame
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastDeviceState pushes a state update to every connected client
func (h *Hub) BroadcastDeviceState(deviceID string, state models.DeviceState) {
	event := Event{Type: "device_state", DeviceID: deviceID, State: &state}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("EVENTS: Dropping client: %v", err)
			h.drop(conn)
		}
	}
}

// Close disconnects all clients
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if h.clients[conn] {
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	conn.Close()
}
