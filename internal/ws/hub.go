package ws

import (
	"encoding/json"
	"sync"

	"dare_webapp/internal/logger"
)

// Hub is the process-wide registry of live user connections. It has an
// explicit lifecycle (Register on connect, Deregister on disconnect)
// and is handed to the notification service as a dependency rather
// than reached for as a global.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64][]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64][]*Client)}
}

// Register adds a connection for the user. A user may hold several
// connections at once (multiple tabs/devices); all of them receive
// pushes.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.UserID] = append(h.clients[c.UserID], c)
	logger.Debug("ws client registered", "user_id", c.UserID, "connections", len(h.clients[c.UserID]))
}

// Deregister drops the connection and forgets the user once the last
// one is gone. The send channel is closed here, under the write lock,
// so no SendToUser can hold a reference to it past this point.
func (h *Hub) Deregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.clients[c.UserID]
	for i, other := range conns {
		if other == c {
			conns = append(conns[:i], conns[i+1:]...)
			close(c.Send)
			break
		}
	}
	if len(conns) == 0 {
		delete(h.clients, c.UserID)
	} else {
		h.clients[c.UserID] = conns
	}
	logger.Debug("ws client deregistered", "user_id", c.UserID)
}

// SendToUser pushes a JSON payload to every live connection of the
// user. Slow or dead connections are skipped, never waited on. The
// sends stay under the read lock: they cannot block, and the lock
// keeps them ordered before Deregister closes the channel.
func (h *Hub) SendToUser(userID int64, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("ws marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[userID] {
		select {
		case c.Send <- data:
		default:
			logger.Warn("ws send buffer full, dropping message", "user_id", userID)
		}
	}
}

// Connected reports whether the user has at least one live connection.
func (h *Hub) Connected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
