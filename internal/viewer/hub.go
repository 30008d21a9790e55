// Package viewer streams rendered transcript documents to browsers over
// WebSocket as they are published to Kafka.
package viewer

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/observability/logging"
)

// DefaultHistory is how many recent documents a new client receives.
const DefaultHistory = 20

// ErrHubClosed is returned by Publish once Run has returned.
var ErrHubClosed = errors.New("viewer hub closed")

// Hub manages WebSocket connections. Only Run writes to connections.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan models.DocumentRendered
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	recent     []models.DocumentRendered
	history    int
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a hub that replays up to history recent documents to new clients.
func NewHub(history int) *Hub {
	if history < 0 {
		history = 0
	}
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan models.DocumentRendered, 100),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		history:    history,
		logger:     logging.WithComponent("viewer-hub"),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			replay := append([]models.DocumentRendered(nil), h.recent...)
			h.mu.Unlock()
			for _, ev := range replay {
				if err := conn.WriteJSON(ev); err != nil {
					h.drop(conn, err)
					break
				}
			}
			h.logger.Info().Int("clients", h.Count()).Msg("Client connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			h.logger.Info().Int("clients", h.Count()).Msg("Client disconnected")

		case ev := <-h.broadcast:
			h.mu.Lock()
			if h.history > 0 {
				h.recent = append(h.recent, ev)
				if len(h.recent) > h.history {
					h.recent = h.recent[len(h.recent)-h.history:]
				}
			}
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.Unlock()
			for _, conn := range conns {
				if err := conn.WriteJSON(ev); err != nil {
					h.drop(conn, err)
				}
			}
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn, err error) {
	h.logger.Warn().Err(err).Msg("Write error")
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// join hands conn to Run. It reports false once Run has returned.
func (h *Hub) join(conn *websocket.Conn) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// leave hands conn back to Run; after Run returns the connection is already closed.
func (h *Hub) leave(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish queues ev for every connected client.
func (h *Hub) Publish(ctx context.Context, ev models.DocumentRendered) error {
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}
	select {
	case h.broadcast <- ev:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Recent returns the replay buffer, oldest first.
func (h *Hub) Recent() []models.DocumentRendered {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]models.DocumentRendered(nil), h.recent...)
}
