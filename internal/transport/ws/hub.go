package ws

import (
	"commons/internal/cache"
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub fans signals out to the websocket connections of each player.
// A player may hold several connections; each receives every signal.
type Hub struct {
	conns map[string]map[*Connection]struct{} // playerID -> connections
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	done       chan struct{}

	logger *zap.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	PlayerID string
	Send     chan []byte
}

// NewConnection creates a connection with a buffered send queue
func NewConnection(playerID string) *Connection {
	return &Connection{
		PlayerID: playerID,
		Send:     make(chan []byte, 256),
	}
}

// NewHub creates a new WebSocket hub. Call Run to start it.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run delivers signals until ctx is done or deliveries is closed
func (h *Hub) Run(ctx context.Context, deliveries <-chan cache.Delivery) {
	defer func() {
		close(h.done)
		h.closeAll()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.PlayerID] == nil {
				h.conns[conn.PlayerID] = make(map[*Connection]struct{})
			}
			h.conns[conn.PlayerID][conn] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("player connected", zap.String("player", conn.PlayerID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.PlayerID]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, conn.PlayerID)
					}
					h.logger.Info("player disconnected", zap.String("player", conn.PlayerID))
				}
			}
			h.mu.Unlock()

		case d, ok := <-deliveries:
			if !ok {
				return
			}
			h.mu.RLock()
			for conn := range h.conns[d.PlayerID] {
				select {
				case conn.Send <- d.Data:
				default:
					h.logger.Warn("send buffer full, dropping signal", zap.String("player", d.PlayerID))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection. It returns false once the hub has stopped.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Connected returns how many connections a player holds
func (h *Hub) Connected(playerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[playerID])
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for playerID, set := range h.conns {
		for conn := range set {
			close(conn.Send)
		}
		delete(h.conns, playerID)
	}
}
