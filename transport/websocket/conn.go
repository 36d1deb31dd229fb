package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout  = 10 * time.Second
	sendQueueSize = 32
)

// connection - one peer's socket plus its outbound queue. All writes go
// through the queue and a single writer goroutine, because gorilla
// connections do not allow concurrent writers.
type connection struct {
	ws   *websocket.Conn
	send chan []byte
}

// writePump - drains the outbound queue onto the socket. Exits when the
// queue is closed or a write fails.
func (that *connection) writePump(logger *slog.Logger) {
	for data := range that.send {
		if err := that.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			logger.Error("failed to set write deadline", "error", err)
			return
		}

		if err := that.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Error("failed to write message", "error", err)
			return
		}
	}
}

// ConnectionManager - the live sockets keyed by player identity. Implements
// the session manager's notifier: Notify enqueues and returns immediately,
// so nothing upstream ever blocks on socket I/O.
type ConnectionManager struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[string]*connection
}

func NewConnectionManager(logger *slog.Logger) *ConnectionManager {
	return &ConnectionManager{
		logger: logger,
		conns:  make(map[string]*connection),
	}
}

// Add - registers a socket for a player, replacing (and closing) any
// previous one.
func (that *ConnectionManager) Add(playerID string, ws *websocket.Conn) {
	conn := &connection{
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
	}

	that.mu.Lock()
	if old, ok := that.conns[playerID]; ok {
		close(old.send)
		_ = old.ws.Close()
	}
	that.conns[playerID] = conn
	that.mu.Unlock()

	go conn.writePump(that.logger.With("playerID", playerID))
}

// RemoveIfCurrent - unregisters the player's socket only if it is still the
// given one, so a reconnect racing a disconnect never tears down the new
// session.
func (that *ConnectionManager) RemoveIfCurrent(playerID string, ws *websocket.Conn) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.conns[playerID]
	if !ok || current.ws != ws {
		return false
	}

	close(current.send)
	delete(that.conns, playerID)

	return true
}

// Notify - marshals and enqueues one message for a player. A missing
// connection or a full queue drops the message; the client recovers state
// through resume.
func (that *ConnectionManager) Notify(playerID, kind string, payload any) {
	log := that.logger.With("method", "Notify", "playerID", playerID, "kind", kind)

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal payload", "error", err)
		return
	}

	data, err := json.Marshal(Message{Type: kind, Data: body})
	if err != nil {
		log.Error("failed to marshal message", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	conn, ok := that.conns[playerID]
	if !ok {
		return
	}

	select {
	case conn.send <- data:
	default:
		log.Warn("send queue full, dropping message")
	}
}
