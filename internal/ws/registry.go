package ws

import (
	"log/slog"
	"sync"
)

// Conn is the transport held for one connected client.
// *websocket.Conn from gorilla/websocket satisfies it.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// ConnectedMessage is sent to a client right after it registers
type ConnectedMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

// Registry tracks live progress channels keyed by client identifier.
// Connect, Disconnect, SendTo and Broadcast may be called concurrently
// from independent request handlers; the map is guarded by a mutex and
// only the registry ever touches the connections.
type Registry struct {
	mu     sync.Mutex
	conns  map[string]Conn
	logger *slog.Logger
}

// NewRegistry creates an empty connection registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]Conn),
		logger: logger,
	}
}

// Connect registers the channel under clientID, replacing any prior entry
// for the same id, and sends a connection confirmation on it
func (r *Registry) Connect(conn Conn, clientID string) {
	r.mu.Lock()
	r.conns[clientID] = conn
	total := len(r.conns)
	r.mu.Unlock()

	r.logger.Info("WebSocket client connected",
		slog.String("client_id", clientID),
		slog.Int("total", total),
	)

	r.SendTo(clientID, ConnectedMessage{Type: "connected", ClientID: clientID})
}

// Disconnect removes the entry for clientID; no-op if absent
func (r *Registry) Disconnect(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[clientID]; !ok {
		return
	}

	delete(r.conns, clientID)
	r.logger.Info("WebSocket client disconnected",
		slog.String("client_id", clientID),
		slog.Int("total", len(r.conns)),
	)
}

// SendTo delivers message to the named client if present. A dead channel
// is pruned on its first failed use.
func (r *Registry) SendTo(clientID string, message any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[clientID]
	if !ok {
		return
	}

	if err := conn.WriteJSON(message); err != nil {
		r.logger.Error("Failed to send message, removing client",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)
		delete(r.conns, clientID)
	}
}

// Broadcast delivers message to every registered client. A failure on one
// channel never prevents delivery attempts to the others; failed clients
// are removed after the full sweep.
func (r *Registry) Broadcast(message any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var failed []string

	for clientID, conn := range r.conns {
		if err := conn.WriteJSON(message); err != nil {
			r.logger.Error("Broadcast failed for client",
				slog.String("client_id", clientID),
				slog.String("error", err.Error()),
			)
			failed = append(failed, clientID)
		}
	}

	for _, clientID := range failed {
		delete(r.conns, clientID)
	}
}

// DisconnectAll closes and removes every channel; used at process shutdown
func (r *Registry) DisconnectAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for clientID, conn := range r.conns {
		if err := conn.Close(); err != nil {
			r.logger.Error("Failed to close connection",
				slog.String("client_id", clientID),
				slog.String("error", err.Error()),
			)
		}
		delete(r.conns, clientID)
	}

	r.logger.Info("All WebSocket connections closed")
}

// Count returns the number of live entries
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}
