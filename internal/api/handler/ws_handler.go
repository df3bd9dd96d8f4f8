package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is handled by middleware; the progress channel is open
		return true
	},
}

// UploadProgress handles GET /ws/upload-progress
// Upgrades the connection, registers it in the registry and keeps reading
// until the client goes away. Inbound "ping" gets a pong; every other
// inbound payload is ignored.
func (h *ProgressHandler) UploadProgress(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		clientID = uuid.New().String()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)
		return
	}

	h.registry.Connect(conn, clientID)
	defer h.registry.Disconnect(clientID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// normal disconnect path
			return
		}

		if isPing(data) {
			h.registry.SendTo(clientID, gin.H{"type": "pong"})
		}
	}
}

// isPing matches a client keepalive, with or without JSON string quoting
func isPing(data []byte) bool {
	msg := strings.Trim(strings.TrimSpace(string(data)), `"`)
	return msg == "ping"
}
