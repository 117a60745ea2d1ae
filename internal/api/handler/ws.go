package handler

import (
	"chatroom/backend/internal/chathub"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServeWebSocket upgrades the request to a WebSocket. Browsers cannot set headers on a
// WebSocket handshake, so the token may also come in the token query parameter.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		respondError(c, http.StatusUnauthorized, "Authorization token missing")
		return
	}

	claims, err := h.Tokens.Validate(token)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid token or expired")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		log.Printf("WARNING: WebSocket upgrade failed for %s: %v", claims.UserID, err)
		return
	}

	client := chathub.NewWebSocketClient(conn, h.Hub, claims.UserID, h.Config.SendBuffer, h.Config.MaxMessageSize)
	if !h.Hub.Register(client) {
		conn.Close()
		return
	}
	client.Run()
}
