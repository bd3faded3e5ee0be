package handler

import (
	"net/http"

	"flashfrenzy/backend/internal/gamehub"
	"flashfrenzy/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection to a WebSocket and hands it to
// the hub. The token can arrive as a Bearer header or a query parameter
// (browsers cannot set headers on WebSocket dials).
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}
		tokenString = authHeader[7:]
	}

	if _, err := h.validateAndGetIdentity(tokenString); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	// The connection stays anonymous until its join-user-room event; the
	// identity on the token authorizes the upgrade, nothing more.
	client := &gamehub.WebSocketClient{
		ID:   uuid.New().String(),
		Conn: conn,
		Hub:  h.Hub,
		Send: make(chan models.Event, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
