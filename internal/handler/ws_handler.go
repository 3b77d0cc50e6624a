package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/seojunlee/teamlive/internal/ws"
	"github.com/seojunlee/teamlive/pkg/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, validate origin
	},
}

// WSHandler serves the realtime change feed
type WSHandler struct {
	hub        *ws.Hub
	jwtManager *auth.JWTManager
}

func NewWSHandler(hub *ws.Hub, jwtManager *auth.JWTManager) *WSHandler {
	return &WSHandler{
		hub:        hub,
		jwtManager: jwtManager,
	}
}

// HandleFeed upgrades HTTP to WebSocket and attaches the viewer to the feed.
// Client connects with: ws://host/ws?token=<jwt> — the token is optional;
// anonymous viewers still receive broadcast status events, they just never
// get user-targeted ones.
func (h *WSHandler) HandleFeed(c *gin.Context) {
	userID := uuid.Nil
	if tokenString := c.Query("token"); tokenString != "" {
		claims, err := h.jwtManager.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		userID = claims.UserID
	}

	// Upgrade HTTP to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	log.Printf("✅ Feed connected: UserID=%s", userID)

	// Start read/write pumps in goroutines
	go client.WritePump()
	go client.ReadPump()
}
