package handler

import (
	"chatroom/backend/internal/auth"
	"chatroom/backend/internal/chathub"
	"chatroom/backend/internal/config"
	"chatroom/backend/internal/models"
	"chatroom/backend/internal/storage"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// RealTime is the part of the chat hub the HTTP handlers drive.
type RealTime interface {
	chathub.Hub

	Online(roomID string) []string
	BroadcastToRoom(roomID string, evt models.ServerEvent)
	BroadcastToRoomExceptUser(roomID, userID string, evt models.ServerEvent)
	EvictFromRoom(roomID, userID string)
	CloseRoom(roomID string)
	EvictUser(userID string)
}

// Handler serves the REST API and the WebSocket endpoint.
type Handler struct {
	Store  storage.Storage
	Hub    RealTime
	Tokens *auth.TokenManager
	Hasher *auth.PasswordHasher
	Config *config.Config

	upgrader websocket.Upgrader
}

func NewHandler(store storage.Storage, hub RealTime, tokens *auth.TokenManager, hasher *auth.PasswordHasher, cfg *config.Config) *Handler {
	h := &Handler{
		Store:  store,
		Hub:    hub,
		Tokens: tokens,
		Hasher: hasher,
		Config: cfg,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return cfg.OriginAllowed(r.Header.Get("Origin"))
		},
	}
	return h
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"msg": msg})
}

// respondStoreError maps storage errors onto HTTP statuses. Anything unexpected is a 500.
func respondStoreError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, storage.ErrRoomExists),
		errors.Is(err, storage.ErrUserExists),
		errors.Is(err, storage.ErrUsernameTaken):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "Server error")
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
