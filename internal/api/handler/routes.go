package handler

import (
	"chatroom/backend/internal/config"
	"log"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the custom binding tags used by request bodies.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Println("WARNING: gin validator engine is not validator/v10, custom tags disabled")
			return
		}
		if err := v.RegisterValidation("roomcode", validRoomCode); err != nil {
			log.Printf("ERROR: registering roomcode validator: %v", err)
		}
	})
}

func validRoomCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != config.RoomCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(config.RoomCodeAlphabet, r) {
			return false
		}
	}
	return true
}

// RegisterRoutes mounts every endpoint on r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	registerValidators()

	r.GET("/health", h.Health)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", h.Auth(), h.Me)

	rooms := api.Group("/rooms", h.Auth())
	rooms.GET("", h.ListRooms)
	rooms.POST("", h.CreateRoom)
	rooms.POST("/join-by-code", h.JoinRoomByCode)
	rooms.POST("/:roomId/join", h.JoinRoom)
	rooms.GET("/:roomId", h.GetRoom)
	rooms.PUT("/:roomId", h.UpdateRoom)
	rooms.DELETE("/:roomId", h.DeleteRoom)
	rooms.DELETE("/:roomId/users/:userId", h.RemoveRoomUser)

	// :id is a room ID for the listing and posting routes, a message ID otherwise.
	messages := api.Group("/messages", h.Auth())
	messages.GET("/:id", h.ListMessages)
	messages.POST("/:id", h.CreateMessage)
	messages.POST("/:id/reactions", h.ReactToMessage)
	messages.DELETE("/:id", h.DeleteMessage)

	users := api.Group("/users", h.Auth())
	users.GET("", h.AdminOnly(), h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.DELETE("/:id", h.AdminOnly(), h.DeleteUser)
	users.PATCH("/:id/role", h.AdminOnly(), h.UpdateUserRole)
}
