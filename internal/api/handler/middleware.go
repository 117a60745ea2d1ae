package handler

import (
	"chatroom/backend/internal/auth"
	"chatroom/backend/internal/models"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Keys under which Auth stores the caller's identity in the gin context.
const (
	ctxUserID   = "userId"
	ctxUsername = "username"
	ctxUser     = "user"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Auth validates the bearer token and loads the account it names, so that deleted
// accounts and role changes take effect before the token expires.
func (h *Handler) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		claims, err := h.Tokens.Validate(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				respondError(c, http.StatusUnauthorized, "Token has expired")
				return
			}
			respondError(c, http.StatusUnauthorized, "Token is not valid")
			return
		}

		user, err := h.Store.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Token is not valid")
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxUserID, user.ID)
		c.Set(ctxUsername, user.Username)
		c.Next()
	}
}

// AdminOnly must run after Auth.
func (h *Handler) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin() {
			respondError(c, http.StatusForbidden, "Access denied. Admin only.")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(ctxUser).(*models.User)
}
