package handler

import (
	"chatroom/backend/internal/config"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Store.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account and drops every live connection it has.
func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == c.GetString(ctxUserID) {
		respondError(c, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.Store.DeleteUser(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "User not found")
		return
	}
	h.Hub.EvictUser(id)

	log.Printf("INFO: User %s deleted by admin %s", id, c.GetString(ctxUserID))
	c.JSON(http.StatusOK, gin.H{"msg": "User deleted successfully"})
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid role")
		return
	}

	id := c.Param("id")
	if id == c.GetString(ctxUserID) {
		respondError(c, http.StatusBadRequest, "Cannot change your own role")
		return
	}

	ctx := c.Request.Context()
	if err := h.Store.UpdateUserRole(ctx, id, req.Role); err != nil {
		respondStoreError(c, err, "User not found")
		return
	}
	user, err := h.Store.GetUserByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "User not found")
		return
	}

	if req.Role == config.RoleAdmin {
		log.Printf("INFO: User %s promoted to admin by %s", id, c.GetString(ctxUserID))
	}
	c.JSON(http.StatusOK, gin.H{"msg": "User role updated successfully", "user": user})
}
