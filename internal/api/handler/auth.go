package handler

import (
	"chatroom/backend/internal/models"
	"chatroom/backend/internal/storage"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// accountView is the public shape of an account in auth responses.
type accountView struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func viewOf(u *models.User) accountView {
	return accountView{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Register creates an account with a bcrypt-hashed password.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": "Validation failed", "errors": err.Error()})
		return
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		log.Printf("ERROR: hashing password: %v", err)
		respondError(c, http.StatusInternalServerError, "Server error")
		return
	}

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hash,
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		respondStoreError(c, err, "")
		return
	}

	log.Printf("INFO: Registered user %s (%s)", user.Username, user.ID)
	c.JSON(http.StatusCreated, gin.H{"msg": "User registered successfully", "user": viewOf(user)})
}

// Login checks the credentials and returns a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": "Validation failed", "errors": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(c, http.StatusBadRequest, "Invalid credentials")
			return
		}
		respondStoreError(c, err, "")
		return
	}
	if !h.Hasher.Verify(req.Password, user.Password) {
		respondError(c, http.StatusBadRequest, "Invalid credentials")
		return
	}

	if err := h.Store.TouchLastLogin(ctx, user.ID); err != nil {
		log.Printf("WARNING: Failed to record last login of %s: %v", user.ID, err)
	}

	token, err := h.Tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		log.Printf("ERROR: issuing token: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to create token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": viewOf(user)})
}

// Me echoes the authenticated identity.
func (h *Handler) Me(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user":   viewOf(user),
		"userId": user.ID,
		"role":   user.Role,
	})
}
