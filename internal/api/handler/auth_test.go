package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t, new(MockHub))

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "Alice@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[struct {
		Token string `json:"token"`
		User  struct {
			UserID   string `json:"userId"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}](t, w)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "alice", login.User.Username)
	assert.Equal(t, "user", login.User.Role)

	w = ts.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, login.User.UserID, me["userId"])
}

func TestRegister_Rejects(t *testing.T) {
	ts := newTestServer(t, new(MockHub))
	ts.user(t, "alice", "")

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"short username", gin.H{"username": "al", "email": "x@example.com", "password": "secret123"}, http.StatusBadRequest},
		{"bad email", gin.H{"username": "bob", "email": "nope", "password": "secret123"}, http.StatusBadRequest},
		{"short password", gin.H{"username": "bob", "email": "bob@example.com", "password": "123"}, http.StatusBadRequest},
		{"email taken", gin.H{"username": "bob", "email": "alice@example.com", "password": "secret123"}, http.StatusBadRequest},
		{"username taken", gin.H{"username": "alice", "email": "other@example.com", "password": "secret123"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t, new(MockHub))
	ts.user(t, "alice", "")

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ghost@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t, new(MockHub))
	u, token := ts.user(t, "alice", "")

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/rooms", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/rooms", "garbage", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/rooms", token, nil).Code)

	require.NoError(t, ts.store.DeleteUser(t.Context(), u.ID))
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/rooms", token, nil).Code,
		"a token outlives its account only until the next request")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, new(MockHub))
	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
