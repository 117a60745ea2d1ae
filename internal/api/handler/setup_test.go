package handler_test

import (
	"bytes"
	"chatroom/backend/internal/api/handler"
	"chatroom/backend/internal/auth"
	"chatroom/backend/internal/config"
	"chatroom/backend/internal/models"
	"chatroom/backend/internal/storage"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type testServer struct {
	router *gin.Engine
	store  *storage.Service
	hub    handler.RealTime
	tokens *auth.TokenManager
	hasher *auth.PasswordHasher
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:    "test",
		JWTSecret:      testSecret,
		JWTExpiresIn:   time.Hour,
		AllowedOrigins: []string{"*"},
		SendBuffer:     32,
		MaxMessageSize: 4096,
	}
}

func newStorage(t *testing.T) *storage.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	s := storage.NewStorageService(db, nil)
	require.NoError(t, s.AutoMigrate())
	return s
}

func newTestServer(t *testing.T, hub handler.RealTime) *testServer {
	t.Helper()
	return newTestServerOn(t, newStorage(t), hub)
}

func newTestServerOn(t *testing.T, store *storage.Service, hub handler.RealTime) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	ts := &testServer{
		router: gin.New(),
		store:  store,
		hub:    hub,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn),
		hasher: auth.NewPasswordHasher(bcrypt.MinCost),
	}
	h := handler.NewHandler(ts.store, hub, ts.tokens, ts.hasher, cfg)
	h.RegisterRoutes(ts.router)
	return ts
}

// user creates an account directly in the store and returns it with a valid token.
func (ts *testServer) user(t *testing.T, username, role string) (*models.User, string) {
	t.Helper()
	hash, err := ts.hasher.Hash("secret123")
	require.NoError(t, err)

	u := &models.User{Username: username, Email: username + "@example.com", Password: hash, Role: role}
	require.NoError(t, ts.store.CreateUser(context.Background(), u))

	token, err := ts.tokens.Issue(u.ID, u.Username, u.Role)
	require.NoError(t, err)
	return u, token
}

func (ts *testServer) room(t *testing.T, name string, owner *models.User) *models.Room {
	t.Helper()
	r := &models.Room{Name: name, CreatedBy: owner.ID}
	require.NoError(t, ts.store.CreateRoom(context.Background(), r))
	return r
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
