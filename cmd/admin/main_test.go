package main

import (
	"context"
	"fmt"
	"testing"

	"chatroom/backend/internal/auth"
	"chatroom/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStorage(t *testing.T) *storage.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	s := storage.NewStorageService(db, nil)
	require.NoError(t, s.AutoMigrate())
	return s
}

func TestCreateAdminAndSetRole(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	admin, err := createAdmin(ctx, s, hasher, "root", "root@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.True(t, hasher.Verify("secret123", admin.Password))

	_, err = createAdmin(ctx, s, hasher, "root2", "root@example.com", "secret123")
	assert.ErrorIs(t, err, storage.ErrUserExists)
	_, err = createAdmin(ctx, s, hasher, "short", "short@example.com", "123")
	assert.Error(t, err)

	require.NoError(t, setRole(ctx, s, admin.ID, "user"))
	got, err := s.GetUserByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAdmin())

	assert.Error(t, setRole(ctx, s, admin.ID, "owner"))
	assert.ErrorIs(t, setRole(ctx, s, "missing", "admin"), storage.ErrNotFound)
}
