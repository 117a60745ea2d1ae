package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// UsernameCache is the part of *redis.Client the username cache needs.
type UsernameCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func usernameKey(userID string) string {
	return "username:" + userID
}

// GetUsername resolves a user's display name, reading through the Redis cache when one is configured.
func (s *Service) GetUsername(ctx context.Context, userID string) (string, error) {
	if s.Redis != nil {
		name, err := s.Redis.Get(ctx, usernameKey(userID)).Result()
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, redis.Nil) {
			log.Printf("WARNING: username cache read for %s failed: %v", userID, err)
		}
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, usernameKey(userID), user.Username, s.UsernameTTL).Err(); err != nil {
			log.Printf("WARNING: username cache write for %s failed: %v", userID, err)
		}
	}
	return user.Username, nil
}

func (s *Service) forgetUsername(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, usernameKey(userID)).Err(); err != nil {
		log.Printf("WARNING: username cache eviction for %s failed: %v", userID, err)
	}
}
