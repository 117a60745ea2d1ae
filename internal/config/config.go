// Package config holds the runtime configuration of the chat backend and the
// constants shared by the real-time hub and the REST handlers.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// Socket timings
	WriteWait  = 10 * time.Second
	PongWait   = 60 * time.Second
	PingPeriod = (PongWait * 9) / 10

	// LaneBuffer is the number of pending emissions a single connection may queue.
	LaneBuffer = 64
	// LookupTimeout bounds a store lookup made while enriching an outgoing event.
	LookupTimeout = 5 * time.Second

	// UnknownUsername replaces a username that could not be resolved.
	UnknownUsername = "Unknown User"

	// Rooms
	RoomCodeLength   = 8
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// Roles
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Config is populated from CHAT_* environment variables.
type Config struct {
	Port        string `envconfig:"PORT" default:"8000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"host=localhost user=user password=password dbname=chatroomdb port=5432 sslmode=disable"`

	RedisAddr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword    string        `envconfig:"REDIS_PASSWORD"`
	RedisDB          int           `envconfig:"REDIS_DB" default:"0"`
	UsernameCacheTTL time.Duration `envconfig:"USERNAME_CACHE_TTL" default:"10m"`

	JWTSecret    string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiresIn time.Duration `envconfig:"JWT_EXPIRES_IN" default:"168h"`
	BcryptCost   int           `envconfig:"BCRYPT_COST" default:"12"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	SendBuffer     int      `envconfig:"SEND_BUFFER" default:"256"`
	MaxMessageSize int64    `envconfig:"MAX_MESSAGE_SIZE" default:"4096"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Error loading .env file")
	}

	var cfg Config
	if err := envconfig.Process("CHAT", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	return &cfg, nil
}

// IsDevelopment reports whether the server runs with relaxed origin checks.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// OriginAllowed checks a WebSocket Origin header against the allow-list.
func (c *Config) OriginAllowed(origin string) bool {
	if c.IsDevelopment() || origin == "" {
		return true
	}
	origin = strings.TrimSuffix(strings.ToLower(origin), "/")
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
