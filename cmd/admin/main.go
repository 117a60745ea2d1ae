package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"chatroom/backend/internal/auth"
	"chatroom/backend/internal/config"
	"chatroom/backend/internal/models"
	"chatroom/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// adminConfig is the subset of the server configuration the CLI needs; it does not require a JWT secret.
type adminConfig struct {
	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"host=localhost user=user password=password dbname=chatroomdb port=5432 sslmode=disable"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"12"`
}

func usage() {
	fmt.Println("Usage: admin <command> [args]")
	fmt.Println("  create-admin <username> <email> <password>")
	fmt.Println("  set-role <user_id> <user|admin>")
	fmt.Println("  delete-user <user_id>")
	os.Exit(1)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Error loading .env file")
	}
	var cfg adminConfig
	if err := envconfig.Process("CHAT", &cfg); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI
	ctx := context.Background()

	switch os.Args[1] {
	case "create-admin":
		if len(os.Args) != 5 {
			usage()
		}
		user, err := createAdmin(ctx, storageSvc, auth.NewPasswordHasher(cfg.BcryptCost), os.Args[2], os.Args[3], os.Args[4])
		if err != nil {
			log.Fatalf("Error creating admin: %v", err)
		}
		fmt.Printf("Admin %s created with id %s.\n", user.Username, user.ID)
	case "set-role":
		if len(os.Args) != 4 {
			usage()
		}
		if err := setRole(ctx, storageSvc, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Error setting role: %v", err)
		}
		fmt.Printf("User %s now has role %s.\n", os.Args[2], os.Args[3])
	case "delete-user":
		if len(os.Args) != 3 {
			usage()
		}
		if err := storageSvc.DeleteUser(ctx, os.Args[2]); err != nil {
			log.Fatalf("Error deleting user: %v", err)
		}
		fmt.Printf("User %s has been deleted.\n", os.Args[2])
	default:
		fmt.Println("Unknown command")
		usage()
	}
}

func createAdmin(ctx context.Context, s storage.Storage, hasher *auth.PasswordHasher, username, email, password string) (*models.User, error) {
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters long")
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, Email: email, Password: hash, Role: config.RoleAdmin}
	if err := s.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func setRole(ctx context.Context, s storage.Storage, userID, role string) error {
	if role != config.RoleUser && role != config.RoleAdmin {
		return fmt.Errorf("invalid role %q", role)
	}
	return s.UpdateUserRole(ctx, userID, role)
}
