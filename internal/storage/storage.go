package storage

import (
	"chatroom/backend/internal/config"
	"chatroom/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrRoomExists    = errors.New("room already exists")
	ErrUserExists    = errors.New("user already exists")
	ErrUsernameTaken = errors.New("username is already taken")
)

// Storage is the persisted store used by the REST handlers and the real-time hub.
type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id, role string) error
	TouchLastLogin(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
	GetUsername(ctx context.Context, id string) (string, error)

	CreateRoom(ctx context.Context, room *models.Room) error
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoomByID(ctx context.Context, id string) (*models.Room, error)
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)
	SaveRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, id string) error
	GetRoomMembership(ctx context.Context, roomID string) ([]models.RoomUser, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	ListMessages(ctx context.Context, roomID string) ([]models.MessageView, error)
	SetReaction(ctx context.Context, messageID, userID, kind string) (*models.Message, error)
	SoftDeleteMessage(ctx context.Context, id string) error
	GetMessageRoomID(ctx context.Context, messageID string) (string, error)
}

type Service struct {
	DB    *gorm.DB
	Redis UsernameCache // optional; nil disables the username cache

	UsernameTTL time.Duration
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb UsernameCache) *Service {
	return &Service{
		DB:          db,
		Redis:       rdb,
		UsernameTTL: 10 * time.Minute,
	}
}

// AutoMigrate creates or updates the tables of all persisted models.
func (s *Service) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Message{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Users ---

// CreateUser saves a new user, rejecting duplicate emails and usernames.
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserExists
	}
	if err := db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}

	if user.Role == "" {
		user.Role = config.RoleUser
	}
	return db.Create(user).Error
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		log.Printf("ERROR: Failed to list users: %v", err)
		return nil, err
	}
	return users, nil
}

func (s *Service) UpdateUserRole(ctx context.Context, id, role string) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) TouchLastLogin(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", time.Now()).Error
}

// DeleteUser removes the user and drops its cached username.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.forgetUsername(ctx, id)
	return nil
}

// --- Rooms ---

// CreateRoom stores a new room with a freshly generated unique join code.
// The creator becomes owner and first member.
func (s *Service) CreateRoom(ctx context.Context, room *models.Room) error {
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Room{}).Where("name = ?", room.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrRoomExists
	}

	code, err := s.uniqueRoomCode(ctx)
	if err != nil {
		return err
	}
	room.RoomCode = code
	room.AddMember(room.CreatedBy)

	return db.Create(room).Error
}

func (s *Service) uniqueRoomCode(ctx context.Context) (string, error) {
	for {
		code := GenerateRoomCode(config.RoomCodeLength)
		_, err := s.GetRoomByCode(ctx, code)
		if errors.Is(err, ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// GenerateRoomCode returns a random code over the room-code alphabet.
func GenerateRoomCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		code[i] = config.RoomCodeAlphabet[rand.IntN(len(config.RoomCodeAlphabet))]
	}
	return string(code)
}

func (s *Service) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.WithContext(ctx).Order("created_at asc").Find(&rooms).Error; err != nil {
		log.Printf("ERROR: Failed to list rooms: %v", err)
		return nil, err
	}
	return rooms, nil
}

func (s *Service) GetRoomByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (s *Service) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).Where("room_code = ?", code).First(&room).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

// SaveRoom persists name, privacy, and membership changes.
func (s *Service) SaveRoom(ctx context.Context, room *models.Room) error {
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Room{}).Where("name = ? AND id <> ?", room.Name, room.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrRoomExists
	}
	return db.Save(room).Error
}

// DeleteRoom removes the room together with all of its messages.
func (s *Service) DeleteRoom(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Room{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetRoomMembership returns the persisted roster of a room in membership order.
// Members whose account no longer exists are skipped.
func (s *Service) GetRoomMembership(ctx context.Context, roomID string) ([]models.RoomUser, error) {
	room, err := s.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(room.Users) == 0 {
		return []models.RoomUser{}, nil
	}

	var users []models.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", []string(room.Users)).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load members of room %s: %w", roomID, err)
	}
	byID := lo.KeyBy(users, func(u models.User) string { return u.ID })

	return lo.FilterMap(room.Users, func(id string, _ int) (models.RoomUser, bool) {
		u, ok := byID[id]
		return models.RoomUser{ID: id, Username: u.Username}, ok
	}), nil
}

// --- Messages ---

func (s *Service) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomID, err)
		return err
	}
	return nil
}

func (s *Service) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, notFound(err)
	}
	return &msg, nil
}

// ListMessages returns the room history oldest first, with sender usernames resolved.
// Soft-deleted messages keep their place in the history but lose their content.
func (s *Service) ListMessages(ctx context.Context, roomID string) ([]models.MessageView, error) {
	var messages []models.Message
	if err := s.DB.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at asc").Find(&messages).Error; err != nil {
		log.Printf("ERROR: Failed to get chat history for room %s: %v", roomID, err)
		return nil, err
	}

	views := make([]models.MessageView, 0, len(messages))
	for _, m := range messages {
		if m.Deleted {
			m.Content = ""
		}
		name, err := s.GetUsername(ctx, m.SenderID)
		if err != nil {
			name = config.UnknownUsername
		}
		views = append(views, models.MessageView{Message: m, Sender: models.RoomUser{ID: m.SenderID, Username: name}})
	}
	return views, nil
}

// SetReaction stores the user's reaction on a message (last write wins) and returns the updated message.
func (s *Service) SetReaction(ctx context.Context, messageID, userID, kind string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", messageID).First(&msg).Error; err != nil {
			return notFound(err)
		}
		msg.SetReaction(userID, kind)
		return tx.Save(&msg).Error
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) SoftDeleteMessage(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Update("deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) GetMessageRoomID(ctx context.Context, messageID string) (string, error) {
	msg, err := s.GetMessageByID(ctx, messageID)
	if err != nil {
		return "", err
	}
	return msg.RoomID, nil
}
