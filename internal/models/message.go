package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a persisted chat message.
// Reactions maps a user ID to a reaction kind; a user holds at most one reaction and the last write wins.
type Message struct {
	ID        string            `gorm:"primaryKey" json:"_id"`
	SenderID  string            `gorm:"index;not null" json:"sender"`
	RoomID    string            `gorm:"index;not null" json:"room"`
	Content   string            `gorm:"type:text;not null" json:"content"`
	Reactions map[string]string `gorm:"type:text;serializer:json" json:"reactions"`
	Deleted   bool              `gorm:"not null;default:false" json:"deleted"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// BeforeCreate assigns a UUID and an empty reaction map.
func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Reactions == nil {
		m.Reactions = map[string]string{}
	}
	return
}

// SetReaction records the user's reaction, replacing any previous one.
// An empty kind removes the user's reaction.
func (m *Message) SetReaction(userID, kind string) {
	if m.Reactions == nil {
		m.Reactions = map[string]string{}
	}
	if kind == "" {
		delete(m.Reactions, userID)
		return
	}
	m.Reactions[userID] = kind
}

// MessageView is the message as returned to clients, with the sender's username resolved.
type MessageView struct {
	Message
	Sender RoomUser `json:"sender"`
}
