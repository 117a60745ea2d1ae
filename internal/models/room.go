package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Room is a named chat channel joinable by its RoomCode.
// Users holds the persisted membership, independent of who is online right now.
type Room struct {
	ID        string         `gorm:"primaryKey" json:"_id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	RoomCode  string         `gorm:"uniqueIndex;not null" json:"roomCode"`
	CreatedBy string         `gorm:"index;not null" json:"createdBy"`
	Users     pq.StringArray `gorm:"type:text[]" json:"users"`
	IsPrivate bool           `json:"isPrivate"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// BeforeCreate assigns a UUID to a new room.
func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// HasMember reports whether userID is in the persisted membership.
func (r *Room) HasMember(userID string) bool {
	return slices.Contains(r.Users, userID)
}

// AddMember appends userID unless it is already a member. It returns true if the list changed.
func (r *Room) AddMember(userID string) bool {
	if r.HasMember(userID) {
		return false
	}
	r.Users = append(r.Users, userID)
	return true
}

// RemoveMember drops userID from the membership. It returns true if the list changed.
func (r *Room) RemoveMember(userID string) bool {
	before := len(r.Users)
	r.Users = slices.DeleteFunc(r.Users, func(id string) bool { return id == userID })
	return len(r.Users) != before
}

// CanModerate reports whether u may edit the room or remove its members:
// the room owner or a global admin.
func (r *Room) CanModerate(u *User) bool {
	return u.IsAdmin() || r.CreatedBy == u.ID
}

// RoomUser is a roster entry as the client sidebar expects it.
type RoomUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}
