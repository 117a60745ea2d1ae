package chathub

import (
	"sync"

	"github.com/samber/lo"
)

// Registry tracks which users are online in which room.
//
// Each (room, user) pair carries a count of the distinct connections that joined it, so a
// user with two tabs stays online until both have left. Only the hub loop mutates the
// registry; the lock lets lanes and HTTP handlers take snapshots concurrently.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]int
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]int)}
}

// Join counts one more connection of userID in roomID.
// It returns true if the user was not visible in the room before.
func (r *Registry) Join(roomID, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[roomID]
	if !ok {
		users = make(map[string]int)
		r.rooms[roomID] = users
	}
	users[userID]++
	return users[userID] == 1
}

// Leave counts one connection of userID out of roomID.
// It returns true if that was the user's last connection there.
func (r *Registry) Leave(roomID, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	n, ok := users[userID]
	if !ok {
		return false
	}
	if n > 1 {
		users[userID] = n - 1
		return false
	}
	r.evict(roomID, userID)
	return true
}

// AddUser makes userID visible in roomID. Adding a user that is already present is a no-op.
func (r *Registry) AddUser(roomID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[roomID]
	if !ok {
		users = make(map[string]int)
		r.rooms[roomID] = users
	}
	if users[userID] == 0 {
		users[userID] = 1
	}
}

// RemoveUser evicts userID from roomID whatever its connection count.
// It returns true if the user was present.
func (r *Registry) RemoveUser(roomID, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID][userID]; !ok {
		return false
	}
	r.evict(roomID, userID)
	return true
}

// RemoveUserFromAllRooms evicts userID everywhere and returns the rooms it was present in,
// so the caller can announce the new presence of each of them.
func (r *Registry) RemoveUserFromAllRooms(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected []string
	for roomID, users := range r.rooms {
		if _, ok := users[userID]; ok {
			affected = append(affected, roomID)
		}
	}
	for _, roomID := range affected {
		r.evict(roomID, userID)
	}
	return affected
}

// DropRoom forgets a room entirely and returns the users that were online in it.
func (r *Registry) DropRoom(roomID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := lo.Keys(r.rooms[roomID])
	delete(r.rooms, roomID)
	return users
}

// Snapshot lists the users online in roomID. Order is not meaningful.
func (r *Registry) Snapshot(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := lo.Keys(r.rooms[roomID])
	if users == nil {
		return []string{}
	}
	return users
}

// caller holds r.mu
func (r *Registry) evict(roomID, userID string) {
	delete(r.rooms[roomID], userID)
	if len(r.rooms[roomID]) == 0 {
		delete(r.rooms, roomID)
	}
}
