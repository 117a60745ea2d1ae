package chathub

import (
	"chatroom/backend/internal/models"
	"log"
	"sync"

	"github.com/samber/lo"
)

// Broadcaster delivers events to the connections bound to a room or to a user.
//
// Delivery is best effort: every recipient gets a non-blocking Deliver, and a closed or
// saturated connection is skipped. Events sent to one recipient from the same goroutine
// arrive in the order they were sent.
type Broadcaster struct {
	mu    sync.RWMutex
	rooms map[string]map[Client]struct{}
	users map[string]map[Client]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		rooms: make(map[string]map[Client]struct{}),
		users: make(map[string]map[Client]struct{}),
	}
}

func bind(index map[string]map[Client]struct{}, key string, c Client) {
	set, ok := index[key]
	if !ok {
		set = make(map[Client]struct{})
		index[key] = set
	}
	set[c] = struct{}{}
}

func unbind(index map[string]map[Client]struct{}, key string, c Client) {
	delete(index[key], c)
	if len(index[key]) == 0 {
		delete(index, key)
	}
}

// Bind associates a connection with a room.
func (b *Broadcaster) Bind(roomID string, c Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bind(b.rooms, roomID, c)
}

func (b *Broadcaster) Unbind(roomID string, c Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	unbind(b.rooms, roomID, c)
}

// BindUser associates a connection with the user it belongs to.
func (b *Broadcaster) BindUser(userID string, c Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bind(b.users, userID, c)
}

func (b *Broadcaster) UnbindUser(userID string, c Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	unbind(b.users, userID, c)
}

// DropRoom unbinds every connection of a room and returns them.
func (b *Broadcaster) DropRoom(roomID string) []Client {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients := lo.Keys(b.rooms[roomID])
	delete(b.rooms, roomID)
	return clients
}

func (b *Broadcaster) RoomClients(roomID string) []Client {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lo.Keys(b.rooms[roomID])
}

func (b *Broadcaster) UserClients(userID string) []Client {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lo.Keys(b.users[userID])
}

// ToRoomExcept delivers to every connection of the room except origin.
// It returns the number of connections that accepted the event.
func (b *Broadcaster) ToRoomExcept(roomID string, origin Client, evt models.ServerEvent) int {
	recipients := lo.Reject(b.RoomClients(roomID), func(c Client, _ int) bool { return c == origin })
	return b.ToClients(recipients, evt)
}

// ToRoomExceptUser delivers to every connection of the room not bound to userID.
func (b *Broadcaster) ToRoomExceptUser(roomID, userID string, evt models.ServerEvent) int {
	own := b.UserClients(userID)
	return b.ToClients(lo.Without(b.RoomClients(roomID), own...), evt)
}

// ToRoomAll delivers to every connection of the room, the originator included.
func (b *Broadcaster) ToRoomAll(roomID string, evt models.ServerEvent) int {
	return b.ToClients(b.RoomClients(roomID), evt)
}

// ToUser delivers to every connection bound to the user, whatever room they are in.
func (b *Broadcaster) ToUser(userID string, evt models.ServerEvent) int {
	return b.ToClients(b.UserClients(userID), evt)
}

// ToClient delivers to a single connection.
func (b *Broadcaster) ToClient(c Client, evt models.ServerEvent) bool {
	return b.ToClients([]Client{c}, evt) == 1
}

// ToClients delivers to an explicit set of connections.
func (b *Broadcaster) ToClients(clients []Client, evt models.ServerEvent) int {
	delivered := 0
	for _, c := range clients {
		if c.Deliver(evt) {
			delivered++
			continue
		}
		log.Printf("WARNING: dropped %s for connection %s", evt.Event, c.GetConnID())
	}
	return delivered
}
