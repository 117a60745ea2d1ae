package chathub

import (
	"chatroom/backend/internal/config"
	"chatroom/backend/internal/models"
	"context"
	"log"
)

// Store is the slice of the persisted store the hub reads while enriching events.
type Store interface {
	GetRoomMembership(ctx context.Context, roomID string) ([]models.RoomUser, error)
	GetUsername(ctx context.Context, userID string) (string, error)
	GetMessageRoomID(ctx context.Context, messageID string) (string, error)
}

// Inbound is a decoded event together with the connection that sent it.
type Inbound struct {
	Client Client
	Event  models.ClientEvent
}

// session is the hub's view of one connection. It is owned by the Run loop.
type session struct {
	client Client
	userID string
	rooms  map[string]struct{}
	lane   *lane
}

// ManagerService is the real-time hub. A single Run loop applies every state transition:
// connection lifecycle, inbound socket events and commands coming from the REST handlers.
type ManagerService struct {
	Registry    *Registry
	Broadcaster *Broadcaster
	Storage     Store

	// Channels
	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan Inbound
	CommandCh    chan func()

	sessions map[Client]*session
	system   *lane
	ctx      context.Context
	done     chan struct{}
}

func NewManagerService(s Store) *ManagerService {
	return &ManagerService{
		Registry:     NewRegistry(),
		Broadcaster:  NewBroadcaster(),
		Storage:      s,
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan Inbound),
		CommandCh:    make(chan func()),
		sessions:     make(map[Client]*session),
		done:         make(chan struct{}),
	}
}

// Run processes hub traffic until ctx is cancelled. On shutdown every connection is closed.
func (m *ManagerService) Run(ctx context.Context) {
	m.ctx = ctx
	m.system = newLane(ctx, "system", config.LaneBuffer)
	log.Println("INFO: Chat hub started")

	for {
		select {
		case client := <-m.RegisterCh:
			m.handleRegister(client)

		case client := <-m.UnregisterCh:
			m.handleUnregister(client)

		case in := <-m.IncomingCh:
			m.handleInbound(in)

		case cmd := <-m.CommandCh:
			cmd()

		case <-ctx.Done():
			m.shutdown()
			return
		}
	}
}

func (m *ManagerService) shutdown() {
	for client, s := range m.sessions {
		s.lane.close()
		client.Close()
	}
	m.sessions = make(map[Client]*session)
	m.system.close()
	close(m.done)
	log.Println("INFO: Chat hub stopped")
}

// Register hands a new connection to the hub. It returns false once the hub has stopped.
func (m *ManagerService) Register(c Client) bool {
	select {
	case m.RegisterCh <- c:
		return true
	case <-m.done:
		return false
	}
}

// Unregister reports a closed connection so the hub can clean up its presence.
func (m *ManagerService) Unregister(c Client) {
	select {
	case m.UnregisterCh <- c:
	case <-m.done:
	}
}

// Dispatch forwards an event read from c. It returns false once the hub has stopped.
func (m *ManagerService) Dispatch(c Client, evt models.ClientEvent) bool {
	select {
	case m.IncomingCh <- Inbound{Client: c, Event: evt}:
		return true
	case <-m.done:
		return false
	}
}

// Submit runs cmd on the hub loop and waits until it has been handed over.
// Every event dispatched before Submit has been fully applied by the time cmd runs.
func (m *ManagerService) Submit(cmd func()) bool {
	select {
	case m.CommandCh <- cmd:
		return true
	case <-m.done:
		return false
	}
}

// Online returns the users currently online in roomID.
func (m *ManagerService) Online(roomID string) []string {
	return m.Registry.Snapshot(roomID)
}

// BroadcastToRoom delivers evt to every connection in roomID. The REST handlers call it
// after persisting a message or a reaction.
func (m *ManagerService) BroadcastToRoom(roomID string, evt models.ServerEvent) {
	m.Submit(func() {
		m.system.enqueue(func(context.Context) {
			m.Broadcaster.ToRoomAll(roomID, evt)
		})
	})
}

// BroadcastToRoomExceptUser delivers evt to every connection in roomID except those of userID.
// The REST message path uses it because the sender already shows its own message.
func (m *ManagerService) BroadcastToRoomExceptUser(roomID, userID string, evt models.ServerEvent) {
	m.Submit(func() {
		m.system.enqueue(func(context.Context) {
			m.Broadcaster.ToRoomExceptUser(roomID, userID, evt)
		})
	})
}

// EvictFromRoom removes userID from roomID's presence and unbinds its connections.
// The room and the user are not notified; the removeUser socket event that follows
// the REST call carries userList and the userRemoved notices.
func (m *ManagerService) EvictFromRoom(roomID, userID string) {
	m.Submit(func() {
		m.evictFromRoom(roomID, userID)
	})
}

// CloseRoom forgets a deleted room and tells the connections that were in it.
func (m *ManagerService) CloseRoom(roomID string) {
	m.Submit(func() {
		users := m.Registry.DropRoom(roomID)
		clients := m.Broadcaster.DropRoom(roomID)
		for _, c := range clients {
			if s, ok := m.sessions[c]; ok {
				delete(s.rooms, roomID)
			}
		}
		log.Printf("INFO: Room %s closed, %d users were online", roomID, len(users))

		m.system.enqueue(func(context.Context) {
			m.Broadcaster.ToClients(clients, models.RoomDeletedEvent(roomID))
		})
	})
}

// EvictUser disconnects every connection of a deleted account and removes it from all rooms.
func (m *ManagerService) EvictUser(userID string) {
	m.Submit(func() {
		for _, s := range m.sessions {
			if s.userID == userID {
				m.disconnect(s)
			}
		}
		for _, roomID := range m.Registry.RemoveUserFromAllRooms(userID) {
			m.announcePresence(m.system, roomID)
		}
	})
}
