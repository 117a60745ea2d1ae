package chathub

import (
	"chatroom/backend/internal/config"
	"chatroom/backend/internal/models"
	"context"
	"log"

	"github.com/samber/lo"
)

func (m *ManagerService) handleRegister(c Client) {
	if _, ok := m.sessions[c]; ok {
		return
	}

	s := &session{
		client: c,
		userID: c.GetUserID(),
		rooms:  make(map[string]struct{}),
		lane:   newLane(m.ctx, c.GetConnID(), config.LaneBuffer),
	}
	m.sessions[c] = s
	if s.userID != "" {
		m.Broadcaster.BindUser(s.userID, c)
	}
	log.Printf("INFO: Connection %s registered for user %q", c.GetConnID(), s.userID)
}

func (m *ManagerService) handleUnregister(c Client) {
	s, ok := m.sessions[c]
	if !ok {
		return
	}
	m.disconnect(s)
	log.Printf("INFO: Connection %s unregistered", c.GetConnID())
}

// disconnect leaves every joined room and tears the session down.
func (m *ManagerService) disconnect(s *session) {
	for roomID := range s.rooms {
		m.Broadcaster.Unbind(roomID, s.client)
		m.Registry.Leave(roomID, s.userID)
		m.announcePresence(m.system, roomID)
	}
	if s.userID != "" {
		m.Broadcaster.UnbindUser(s.userID, s.client)
	}
	delete(m.sessions, s.client)

	s.lane.close()
	s.client.Close()
}

func (m *ManagerService) handleInbound(in Inbound) {
	s, ok := m.sessions[in.Client]
	if !ok {
		log.Printf("WARNING: Event %s from unregistered connection %s dropped", in.Event.EventName(), in.Client.GetConnID())
		return
	}

	switch e := in.Event.(type) {
	case models.StoreUserID:
		m.storeUserID(s, e)
	case models.JoinRoom:
		m.joinRoom(s, e)
	case models.LeaveRoom:
		m.leaveRoom(s, e)
	case models.BroadcastMessage:
		m.broadcastMessage(s, e)
	case models.Reaction:
		m.reaction(s, e)
	case models.Typing:
		m.typing(s, e)
	case models.StopTyping:
		m.stopTyping(s, e)
	case models.RemoveUser:
		m.removeUser(s.lane, e.RoomID, e.UserID)
	default:
		log.Printf("WARNING: Unhandled event type %T", e)
	}
}

// claim binds userID to the session if it has no identity yet. It refuses a userID that
// differs from the one already bound.
func (m *ManagerService) claim(s *session, userID string) bool {
	if s.userID == userID {
		return true
	}
	if s.userID != "" {
		log.Printf("WARNING: Connection %s bound to %s sent an event as %s", s.client.GetConnID(), s.userID, userID)
		m.reject(s, "connection is bound to another user")
		return false
	}
	s.userID = userID
	m.Broadcaster.BindUser(userID, s.client)
	return true
}

func (m *ManagerService) reject(s *session, message string) {
	s.lane.enqueue(func(context.Context) {
		m.Broadcaster.ToClient(s.client, models.ErrorEvent(message))
	})
}

func (m *ManagerService) storeUserID(s *session, e models.StoreUserID) {
	m.claim(s, e.UserID)
}

func (m *ManagerService) joinRoom(s *session, e models.JoinRoom) {
	if !m.claim(s, e.UserID) {
		return
	}

	visible := false
	if _, joined := s.rooms[e.RoomID]; !joined {
		s.rooms[e.RoomID] = struct{}{}
		m.Broadcaster.Bind(e.RoomID, s.client)
		visible = m.Registry.Join(e.RoomID, s.userID)
	}

	roomID, userID, origin := e.RoomID, s.userID, s.client
	s.lane.enqueue(func(ctx context.Context) {
		m.Broadcaster.ToRoomAll(roomID, models.UserListEvent(m.Registry.Snapshot(roomID)))

		roster, err := m.Storage.GetRoomMembership(ctx, roomID)
		if err != nil {
			log.Printf("ERROR: Failed to load membership of room %s: %v", roomID, err)
		}

		if visible {
			var username string
			if member, ok := lo.Find(roster, func(u models.RoomUser) bool { return u.ID == userID }); ok {
				username = member.Username
			} else {
				username = m.username(ctx, userID)
			}
			m.Broadcaster.ToRoomExcept(roomID, origin, models.UserJoinedEvent(userID, username))
		}

		if err == nil {
			m.Broadcaster.ToClient(origin, models.RoomUsersEvent(roster))
		}
	})
}

func (m *ManagerService) leaveRoom(s *session, e models.LeaveRoom) {
	if !m.claim(s, e.UserID) {
		return
	}
	if _, joined := s.rooms[e.RoomID]; !joined {
		log.Printf("WARNING: Connection %s left room %s it never joined", s.client.GetConnID(), e.RoomID)
		return
	}

	delete(s.rooms, e.RoomID)
	m.Broadcaster.Unbind(e.RoomID, s.client)
	gone := m.Registry.Leave(e.RoomID, s.userID)

	roomID, userID, origin := e.RoomID, s.userID, s.client
	m.announcePresence(s.lane, roomID)
	if gone {
		s.lane.enqueue(func(ctx context.Context) {
			m.Broadcaster.ToRoomExcept(roomID, origin, models.UserLeftEvent(userID, m.username(ctx, userID)))
		})
	}
}

func (m *ManagerService) broadcastMessage(s *session, e models.BroadcastMessage) {
	origin := s.client
	s.lane.enqueue(func(context.Context) {
		m.Broadcaster.ToRoomExcept(e.RoomID, origin, models.NewMessageEvent(e.Message))
	})
}

func (m *ManagerService) reaction(s *session, e models.Reaction) {
	if !m.claim(s, e.UserID) {
		return
	}
	s.lane.enqueue(func(ctx context.Context) {
		roomID, err := m.Storage.GetMessageRoomID(ctx, e.MessageID)
		if err != nil {
			log.Printf("WARNING: Reaction to unknown message %s dropped: %v", e.MessageID, err)
			return
		}
		m.Broadcaster.ToRoomAll(roomID, models.ReactionEvent(e.MessageID, e.UserID, e.Reaction))
	})
}

func (m *ManagerService) typing(s *session, e models.Typing) {
	if !m.claim(s, e.UserID) {
		return
	}
	origin := s.client
	s.lane.enqueue(func(ctx context.Context) {
		m.Broadcaster.ToRoomExcept(e.RoomID, origin, models.TypingEvent(e.UserID, m.username(ctx, e.UserID)))
	})
}

func (m *ManagerService) stopTyping(s *session, e models.StopTyping) {
	if !m.claim(s, e.UserID) {
		return
	}
	origin := s.client
	s.lane.enqueue(func(context.Context) {
		m.Broadcaster.ToRoomExcept(e.RoomID, origin, models.StopTypingEvent(e.UserID))
	})
}

// removeUser evicts userID from roomID whatever the number of its connections, unbinds those
// connections from the room and emits the room-wide and the targeted notices on l.
func (m *ManagerService) removeUser(l *lane, roomID, userID string) {
	m.evictFromRoom(roomID, userID)

	l.enqueue(func(context.Context) {
		m.Broadcaster.ToRoomAll(roomID, models.UserListEvent(m.Registry.Snapshot(roomID)))
		m.Broadcaster.ToRoomAll(roomID, models.UserRemovedEvent(userID))
		m.Broadcaster.ToUser(userID, models.UserRemovedTargetedEvent(userID, roomID))
	})
}

// evictFromRoom drops userID from roomID's presence and unbinds its connections from the room.
// The user stays bound to its own connections so a later targeted notice still reaches it.
func (m *ManagerService) evictFromRoom(roomID, userID string) {
	m.Registry.RemoveUser(roomID, userID)
	for _, s := range m.sessions {
		if s.userID != userID {
			continue
		}
		if _, joined := s.rooms[roomID]; joined {
			delete(s.rooms, roomID)
			m.Broadcaster.Unbind(roomID, s.client)
		}
	}
}

// announcePresence sends the recomputed online list of roomID to everyone in it.
func (m *ManagerService) announcePresence(l *lane, roomID string) {
	l.enqueue(func(context.Context) {
		m.Broadcaster.ToRoomAll(roomID, models.UserListEvent(m.Registry.Snapshot(roomID)))
	})
}

// username resolves a display name, falling back to a placeholder on any lookup failure.
func (m *ManagerService) username(ctx context.Context, userID string) string {
	name, err := m.Storage.GetUsername(ctx, userID)
	if err != nil || name == "" {
		log.Printf("WARNING: Username lookup for %s failed: %v", userID, err)
		return config.UnknownUsername
	}
	return name
}
