package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownEvent   = errors.New("unknown event")
	ErrInvalidPayload = errors.New("invalid event payload")
)

var validate = validator.New()

// Inbound event names.
const (
	EventJoinRoom         = "joinRoom"
	EventLeaveRoom        = "leaveRoom"
	EventStoreUserID      = "storeUserId"
	EventBroadcastMessage = "broadcastMessage"
	EventReaction         = "reaction"
	EventTyping           = "typing"
	EventStopTyping       = "stopTyping"
	EventRemoveUser       = "removeUser"
)

// Outbound event names.
const (
	EventNewMessage     = "newMessage"
	EventUserRemoved    = "userRemoved"
	EventUserList       = "userList"
	EventRoomUsers      = "roomUsers"
	EventUserJoined     = "userJoined"
	EventUserLeft       = "userLeft"
	EventRoomDeleted    = "roomDeleted"
	EventMessageDeleted = "messageDeleted"
	EventError          = "error"
)

// Frame is the JSON envelope exchanged over the socket in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ClientEvent is one of the closed set of events a client may send.
type ClientEvent interface {
	EventName() string
}

type JoinRoom struct {
	RoomID string `json:"roomId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

type LeaveRoom struct {
	RoomID string `json:"roomId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

type StoreUserID struct {
	UserID string `json:"userId" validate:"required"`
}

// BroadcastMessage relays an already persisted message; Message must be a JSON object.
type BroadcastMessage struct {
	RoomID  string          `json:"roomId" validate:"required"`
	Message json.RawMessage `json:"message" validate:"required"`
}

type Reaction struct {
	MessageID string `json:"messageId" validate:"required"`
	UserID    string `json:"userId" validate:"required"`
	Reaction  string `json:"reaction"`
}

type Typing struct {
	RoomID string `json:"roomId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

type StopTyping struct {
	RoomID string `json:"roomId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

type RemoveUser struct {
	RoomID string `json:"roomId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

func (JoinRoom) EventName() string         { return EventJoinRoom }
func (LeaveRoom) EventName() string        { return EventLeaveRoom }
func (StoreUserID) EventName() string      { return EventStoreUserID }
func (BroadcastMessage) EventName() string { return EventBroadcastMessage }
func (Reaction) EventName() string         { return EventReaction }
func (Typing) EventName() string           { return EventTyping }
func (StopTyping) EventName() string       { return EventStopTyping }
func (RemoveUser) EventName() string       { return EventRemoveUser }

// DecodeClientEvent parses a raw socket frame into its typed event.
// Unknown event names yield ErrUnknownEvent, missing or malformed fields ErrInvalidPayload.
func DecodeClientEvent(raw []byte) (ClientEvent, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var evt ClientEvent
	switch frame.Event {
	case EventJoinRoom:
		evt = &JoinRoom{}
	case EventLeaveRoom:
		evt = &LeaveRoom{}
	case EventStoreUserID:
		evt = &StoreUserID{}
	case EventBroadcastMessage:
		evt = &BroadcastMessage{}
	case EventReaction:
		evt = &Reaction{}
	case EventTyping:
		evt = &Typing{}
	case EventStopTyping:
		evt = &StopTyping{}
	case EventRemoveUser:
		evt = &RemoveUser{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, frame.Event)
	}

	if len(frame.Data) == 0 {
		return nil, fmt.Errorf("%w: %s has no data", ErrInvalidPayload, frame.Event)
	}
	if err := json.Unmarshal(frame.Data, evt); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, frame.Event, err)
	}
	if err := validate.Struct(evt); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, frame.Event, err)
	}
	if bm, ok := evt.(*BroadcastMessage); ok && !isJSONObject(bm.Message) {
		return nil, fmt.Errorf("%w: %s: message must be an object", ErrInvalidPayload, frame.Event)
	}

	return derefEvent(evt), nil
}

// derefEvent hands out value types so callers can switch on them directly.
func derefEvent(evt ClientEvent) ClientEvent {
	switch e := evt.(type) {
	case *JoinRoom:
		return *e
	case *LeaveRoom:
		return *e
	case *StoreUserID:
		return *e
	case *BroadcastMessage:
		return *e
	case *Reaction:
		return *e
	case *Typing:
		return *e
	case *StopTyping:
		return *e
	case *RemoveUser:
		return *e
	}
	return evt
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// ServerEvent is a frame the server emits to one or more connections.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// UserPresence identifies a user in join/leave/typing notices.
type UserPresence struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type UserRef struct {
	UserID string `json:"userId"`
}

// UserRemovedNotice carries RoomID only in the copy targeted at the removed user.
type UserRemovedNotice struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId,omitempty"`
}

type RoomRef struct {
	RoomID string `json:"roomId"`
}

type MessageRef struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
}

type ErrorNotice struct {
	Message string `json:"message"`
}

func NewMessageEvent(message json.RawMessage) ServerEvent {
	return ServerEvent{Event: EventNewMessage, Data: message}
}

func ReactionEvent(messageID, userID, reaction string) ServerEvent {
	return ServerEvent{Event: EventReaction, Data: Reaction{MessageID: messageID, UserID: userID, Reaction: reaction}}
}

func TypingEvent(userID, username string) ServerEvent {
	return ServerEvent{Event: EventTyping, Data: UserPresence{UserID: userID, Username: username}}
}

func StopTypingEvent(userID string) ServerEvent {
	return ServerEvent{Event: EventStopTyping, Data: UserRef{UserID: userID}}
}

func UserJoinedEvent(userID, username string) ServerEvent {
	return ServerEvent{Event: EventUserJoined, Data: UserPresence{UserID: userID, Username: username}}
}

func UserLeftEvent(userID, username string) ServerEvent {
	return ServerEvent{Event: EventUserLeft, Data: UserPresence{UserID: userID, Username: username}}
}

// UserListEvent carries the full recomputed set of online user IDs of a room.
func UserListEvent(userIDs []string) ServerEvent {
	if userIDs == nil {
		userIDs = []string{}
	}
	return ServerEvent{Event: EventUserList, Data: userIDs}
}

func RoomUsersEvent(users []RoomUser) ServerEvent {
	if users == nil {
		users = []RoomUser{}
	}
	return ServerEvent{Event: EventRoomUsers, Data: users}
}

// UserRemovedEvent is the room-wide notice.
func UserRemovedEvent(userID string) ServerEvent {
	return ServerEvent{Event: EventUserRemoved, Data: UserRemovedNotice{UserID: userID}}
}

// UserRemovedTargetedEvent is sent to the removed user's own connections.
func UserRemovedTargetedEvent(userID, roomID string) ServerEvent {
	return ServerEvent{Event: EventUserRemoved, Data: UserRemovedNotice{UserID: userID, RoomID: roomID}}
}

func RoomDeletedEvent(roomID string) ServerEvent {
	return ServerEvent{Event: EventRoomDeleted, Data: RoomRef{RoomID: roomID}}
}

func MessageDeletedEvent(messageID, roomID string) ServerEvent {
	return ServerEvent{Event: EventMessageDeleted, Data: MessageRef{MessageID: messageID, RoomID: roomID}}
}

func ErrorEvent(message string) ServerEvent {
	return ServerEvent{Event: EventError, Data: ErrorNotice{Message: message}}
}
