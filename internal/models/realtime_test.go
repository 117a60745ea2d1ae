package models_test

import (
	"chatroom/backend/internal/models"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClientEvent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.ClientEvent
	}{
		{
			name: "joinRoom",
			raw:  `{"event":"joinRoom","data":{"roomId":"R1","userId":"A"}}`,
			want: models.JoinRoom{RoomID: "R1", UserID: "A"},
		},
		{
			name: "leaveRoom",
			raw:  `{"event":"leaveRoom","data":{"roomId":"R1","userId":"A"}}`,
			want: models.LeaveRoom{RoomID: "R1", UserID: "A"},
		},
		{
			name: "storeUserId",
			raw:  `{"event":"storeUserId","data":{"userId":"A"}}`,
			want: models.StoreUserID{UserID: "A"},
		},
		{
			name: "reaction with empty kind clears",
			raw:  `{"event":"reaction","data":{"messageId":"M1","userId":"A","reaction":""}}`,
			want: models.Reaction{MessageID: "M1", UserID: "A"},
		},
		{
			name: "typing",
			raw:  `{"event":"typing","data":{"roomId":"R1","userId":"A"}}`,
			want: models.Typing{RoomID: "R1", UserID: "A"},
		},
		{
			name: "stopTyping",
			raw:  `{"event":"stopTyping","data":{"roomId":"R1","userId":"A"}}`,
			want: models.StopTyping{RoomID: "R1", UserID: "A"},
		},
		{
			name: "removeUser",
			raw:  `{"event":"removeUser","data":{"roomId":"R1","userId":"B"}}`,
			want: models.RemoveUser{RoomID: "R1", UserID: "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.DecodeClientEvent([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.EventName(), got.EventName())
		})
	}
}

func TestDecodeClientEvent_BroadcastMessage(t *testing.T) {
	raw := `{"event":"broadcastMessage","data":{"roomId":"R1","message":{"_id":"M1","content":"hi"}}}`

	got, err := models.DecodeClientEvent([]byte(raw))
	require.NoError(t, err)

	bm, ok := got.(models.BroadcastMessage)
	require.True(t, ok)
	assert.Equal(t, "R1", bm.RoomID)
	assert.JSONEq(t, `{"_id":"M1","content":"hi"}`, string(bm.Message))
}

func TestDecodeClientEvent_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"not json", `joinRoom R1`, models.ErrInvalidPayload},
		{"unknown event", `{"event":"selfDestruct","data":{}}`, models.ErrUnknownEvent},
		{"missing data", `{"event":"joinRoom"}`, models.ErrInvalidPayload},
		{"missing roomId", `{"event":"joinRoom","data":{"userId":"A"}}`, models.ErrInvalidPayload},
		{"wrong field type", `{"event":"typing","data":{"roomId":7,"userId":"A"}}`, models.ErrInvalidPayload},
		{"message not an object", `{"event":"broadcastMessage","data":{"roomId":"R1","message":"hi"}}`, models.ErrInvalidPayload},
		{"null message", `{"event":"broadcastMessage","data":{"roomId":"R1","message":null}}`, models.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := models.DecodeClientEvent([]byte(tt.raw))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestServerEvent_WireShape pins the field names clients depend on.
func TestServerEvent_WireShape(t *testing.T) {
	tests := []struct {
		name string
		evt  models.ServerEvent
		want string
	}{
		{"typing", models.TypingEvent("A", "alice"), `{"event":"typing","data":{"userId":"A","username":"alice"}}`},
		{"stopTyping", models.StopTypingEvent("A"), `{"event":"stopTyping","data":{"userId":"A"}}`},
		{"userJoined", models.UserJoinedEvent("A", "alice"), `{"event":"userJoined","data":{"userId":"A","username":"alice"}}`},
		{"userLeft", models.UserLeftEvent("A", "alice"), `{"event":"userLeft","data":{"userId":"A","username":"alice"}}`},
		{"userList empty", models.UserListEvent(nil), `{"event":"userList","data":[]}`},
		{"roomUsers", models.RoomUsersEvent([]models.RoomUser{{ID: "A", Username: "alice"}}), `{"event":"roomUsers","data":[{"_id":"A","username":"alice"}]}`},
		{"userRemoved room-wide", models.UserRemovedEvent("B"), `{"event":"userRemoved","data":{"userId":"B"}}`},
		{"userRemoved targeted", models.UserRemovedTargetedEvent("B", "R1"), `{"event":"userRemoved","data":{"userId":"B","roomId":"R1"}}`},
		{"reaction", models.ReactionEvent("M1", "A", "like"), `{"event":"reaction","data":{"messageId":"M1","userId":"A","reaction":"like"}}`},
		{"newMessage", models.NewMessageEvent(json.RawMessage(`{"_id":"M1"}`)), `{"event":"newMessage","data":{"_id":"M1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.evt)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}
