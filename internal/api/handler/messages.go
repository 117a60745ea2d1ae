package handler

import (
	"chatroom/backend/internal/models"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

type reactionRequest struct {
	Reaction string `json:"reaction" binding:"max=32"`
}

func (h *Handler) ListMessages(c *gin.Context) {
	messages, err := h.Store.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// CreateMessage persists a message and then fans it out to the room. The sender's own
// connections are skipped since the client renders the response body itself.
func (h *Handler) CreateMessage(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	room, err := h.Store.GetRoomByID(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}

	msg := &models.Message{SenderID: c.GetString(ctxUserID), RoomID: room.ID, Content: req.Content}
	if err := h.Store.CreateMessage(ctx, msg); err != nil {
		respondStoreError(c, err, "")
		return
	}

	view := models.MessageView{
		Message: *msg,
		Sender:  models.RoomUser{ID: msg.SenderID, Username: c.GetString(ctxUsername)},
	}
	if payload, err := json.Marshal(view); err != nil {
		log.Printf("ERROR: encoding message %s for broadcast: %v", msg.ID, err)
	} else {
		h.Hub.BroadcastToRoomExceptUser(room.ID, msg.SenderID, models.NewMessageEvent(payload))
	}

	c.JSON(http.StatusCreated, view)
}

// ReactToMessage records the caller's reaction and tells the room.
func (h *Handler) ReactToMessage(c *gin.Context) {
	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := c.GetString(ctxUserID)
	msg, err := h.Store.SetReaction(c.Request.Context(), c.Param("id"), userID, req.Reaction)
	if err != nil {
		respondStoreError(c, err, "Message not found")
		return
	}
	h.Hub.BroadcastToRoom(msg.RoomID, models.ReactionEvent(msg.ID, userID, req.Reaction))

	c.JSON(http.StatusOK, msg)
}

// DeleteMessage soft-deletes a message. Its sender, the room owner and admins may do so.
func (h *Handler) DeleteMessage(c *gin.Context) {
	ctx := c.Request.Context()
	msg, err := h.Store.GetMessageByID(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Message not found")
		return
	}

	userID := c.GetString(ctxUserID)
	if msg.SenderID != userID {
		room, err := h.Store.GetRoomByID(ctx, msg.RoomID)
		if err != nil {
			respondStoreError(c, err, "Room not found")
			return
		}
		if !room.CanModerate(currentUser(c)) {
			respondError(c, http.StatusForbidden, "Not authorized to delete this message")
			return
		}
	}

	if err := h.Store.SoftDeleteMessage(ctx, msg.ID); err != nil {
		respondStoreError(c, err, "Message not found")
		return
	}
	h.Hub.BroadcastToRoom(msg.RoomID, models.MessageDeletedEvent(msg.ID, msg.RoomID))

	c.JSON(http.StatusOK, gin.H{"msg": "Message deleted successfully"})
}
