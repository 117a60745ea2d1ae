package handler

import (
	"chatroom/backend/internal/models"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type createRoomRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	IsPrivate bool   `json:"isPrivate"`
}

type updateRoomRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	IsPrivate *bool   `json:"isPrivate"`
}

type joinByCodeRequest struct {
	RoomCode string `json:"roomCode" binding:"required,roomcode"`
}

// roomDetail is a room with its roster resolved and its live presence attached.
type roomDetail struct {
	*models.Room
	Members []models.RoomUser `json:"members"`
	Online  []string          `json:"online"`
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.Store.ListRooms(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	room := &models.Room{
		Name:      strings.TrimSpace(req.Name),
		CreatedBy: c.GetString(ctxUserID),
		IsPrivate: req.IsPrivate,
	}
	if err := h.Store.CreateRoom(c.Request.Context(), room); err != nil {
		respondStoreError(c, err, "")
		return
	}

	log.Printf("INFO: Room %s (%s) created by %s", room.Name, room.ID, room.CreatedBy)
	c.JSON(http.StatusCreated, room)
}

func (h *Handler) JoinRoomByCode(c *gin.Context) {
	var req joinByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid room code")
		return
	}

	room, err := h.Store.GetRoomByCode(c.Request.Context(), req.RoomCode)
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}
	h.addMember(c, room)
}

func (h *Handler) JoinRoom(c *gin.Context) {
	room, err := h.Store.GetRoomByID(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}
	h.addMember(c, room)
}

func (h *Handler) addMember(c *gin.Context, room *models.Room) {
	if room.AddMember(c.GetString(ctxUserID)) {
		if err := h.Store.SaveRoom(c.Request.Context(), room); err != nil {
			respondStoreError(c, err, "Room not found")
			return
		}
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handler) GetRoom(c *gin.Context) {
	ctx := c.Request.Context()
	room, err := h.Store.GetRoomByID(ctx, c.Param("roomId"))
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}
	members, err := h.Store.GetRoomMembership(ctx, room.ID)
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}

	c.JSON(http.StatusOK, roomDetail{Room: room, Members: members, Online: h.Hub.Online(room.ID)})
}

// moderatedRoom loads the room named by the path and checks the caller owns it or is an admin.
func (h *Handler) moderatedRoom(c *gin.Context, action string) (*models.Room, bool) {
	room, err := h.Store.GetRoomByID(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return nil, false
	}
	if !room.CanModerate(currentUser(c)) {
		respondError(c, http.StatusForbidden, "Not authorized to "+action)
		return nil, false
	}
	return room, true
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	room, ok := h.moderatedRoom(c, "edit this room")
	if !ok {
		return
	}

	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name != nil {
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.IsPrivate != nil {
		room.IsPrivate = *req.IsPrivate
	}

	if err := h.Store.SaveRoom(c.Request.Context(), room); err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom removes the room with its messages and closes it on the hub.
func (h *Handler) DeleteRoom(c *gin.Context) {
	room, ok := h.moderatedRoom(c, "delete this room")
	if !ok {
		return
	}

	if err := h.Store.DeleteRoom(c.Request.Context(), room.ID); err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}
	h.Hub.CloseRoom(room.ID)

	log.Printf("INFO: Room %s deleted by %s", room.ID, c.GetString(ctxUserID))
	c.JSON(http.StatusOK, gin.H{"msg": "Room deleted successfully"})
}

// RemoveRoomUser drops a member from the room and evicts their live presence.
func (h *Handler) RemoveRoomUser(c *gin.Context) {
	room, ok := h.moderatedRoom(c, "remove users from this room")
	if !ok {
		return
	}

	userID := c.Param("userId")
	if room.RemoveMember(userID) {
		if err := h.Store.SaveRoom(c.Request.Context(), room); err != nil {
			respondStoreError(c, err, "Room not found")
			return
		}
	}
	h.Hub.EvictFromRoom(room.ID, userID)

	c.JSON(http.StatusOK, gin.H{"msg": "User removed from room successfully"})
}
