package handlers

import (
	"net/http"
	"strconv"

	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/middleware"
	"lockerroom-talk/internal/models"
	"lockerroom-talk/internal/repository"
	"lockerroom-talk/internal/timeutil"
	"lockerroom-talk/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	chats         *repository.ChatRepository
	notifications *repository.NotificationRepository
	hub           *websocket.Hub
	cfg           *config.Config
	log           *logrus.Logger
}

func NewChatHandler(chats *repository.ChatRepository, notifications *repository.NotificationRepository, hub *websocket.Hub, cfg *config.Config, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, notifications: notifications, hub: hub, cfg: cfg, log: log}
}

type CreateRoomRequest struct {
	Participants []string `json:"participants"`
	Type         string   `json:"type" binding:"required,oneof=direct public"`
	Name         string   `json:"name" binding:"max=100"`
}

func (h *ChatHandler) CreateRoom(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.chats.CreateRoom(c.Request.Context(), uid, req.Participants, req.Type, req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

func (h *ChatHandler) ListRooms(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	rooms, err := h.chats.ListRoomsForUser(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *ChatHandler) GetRoom(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	roomID := c.Param("room_id")

	room, err := h.chats.GetRoom(c.Request.Context(), roomID, uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "member_count": len(room.Participants)})
}

func (h *ChatHandler) JoinRoom(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	roomID := c.Param("room_id")

	// The returned room is a post-write read; its participant list is what
	// the UI may display as the member count.
	room, err := h.chats.JoinRoom(c.Request.Context(), roomID, uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "member_count": len(room.Participants)})
}

func (h *ChatHandler) LeaveRoom(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	roomID := c.Param("room_id")

	room, err := h.chats.LeaveRoom(c.Request.Context(), roomID, uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "member_count": len(room.Participants)})
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	roomID := c.Param("room_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	messages, err := h.chats.GetMessages(c.Request.Context(), roomID, uid, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	roomID := c.Param("room_id")

	var req repository.SendMessageParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chats.SendMessage(c.Request.Context(), roomID, uid, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.hub.BroadcastToRoom(roomID, websocket.Event{
		Type:        "message",
		RoomID:      roomID,
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		Content:     msg.Content,
		MessageType: msg.MessageType,
		Timestamp:   timeutil.FormatRelative(msg.CreatedAt),
	})

	// Best-effort notifications for the other members.
	room, rerr := h.chats.GetRoom(c.Request.Context(), roomID, uid)
	if rerr == nil {
		for _, participant := range room.Participants {
			if participant == uid {
				continue
			}
			_, nerr := h.notifications.Create(c.Request.Context(), repository.CreateNotificationParams{
				UserID:       participant,
				Type:         models.NotificationMessage,
				Title:        "New message",
				Message:      "You have a new message",
				ActionUserID: uid,
				RelatedID:    roomID,
			})
			if nerr != nil {
				h.log.WithError(nerr).Debug("message notification failed")
			}
		}
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

type MarkReadRequest struct {
	MessageID string `json:"message_id" binding:"required"`
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	roomID := c.Param("room_id")

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.chats.MarkRead(c.Request.Context(), roomID, uid, req.MessageID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}
