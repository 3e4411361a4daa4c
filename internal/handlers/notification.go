package handlers

import (
	"net/http"
	"strconv"

	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/middleware"
	"lockerroom-talk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	notifications *repository.NotificationRepository
	cfg           *config.Config
	log           *logrus.Logger
}

func NewNotificationHandler(notifications *repository.NotificationRepository, cfg *config.Config, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, cfg: cfg, log: log}
}

func (h *NotificationHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	onlyUnread := c.Query("unread") == "true"

	items, err := h.notifications.ListForUser(c.Request.Context(), uid, limit, onlyUnread)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	id := c.Param("id")

	if err := h.notifications.MarkRead(c.Request.Context(), id, uid); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	if err := h.notifications.MarkAllRead(c.Request.Context(), uid); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All marked as read"})
}
