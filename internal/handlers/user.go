package handlers

import (
	"net/http"

	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/middleware"
	"lockerroom-talk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	users *repository.UserRepository
	cfg   *config.Config
	log   *logrus.Logger
}

func NewUserHandler(users *repository.UserRepository, cfg *config.Config, log *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, cfg: cfg, log: log}
}

func (h *UserHandler) CreateProfile(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	var req repository.CreateUserParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.CreateUserProfile(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *UserHandler) GetMyProfile(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	user, err := h.users.GetProfile(c.Request.Context(), uid, uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.users.TouchLastActive(c.Request.Context(), uid)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	targetID := c.Param("user_id")

	user, err := h.users.GetProfile(c.Request.Context(), targetID, uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if targetID == uid {
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.PublicView()})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	var req repository.UpdateProfileParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), uid, uid, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type PresenceRequest struct {
	Online bool `json:"online"`
}

func (h *UserHandler) SetPresence(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	var req PresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.SetPresence(c.Request.Context(), uid, req.Online); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": req.Online})
}
