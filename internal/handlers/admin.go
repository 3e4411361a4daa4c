package handlers

import (
	"net/http"

	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/repository"
	"lockerroom-talk/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler is the privileged moderation path. Admins are separate
// principals from app users and authenticate with their own credentials.
type AdminHandler struct {
	admins  *repository.AdminRepository
	users   *repository.UserRepository
	reviews *repository.ReviewRepository
	cfg     *config.Config
	log     *logrus.Logger
}

func NewAdminHandler(admins *repository.AdminRepository, users *repository.UserRepository, reviews *repository.ReviewRepository, cfg *config.Config, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{admins: admins, users: users, reviews: reviews, cfg: cfg, log: log}
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := h.admins.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !admin.IsActive || !utils.VerifyPassword(req.Password, admin.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateAdminToken(admin.ID, admin.Email, admin.Role, h.cfg.AdminJWTSecret, h.cfg.AdminJWTExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.log.WithField("admin_id", admin.ID).Info("admin logged in")
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (h *AdminHandler) TakedownReview(c *gin.Context) {
	id := c.Param("id")

	if err := h.reviews.TakedownReview(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review taken down"})
}

func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	uid := c.Param("user_id")

	if err := h.users.Deactivate(c.Request.Context(), uid); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}
