package handlers

import (
	"net/http"
	"strconv"

	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/middleware"
	"lockerroom-talk/internal/models"
	"lockerroom-talk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReviewHandler struct {
	reviews       *repository.ReviewRepository
	notifications *repository.NotificationRepository
	cfg           *config.Config
	log           *logrus.Logger
}

func NewReviewHandler(reviews *repository.ReviewRepository, notifications *repository.NotificationRepository, cfg *config.Config, log *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, notifications: notifications, cfg: cfg, log: log}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	var req repository.CreateReviewParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// Best-effort: tell the reviewed user, if they have a profile.
	if req.ReviewedUserID != "" && req.ReviewedUserID != uid {
		_, nerr := h.notifications.Create(c.Request.Context(), repository.CreateNotificationParams{
			UserID:       req.ReviewedUserID,
			Type:         models.NotificationReview,
			Title:        "New review",
			Message:      "Someone posted a review about you",
			ActionUserID: uid,
			RelatedID:    review.ID,
		})
		if nerr != nil {
			h.log.WithError(nerr).Debug("review notification failed")
		}
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	category := c.Query("category")
	cursor := c.Query("cursor")
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	page, err := h.reviews.GetReviewsByCategory(c.Request.Context(), category, cursor, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) MyReviews(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	cursor := c.Query("cursor")
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	page, err := h.reviews.GetReviewsByAuthor(c.Request.Context(), uid, cursor, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	id := c.Param("id")

	review, err := h.reviews.GetReview(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.reviews.RecordView(c.Request.Context(), id); err != nil {
		h.log.WithError(err).Debug("view count bump failed")
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	id := c.Param("id")

	var req repository.UpdateReviewParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviews.UpdateReview(c.Request.Context(), id, uid, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	id := c.Param("id")

	if err := h.reviews.DeleteReview(c.Request.Context(), id, uid); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

func (h *ReviewHandler) LikeReview(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	id := c.Param("id")

	if err := h.reviews.LikeReview(c.Request.Context(), id, uid); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Liked"})
}

func (h *ReviewHandler) UnlikeReview(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)
	id := c.Param("id")

	if err := h.reviews.UnlikeReview(c.Request.Context(), id, uid); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unliked"})
}
