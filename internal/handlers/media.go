package handlers

import (
	"net/http"

	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MediaHandler struct {
	storage *services.StorageService
	cfg     *config.Config
	log     *logrus.Logger
}

func NewMediaHandler(storage *services.StorageService, cfg *config.Config, log *logrus.Logger) *MediaHandler {
	return &MediaHandler{storage: storage, cfg: cfg, log: log}
}

// Upload stores a media attachment and returns its URL for use in a media
// message or profile photo.
func (h *MediaHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if fileHeader.Size > h.cfg.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.storage.UploadMedia(c.Request.Context(), file, fileHeader.Size, fileHeader.Filename, contentType)
	if err != nil {
		h.log.WithError(err).Warn("media upload failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
