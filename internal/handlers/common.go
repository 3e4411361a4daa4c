package handlers

import (
	"net/http"

	"lockerroom-talk/internal/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError translates the repository error taxonomy into HTTP responses.
// User-facing messages stay generic; the mapped kind carries everything the
// client needs, and operational detail goes to the log only.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	kind := apperrors.KindOf(err)
	entry := log.WithFields(logrus.Fields{"kind": kind.String(), "path": c.FullPath()})

	switch kind {
	case apperrors.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.KindPermission:
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "This item no longer exists"})
	case apperrors.KindIndexMissing:
		entry.WithError(err).Error("required query index is missing")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Try again shortly"})
	case apperrors.KindTransient:
		entry.WithError(err).Warn("transient backend failure")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Couldn't connect, try again"})
	default:
		entry.WithError(err).Error("unexpected failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
