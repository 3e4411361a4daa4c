package repository

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lockerroom-talk/internal/apperrors"
)

const (
	usersCollection          = "users"
	reviewsCollection        = "reviews"
	chatRoomsCollection      = "chatRooms"
	roomMessagesCollection   = "messages" // subcollection under chatRooms/{id}
	legacyMessagesCollection = "messages" // top-level, filtered by roomId
	notificationsCollection  = "notifications"
	adminsCollection         = "admins"
)

// withRetry runs fn with bounded exponential backoff. Only transient
// failures are retried; permission rejections and missing indexes surface
// immediately.
func withRetry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := 100 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !apperrors.Retryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return apperrors.Wrap(apperrors.KindTransient, "retry", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

// Page cursors are opaque to callers: base64 over the last document's
// createdAt (micros) and its ID, replayed as a StartAfter boundary. Already
// returned pages never shift when new documents are inserted ahead of them.
func encodeCursor(createdAt time.Time, docID string) string {
	raw := fmt.Sprintf("%d|%s", createdAt.UTC().UnixMicro(), docID)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(token string) (time.Time, string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("malformed cursor: %w", err)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return time.Time{}, "", fmt.Errorf("malformed cursor payload")
	}
	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("malformed cursor timestamp: %w", err)
	}
	return time.UnixMicro(micros).UTC(), parts[1], nil
}

func checkOwner(op, ownerID, callerID string) error {
	if ownerID == "" || ownerID != callerID {
		return apperrors.Permission(op, "caller does not own this resource")
	}
	return nil
}
