package repository

import (
	"context"
	"fmt"

	"lockerroom-talk/internal/apperrors"
	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
)

type NotificationRepository struct {
	client *firestore.Client
	cfg    *config.Config
	log    *logrus.Logger
}

func NewNotificationRepository(client *firestore.Client, cfg *config.Config, log *logrus.Logger) *NotificationRepository {
	return &NotificationRepository{client: client, cfg: cfg, log: log}
}

func (r *NotificationRepository) col() *firestore.CollectionRef {
	return r.client.Collection(notificationsCollection)
}

type CreateNotificationParams struct {
	UserID       string `json:"user_id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	ActionUserID string `json:"action_user_id,omitempty"`
	RelatedID    string `json:"related_id,omitempty"`
}

func (r *NotificationRepository) Create(ctx context.Context, p CreateNotificationParams) (*models.Notification, error) {
	const op = "notification.create"
	if p.UserID == "" {
		return nil, apperrors.Validation(op, "missing recipient")
	}
	switch p.Type {
	case models.NotificationLike, models.NotificationMessage, models.NotificationReview,
		models.NotificationMatch, models.NotificationSystem:
	default:
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown notification type %q", p.Type))
	}

	ref := r.col().NewDoc()
	data := map[string]any{
		"userId":       p.UserID,
		"type":         p.Type,
		"title":        p.Title,
		"message":      p.Message,
		"read":         false,
		"actionUserId": p.ActionUserID,
		"relatedId":    p.RelatedID,
		"createdAt":    firestore.ServerTimestamp,
	}
	if _, err := ref.Create(ctx, data); err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}
	return decodeNotification(snap)
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, limit int, onlyUnread bool) ([]models.Notification, error) {
	const op = "notification.list"
	if userID == "" {
		return nil, apperrors.Permission(op, "missing user")
	}
	if limit <= 0 {
		limit = r.cfg.DefaultPageSize
	}
	if limit > r.cfg.MaxPageSize {
		limit = r.cfg.MaxPageSize
	}

	q := r.col().Where("userId", "==", userID)
	if onlyUnread {
		q = q.Where("read", "==", false)
	}
	q = q.OrderBy("createdAt", firestore.Desc).Limit(limit)

	var out []models.Notification
	err := withRetry(ctx, r.cfg.ReadRetryAttempts, func() error {
		iter := q.Documents(ctx)
		defer iter.Stop()

		items := make([]models.Notification, 0, limit)
		for {
			snap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return apperrors.FromFirestore(op, err)
			}
			n, err := decodeNotification(snap)
			if err != nil {
				r.log.WithFields(logrus.Fields{"op": op, "notification_id": snap.Ref.ID}).Warn("skipping undecodable notification")
				continue
			}
			items = append(items, *n)
		}
		out = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead enforces the recipient-only invariant before writing.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, callerUID string) error {
	const op = "notification.mark_read"
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return apperrors.FromFirestore(op, err)
	}
	n, err := decodeNotification(snap)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, op, err)
	}
	if err := checkOwner(op, n.UserID, callerUID); err != nil {
		return err
	}
	if _, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	}); err != nil {
		return apperrors.FromFirestore(op, err)
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	const op = "notification.mark_all_read"
	if userID == "" {
		return apperrors.Permission(op, "missing user")
	}
	iter := r.col().
		Where("userId", "==", userID).
		Where("read", "==", false).
		Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return apperrors.FromFirestore(op, err)
		}
		if _, err := snap.Ref.Update(ctx, []firestore.Update{
			{Path: "read", Value: true},
		}); err != nil {
			return apperrors.FromFirestore(op, err)
		}
	}
	return nil
}

func decodeNotification(snap *firestore.DocumentSnapshot) (*models.Notification, error) {
	var n models.Notification
	if err := snap.DataTo(&n); err != nil {
		return nil, fmt.Errorf("failed to decode notification %s: %w", snap.Ref.ID, err)
	}
	n.ID = snap.Ref.ID
	return &n, nil
}
