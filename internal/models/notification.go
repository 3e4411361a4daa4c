package models

import (
	"time"
)

const (
	NotificationLike    = "like"
	NotificationMessage = "message"
	NotificationReview  = "review"
	NotificationMatch   = "match"
	NotificationSystem  = "system"
)

type Notification struct {
	ID           string    `json:"id" firestore:"-"`
	UserID       string    `json:"user_id" firestore:"userId"`
	Type         string    `json:"type" firestore:"type"`
	Title        string    `json:"title" firestore:"title"`
	Message      string    `json:"message" firestore:"message"`
	Read         bool      `json:"read" firestore:"read"`
	ActionUserID string    `json:"action_user_id,omitempty" firestore:"actionUserId,omitempty"`
	RelatedID    string    `json:"related_id,omitempty" firestore:"relatedId,omitempty"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
}
