package models

import (
	"time"
)

const (
	RoomTypeDirect = "direct"
	RoomTypePublic = "public"
)

const (
	MessageTypeText  = "text"
	MessageTypeMedia = "media"
)

type ChatRoom struct {
	ID              string           `json:"id" firestore:"-"`
	Participants    []string         `json:"participants" firestore:"participants"`
	CreatedBy       string           `json:"created_by" firestore:"createdBy"`
	Type            string           `json:"type" firestore:"type"`
	Name            string           `json:"name,omitempty" firestore:"name,omitempty"`
	LastMessage     string           `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageTime time.Time        `json:"last_message_time,omitempty" firestore:"lastMessageTime,omitempty"`
	UnreadCount     map[string]int64 `json:"unread_count,omitempty" firestore:"unreadCount,omitempty"`
	IsActive        bool             `json:"is_active" firestore:"isActive"`
	CreatedAt       time.Time        `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time        `json:"updated_at" firestore:"updatedAt"`
}

func (r *ChatRoom) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message carries both timestamp and createdAt because the stored data does;
// they are treated as the same instant, preferring the server-generated one.
type Message struct {
	ID          string    `json:"id" firestore:"-"`
	RoomID      string    `json:"room_id" firestore:"roomId"`
	SenderID    string    `json:"sender_id" firestore:"senderId"`
	Content     string    `json:"content" firestore:"content"`
	MessageType string    `json:"message_type" firestore:"messageType"`
	MediaURL    string    `json:"media_url,omitempty" firestore:"mediaUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty" firestore:"timestamp,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	IsRead      bool      `json:"is_read" firestore:"isRead"`
	IsDelivered bool      `json:"is_delivered" firestore:"isDelivered"`
}
