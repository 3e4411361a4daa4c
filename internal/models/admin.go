package models

import (
	"time"
)

type Admin struct {
	ID           string    `json:"id" firestore:"-"`
	Email        string    `json:"email" firestore:"email"`
	PasswordHash string    `json:"-" firestore:"passwordHash"`
	Role         string    `json:"role" firestore:"role"` // super_admin, moderator
	IsActive     bool      `json:"is_active" firestore:"isActive"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt"`
}
