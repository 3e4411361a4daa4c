package models

import (
	"time"
)

type User struct {
	ID              string    `json:"id" firestore:"-"`
	DisplayName     string    `json:"display_name" firestore:"displayName"`
	Email           string    `json:"email,omitempty" firestore:"email,omitempty"`
	Phone           string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Age             int       `json:"age,omitempty" firestore:"age,omitempty"`
	Bio             string    `json:"bio,omitempty" firestore:"bio,omitempty"`
	Interests       []string  `json:"interests,omitempty" firestore:"interests,omitempty"`
	RawLocation     any       `json:"-" firestore:"location,omitempty"`
	Verified        bool      `json:"verified" firestore:"verified"`
	ProfileComplete bool      `json:"profile_complete" firestore:"profileComplete"`
	IsOnline        bool      `json:"is_online" firestore:"isOnline"`
	IsActive        bool      `json:"is_active" firestore:"isActive"`
	LastActive      time.Time `json:"last_active,omitempty" firestore:"lastActive,omitempty"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updatedAt"`
}

// Location decodes the stored location value, which may be a legacy free-form
// string or the structured shape.
func (u *User) Location() (Location, bool) {
	return DecodeLocation(u.RawLocation)
}

// PublicUser is the reduced view returned to callers other than the profile
// owner. Contact fields are omitted here in addition to any backend-side
// redaction.
type PublicUser struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Age         int       `json:"age,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Interests   []string  `json:"interests,omitempty"`
	Location    *Location `json:"location,omitempty"`
	Verified    bool      `json:"verified"`
	IsOnline    bool      `json:"is_online"`
	LastActive  time.Time `json:"last_active,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) PublicView() PublicUser {
	pub := PublicUser{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Age:         u.Age,
		Bio:         u.Bio,
		Interests:   u.Interests,
		Verified:    u.Verified,
		IsOnline:    u.IsOnline,
		LastActive:  u.LastActive,
		CreatedAt:   u.CreatedAt,
	}
	if loc, ok := u.Location(); ok {
		pub.Location = &loc
	}
	return pub
}
