package models

import (
	"time"
)

// Review categories form a closed enumeration; anything else is rejected
// before a write is attempted.
const (
	CategoryMen   = "Men"
	CategoryWomen = "Women"
	CategoryLGBT  = "LGBT"
)

func ValidCategory(category string) bool {
	switch category {
	case CategoryMen, CategoryWomen, CategoryLGBT:
		return true
	}
	return false
}

type Review struct {
	ID             string     `json:"id" firestore:"-"`
	AuthorID       string     `json:"author_id" firestore:"authorId"`
	ReviewedUserID string     `json:"reviewed_user_id,omitempty" firestore:"reviewedUserId,omitempty"`
	TargetName     string     `json:"target_name" firestore:"targetName"`
	Rating         int        `json:"rating" firestore:"rating"`
	Content        string     `json:"content" firestore:"content"`
	Category       string     `json:"category" firestore:"category"`
	IsAnonymous    bool       `json:"is_anonymous" firestore:"isAnonymous"`
	Tags           []string   `json:"tags,omitempty" firestore:"tags,omitempty"`
	RawLocation    any        `json:"-" firestore:"location,omitempty"`
	Likes          int64      `json:"likes" firestore:"likes"`
	LikedBy        []string   `json:"-" firestore:"likedBy,omitempty"`
	Comments       int64      `json:"comments" firestore:"comments"`
	ViewsCount     int64      `json:"views_count" firestore:"viewsCount"`
	CreatedAt      time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt      time.Time  `json:"updated_at" firestore:"updatedAt"`
	DeletedAt      *time.Time `json:"-" firestore:"deletedAt,omitempty"`
}

func (r *Review) Location() (Location, bool) {
	return DecodeLocation(r.RawLocation)
}

func (r *Review) Deleted() bool {
	return r.DeletedAt != nil && !r.DeletedAt.IsZero()
}
