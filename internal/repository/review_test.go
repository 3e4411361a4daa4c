package repository

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"lockerroom-talk/internal/apperrors"
	"lockerroom-talk/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The repository is built with a nil Firestore client so any attempted
// network call panics: validation is required to reject bad input before a
// single write is issued.
func newOfflineReviewRepo() *ReviewRepository {
	return &ReviewRepository{cfg: testConfig(), log: testLogger()}
}

func validReviewParams() CreateReviewParams {
	return CreateReviewParams{
		TargetName: "Alex",
		Rating:     4,
		Content:    "We met downtown and had a genuinely nice evening.",
		Category:   "Men",
	}
}

func TestCreateReviewRatingValidation(t *testing.T) {
	repo := newOfflineReviewRepo()

	tests := []struct {
		name   string
		rating int
		ok     bool
	}{
		{"min", 1, true},
		{"mid", 3, true},
		{"max", 5, true},
		{"zero", 0, false},
		{"above", 6, false},
		{"negative", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validReviewParams()
			p.Rating = tt.rating
			err := repo.validateCreate(p)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
			}
		})
	}
}

func TestCreateReviewRejectsFractionalRating(t *testing.T) {
	var p CreateReviewParams
	err := json.Unmarshal([]byte(`{"rating": 3.5, "content": "x", "category": "Men", "target_name": "A"}`), &p)
	assert.Error(t, err, "fractional ratings must fail decoding, not get truncated")
}

func TestCreateReviewValidationBeforeNetwork(t *testing.T) {
	repo := newOfflineReviewRepo()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateReviewParams)
		kind   apperrors.Kind
	}{
		{"bad_rating", func(p *CreateReviewParams) { p.Rating = 0 }, apperrors.KindValidation},
		{"unknown_category", func(p *CreateReviewParams) { p.Category = "aliens" }, apperrors.KindValidation},
		{"empty_content", func(p *CreateReviewParams) { p.Content = "" }, apperrors.KindValidation},
		{"short_content", func(p *CreateReviewParams) { p.Content = "hi" }, apperrors.KindValidation},
		{"long_content", func(p *CreateReviewParams) { p.Content = strings.Repeat("a", 5001) }, apperrors.KindValidation},
		{"missing_target", func(p *CreateReviewParams) { p.TargetName = "" }, apperrors.KindValidation},
		{"too_many_tags", func(p *CreateReviewParams) { p.Tags = make([]string, 11) }, apperrors.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validReviewParams()
			tt.mutate(&p)

			// Panics here would mean the repository reached for the backend
			// before validating.
			_, err := repo.CreateReview(ctx, "author-1", p)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestCreateReviewRequiresAuthor(t *testing.T) {
	repo := newOfflineReviewRepo()

	_, err := repo.CreateReview(context.Background(), "", validReviewParams())
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))
}

func TestCategoryValidation(t *testing.T) {
	repo := newOfflineReviewRepo()

	for _, cat := range []string{"Men", "Women", "LGBT"} {
		p := validReviewParams()
		p.Category = cat
		assert.NoError(t, repo.validateCreate(p), "category %q should be accepted", cat)
	}

	_, err := repo.GetReviewsByCategory(context.Background(), "pets", "", 10)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestUpdateReviewValidatesBeforeRead(t *testing.T) {
	repo := newOfflineReviewRepo()
	ctx := context.Background()

	bad := 9
	_, err := repo.UpdateReview(ctx, "rev-1", "author-1", UpdateReviewParams{Rating: &bad})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	short := "hi"
	_, err = repo.UpdateReview(ctx, "rev-1", "author-1", UpdateReviewParams{Content: &short})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestLikeUpdatesTracksLiker(t *testing.T) {
	review := &models.Review{ID: "rev-1", Likes: 1, LikedBy: []string{"alice"}}

	// Repeat like and unliked-unlike are no-ops; the counter never drifts
	// from the liker set.
	assert.Nil(t, likeUpdates(review, "alice", true))
	assert.Nil(t, likeUpdates(review, "bob", false))

	up := likeUpdates(review, "bob", true)
	require.Len(t, up, 2)
	assert.Equal(t, "likes", up[0].Path)
	assert.Equal(t, firestore.Increment(int64(1)), up[0].Value)
	assert.Equal(t, "likedBy", up[1].Path)

	down := likeUpdates(review, "alice", false)
	require.Len(t, down, 2)
	assert.Equal(t, firestore.Increment(int64(-1)), down[0].Value)
}

func TestToggleLikeRequiresUser(t *testing.T) {
	repo := newOfflineReviewRepo()

	err := repo.LikeReview(context.Background(), "rev-1", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))

	err = repo.UnlikeReview(context.Background(), "rev-1", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))
}

func TestClampPageSize(t *testing.T) {
	repo := newOfflineReviewRepo()

	assert.Equal(t, 20, repo.clampPageSize(0))
	assert.Equal(t, 20, repo.clampPageSize(-5))
	assert.Equal(t, 10, repo.clampPageSize(10))
	assert.Equal(t, 50, repo.clampPageSize(500))
}
