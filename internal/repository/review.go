package repository

import (
	"context"
	"fmt"

	"lockerroom-talk/internal/apperrors"
	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
)

var validate = validator.New()

type ReviewRepository struct {
	client *firestore.Client
	cfg    *config.Config
	log    *logrus.Logger
}

func NewReviewRepository(client *firestore.Client, cfg *config.Config, log *logrus.Logger) *ReviewRepository {
	return &ReviewRepository{client: client, cfg: cfg, log: log}
}

func (r *ReviewRepository) col() *firestore.CollectionRef {
	return r.client.Collection(reviewsCollection)
}

type CreateReviewParams struct {
	ReviewedUserID string           `json:"reviewed_user_id"`
	TargetName     string           `json:"target_name" validate:"required,max=100"`
	Rating         int              `json:"rating" validate:"min=1,max=5"`
	Content        string           `json:"content" validate:"required"`
	Category       string           `json:"category" validate:"required"`
	IsAnonymous    bool             `json:"is_anonymous"`
	Tags           []string         `json:"tags" validate:"max=10,dive,max=30"`
	Location       *models.Location `json:"location"`
}

// validateCreate runs entirely client-side; a failure here means no network
// call was attempted.
func (r *ReviewRepository) validateCreate(p CreateReviewParams) error {
	const op = "review.create"
	if err := validate.Struct(p); err != nil {
		return apperrors.Validation(op, err.Error())
	}
	if p.Rating < 1 || p.Rating > 5 {
		return apperrors.Validation(op, "rating must be between 1 and 5")
	}
	if !models.ValidCategory(p.Category) {
		return apperrors.Validation(op, fmt.Sprintf("unknown category %q", p.Category))
	}
	if len(p.Content) < r.cfg.ReviewMinLength || len(p.Content) > r.cfg.ReviewMaxLength {
		return apperrors.Validation(op, fmt.Sprintf("content must be %d-%d characters", r.cfg.ReviewMinLength, r.cfg.ReviewMaxLength))
	}
	return nil
}

func (r *ReviewRepository) CreateReview(ctx context.Context, authorID string, p CreateReviewParams) (*models.Review, error) {
	const op = "review.create"
	if authorID == "" {
		return nil, apperrors.Permission(op, "missing author")
	}
	if err := r.validateCreate(p); err != nil {
		return nil, err
	}

	data := map[string]any{
		"authorId":       authorID,
		"reviewedUserId": p.ReviewedUserID,
		"targetName":     p.TargetName,
		"rating":         p.Rating,
		"content":        p.Content,
		"category":       p.Category,
		"isAnonymous":    p.IsAnonymous,
		"tags":           p.Tags,
		"likes":          0,
		"likedBy":        []string{},
		"comments":       0,
		"viewsCount":     0,
		"createdAt":      firestore.ServerTimestamp,
		"updatedAt":      firestore.ServerTimestamp,
		"deletedAt":      nil,
	}
	if p.Location != nil {
		data["location"] = p.Location.StorageValue()
	}

	ref := r.col().NewDoc()
	if _, err := ref.Create(ctx, data); err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}

	r.log.WithFields(logrus.Fields{"op": op, "review_id": ref.ID}).Info("review created")
	return r.GetReview(ctx, ref.ID)
}

func (r *ReviewRepository) GetReview(ctx context.Context, id string) (*models.Review, error) {
	const op = "review.get"
	var review *models.Review
	err := withRetry(ctx, r.cfg.ReadRetryAttempts, func() error {
		snap, err := r.col().Doc(id).Get(ctx)
		if err != nil {
			return apperrors.FromFirestore(op, err)
		}
		rv, err := decodeReview(snap)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, op, err)
		}
		review = rv
		return nil
	})
	if err != nil {
		return nil, err
	}
	if review.Deleted() {
		return nil, apperrors.NotFound(op, "review no longer exists")
	}
	return review, nil
}

// RecordView bumps the denormalized view counter. Failures are not fatal to
// the read path, so the caller may ignore the error.
func (r *ReviewRepository) RecordView(ctx context.Context, id string) error {
	const op = "review.record_view"
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "viewsCount", Value: firestore.Increment(1)},
	})
	if err != nil {
		return apperrors.FromFirestore(op, err)
	}
	return nil
}

type ReviewPage struct {
	Reviews    []models.Review `json:"reviews"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func (r *ReviewRepository) GetReviewsByCategory(ctx context.Context, category, cursor string, pageSize int) (*ReviewPage, error) {
	const op = "review.list_by_category"
	if !models.ValidCategory(category) {
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown category %q", category))
	}
	q := r.col().
		Where("category", "==", category).
		Where("deletedAt", "==", nil)
	return r.page(ctx, op, q, cursor, pageSize)
}

func (r *ReviewRepository) GetReviewsByAuthor(ctx context.Context, authorID, cursor string, pageSize int) (*ReviewPage, error) {
	const op = "review.list_by_author"
	if authorID == "" {
		return nil, apperrors.Validation(op, "missing author")
	}
	q := r.col().
		Where("authorId", "==", authorID).
		Where("deletedAt", "==", nil)
	return r.page(ctx, op, q, cursor, pageSize)
}

// page executes a cursor-bounded query ordered by createdAt descending with
// the document ID as tiebreaker, fetching one extra row to decide whether a
// next page exists.
func (r *ReviewRepository) page(ctx context.Context, op string, base firestore.Query, cursor string, pageSize int) (*ReviewPage, error) {
	pageSize = r.clampPageSize(pageSize)
	q := base.
		OrderBy("createdAt", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc).
		Limit(pageSize + 1)
	if cursor != "" {
		at, id, err := decodeCursor(cursor)
		if err != nil {
			return nil, apperrors.Validation(op, err.Error())
		}
		q = q.StartAfter(at, id)
	}

	var page *ReviewPage
	err := withRetry(ctx, r.cfg.ReadRetryAttempts, func() error {
		iter := q.Documents(ctx)
		defer iter.Stop()

		reviews := make([]models.Review, 0, pageSize)
		for {
			snap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return apperrors.FromFirestore(op, err)
			}
			rv, err := decodeReview(snap)
			if err != nil {
				r.log.WithFields(logrus.Fields{"op": op, "review_id": snap.Ref.ID}).Warn("skipping undecodable review")
				continue
			}
			reviews = append(reviews, *rv)
		}

		next := ""
		if len(reviews) > pageSize {
			reviews = reviews[:pageSize]
			last := reviews[len(reviews)-1]
			next = encodeCursor(last.CreatedAt, last.ID)
		}
		page = &ReviewPage{Reviews: reviews, NextCursor: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

type UpdateReviewParams struct {
	Rating      *int             `json:"rating,omitempty"`
	Content     *string          `json:"content,omitempty"`
	IsAnonymous *bool            `json:"is_anonymous,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Location    *models.Location `json:"location,omitempty"`
}

func (r *ReviewRepository) UpdateReview(ctx context.Context, id, authorID string, p UpdateReviewParams) (*models.Review, error) {
	const op = "review.update"
	if p.Rating != nil && (*p.Rating < 1 || *p.Rating > 5) {
		return nil, apperrors.Validation(op, "rating must be between 1 and 5")
	}
	if p.Content != nil && (len(*p.Content) < r.cfg.ReviewMinLength || len(*p.Content) > r.cfg.ReviewMaxLength) {
		return nil, apperrors.Validation(op, fmt.Sprintf("content must be %d-%d characters", r.cfg.ReviewMinLength, r.cfg.ReviewMaxLength))
	}

	// Client-side ownership precheck to fail fast; the backend security rule
	// remains the authoritative check.
	existing, err := r.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(op, existing.AuthorID, authorID); err != nil {
		return nil, err
	}

	updates := []firestore.Update{
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if p.Rating != nil {
		updates = append(updates, firestore.Update{Path: "rating", Value: *p.Rating})
	}
	if p.Content != nil {
		updates = append(updates, firestore.Update{Path: "content", Value: *p.Content})
	}
	if p.IsAnonymous != nil {
		updates = append(updates, firestore.Update{Path: "isAnonymous", Value: *p.IsAnonymous})
	}
	if p.Tags != nil {
		updates = append(updates, firestore.Update{Path: "tags", Value: p.Tags})
	}
	if p.Location != nil {
		updates = append(updates, firestore.Update{Path: "location", Value: p.Location.StorageValue()})
	}

	if _, err := r.col().Doc(id).Update(ctx, updates); err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}
	return r.GetReview(ctx, id)
}

// DeleteReview is a soft delete: the document keeps its ID so existing
// comment and like references stay intact.
func (r *ReviewRepository) DeleteReview(ctx context.Context, id, authorID string) error {
	const op = "review.delete"
	existing, err := r.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwner(op, existing.AuthorID, authorID); err != nil {
		return err
	}
	_, err = r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "deletedAt", Value: firestore.ServerTimestamp},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return apperrors.FromFirestore(op, err)
	}
	r.log.WithFields(logrus.Fields{"op": op, "review_id": id}).Info("review soft-deleted")
	return nil
}

func (r *ReviewRepository) LikeReview(ctx context.Context, id, userID string) error {
	return r.toggleLike(ctx, id, userID, true)
}

func (r *ReviewRepository) UnlikeReview(ctx context.Context, id, userID string) error {
	return r.toggleLike(ctx, id, userID, false)
}

// toggleLike tracks liker identity alongside the counter so one user cannot
// like a review twice or drive the count below zero. Counter and membership
// move together in one transaction.
func (r *ReviewRepository) toggleLike(ctx context.Context, id, userID string, like bool) error {
	const op = "review.toggle_like"
	if userID == "" {
		return apperrors.Permission(op, "missing user")
	}
	ref := r.col().Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return apperrors.FromFirestore(op, err)
		}
		review, err := decodeReview(snap)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, op, err)
		}
		if review.Deleted() {
			return apperrors.NotFound(op, "review no longer exists")
		}
		updates := likeUpdates(review, userID, like)
		if updates == nil {
			return nil
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return apperrors.FromFirestore(op, err)
	}
	return nil
}

// likeUpdates returns the writes for a like toggle, or nil when the toggle
// is a no-op: a repeat like or an unlike from a user who never liked.
func likeUpdates(review *models.Review, userID string, like bool) []firestore.Update {
	liked := false
	for _, id := range review.LikedBy {
		if id == userID {
			liked = true
			break
		}
	}
	if like == liked {
		return nil
	}
	delta := int64(1)
	var membership any = firestore.ArrayUnion(userID)
	if !like {
		delta = -1
		membership = firestore.ArrayRemove(userID)
	}
	return []firestore.Update{
		{Path: "likes", Value: firestore.Increment(delta)},
		{Path: "likedBy", Value: membership},
	}
}

// TakedownReview is the privileged moderation path: it bypasses the
// ownership precheck and soft-deletes the document.
func (r *ReviewRepository) TakedownReview(ctx context.Context, id string) error {
	const op = "review.takedown"
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "deletedAt", Value: firestore.ServerTimestamp},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return apperrors.FromFirestore(op, err)
	}
	r.log.WithFields(logrus.Fields{"op": op, "review_id": id}).Warn("review taken down by moderation")
	return nil
}

func (r *ReviewRepository) clampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return r.cfg.DefaultPageSize
	}
	if pageSize > r.cfg.MaxPageSize {
		return r.cfg.MaxPageSize
	}
	return pageSize
}

func decodeReview(snap *firestore.DocumentSnapshot) (*models.Review, error) {
	var review models.Review
	if err := snap.DataTo(&review); err != nil {
		return nil, fmt.Errorf("failed to decode review %s: %w", snap.Ref.ID, err)
	}
	review.ID = snap.Ref.ID
	return &review, nil
}
