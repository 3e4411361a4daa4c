package repository

import (
	"context"
	"fmt"

	"lockerroom-talk/internal/apperrors"
	"lockerroom-talk/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type AdminRepository struct {
	client *firestore.Client
}

func NewAdminRepository(client *firestore.Client) *AdminRepository {
	return &AdminRepository{client: client}
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	const op = "admin.get_by_email"
	iter := r.client.Collection(adminsCollection).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, apperrors.NotFound(op, "admin not found")
	}
	if err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}

	var admin models.Admin
	if err := snap.DataTo(&admin); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, op, fmt.Errorf("failed to decode admin %s: %w", snap.Ref.ID, err))
	}
	admin.ID = snap.Ref.ID
	return &admin, nil
}
