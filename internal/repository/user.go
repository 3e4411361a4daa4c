package repository

import (
	"context"
	"fmt"
	"time"

	"lockerroom-talk/internal/apperrors"
	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/models"
	"lockerroom-talk/internal/redis"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const onlineUsersKey = "online_users"

type UserRepository struct {
	client *firestore.Client
	rdb    *redis.Client
	cfg    *config.Config
	log    *logrus.Logger
}

func NewUserRepository(client *firestore.Client, rdb *redis.Client, cfg *config.Config, log *logrus.Logger) *UserRepository {
	return &UserRepository{client: client, rdb: rdb, cfg: cfg, log: log}
}

func (r *UserRepository) col() *firestore.CollectionRef {
	return r.client.Collection(usersCollection)
}

type CreateUserParams struct {
	DisplayName string           `json:"display_name" validate:"required,max=50"`
	Email       string           `json:"email" validate:"omitempty,email"`
	Age         int              `json:"age" validate:"omitempty,gte=18,lte=120"`
	Bio         string           `json:"bio" validate:"max=500"`
	Interests   []string         `json:"interests" validate:"max=20,dive,max=30"`
	Location    *models.Location `json:"location"`
}

// CreateUserProfile is idempotent: when a profile already exists for the
// uid, the existing document is returned unchanged. Sign-up flows can invoke
// this twice in a race without overwriting anything.
func (r *UserRepository) CreateUserProfile(ctx context.Context, uid string, p CreateUserParams) (*models.User, error) {
	const op = "user.create_profile"
	if uid == "" {
		return nil, apperrors.Permission(op, "missing uid")
	}
	if err := validate.Struct(p); err != nil {
		return nil, apperrors.Validation(op, err.Error())
	}

	data := map[string]any{
		"displayName":     p.DisplayName,
		"email":           p.Email,
		"age":             p.Age,
		"bio":             p.Bio,
		"interests":       p.Interests,
		"verified":        false,
		"profileComplete": p.DisplayName != "" && p.Age >= 18,
		"isOnline":        false,
		"isActive":        true,
		"lastActive":      firestore.ServerTimestamp,
		"createdAt":       firestore.ServerTimestamp,
		"updatedAt":       firestore.ServerTimestamp,
	}
	if p.Location != nil {
		data["location"] = p.Location.StorageValue()
	}

	_, err := r.col().Doc(uid).Create(ctx, data)
	if err != nil {
		if status.Code(err) != codes.AlreadyExists {
			return nil, apperrors.FromFirestore(op, err)
		}
		r.log.WithFields(logrus.Fields{"op": op, "uid": uid}).Debug("profile already exists, returning unchanged")
	}
	return r.getUser(ctx, uid)
}

// GetProfile returns the full document to its owner and a reduced view with
// contact fields scrubbed to everyone else, on top of any backend-side
// redaction.
func (r *UserRepository) GetProfile(ctx context.Context, uid, callerUID string) (*models.User, error) {
	user, err := r.getUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if uid != callerUID {
		user.Email = ""
		user.Phone = ""
	}
	return user, nil
}

type UpdateProfileParams struct {
	DisplayName *string          `json:"display_name,omitempty" validate:"omitempty,max=50"`
	Age         *int             `json:"age,omitempty" validate:"omitempty,gte=18,lte=120"`
	Bio         *string          `json:"bio,omitempty" validate:"omitempty,max=500"`
	Interests   []string         `json:"interests,omitempty" validate:"omitempty,max=20,dive,max=30"`
	Location    *models.Location `json:"location,omitempty"`
}

// UpdateProfile only accepts the authenticated principal targeting their own
// uid.
func (r *UserRepository) UpdateProfile(ctx context.Context, uid, callerUID string, p UpdateProfileParams) (*models.User, error) {
	const op = "user.update_profile"
	if err := checkOwner(op, uid, callerUID); err != nil {
		return nil, err
	}
	if err := validate.Struct(p); err != nil {
		return nil, apperrors.Validation(op, err.Error())
	}

	updates := []firestore.Update{
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if p.DisplayName != nil {
		updates = append(updates, firestore.Update{Path: "displayName", Value: *p.DisplayName})
	}
	if p.Age != nil {
		updates = append(updates, firestore.Update{Path: "age", Value: *p.Age})
	}
	if p.Bio != nil {
		updates = append(updates, firestore.Update{Path: "bio", Value: *p.Bio})
	}
	if p.Interests != nil {
		updates = append(updates, firestore.Update{Path: "interests", Value: p.Interests})
	}
	if p.Location != nil {
		updates = append(updates, firestore.Update{Path: "location", Value: p.Location.StorageValue()})
	}

	if _, err := r.col().Doc(uid).Update(ctx, updates); err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}
	return r.getUser(ctx, uid)
}

// SetPresence tracks online state in redis for cheap lookups and mirrors it
// onto the profile document.
func (r *UserRepository) SetPresence(ctx context.Context, uid string, online bool) error {
	const op = "user.set_presence"
	if uid == "" {
		return apperrors.Permission(op, "missing uid")
	}
	if online {
		if err := r.rdb.SAdd(ctx, onlineUsersKey, uid); err != nil {
			r.log.WithFields(logrus.Fields{"op": op, "uid": uid}).WithError(err).Warn("failed to record presence in redis")
		}
	} else {
		if err := r.rdb.SRem(ctx, onlineUsersKey, uid); err != nil {
			r.log.WithFields(logrus.Fields{"op": op, "uid": uid}).WithError(err).Warn("failed to clear presence in redis")
		}
	}
	_, err := r.col().Doc(uid).Update(ctx, []firestore.Update{
		{Path: "isOnline", Value: online},
		{Path: "lastActive", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return apperrors.FromFirestore(op, err)
	}
	return nil
}

func (r *UserRepository) IsOnline(ctx context.Context, uid string) (bool, error) {
	return r.rdb.SIsMember(ctx, onlineUsersKey, uid)
}

// Deactivate is the privileged moderation path; normal flows never
// hard-delete a profile.
func (r *UserRepository) Deactivate(ctx context.Context, uid string) error {
	const op = "user.deactivate"
	_, err := r.col().Doc(uid).Update(ctx, []firestore.Update{
		{Path: "isActive", Value: false},
		{Path: "isOnline", Value: false},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return apperrors.FromFirestore(op, err)
	}
	r.log.WithFields(logrus.Fields{"op": op, "uid": uid}).Warn("user deactivated by moderation")
	return nil
}

func (r *UserRepository) getUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "user.get"
	var user *models.User
	err := withRetry(ctx, r.cfg.ReadRetryAttempts, func() error {
		snap, err := r.col().Doc(uid).Get(ctx)
		if err != nil {
			return apperrors.FromFirestore(op, err)
		}
		var u models.User
		if err := snap.DataTo(&u); err != nil {
			return apperrors.Wrap(apperrors.KindInternal, op, fmt.Errorf("failed to decode user %s: %w", uid, err))
		}
		u.ID = snap.Ref.ID
		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// TouchLastActive refreshes lastActive without changing presence, rate
// limited through redis so hot request paths do not spam document writes.
func (r *UserRepository) TouchLastActive(ctx context.Context, uid string) {
	const op = "user.touch_last_active"
	key := "last_active_touch:" + uid
	fresh, err := r.rdb.SetNX(ctx, key, time.Now().Unix(), time.Minute)
	if err != nil || !fresh {
		return
	}
	if _, err := r.col().Doc(uid).Update(ctx, []firestore.Update{
		{Path: "lastActive", Value: firestore.ServerTimestamp},
	}); err != nil {
		r.log.WithFields(logrus.Fields{"op": op, "uid": uid}).WithError(err).Debug("lastActive touch failed")
	}
}
