package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"launchpad/internal/model"
	"launchpad/internal/repository"
	"launchpad/internal/storage"
)

// IdentityService mirrors provider identity events into local state.
type IdentityService interface {
	// SyncUser upserts the user row for a created or updated identity.
	// Replayed events converge on the same row.
	SyncUser(ctx context.Context, userID, email string) (*model.User, error)

	// DeleteUser removes a user and everything owned by them: objects in
	// storage (best effort), then the user row, which cascades profile
	// and file rows. Deleting an unknown user is a no-op.
	DeleteUser(ctx context.Context, userID string) error
}

// identityService is a concrete implementation of IdentityService.
type identityService struct {
	users repository.UserRepository
	files repository.FileRepository
	store storage.Storage
	log   *zap.Logger
}

// NewIdentityService constructs a new IdentityService.
func NewIdentityService(users repository.UserRepository, files repository.FileRepository, store storage.Storage, log *zap.Logger) IdentityService {
	return &identityService{users: users, files: files, store: store, log: log}
}

func (s *identityService) SyncUser(ctx context.Context, userID, email string) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	return s.users.Upsert(ctx, &model.User{
		ID:        userID,
		Email:     email,
		UpdatedAt: time.Now().UTC(),
	})
}

func (s *identityService) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrIDRequired
	}

	keys, err := s.files.StorageKeysByUser(ctx, userID)
	if err != nil {
		return err
	}
	// Object deletion is best effort: a storage hiccup must not leave the
	// user row behind after the provider already removed the identity.
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("orphaned object left in storage",
				zap.String("key", key),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	return s.users.Delete(ctx, userID)
}
