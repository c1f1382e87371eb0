package service

import (
	"context"
	"database/sql"
	"errors"

	"launchpad/internal/model"
	"launchpad/internal/repository"
)

// ProfileService manages the authenticated user's profile. Every method
// operates on the caller's own row only; there is no cross-user access.
type ProfileService interface {
	// Create adds the profile for a user; a second create for the same
	// user fails with ErrAlreadyExists.
	Create(ctx context.Context, userID, displayName, bio string) (*model.Profile, error)

	// Get returns the user's profile.
	Get(ctx context.Context, userID string) (*model.Profile, error)

	// Update applies a partial update; nil fields keep their stored value.
	Update(ctx context.Context, userID string, displayName, bio *string) (*model.Profile, error)

	// Delete removes the user's profile.
	Delete(ctx context.Context, userID string) error
}

// profileService is a concrete implementation of ProfileService.
type profileService struct {
	repo repository.ProfileRepository
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &profileService{repo: repo}
}

func (s *profileService) Create(ctx context.Context, userID, displayName, bio string) (*model.Profile, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	p, err := s.repo.Create(ctx, &model.Profile{
		UserID:      userID,
		DisplayName: displayName,
		Bio:         bio,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return p, nil
}

func (s *profileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	p, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, userID string, displayName, bio *string) (*model.Profile, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	p, err := s.repo.Update(ctx, userID, repository.ProfileUpdate{
		DisplayName: displayName,
		Bio:         bio,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *profileService) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrIDRequired
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
