package repository

import (
	"context"
	"errors"

	"launchpad/internal/model"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
//
// Every query that touches user-owned rows (profiles, files) is scoped by the
// owning user ID. There is deliberately no unscoped accessor: a row belonging
// to another user behaves exactly like a row that does not exist, which is the
// same observable behavior row-level security policies would produce on the
// hosted database.

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate row")

// UserRepository persists provider-synced user rows.
type UserRepository interface {
	// Upsert inserts the user or, when the ID already exists, refreshes the
	// mutable columns. Webhook deliveries may repeat, so this must converge.
	Upsert(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by the external subject ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Delete removes a user row; owned rows cascade at the schema level.
	// Deleting an absent user is not an error.
	Delete(ctx context.Context, id string) error
}

// ProfileUpdate holds the partial-update set for a profile.
// Nil fields keep their current value.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
}

// ProfileRepository persists the one-per-user profile rows.
type ProfileRepository interface {
	// Create inserts a profile for the user. Returns ErrDuplicate when a
	// profile already exists.
	Create(ctx context.Context, p *model.Profile) (*model.Profile, error)

	// FindByUser returns the profile owned by userID.
	FindByUser(ctx context.Context, userID string) (*model.Profile, error)

	// Update applies the non-nil fields and returns the stored row.
	Update(ctx context.Context, userID string, up ProfileUpdate) (*model.Profile, error)

	// Delete removes the user's profile. Returns sql.ErrNoRows when there was
	// nothing to delete.
	Delete(ctx context.Context, userID string) error
}

// FileRepository persists file metadata rows. All lookups are scoped to the
// owning user.
type FileRepository interface {
	// Create inserts a new file record and returns the stored row.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns the file only when it is owned by userID.
	FindByID(ctx context.Context, userID, id string) (*model.File, error)

	// List returns a page of the user's files and the user's total count.
	List(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.File], error)

	// Delete removes the file row when owned by userID. It returns nil if the
	// row was deleted or did not exist.
	Delete(ctx context.Context, userID, id string) error

	// StorageKeysByUser returns every storage key owned by userID, used to
	// purge objects before the user row (and its cascades) goes away.
	StorageKeysByUser(ctx context.Context, userID string) ([]string, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
