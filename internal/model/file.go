package model

import "time"

// File represents a stored object owned by a single user.
// StoragePath is the object key in the bucket and always starts with the
// owner's user ID, so ownership is visible in the store itself.
type File struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
