package model

import "time"

// Profile holds the application-owned data for a user, one row per user.
// This is a pure domain model with no database-specific dependencies or tags.
type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
