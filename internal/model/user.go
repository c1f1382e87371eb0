package model

import "time"

// User mirrors an account owned by the external identity provider.
// ID is the provider's subject identifier; rows are created and removed only
// through identity webhook events, never by the application itself.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
