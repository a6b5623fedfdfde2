package models

import "time"

// User is a profile record created at sign-up. The id is assigned by the
// identity provider and is immutable afterwards.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
