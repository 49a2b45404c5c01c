package models

import (
	"time"
)

// UserProfile is the document kept in the `users` collection. ID equals the identity
// provider's subject id; EmailVerified mirrors the provider's flag.
type UserProfile struct {
	ID            string `bson:"_id" json:"id"`
	Email         string `bson:"email" json:"email"`
	Name          string `bson:"name,omitempty" json:"name,omitempty"`
	EmailVerified bool   `bson:"email_verified" json:"emailVerified"`
}

// Account is the identity provider's credential record.
type Account struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`

	// Internal only - never returned in JSON
	PasswordHash string `json:"-"`
}

// Identity is the authenticated caller, resolved once per request from the ID token and
// passed explicitly to whatever needs it.
type Identity struct {
	UserID        string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}
