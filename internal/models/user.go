// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a blog account. Admins manage content and run the
// generation pipeline; everyone else may comment and submit topics.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"displayName"`
	IsAdmin      bool      `json:"isAdmin"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totpEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Needs2FA returns true if logging in requires a TOTP code.
func (u *User) Needs2FA() bool {
	return u.TOTPEnabled && u.TOTPSecret != nil
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// UserSummary is the public projection of a user embedded in other records.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
}

// Summary returns the public projection of the user.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Username: u.Username, DisplayName: u.Name()}
}
