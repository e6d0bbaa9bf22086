// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// User is a registered account as persisted by a user store.
// PasswordHash is a bcrypt digest and must never leave the service layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserSummary is the public projection of a User.
type UserSummary struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// Summary returns the public projection of the user.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// The result is the uniqueness key for users.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
