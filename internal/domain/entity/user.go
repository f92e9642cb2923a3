package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in Password; plaintext never persists.
// Sessions is the embedded list of refresh sessions for this user, one per
// logged-in device. It is kept small and scanned linearly on validation.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Sessions  []Session `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is a (refresh token, expiry) pair embedded under a user.
// ExpiresAt is epoch milliseconds. A session never transitions back to valid
// once expired or revoked; expired sessions are not pruned, only ignored.
type Session struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	Revoked   bool   `json:"revoked"`
}

// Expired reports whether the session expiry has elapsed at the given instant.
func (s Session) Expired(now time.Time) bool {
	return now.UnixMilli() >= s.ExpiresAt
}

// Live reports whether the session can still mint access tokens: the token is
// neither revoked nor expired.
func (s Session) Live(now time.Time) bool {
	return !s.Revoked && !s.Expired(now)
}
