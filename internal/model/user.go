// Package model defines the data structures used throughout the application.
//
// The same types travel through every layer: the server's repositories scan
// rows into them, the handlers encode them as JSON, and the terminal client
// decodes them back and keeps them in its state store. JSON tags are therefore
// the wire contract and follow the snake_case names of the stored records.
package model

import "time"

// User is an account of the built-in authentication provider.
//
// Accounts are created either by email/password sign-up or by the first GitHub
// OAuth login. PasswordHash is empty for GitHub-only accounts and GitHubID is
// zero for email/password accounts. The ID is a UUID and doubles as the
// profile ID and the owner ID of every log.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	PasswordHash string    `json:"-"          db:"password_hash"` // never serialised
	GitHubID     int64     `json:"github_id,omitempty"  db:"github_id"`
	Login        string    `json:"login,omitempty"      db:"login"`
	AvatarURL    string    `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
