// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// VerificationToken stores a hashed single-use email confirmation token.
// Identifier is the email address being confirmed.
type VerificationToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64     `db:"id" json:"id"`
	Identifier string    `db:"identifier" json:"identifier"`
	TokenHash  string    `db:"token_hash" json:"-"` // SHA256 hash
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// IsExpired reports whether the token is past its expiry at now.
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
