// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// TokenLength is the number of random bytes in a verification token.
	TokenLength = 32
	// VerificationTokenTTL is how long a verification token stays valid.
	VerificationTokenTTL = 24 * time.Hour
)

// GenerateToken returns a random hex token and its SHA-256 hash. Only the
// hash is stored; the plaintext goes into the email.
func GenerateToken() (plaintext, hash string, err error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	plaintext = hex.EncodeToString(b)
	return plaintext, HashToken(plaintext), nil
}

// HashToken returns the hex-encoded SHA-256 of a plaintext token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
