// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestUser_EmailVerified(t *testing.T) {
	user := &models.User{}
	assert.False(t, user.EmailVerified())

	now := time.Now()
	user.EmailVerifiedAt = &now
	assert.True(t, user.EmailVerified())
}

func TestInvitation_IsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{"future", now.Add(time.Hour), false},
		{"exactly now", now, false},
		{"past", now.Add(-time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &models.Invitation{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.expected, inv.IsExpired(now))
		})
	}
}

func TestInvitation_BoundEmail(t *testing.T) {
	inv := &models.Invitation{}
	assert.Empty(t, inv.BoundEmail())

	email := "ann@company.com"
	inv.Email = &email
	assert.Equal(t, "ann@company.com", inv.BoundEmail())
}

func TestVerificationToken_IsExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, (&models.VerificationToken{ExpiresAt: now.Add(time.Minute)}).IsExpired(now))
	assert.True(t, (&models.VerificationToken{ExpiresAt: now.Add(-time.Minute)}).IsExpired(now))
}
