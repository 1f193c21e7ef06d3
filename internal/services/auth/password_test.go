// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordValidator(t *testing.T) {
	v := NewPasswordValidator(8)

	tests := []struct {
		name     string
		password string
		attrs    []string
		problems []string
	}{
		{"strong", "Str0ngP@ss", []string{"ann@company.com"}, nil},
		{"too short", "Ab1!", nil, []string{"must be at least 8 characters"}},
		{"too long", strings.Repeat("Ab1!", 18), nil, []string{"must not exceed 70 characters"}},
		{"numeric", "5829301746", nil, []string{"cannot be entirely numeric"}},
		{"common", "Password123", nil, []string{"is too common"}},
		{"common and numeric", "12345678", nil, []string{"cannot be entirely numeric", "is too common"}},
		{"contains email", "xann@company.comx", []string{"ann@company.com"}, []string{"is too similar to your email"}},
		{"similar to email", "anncompany.com", []string{"ann@company.com"}, []string{"is too similar to your email"}},
		{"empty attribute ignored", "Str0ngP@ss", []string{""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.problems, v.Validate(tt.password, tt.attrs...))
		})
	}
}

func TestPasswordValidator_CountsRunes(t *testing.T) {
	v := NewPasswordValidator(8)

	assert.Nil(t, v.Validate("pässwörtéß"))
	assert.NotNil(t, v.Validate("äöüßäöü"))
}

func TestNewPasswordValidator_Defaults(t *testing.T) {
	assert.Equal(t, DefaultPasswordMinLength, NewPasswordValidator(0).MinLength)
	assert.Equal(t, 12, NewPasswordValidator(12).MinLength)
	assert.Equal(t, PasswordMaxLength, NewPasswordValidator(12).MaxLength)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("abc", "abc"), 0.001)
	assert.InDelta(t, 0.0, similarity("", "abc"), 0.001)
	assert.InDelta(t, 0.5, similarity("abcd", "ab"), 0.001)
	assert.Equal(t, 3, longestCommonSubsequence("abcde", "ace"))
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("Str0ngP@ss")

	assert.NoError(t, err)
	assert.NotEqual(t, "Str0ngP@ss", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Str0ngP@ss")))
}
