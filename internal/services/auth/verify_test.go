// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// joinAndCaptureToken signs Ann up and returns the mailed plaintext token.
func joinAndCaptureToken(t *testing.T, h *harness) string {
	t.Helper()
	_, err := h.svc.Join(context.Background(), annRequest())
	require.NoError(t, err)
	h.svc.Wait()
	require.Len(t, h.mailer.sent, 1)
	return h.mailer.sent[0].Token
}

func TestVerifyEmail(t *testing.T) {
	h := newHarness(Policy{ConfirmEmail: true})
	token := joinAndCaptureToken(t, h)

	err := h.svc.VerifyEmail(context.Background(), token)

	require.NoError(t, err)
	user := h.store.user("ann@company.com")
	require.NotNil(t, user.EmailVerifiedAt)
	assert.Equal(t, fixedNow, *user.EmailVerifiedAt)
	assert.Empty(t, h.store.tokens)
}

func TestVerifyEmail_SingleUse(t *testing.T) {
	h := newHarness(Policy{ConfirmEmail: true})
	token := joinAndCaptureToken(t, h)
	require.NoError(t, h.svc.VerifyEmail(context.Background(), token))

	err := h.svc.VerifyEmail(context.Background(), token)

	requireKind(t, err, ErrInvalidVerificationToken, http.StatusBadRequest)
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	h := newHarness(Policy{ConfirmEmail: true})

	for _, token := range []string{"", "   ", "deadbeef"} {
		err := h.svc.VerifyEmail(context.Background(), token)

		aerr := requireKind(t, err, ErrInvalidVerificationToken, http.StatusBadRequest)
		assert.Equal(t, "Invalid verification token.", aerr.Message)
	}
}

func TestVerifyEmail_Expired(t *testing.T) {
	h := newHarness(Policy{ConfirmEmail: true})
	token := joinAndCaptureToken(t, h)
	h.svc.now = func() time.Time { return fixedNow.Add(VerificationTokenTTL + time.Second) }

	err := h.svc.VerifyEmail(context.Background(), token)

	aerr := requireKind(t, err, ErrExpiredVerificationToken, http.StatusBadRequest)
	assert.Equal(t, "Verification token expired.", aerr.Message)
	assert.Nil(t, h.store.user("ann@company.com").EmailVerifiedAt)
	assert.Empty(t, h.store.tokens)
}

func TestVerifyEmail_AtExpiryIsValid(t *testing.T) {
	h := newHarness(Policy{ConfirmEmail: true})
	token := joinAndCaptureToken(t, h)
	h.svc.now = func() time.Time { return fixedNow.Add(VerificationTokenTTL) }

	assert.NoError(t, h.svc.VerifyEmail(context.Background(), token))
}

func TestVerifyEmail_UserGone(t *testing.T) {
	h := newHarness(Policy{ConfirmEmail: true})
	token := joinAndCaptureToken(t, h)
	delete(h.store.users, "ann@company.com")

	err := h.svc.VerifyEmail(context.Background(), token)

	requireKind(t, err, ErrInvalidVerificationToken, http.StatusBadRequest)
}

func TestGenerateToken(t *testing.T) {
	plain1, hash1, err := GenerateToken()
	require.NoError(t, err)
	plain2, _, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, plain1, TokenLength*2)
	assert.Len(t, hash1, 64)
	assert.Equal(t, HashToken(plain1), hash1)
	assert.NotEqual(t, plain1, plain2)
}

func TestVerificationTokenTTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, VerificationTokenTTL)
}
