// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/teamjoin/internal/repository"
)

// VerifyEmail consumes a verification token and marks its account verified.
// Tokens are single-use; all tokens of the account are removed on success.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalidVerificationTokenError()
	}

	vt, err := s.tokens.GetVerificationToken(ctx, HashToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		return invalidVerificationTokenError()
	}
	if err != nil {
		return unexpectedError(fmt.Errorf("failed to load verification token: %w", err))
	}

	now := s.now()
	if vt.IsExpired(now) {
		if err := s.tokens.DeleteVerificationToken(ctx, vt.ID); err != nil {
			slog.Warn("verification_token_cleanup_failed", "id", vt.ID, "error", err)
		}
		return expiredVerificationTokenError()
	}

	if err := s.users.MarkEmailVerified(ctx, vt.Identifier, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalidVerificationTokenError()
		}
		return unexpectedError(fmt.Errorf("failed to mark email verified: %w", err))
	}

	if err := s.tokens.DeleteVerificationTokensFor(ctx, vt.Identifier); err != nil {
		slog.Warn("verification_token_cleanup_failed", "identifier", vt.Identifier, "error", err)
	}

	slog.Info("email_verified", "email", vt.Identifier)
	return nil
}
