// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/teamjoin/internal/models"
)

// CreateVerificationToken stores a hashed verification token.
func (r *Repository) CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	token.CreatedAt = r.now()
	token.ExpiresAt = token.ExpiresAt.UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_tokens (identifier, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		token.Identifier, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return wrapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	token.ID = id
	return nil
}

// GetVerificationToken retrieves a verification token by hash.
func (r *Repository) GetVerificationToken(ctx context.Context, tokenHash string) (*models.VerificationToken, error) {
	var token models.VerificationToken
	err := r.db.GetContext(ctx, &token, `SELECT * FROM verification_tokens WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// DeleteVerificationToken deletes a token by ID.
func (r *Repository) DeleteVerificationToken(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE id = ?`, id)
	return err
}

// DeleteVerificationTokensFor deletes all tokens issued for an identifier.
func (r *Repository) DeleteVerificationTokensFor(ctx context.Context, identifier string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE identifier = ?`, identifier)
	return err
}

// CountVerificationTokensFor returns how many tokens exist for an identifier.
func (r *Repository) CountVerificationTokensFor(ctx context.Context, identifier string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM verification_tokens WHERE identifier = ?`, identifier)
	return count, err
}
