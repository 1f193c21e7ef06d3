// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/teamjoin/internal/models"
)

const selectInvitation = `
SELECT i.id, i.token, i.email, i.sent_via_email, i.team_id, i.expires_at, i.created_at,
       t.slug AS "team.slug", t.name AS "team.name"
FROM invitations i
JOIN teams t ON t.id = i.team_id`

// CreateInvitation inserts an invitation for an existing team.
func (r *Repository) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	inv.CreatedAt = r.now()
	inv.ExpiresAt = inv.ExpiresAt.UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (token, email, sent_via_email, team_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.Token, inv.Email, inv.SentViaEmail, inv.TeamID, inv.ExpiresAt, inv.CreatedAt)
	if err != nil {
		return wrapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	inv.ID = id
	return nil
}

// GetInvitationByToken retrieves an invitation and its team by token.
func (r *Repository) GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := r.db.GetContext(ctx, &inv, selectInvitation+` WHERE i.token = ?`, token); err != nil {
		return nil, wrapError(err)
	}
	return &inv, nil
}

// ListTeamInvitations returns a team's invitations, newest first.
func (r *Repository) ListTeamInvitations(ctx context.Context, teamID int64) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := r.db.SelectContext(ctx, &invs, selectInvitation+` WHERE i.team_id = ? ORDER BY i.id DESC`, teamID)
	if err != nil {
		return nil, err
	}
	return invs, nil
}
