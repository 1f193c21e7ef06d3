// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/teamjoin/internal/models"
)

// CreateTeam inserts a team. A taken slug yields ErrDuplicate.
func (r *Repository) CreateTeam(ctx context.Context, team *models.Team) error {
	team.CreatedAt = r.now()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (name, slug, created_at) VALUES (?, ?, ?)`,
		team.Name, team.Slug, team.CreatedAt)
	if err != nil {
		return wrapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	team.ID = id
	return nil
}

// GetTeamBySlug retrieves a team by slug.
func (r *Repository) GetTeamBySlug(ctx context.Context, slug string) (*models.Team, error) {
	var team models.Team
	if err := r.db.GetContext(ctx, &team, `SELECT * FROM teams WHERE slug = ?`, slug); err != nil {
		return nil, wrapError(err)
	}
	return &team, nil
}

// TeamSlugExists checks if a team with the given slug exists.
func (r *Repository) TeamSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM teams WHERE slug = ?)`, slug)
	return exists, err
}
