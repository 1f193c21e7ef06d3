// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/database"
	"codeberg.org/oliverandrich/teamjoin/internal/models"
	"codeberg.org/oliverandrich/teamjoin/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// NewTestUser creates a test user in the database.
func NewTestUser(t *testing.T, repo *repository.Repository, name, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// NewTestTeam creates a test team in the database.
func NewTestTeam(t *testing.T, repo *repository.Repository, name, slug string) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, Slug: slug}
	require.NoError(t, repo.CreateTeam(context.Background(), team))
	return team
}

// NewTestInvitation creates an invitation for team. A non-empty email marks
// the invitation as sent via email.
func NewTestInvitation(t *testing.T, repo *repository.Repository, team *models.Team, token, email string, expiresAt time.Time) *models.Invitation {
	t.Helper()
	inv := &models.Invitation{
		Token:     token,
		TeamID:    team.ID,
		ExpiresAt: expiresAt,
	}
	if email != "" {
		inv.Email = &email
		inv.SentViaEmail = true
	}
	require.NoError(t, repo.CreateInvitation(context.Background(), inv))
	inv.Team = models.InvitationTeam{Slug: team.Slug, Name: team.Name}
	return inv
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
