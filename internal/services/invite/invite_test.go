// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package invite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/services/invite"
	"codeberg.org/oliverandrich/teamjoin/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentInvitation struct {
	To, Team, Token string
	ExpiresAt       time.Time
}

type fakeMailer struct {
	sent []sentInvitation
	err  error
}

func (f *fakeMailer) SendInvitation(_ context.Context, toEmail, teamName, token string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentInvitation{To: toEmail, Team: teamName, Token: token, ExpiresAt: expiresAt})
	return nil
}

func TestCreateTeam(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, "https://example.com")

	team, err := svc.CreateTeam(context.Background(), "  Acme Corp  ")

	require.NoError(t, err)
	assert.NotZero(t, team.ID)
	assert.Equal(t, "Acme Corp", team.Name)
	assert.Equal(t, "acme-corp", team.Slug)
}

func TestCreateTeam_SlugCollision(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, "https://example.com")
	ctx := context.Background()

	first, err := svc.CreateTeam(ctx, "Acme Corp")
	require.NoError(t, err)
	second, err := svc.CreateTeam(ctx, "acme corp")
	require.NoError(t, err)
	third, err := svc.CreateTeam(ctx, "ACME-Corp")
	require.NoError(t, err)

	assert.Equal(t, "acme-corp", first.Slug)
	assert.Equal(t, "acme-corp-2", second.Slug)
	assert.Equal(t, "acme-corp-3", third.Slug)
}

func TestCreateTeam_InvalidName(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, "https://example.com")

	for _, name := range []string{"", "   ", "!!!"} {
		_, err := svc.CreateTeam(context.Background(), name)
		assert.ErrorIs(t, err, invite.ErrInvalidTeamName, "name %q", name)
	}
}

func TestCreateInvitation_Link(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	mailer := &fakeMailer{}
	svc := invite.NewService(repo, mailer, "https://example.com/")
	team := testutil.NewTestTeam(t, repo, "Acme", "acme")

	before := time.Now().UTC()
	issued, err := svc.CreateInvitation(context.Background(), invite.InvitationParams{TeamSlug: "acme"})

	require.NoError(t, err)
	inv := issued.Invitation
	assert.Equal(t, team.ID, inv.TeamID)
	assert.False(t, inv.SentViaEmail)
	assert.Nil(t, inv.Email)
	assert.False(t, issued.Mailed)
	assert.Empty(t, mailer.sent)
	assert.WithinDuration(t, before.Add(invite.DefaultTTL), inv.ExpiresAt, 5*time.Second)
	assert.Equal(t, "https://example.com/auth/join?token="+inv.Token, issued.JoinURL)

	_, err = uuid.Parse(inv.Token)
	assert.NoError(t, err)

	stored, err := repo.GetInvitationByToken(context.Background(), inv.Token)
	require.NoError(t, err)
	assert.Equal(t, "acme", stored.Team.Slug)
}

func TestCreateInvitation_Email(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	mailer := &fakeMailer{}
	svc := invite.NewService(repo, mailer, "https://example.com")
	testutil.NewTestTeam(t, repo, "Acme", "acme")

	issued, err := svc.CreateInvitation(context.Background(), invite.InvitationParams{
		TeamSlug: "acme",
		Email:    "bob@company.com",
		TTL:      time.Hour,
	})

	require.NoError(t, err)
	assert.True(t, issued.Mailed)
	assert.True(t, issued.Invitation.SentViaEmail)
	assert.Equal(t, "bob@company.com", issued.Invitation.BoundEmail())

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "bob@company.com", mailer.sent[0].To)
	assert.Equal(t, "Acme", mailer.sent[0].Team)
	assert.Equal(t, issued.Invitation.Token, mailer.sent[0].Token)
	assert.Equal(t, issued.Invitation.ExpiresAt, mailer.sent[0].ExpiresAt)
}

func TestCreateInvitation_EmailWithDisplayName(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	mailer := &fakeMailer{}
	svc := invite.NewService(repo, mailer, "https://example.com")
	testutil.NewTestTeam(t, repo, "Acme", "acme")

	issued, err := svc.CreateInvitation(context.Background(), invite.InvitationParams{
		TeamSlug: "acme",
		Email:    "Ann <ann@company.com>",
	})

	require.NoError(t, err)
	assert.Equal(t, "ann@company.com", issued.Invitation.BoundEmail())
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ann@company.com", mailer.sent[0].To)

	stored, err := repo.GetInvitationByToken(context.Background(), issued.Invitation.Token)
	require.NoError(t, err)
	assert.Equal(t, "ann@company.com", stored.BoundEmail())
}

func TestCreateInvitation_EmailWithoutMailer(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, "https://example.com")
	testutil.NewTestTeam(t, repo, "Acme", "acme")

	issued, err := svc.CreateInvitation(context.Background(), invite.InvitationParams{
		TeamSlug: "acme",
		Email:    "bob@company.com",
	})

	require.NoError(t, err)
	assert.False(t, issued.Mailed)
	assert.True(t, issued.Invitation.SentViaEmail)
}

func TestCreateInvitation_MailFailureKeepsInvitation(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, &fakeMailer{err: errors.New("smtp down")}, "https://example.com")
	testutil.NewTestTeam(t, repo, "Acme", "acme")

	issued, err := svc.CreateInvitation(context.Background(), invite.InvitationParams{
		TeamSlug: "acme",
		Email:    "bob@company.com",
	})

	require.Error(t, err)
	require.NotNil(t, issued)
	assert.False(t, issued.Mailed)

	_, err = repo.GetInvitationByToken(context.Background(), issued.Invitation.Token)
	assert.NoError(t, err)
}

func TestCreateInvitation_Errors(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, "https://example.com")
	testutil.NewTestTeam(t, repo, "Acme", "acme")
	ctx := context.Background()

	_, err := svc.CreateInvitation(ctx, invite.InvitationParams{TeamSlug: "missing"})
	assert.ErrorIs(t, err, invite.ErrTeamNotFound)

	_, err = svc.CreateInvitation(ctx, invite.InvitationParams{TeamSlug: "acme", Email: "not an email"})
	assert.ErrorIs(t, err, invite.ErrInvalidEmail)

	_, err = svc.CreateInvitation(ctx, invite.InvitationParams{TeamSlug: "acme", TTL: -time.Hour})
	assert.ErrorIs(t, err, invite.ErrInvalidTTL)
}
