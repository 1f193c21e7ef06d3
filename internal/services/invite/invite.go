// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package invite creates teams and the invitations that let people join them.
package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/models"
	"codeberg.org/oliverandrich/teamjoin/internal/repository"
	"codeberg.org/oliverandrich/teamjoin/internal/services/email"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// DefaultTTL is how long an invitation stays valid unless told otherwise.
const DefaultTTL = 7 * 24 * time.Hour

// maxSlugAttempts bounds the numeric suffixes tried for a taken slug.
const maxSlugAttempts = 100

var (
	ErrInvalidTeamName = errors.New("team name must contain at least one letter or digit")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidTTL      = errors.New("invitation lifetime must be positive")
	ErrTeamNotFound    = errors.New("team not found")
)

// Store persists teams and invitations.
type Store interface {
	CreateTeam(ctx context.Context, team *models.Team) error
	GetTeamBySlug(ctx context.Context, slug string) (*models.Team, error)
	TeamSlugExists(ctx context.Context, slug string) (bool, error)
	CreateInvitation(ctx context.Context, inv *models.Invitation) error
}

// Mailer delivers invitation emails.
type Mailer interface {
	SendInvitation(ctx context.Context, toEmail, teamName, token string, expiresAt time.Time) error
}

type Service struct {
	store   Store
	mailer  Mailer
	baseURL string
	now     func() time.Time
}

// NewService creates the service. mailer may be nil, in which case addressed
// invitations are created but not sent.
func NewService(store Store, mailer Mailer, baseURL string) *Service {
	return &Service{
		store:   store,
		mailer:  mailer,
		baseURL: baseURL,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateTeam creates a team with a slug derived from name. Taken slugs get
// a numeric suffix.
func (s *Service) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	base := slug.Make(name)
	if base == "" {
		return nil, ErrInvalidTeamName
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		exists, err := s.store.TeamSlugExists(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			team := &models.Team{Name: name, Slug: candidate}
			if err := s.store.CreateTeam(ctx, team); err != nil {
				return nil, fmt.Errorf("failed to create team: %w", err)
			}
			slog.Info("team_created", "team_id", team.ID, "slug", team.Slug)
			return team, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return nil, fmt.Errorf("no free slug for %q", name)
}

// InvitationParams describe an invitation to create.
type InvitationParams struct {
	TeamSlug string
	// Email binds the invitation to one address and mails it. Empty means a
	// shareable link.
	Email string
	TTL   time.Duration
}

// Issued is a created invitation together with its sign-up link.
type Issued struct {
	Invitation *models.Invitation
	JoinURL    string
	Mailed     bool
}

// CreateInvitation creates an invitation for an existing team.
func (s *Service) CreateInvitation(ctx context.Context, params InvitationParams) (*Issued, error) {
	ttl := params.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if ttl < 0 {
		return nil, ErrInvalidTTL
	}

	// Only the bare address is bound; sign-up compares against it verbatim.
	addr := strings.TrimSpace(params.Email)
	if addr != "" {
		parsed, err := mail.ParseAddress(addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, addr)
		}
		addr = parsed.Address
	}

	team, err := s.store.GetTeamBySlug(ctx, params.TeamSlug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, params.TeamSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}

	inv := &models.Invitation{
		Token:     uuid.NewString(),
		TeamID:    team.ID,
		ExpiresAt: s.now().Add(ttl),
		Team:      models.InvitationTeam{Slug: team.Slug, Name: team.Name},
	}
	if addr != "" {
		inv.Email = &addr
		inv.SentViaEmail = true
	}

	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	issued := &Issued{Invitation: inv, JoinURL: email.JoinURL(s.baseURL, inv.Token)}

	if addr != "" && s.mailer != nil {
		if err := s.mailer.SendInvitation(ctx, addr, team.Name, inv.Token, inv.ExpiresAt); err != nil {
			return issued, fmt.Errorf("invitation created but email failed: %w", err)
		}
		issued.Mailed = true
	}

	slog.Info("invitation_created", "invitation_id", inv.ID, "team", team.Slug, "mailed", issued.Mailed)
	return issued, nil
}
