// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth admits new accounts: the sign-up pipeline, its error
// taxonomy and email verification.
package auth

import (
	"context"
	"sync"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/models"
	"codeberg.org/oliverandrich/teamjoin/internal/services/metrics"
	"codeberg.org/oliverandrich/teamjoin/internal/services/notify"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists accounts. CreateUser must fail with
// repository.ErrDuplicate when the email is taken.
type UserStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	MarkEmailVerified(ctx context.Context, email string, at time.Time) error
}

// InvitationStore looks up invitations. Misses return repository.ErrNotFound.
type InvitationStore interface {
	GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error)
}

// TeamStore looks up teams. Misses return repository.ErrNotFound.
type TeamStore interface {
	GetTeamBySlug(ctx context.Context, slug string) (*models.Team, error)
}

// TokenStore persists hashed verification tokens.
type TokenStore interface {
	CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error
	GetVerificationToken(ctx context.Context, tokenHash string) (*models.VerificationToken, error)
	DeleteVerificationToken(ctx context.Context, id int64) error
	DeleteVerificationTokensFor(ctx context.Context, identifier string) error
}

// Hasher turns a plaintext password into a storable hash.
type Hasher interface {
	Hash(password string) (string, error)
}

// BotChecker verifies an anti-abuse token. See recaptcha.Verifier.
type BotChecker interface {
	Verify(ctx context.Context, token string) error
}

// Mailer delivers the verification email.
type Mailer interface {
	SendVerification(ctx context.Context, toEmail, name, token string) error
}

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost int
}

// Hash implements Hasher. A zero Cost uses bcrypt.DefaultCost.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Deps are the collaborators of the Service. Users, Invitations, Teams and
// Tokens are required; the rest fall back to permissive or no-op versions.
type Deps struct {
	Users       UserStore
	Invitations InvitationStore
	Teams       TeamStore
	Tokens      TokenStore
	Hasher      Hasher
	BotCheck    BotChecker
	Mailer      Mailer
	Metrics     metrics.Recorder
	Notifier    notify.Notifier
}

type allowAll struct{}

func (allowAll) Verify(context.Context, string) error { return nil }

type Service struct {
	users       UserStore
	invitations InvitationStore
	teams       TeamStore
	tokens      TokenStore
	hasher      Hasher
	botCheck    BotChecker
	mailer      Mailer
	metrics     metrics.Recorder
	notifier    notify.Notifier

	policy    Policy
	passwords *PasswordValidator
	now       func() time.Time

	background sync.WaitGroup
}

func NewService(deps Deps, policy Policy) *Service {
	s := &Service{
		users:       deps.Users,
		invitations: deps.Invitations,
		teams:       deps.Teams,
		tokens:      deps.Tokens,
		hasher:      deps.Hasher,
		botCheck:    deps.BotCheck,
		mailer:      deps.Mailer,
		metrics:     deps.Metrics,
		notifier:    deps.Notifier,
		policy:      policy,
		passwords:   NewPasswordValidator(policy.PasswordMinLength),
		now:         func() time.Time { return time.Now().UTC() },
	}
	if s.hasher == nil {
		s.hasher = BcryptHasher{}
	}
	if s.botCheck == nil {
		s.botCheck = allowAll{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop{}
	}
	if s.notifier == nil {
		s.notifier = notify.Noop{}
	}
	return s
}

// Wait blocks until background work started by Join has finished.
func (s *Service) Wait() {
	s.background.Wait()
}
