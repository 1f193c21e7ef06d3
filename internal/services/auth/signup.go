// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/teamjoin/internal/models"
	"codeberg.org/oliverandrich/teamjoin/internal/repository"
	"codeberg.org/oliverandrich/teamjoin/internal/services/metrics"
	"codeberg.org/oliverandrich/teamjoin/internal/services/notify"
	"codeberg.org/oliverandrich/teamjoin/internal/services/recaptcha"
)

// JoinRequest is one sign-up attempt.
type JoinRequest struct {
	Name           string
	Email          string
	Password       string
	InviteToken    string
	RecaptchaToken string
}

// JoinResult reports the outcome of a successful sign-up.
type JoinResult struct {
	// ConfirmEmail is true while the new account still has to verify its email.
	ConfirmEmail bool
	User         *models.User
	Mode         SignupMode
}

// Join runs the sign-up pipeline. Every failure is an *Error. Stages before
// user creation have no side effects; once the user exists it is kept even
// if issuing the verification email fails.
func (s *Service) Join(ctx context.Context, req JoinRequest) (JoinResult, error) {
	if err := s.checkBot(ctx, req.RecaptchaToken); err != nil {
		return JoinResult{}, err
	}

	inv, err := s.resolveInvitation(ctx, req.InviteToken)
	if err != nil {
		return JoinResult{}, err
	}

	su := resolveSignup(inv, strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)

	if verr := validateJoinFields(s.passwords, name, su.email, req.Password); verr != nil {
		return JoinResult{}, verr
	}

	if perr := checkEmailDomain(s.policy, su.email); perr != nil {
		slog.Info("signup_rejected", "reason", "email_domain", "domain", emailDomain(su.email))
		return JoinResult{}, perr
	}

	exists, err := s.users.EmailExists(ctx, su.email)
	if err != nil {
		return JoinResult{}, unexpectedError(fmt.Errorf("failed to check existing user: %w", err))
	}
	if exists {
		return JoinResult{}, conflictError(nil)
	}

	user, err := s.createUser(ctx, su, name, req.Password)
	if err != nil {
		return JoinResult{}, err
	}

	teamName, err := s.resolveTeamName(ctx, su)
	if err != nil {
		return JoinResult{}, unexpectedError(err)
	}

	if s.policy.ConfirmEmail && !user.EmailVerified() {
		if err := s.issueVerification(ctx, user); err != nil {
			slog.Error("signup_verification_failed", "user_id", user.ID, "error", err)
			return JoinResult{}, unexpectedError(err)
		}
	}

	slog.Info("signup_success", "user_id", user.ID, "email", user.Email, "mode", su.mode.String(), "team", su.teamSlug())

	s.afterSignup(ctx, user, su.mode, teamName)

	return JoinResult{
		ConfirmEmail: s.policy.ConfirmEmail && !user.EmailVerified(),
		User:         user,
		Mode:         su.mode,
	}, nil
}

func (s *Service) checkBot(ctx context.Context, token string) error {
	err := s.botCheck.Verify(ctx, token)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, recaptcha.ErrMissingToken):
		return captchaMissingError(err)
	case errors.Is(err, recaptcha.ErrRejected):
		slog.Info("signup_rejected", "reason", "captcha")
		return captchaFailedError(err)
	default:
		return unexpectedError(fmt.Errorf("bot check: %w", err))
	}
}

// resolveInvitation returns nil for requests without invite token. A token
// that matches nothing is an error, not an organic sign-up.
func (s *Service) resolveInvitation(ctx context.Context, token string) (*models.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	inv, err := s.invitations.GetInvitationByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invitationNotFoundError()
	}
	if err != nil {
		return nil, unexpectedError(fmt.Errorf("failed to load invitation: %w", err))
	}

	if inv.IsExpired(s.now()) {
		return nil, invitationExpiredError()
	}
	return inv, nil
}

func (s *Service) createUser(ctx context.Context, su signup, name, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, unexpectedError(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Name:         name,
		Email:        su.email,
		PasswordHash: hash,
		IsAdmin:      IsSiteAdmin(s.policy, su.email),
	}
	if su.verifiedOnCreate() {
		now := s.now()
		user.EmailVerifiedAt = &now
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost the race against a concurrent sign-up for the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError(err)
		}
		return nil, unexpectedError(fmt.Errorf("failed to create user: %w", err))
	}
	return user, nil
}

// resolveTeamName loads the invitation's team for the notification. A team
// deleted in the meantime yields an empty name.
func (s *Service) resolveTeamName(ctx context.Context, su signup) (string, error) {
	slug := su.teamSlug()
	if slug == "" {
		return "", nil
	}
	team, err := s.teams.GetTeamBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("signup_team_missing", "slug", slug)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load team: %w", err)
	}
	return team.Name, nil
}

func (s *Service) issueVerification(ctx context.Context, user *models.User) error {
	if s.mailer == nil {
		return errors.New("email confirmation required but no mailer configured")
	}

	plaintext, hash, err := GenerateToken()
	if err != nil {
		return err
	}

	token := &models.VerificationToken{
		Identifier: user.Email,
		TokenHash:  hash,
		ExpiresAt:  s.now().Add(VerificationTokenTTL),
	}
	if err := s.tokens.CreateVerificationToken(ctx, token); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.Name, plaintext); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// afterSignup records the metric and posts the alert without holding up the
// response. Failures are logged only.
func (s *Service) afterSignup(ctx context.Context, user *models.User, mode SignupMode, teamName string) {
	ctx = context.WithoutCancel(ctx)

	text := "New user signed up"
	if mode.Invited() {
		text = "New user signed up via invitation"
	}
	alert := notify.Alert{
		Text: text,
		Fields: []notify.Field{
			{Title: "Name", Value: user.Name},
			{Title: "Email", Value: user.Email},
			{Title: "Team", Value: teamName},
		},
	}

	s.background.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("signup_background_panic", "user_id", user.ID, "panic", r)
			}
		}()

		s.metrics.Record(ctx, metrics.SignupEvent)

		if err := s.notifier.Alert(ctx, alert); err != nil {
			slog.Warn("signup_notify_failed", "user_id", user.ID, "error", err)
		}
	})
}
