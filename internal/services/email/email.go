// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/config"
	"codeberg.org/oliverandrich/teamjoin/internal/i18n"
	"github.com/wneessen/go-mail"
)

// Service renders and sends transactional emails over SMTP.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
	send    func(ctx context.Context, msg *mail.Msg) error
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	s := &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	s.send = s.dialAndSend
	return s, nil
}

// VerificationURL returns the link that confirms an email address.
func (s *Service) VerificationURL(token string) string {
	return fmt.Sprintf("%s/api/auth/verify-email?token=%s", s.baseURL, url.QueryEscape(token))
}

// JoinURL returns the sign-up link for an invitation token.
func (s *Service) JoinURL(token string) string {
	return JoinURL(s.baseURL, token)
}

// JoinURL builds the sign-up link for an invitation token below baseURL.
func JoinURL(baseURL, token string) string {
	return fmt.Sprintf("%s/auth/join?token=%s", strings.TrimSuffix(baseURL, "/"), url.QueryEscape(token))
}

// SendVerification sends the account confirmation email.
func (s *Service) SendVerification(ctx context.Context, toEmail, name, token string) error {
	msg, err := s.verificationMessage(ctx, toEmail, name, token)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

// SendInvitation sends a team invitation email.
func (s *Service) SendInvitation(ctx context.Context, toEmail, teamName, token string, expiresAt time.Time) error {
	msg, err := s.invitationMessage(ctx, toEmail, teamName, token, expiresAt)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

func (s *Service) verificationMessage(ctx context.Context, to, name, token string) (*mail.Msg, error) {
	subject := i18n.T(ctx, "email_verification_subject")
	body := i18n.TData(ctx, "email_verification_body", map[string]any{
		"Name":      name,
		"VerifyURL": s.VerificationURL(token),
	})
	return s.newMessage(to, subject, body)
}

func (s *Service) invitationMessage(ctx context.Context, to, teamName, token string, expiresAt time.Time) (*mail.Msg, error) {
	data := map[string]any{"Team": teamName}
	subject := i18n.TData(ctx, "email_invitation_subject", data)
	body := i18n.TData(ctx, "email_invitation_body", map[string]any{
		"Team":      teamName,
		"JoinURL":   s.JoinURL(token),
		"ExpiresAt": expiresAt.UTC().Format("2006-01-02 15:04 MST"),
	})
	return s.newMessage(to, subject, body)
}

func (s *Service) newMessage(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// dialAndSend delivers msg via SMTP using go-mail.
func (s *Service) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS on 465, STARTTLS elsewhere
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
