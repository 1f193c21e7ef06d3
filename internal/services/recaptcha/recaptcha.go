// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package recaptcha verifies reCAPTCHA response tokens against the
// siteverify API.
package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/config"
)

var (
	// ErrMissingToken is returned when checks are enabled but no token was sent.
	ErrMissingToken = errors.New("recaptcha token missing")
	// ErrRejected is returned when the API does not accept the token.
	ErrRejected = errors.New("recaptcha token rejected")
)

const defaultTimeout = 10 * time.Second

// Verifier checks tokens. A Verifier without keys accepts everything.
type Verifier struct {
	cfg    config.RecaptchaConfig
	client *http.Client
}

// NewVerifier creates a verifier. A nil client gets a default with timeout.
func NewVerifier(cfg config.RecaptchaConfig, client *http.Client) *Verifier {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Verifier{cfg: cfg, client: client}
}

// Enabled reports whether tokens are actually checked.
func (v *Verifier) Enabled() bool {
	return v.cfg.Enabled()
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks token. It returns nil when verification is disabled.
func (v *Verifier) Verify(ctx context.Context, token string) error {
	if !v.Enabled() {
		return nil
	}
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}

	form := url.Values{
		"secret":   {v.cfg.SecretKey},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building recaptcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling recaptcha: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recaptcha returned status %d", resp.StatusCode)
	}

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding recaptcha response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("%w: %s", ErrRejected, strings.Join(result.ErrorCodes, ","))
	}

	return nil
}
