// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import "codeberg.org/oliverandrich/teamjoin/internal/config"

// Policy is the deployment configuration the sign-up pipeline runs under.
type Policy struct {
	ConfirmEmail        bool
	AdminEmail          string
	WorkEmailOnly       bool
	AllowedEmailDomains []string
	PasswordMinLength   int
}

// PolicyFromConfig copies the auth settings into a Policy.
func PolicyFromConfig(cfg config.AuthConfig) Policy {
	return Policy{
		ConfirmEmail:        cfg.ConfirmEmail,
		AdminEmail:          cfg.AdminEmail,
		WorkEmailOnly:       cfg.WorkEmailOnly,
		AllowedEmailDomains: cfg.AllowedEmailDomains,
		PasswordMinLength:   cfg.PasswordMinLength,
	}
}

// IsSiteAdmin reports whether email is the configured site administrator.
func IsSiteAdmin(p Policy, email string) bool {
	if email == "" {
		return false
	}
	return email == p.AdminEmail
}
