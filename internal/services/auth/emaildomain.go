// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"bufio"
	_ "embed"
	"strings"
)

//go:embed free_email_domains.txt
var freeEmailDomainsList string

var freeEmailDomains = func() map[string]struct{} {
	domains := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(freeEmailDomainsList))
	for scanner.Scan() {
		d := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if d != "" && !strings.HasPrefix(d, "#") {
			domains[d] = struct{}{}
		}
	}
	return domains
}()

// emailDomain returns the lower-cased part after the last "@".
func emailDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// IsFreeEmailDomain reports whether domain belongs to a public mail provider.
func IsFreeEmailDomain(domain string) bool {
	_, ok := freeEmailDomains[strings.ToLower(domain)]
	return ok
}

// checkEmailDomain applies the domain policy. An explicit allowlist wins
// over the work-email rule.
func checkEmailDomain(p Policy, email string) *Error {
	domain := emailDomain(email)

	if len(p.AllowedEmailDomains) > 0 {
		for _, allowed := range p.AllowedEmailDomains {
			if domain == allowed || strings.HasSuffix(domain, "."+allowed) {
				return nil
			}
		}
		return domainNotAllowedError()
	}

	if p.WorkEmailOnly && IsFreeEmailDomain(domain) {
		return workEmailOnlyError()
	}
	return nil
}
