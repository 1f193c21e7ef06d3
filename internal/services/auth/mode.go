// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import "codeberg.org/oliverandrich/teamjoin/internal/models"

// SignupMode tells how a sign-up reached the pipeline.
type SignupMode int

const (
	// ModeOrganic is a sign-up without invitation.
	ModeOrganic SignupMode = iota
	// ModeInviteLink is a sign-up through a shared invitation link.
	ModeInviteLink
	// ModeInviteEmail is a sign-up through an invitation mailed to one address.
	ModeInviteEmail
)

func (m SignupMode) String() string {
	switch m {
	case ModeInviteLink:
		return "invite_link"
	case ModeInviteEmail:
		return "invite_email"
	default:
		return "organic"
	}
}

// Invited reports whether the sign-up came through an invitation.
func (m SignupMode) Invited() bool {
	return m != ModeOrganic
}

// signup is the resolved shape of one request: its mode, the email the
// account is created for and the invitation, if any.
type signup struct {
	mode       SignupMode
	email      string
	invitation *models.Invitation
}

// resolveSignup derives the signup for a request. A mailed invitation binds
// the account to the invited address regardless of the email in the request.
func resolveSignup(inv *models.Invitation, requestEmail string) signup {
	switch {
	case inv == nil:
		return signup{mode: ModeOrganic, email: requestEmail}
	case inv.SentViaEmail:
		return signup{mode: ModeInviteEmail, email: inv.BoundEmail(), invitation: inv}
	default:
		return signup{mode: ModeInviteLink, email: requestEmail, invitation: inv}
	}
}

// verifiedOnCreate reports whether the account starts with a verified email.
// Receiving an invitation counts as verification.
func (s signup) verifiedOnCreate() bool {
	return s.mode.Invited()
}

func (s signup) teamSlug() string {
	if s.invitation == nil {
		return ""
	}
	return s.invitation.Team.Slug
}
