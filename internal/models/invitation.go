// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Invitation binds a prospective sign-up to a team until it expires.
// Email is set only for invitations addressed to a specific person.
type Invitation struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64     `db:"id" json:"id"`
	Token        string    `db:"token" json:"-"`
	Email        *string   `db:"email" json:"email,omitempty"`
	SentViaEmail bool      `db:"sent_via_email" json:"sent_via_email"`
	TeamID       int64     `db:"team_id" json:"team_id"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Team InvitationTeam `db:"team" json:"team"`
}

// InvitationTeam is the slice of the team loaded together with an invitation.
type InvitationTeam struct {
	Slug string `db:"slug" json:"slug"`
	Name string `db:"name" json:"name"`
}

// IsExpired reports whether the invitation can no longer be used at now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// BoundEmail returns the address the invitation was sent to, if any.
func (i *Invitation) BoundEmail() string {
	if i.Email == nil {
		return ""
	}
	return *i.Email
}
