// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"net/http"
	"strings"
)

// Kind classifies a sign-up failure.
type Kind int

const (
	KindUnexpected Kind = iota
	KindAuthorization
	KindInvalidInvitation
	KindExpiredInvitation
	KindValidation
	KindPolicy
	KindConflict
	KindInvalidVerificationToken
	KindExpiredVerificationToken
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindInvalidInvitation:
		return "invalid_invitation"
	case KindExpiredInvitation:
		return "expired_invitation"
	case KindValidation:
		return "validation"
	case KindPolicy:
		return "policy"
	case KindConflict:
		return "conflict"
	case KindInvalidVerificationToken:
		return "invalid_verification_token"
	case KindExpiredVerificationToken:
		return "expired_verification_token"
	default:
		return "unexpected"
	}
}

// FieldError describes why a single request field was rejected.
type FieldError struct {
	Field   string
	Message string
}

// Error is a classified failure with an HTTP status and a user-facing message.
// Message is English; MessageID and Data allow the HTTP layer to localize it.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	MessageID string
	Data      map[string]any
	Fields    []FieldError
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrAuthorization            = &Error{Kind: KindAuthorization}
	ErrInvalidInvitation        = &Error{Kind: KindInvalidInvitation}
	ErrExpiredInvitation        = &Error{Kind: KindExpiredInvitation}
	ErrValidation               = &Error{Kind: KindValidation}
	ErrPolicy                   = &Error{Kind: KindPolicy}
	ErrConflict                 = &Error{Kind: KindConflict}
	ErrUnexpected               = &Error{Kind: KindUnexpected}
	ErrInvalidVerificationToken = &Error{Kind: KindInvalidVerificationToken}
	ErrExpiredVerificationToken = &Error{Kind: KindExpiredVerificationToken}
)

func captchaMissingError(cause error) *Error {
	return &Error{
		Kind:      KindAuthorization,
		Status:    http.StatusBadRequest,
		Message:   "Invalid captcha",
		MessageID: "error_captcha_missing",
		cause:     cause,
	}
}

func captchaFailedError(cause error) *Error {
	return &Error{
		Kind:      KindAuthorization,
		Status:    http.StatusBadRequest,
		Message:   "Invalid captcha. Please try again.",
		MessageID: "error_captcha_failed",
		cause:     cause,
	}
}

func invitationNotFoundError() *Error {
	return &Error{
		Kind:      KindInvalidInvitation,
		Status:    http.StatusNotFound,
		Message:   "Invitation not found.",
		MessageID: "error_invitation_not_found",
	}
}

func invitationExpiredError() *Error {
	return &Error{
		Kind:      KindExpiredInvitation,
		Status:    http.StatusBadRequest,
		Message:   "Invitation expired. Please request a new one.",
		MessageID: "error_invitation_expired",
	}
}

func validationError(fields []FieldError) *Error {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(names) == 0 || names[len(names)-1] != f.Field {
			names = append(names, f.Field)
		}
	}
	joined := strings.Join(names, ", ")
	return &Error{
		Kind:      KindValidation,
		Status:    http.StatusBadRequest,
		Message:   "Validation Error: " + joined,
		MessageID: "error_validation",
		Data:      map[string]any{"Fields": joined},
		Fields:    fields,
	}
}

func workEmailOnlyError() *Error {
	return &Error{
		Kind:   KindPolicy,
		Status: http.StatusBadRequest,
		Message: "We currently only accept work email addresses for sign-up. " +
			"Please use your work email to create an account. " +
			"If you don't have a work email, feel free to contact our support team for assistance.",
		MessageID: "error_work_email_only",
	}
}

func domainNotAllowedError() *Error {
	return &Error{
		Kind:   KindPolicy,
		Status: http.StatusBadRequest,
		Message: "Sign-up is restricted to approved email domains. " +
			"Please use your work email to create an account or contact our support team for assistance.",
		MessageID: "error_email_domain_not_allowed",
	}
}

func conflictError(cause error) *Error {
	return &Error{
		Kind:      KindConflict,
		Status:    http.StatusBadRequest,
		Message:   "An user with this email already exists.",
		MessageID: "error_user_exists",
		cause:     cause,
	}
}

func unexpectedError(cause error) *Error {
	return &Error{
		Kind:      KindUnexpected,
		Status:    http.StatusInternalServerError,
		Message:   "Something went wrong",
		MessageID: "error_unexpected",
		cause:     cause,
	}
}

func invalidVerificationTokenError() *Error {
	return &Error{
		Kind:      KindInvalidVerificationToken,
		Status:    http.StatusBadRequest,
		Message:   "Invalid verification token.",
		MessageID: "error_verification_token_invalid",
	}
}

func expiredVerificationTokenError() *Error {
	return &Error{
		Kind:      KindExpiredVerificationToken,
		Status:    http.StatusBadRequest,
		Message:   "Verification token expired.",
		MessageID: "error_verification_token_expired",
	}
}
