// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/teamjoin/internal/i18n"
	"codeberg.org/oliverandrich/teamjoin/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// JoinRequest is the request body for signing up.
type JoinRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	InviteToken    string `json:"inviteToken"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// Join signs up a new user. Only POST is accepted; the route is registered
// for every method so others get a 405 in the JSON envelope.
func (h *Handlers) Join(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return MethodNotAllowed(c, http.MethodPost)
	}

	var req JoinRequest
	if err := c.Bind(&req); err != nil {
		return JSONError(c, http.StatusBadRequest,
			i18n.TOr(c.Request().Context(), "error_invalid_request", nil, "Invalid request body."))
	}

	res, err := h.signup.Join(c.Request().Context(), auth.JoinRequest{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		InviteToken:    req.InviteToken,
		RecaptchaToken: req.RecaptchaToken,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, DataBody{Data: map[string]bool{
		"confirmEmail": res.ConfirmEmail,
	}})
}

// VerifyEmail consumes the token from an emailed verification link.
func (h *Handlers) VerifyEmail(c echo.Context) error {
	if err := h.signup.VerifyEmail(c.Request().Context(), c.QueryParam("token")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, DataBody{Data: map[string]bool{
		"verified": true,
	}})
}
