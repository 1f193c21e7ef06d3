// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"net/http"

	"codeberg.org/oliverandrich/teamjoin/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// SignupService is the part of auth.Service the handlers use.
type SignupService interface {
	Join(ctx context.Context, req auth.JoinRequest) (auth.JoinResult, error)
	VerifyEmail(ctx context.Context, token string) error
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	signup SignupService
	db     Pinger
}

// New creates a new Handlers instance. db may be nil.
func New(signup SignupService, db Pinger) *Handlers {
	return &Handlers{signup: signup, db: db}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	if h.db != nil {
		if err := h.db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
