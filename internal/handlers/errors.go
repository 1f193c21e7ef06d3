// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/teamjoin/internal/i18n"
	"codeberg.org/oliverandrich/teamjoin/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Error ErrorMessage `json:"error"`
}

// ErrorMessage carries the user-facing message.
type ErrorMessage struct {
	Message string `json:"message"`
}

// DataBody is the envelope of every successful response.
type DataBody struct {
	Data any `json:"data"`
}

// JSONError writes the error envelope with status.
func JSONError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorBody{Error: ErrorMessage{Message: message}})
}

// MethodNotAllowed answers a request whose method is not in allowed.
func MethodNotAllowed(c echo.Context, allowed string) error {
	method := c.Request().Method
	c.Response().Header().Set(echo.HeaderAllow, allowed)
	msg := i18n.TOr(c.Request().Context(), "error_method_not_allowed",
		map[string]any{"Method": method}, fmt.Sprintf("Method %s Not Allowed", method))
	return JSONError(c, http.StatusMethodNotAllowed, msg)
}

// respondError maps an error returned by a service to the envelope. Errors
// other than *auth.Error become a 500 with a generic message.
func respondError(c echo.Context, err error) error {
	ctx := c.Request().Context()

	var aerr *auth.Error
	if !errors.As(err, &aerr) {
		slog.ErrorContext(ctx, "request_failed", "path", c.Path(), "error", err)
		return JSONError(c, http.StatusInternalServerError,
			i18n.TOr(ctx, "error_unexpected", nil, "Something went wrong"))
	}

	status := aerr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request_failed", "path", c.Path(), "kind", aerr.Kind.String(), "error", err)
	}
	return JSONError(c, status, i18n.TOr(ctx, aerr.MessageID, aerr.Data, aerr.Message))
}

// HTTPErrorHandler renders framework errors (unknown routes, oversized
// bodies, rate limits, panics) with the same envelope as handler errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	ctx := c.Request().Context()
	status := http.StatusInternalServerError
	var message string

	var he *echo.HTTPError
	var aerr *auth.Error
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	} else if errors.As(err, &aerr) {
		if rerr := respondError(c, err); rerr != nil {
			slog.ErrorContext(ctx, "error_response_failed", "error", rerr)
		}
		return
	}

	switch status {
	case http.StatusNotFound:
		message = i18n.TOr(ctx, "error_not_found", nil, "Not Found")
	case http.StatusMethodNotAllowed:
		if rerr := MethodNotAllowed(c, c.Response().Header().Get(echo.HeaderAllow)); rerr != nil {
			slog.ErrorContext(ctx, "error_response_failed", "error", rerr)
		}
		return
	case http.StatusTooManyRequests:
		message = i18n.TOr(ctx, "error_too_many_requests", nil, "Too many requests")
	case http.StatusInternalServerError:
		slog.ErrorContext(ctx, "unhandled_error", "path", c.Request().URL.Path, "error", err)
		message = i18n.TOr(ctx, "error_unexpected", nil, "Something went wrong")
	}
	if message == "" {
		message = http.StatusText(status)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = JSONError(c, status, message)
	}
	if werr != nil {
		slog.ErrorContext(ctx, "error_response_failed", "error", werr)
	}
}
