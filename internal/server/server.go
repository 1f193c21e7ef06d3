// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/config"
	"codeberg.org/oliverandrich/teamjoin/internal/handlers"
	"codeberg.org/oliverandrich/teamjoin/internal/services/auth"
	"codeberg.org/oliverandrich/teamjoin/internal/services/metrics"
	"codeberg.org/oliverandrich/teamjoin/internal/services/notify"
	"codeberg.org/oliverandrich/teamjoin/internal/services/recaptcha"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/metric"
)

const shutdownTimeout = 10 * time.Second

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	app, err := Bootstrap(config.NewFromCLI(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.Config
	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"confirm_email", cfg.Auth.ConfirmEmail,
		"recaptcha", cfg.Recaptcha.Enabled(),
	)

	provider, err := metrics.NewProvider(ctx, cfg.Metrics)
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}

	signup := NewSignupService(app, provider)
	e := NewEcho(cfg, handlers.New(signup, app.DB))

	return startWithGracefulShutdown(ctx, e, cfg, signup, provider)
}

// NewSignupService wires the sign-up pipeline to the app's collaborators.
func NewSignupService(app *App, provider metric.MeterProvider) *auth.Service {
	cfg := app.Config
	deps := auth.Deps{
		Users:       app.Repo,
		Invitations: app.Repo,
		Teams:       app.Repo,
		Tokens:      app.Repo,
		Hasher:      auth.BcryptHasher{},
		BotCheck:    recaptcha.NewVerifier(cfg.Recaptcha, nil),
		Metrics:     metrics.NewRecorder(provider, cfg.Metrics.ServiceName),
		Notifier:    notify.New(cfg.Slack.WebhookURL),
	}
	if app.Mailer != nil {
		deps.Mailer = app.Mailer
	}
	return auth.NewService(deps, auth.PolicyFromConfig(cfg.Auth))
}

// NewEcho creates the Echo instance with middleware and routes.
func NewEcho(cfg *config.Config, h *handlers.Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	setupMiddleware(e, cfg)
	setupRoutes(e, h, cfg)

	return e
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers, cfg *config.Config) {
	e.GET("/health", h.Health)

	api := e.Group("/api/auth")
	api.Any("/join", h.Join, joinRateLimiter(cfg.RateLimit))
	api.GET("/verify-email", h.VerifyEmail)
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

type waiter interface {
	Wait()
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config, background waiter, provider shutdowner) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("shutting down server", "reason", ctx.Err())
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdown(shutdownCtx, e, background, provider)

	slog.Info("server stopped")
	return nil
}

// shutdown stops accepting requests, lets post-signup work finish and
// flushes metrics, all bounded by ctx.
func shutdown(ctx context.Context, e shutdowner, background waiter, provider shutdowner) {
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	done := make(chan struct{})
	go func() {
		background.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("background work still running at shutdown")
	}

	if err := provider.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown metrics", "error", err)
	}
}
