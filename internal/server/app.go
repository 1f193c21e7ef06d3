// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/teamjoin/internal/config"
	"codeberg.org/oliverandrich/teamjoin/internal/database"
	"codeberg.org/oliverandrich/teamjoin/internal/i18n"
	"codeberg.org/oliverandrich/teamjoin/internal/repository"
	"codeberg.org/oliverandrich/teamjoin/internal/services/email"
	"github.com/vinovest/sqlx"
)

// App holds the resources shared by the server and the management commands.
type App struct {
	Config *config.Config
	DB     *sqlx.DB
	Repo   *repository.Repository
	// Mailer is nil when SMTP is not configured.
	Mailer *email.Service
}

// Bootstrap validates cfg, configures logging and opens the database.
func Bootstrap(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := i18n.Init(); err != nil {
		return nil, fmt.Errorf("failed to init i18n: %w", err)
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Repo:   repository.New(db),
	}

	if cfg.SMTP.Configured() {
		mailer, err := email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set up email: %w", err)
		}
		app.Mailer = mailer
	} else {
		slog.Info("smtp not configured, emails disabled")
	}

	return app, nil
}

// Close releases the database.
func (a *App) Close() {
	if err := a.DB.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}
