// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Recaptcha RecaptchaConfig
	SMTP      SMTPConfig
	Slack     SlackConfig
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

// AuthConfig controls who may sign up and what happens after.
type AuthConfig struct { //nolint:govet // fieldalignment not critical for config structs
	ConfirmEmail        bool     // require email ownership verification for organic signups
	AdminEmail          string   // email of the site administrator
	WorkEmailOnly       bool     // reject free-mail providers
	AllowedEmailDomains []string // explicit allowlist, overrides WorkEmailOnly when set
	PasswordMinLength   int
}

type RecaptchaConfig struct {
	SiteKey   string
	SecretKey string
	VerifyURL string
}

// Enabled reports whether bot checks are configured.
func (c RecaptchaConfig) Enabled() bool {
	return c.SiteKey != "" && c.SecretKey != ""
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

// Configured reports whether outbound mail can be sent.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

type SlackConfig struct {
	WebhookURL string
}

type MetricsConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Enabled     bool
	Endpoint    string // OTLP/HTTP collector endpoint, host:port
	ServiceName string
}

type RateLimitConfig struct {
	JoinPerMinute int // 0 disables the limiter
	JoinBurst     int
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Auth: AuthConfig{
			ConfirmEmail:        cmd.Bool("confirm-email"),
			AdminEmail:          cmd.String("admin-email"),
			WorkEmailOnly:       cmd.Bool("work-email-only"),
			AllowedEmailDomains: normalizeDomains(cmd.StringSlice("allowed-email-domains")),
			PasswordMinLength:   int(cmd.Int("password-min-length")),
		},
		Recaptcha: RecaptchaConfig{
			SiteKey:   cmd.String("recaptcha-site-key"),
			SecretKey: cmd.String("recaptcha-secret-key"),
			VerifyURL: cmd.String("recaptcha-verify-url"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		Slack: SlackConfig{
			WebhookURL: cmd.String("slack-webhook-url"),
		},
		Metrics: MetricsConfig{
			Enabled:     cmd.Bool("metrics-enabled"),
			Endpoint:    cmd.String("metrics-endpoint"),
			ServiceName: cmd.String("metrics-service-name"),
		},
		RateLimit: RateLimitConfig{
			JoinPerMinute: int(cmd.Int("ratelimit-join-per-minute")),
			JoinBurst:     int(cmd.Int("ratelimit-join-burst")),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}
	cfg.Server.BaseURL = strings.TrimSuffix(cfg.Server.BaseURL, "/")

	return cfg
}

// Validate checks combinations of settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.ConfirmEmail && !c.SMTP.Configured() {
		errs = append(errs, errors.New("confirm-email requires smtp-host and smtp-from"))
	}
	if c.Auth.PasswordMinLength < 1 {
		errs = append(errs, errors.New("password-min-length must be positive"))
	}
	if c.Metrics.Enabled && c.Metrics.Endpoint == "" {
		errs = append(errs, errors.New("metrics-enabled requires metrics-endpoint"))
	}
	if c.RateLimit.JoinPerMinute < 0 || c.RateLimit.JoinBurst < 0 {
		errs = append(errs, errors.New("rate limit settings must not be negative"))
	}

	return errors.Join(errs...)
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	if host == "" {
		host = "localhost"
	}
	if cfg.Server.Port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
}

// normalizeDomains lowercases entries, strips a leading "@" and splits
// comma-separated values coming from env vars or TOML strings.
func normalizeDomains(values []string) []string {
	var domains []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			d := strings.ToLower(strings.TrimSpace(part))
			d = strings.TrimPrefix(d, "@")
			if d != "" {
				domains = append(domains, d)
			}
		}
	}
	return domains
}

func source(env, key string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(cli.EnvVar(env), toml.TOML(key, configFile))
}

// Flags returns the flags shared by all subcommands.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: source("HOST", "server.host"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: source("PORT", "server.port"),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Public base URL used in emailed links",
			Sources: source("BASE_URL", "server.base_url"),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: source("MAX_BODY_SIZE", "server.max_body_size"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: source("LOG_LEVEL", "log.level"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: source("LOG_FORMAT", "log.format"),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/app.db",
			Usage:   "Database DSN",
			Sources: source("DATABASE_DSN", "database.dsn"),
		},
		// Auth flags
		&cli.BoolFlag{
			Name:    "confirm-email",
			Usage:   "Require email confirmation for sign-ups without an invitation",
			Sources: source("CONFIRM_EMAIL", "auth.confirm_email"),
		},
		&cli.StringFlag{
			Name:    "admin-email",
			Usage:   "Email address of the site administrator",
			Sources: source("ADMIN_EMAIL", "auth.admin_email"),
		},
		&cli.BoolFlag{
			Name:    "work-email-only",
			Usage:   "Reject sign-ups from free email providers",
			Sources: source("WORK_EMAIL_ONLY", "auth.work_email_only"),
		},
		&cli.StringSliceFlag{
			Name:    "allowed-email-domains",
			Usage:   "Only accept sign-ups from these email domains",
			Sources: source("ALLOWED_EMAIL_DOMAINS", "auth.allowed_email_domains"),
		},
		&cli.IntFlag{
			Name:    "password-min-length",
			Value:   8,
			Usage:   "Minimum password length",
			Sources: source("PASSWORD_MIN_LENGTH", "auth.password_min_length"),
		},
		// reCAPTCHA flags
		&cli.StringFlag{
			Name:    "recaptcha-site-key",
			Usage:   "reCAPTCHA site key (bot check disabled if empty)",
			Sources: source("RECAPTCHA_SITE_KEY", "recaptcha.site_key"),
		},
		&cli.StringFlag{
			Name:    "recaptcha-secret-key",
			Usage:   "reCAPTCHA secret key (bot check disabled if empty)",
			Sources: source("RECAPTCHA_SECRET_KEY", "recaptcha.secret_key"),
		},
		&cli.StringFlag{
			Name:    "recaptcha-verify-url",
			Value:   "https://www.google.com/recaptcha/api/siteverify",
			Usage:   "reCAPTCHA verification endpoint",
			Sources: source("RECAPTCHA_VERIFY_URL", "recaptcha.verify_url"),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP server host",
			Sources: source("SMTP_HOST", "smtp.host"),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: source("SMTP_PORT", "smtp.port"),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: source("SMTP_USERNAME", "smtp.username"),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: source("SMTP_PASSWORD", "smtp.password"),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "Sender address for outgoing mail",
			Sources: source("SMTP_FROM", "smtp.from"),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Usage:   "Sender display name for outgoing mail",
			Sources: source("SMTP_FROM_NAME", "smtp.from_name"),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Use TLS for SMTP",
			Sources: source("SMTP_TLS", "smtp.tls"),
		},
		// Notification flags
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "Slack incoming webhook for sign-up notifications (disabled if empty)",
			Sources: source("SLACK_WEBHOOK_URL", "slack.webhook_url"),
		},
		// Metrics flags
		&cli.BoolFlag{
			Name:    "metrics-enabled",
			Usage:   "Export metrics via OTLP/HTTP",
			Sources: source("METRICS_ENABLED", "metrics.enabled"),
		},
		&cli.StringFlag{
			Name:    "metrics-endpoint",
			Value:   "localhost:4318",
			Usage:   "OTLP/HTTP collector endpoint",
			Sources: source("METRICS_ENDPOINT", "metrics.endpoint"),
		},
		&cli.StringFlag{
			Name:    "metrics-service-name",
			Value:   "teamjoin",
			Usage:   "Service name reported with metrics",
			Sources: source("METRICS_SERVICE_NAME", "metrics.service_name"),
		},
		// Rate limit flags
		&cli.IntFlag{
			Name:    "ratelimit-join-per-minute",
			Value:   10,
			Usage:   "Sign-up attempts per minute per client IP (0 disables)",
			Sources: source("RATELIMIT_JOIN_PER_MINUTE", "ratelimit.join_per_minute"),
		},
		&cli.IntFlag{
			Name:    "ratelimit-join-burst",
			Value:   5,
			Usage:   "Sign-up burst size per client IP",
			Sources: source("RATELIMIT_JOIN_BURST", "ratelimit.join_burst"),
		},
	}
}
