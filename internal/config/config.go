// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host    string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port    string `env:"APP_PORT" envDefault:"8080"`
	Env     string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser     string `env:"POSTGRES_USER" envDefault:"hirexfed"`
	DBPassword string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName     string `env:"POSTGRES_DB" envDefault:"hirexfed"`

	// Valkey (Redis-compatible cache + sessions)
	ValkeyHost     string `env:"VALKEY_HOST" envDefault:"localhost"`
	ValkeyPort     string `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`

	// S3-compatible object storage. When unset, files go to UploadDir.
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3BucketPublic  string `env:"S3_BUCKET_PUBLIC" envDefault:"hirexfed-public"`
	S3BucketPrivate string `env:"S3_BUCKET_PRIVATE" envDefault:"hirexfed-private"`
	S3PublicURL     string `env:"S3_PUBLIC_URL"`
	UploadDir       string `env:"UPLOAD_DIR" envDefault:"./data/uploads"`

	// Outgoing mail
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@hirexfed.com"`

	// Notification routing
	DefaultRecipients []string `env:"DEFAULT_RECIPIENTS" envSeparator:","`
	OwnerAlertEmails  []string `env:"OWNER_ALERT_EMAILS" envSeparator:","`
	SlackWebhookURL   string   `env:"SLACK_WEBHOOK_URL"`
	SlackMention      string   `env:"SLACK_MENTION"`

	// Intake email deny-lists. Empty means the built-in defaults.
	DisposableDomains []string `env:"DISPOSABLE_EMAIL_DOMAINS" envSeparator:","`
	PlaceholderLocals []string `env:"PLACEHOLDER_EMAIL_LOCAL_PARTS" envSeparator:","`

	// Bootstrap admin account created on first start.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@hirexfed.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DefaultRecipients = cleanList(cfg.DefaultRecipients)
	cfg.OwnerAlertEmails = cleanList(cfg.OwnerAlertEmails)
	cfg.DisposableDomains = cleanList(cfg.DisposableDomains)
	cfg.PlaceholderLocals = cleanList(cfg.PlaceholderLocals)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.IsProduction() {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminPassword == "admin" {
			return nil, fmt.Errorf("ADMIN_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
// Destructive maintenance commands are only allowed without --force here.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// S3Enabled reports whether object storage credentials are configured.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

// cleanList trims entries, lowercases them and drops empties.
func cleanList(in []string) []string {
	var out []string
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
