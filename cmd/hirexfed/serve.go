// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hirexfed/internal/cache"
	"hirexfed/internal/config"
	"hirexfed/internal/database"
	"hirexfed/internal/engine"
	"hirexfed/internal/handlers"
	"hirexfed/internal/intake"
	"hirexfed/internal/middleware"
	"hirexfed/internal/notify"
	"hirexfed/internal/pages"
	"hirexfed/internal/render"
	"hirexfed/internal/router"
	"hirexfed/internal/session"
	"hirexfed/internal/storage"
	"hirexfed/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE:  runServe,
}

// Login and 2FA attempts per client IP.
const (
	loginLimit  = 10
	loginWindow = 15 * time.Minute
)

// Intake submissions per client IP.
const (
	intakeLimit  = 5
	intakeWindow = time.Minute
)

// blobStores holds where site images and intake attachments live.
type blobStores struct {
	media    storage.ObjectStore
	uploads  storage.ObjectStore
	mediaURL func(key string) string
}

// openBlobStores uses the S3 buckets when configured: site images in the
// public bucket, attachments in the private one. Otherwise both live
// under UploadDir and images are served through /media/.
func openBlobStores(cfg *config.Config) (*blobStores, error) {
	if cfg.S3Enabled() {
		client, err := storage.NewClient(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3PublicURL)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		public := client.Bucket(cfg.S3BucketPublic, true)
		slog.Info("s3 storage configured",
			"endpoint", cfg.S3Endpoint,
			"public_bucket", cfg.S3BucketPublic,
			"private_bucket", cfg.S3BucketPrivate,
		)
		return &blobStores{
			media:    public,
			uploads:  client.Bucket(cfg.S3BucketPrivate, false),
			mediaURL: public.URL,
		}, nil
	}

	disk, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	slog.Warn("s3 storage not configured, using local directory", "dir", cfg.UploadDir)
	return &blobStores{
		media:    disk,
		uploads:  disk,
		mediaURL: func(key string) string { return "/media/" + key },
	}, nil
}

// newNotifier builds the submission notifier from whichever channels are
// configured. Missing channels are skipped, never fatal.
func newNotifier(cfg *config.Config) (*notify.Dispatcher, error) {
	var mailer *notify.Mailer
	if cfg.SMTPHost != "" {
		var err error
		mailer, err = notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			return nil, fmt.Errorf("smtp: %w", err)
		}
	} else {
		slog.Warn("smtp not configured, submission emails disabled")
	}

	var slack *notify.Slack
	if cfg.SlackWebhookURL != "" {
		slack = notify.NewSlack(cfg.SlackWebhookURL, cfg.SlackMention)
	}
	return notify.NewDispatcher(mailer, slack, cfg.DefaultRecipients, cfg.OwnerAlertEmails), nil
}

// newIntakeService wires the intake service to its stores, the upload
// store and the notifier.
func newIntakeService(cfg *config.Config, db *sql.DB, blobs *blobStores, notifier intake.Notifier) *intake.Service {
	return intake.NewService(intake.Repositories{
		Forms:       store.NewFormStore(db),
		Submissions: store.NewSubmissionStore(db),
		Files:       store.NewFileStore(db),
	}, blobs.uploads, notifier, intake.NewEmailValidator(cfg.DisposableDomains, cfg.PlaceholderLocals), cfg.BaseURL)
}

// openDatabase connects to PostgreSQL and applies pending migrations.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if err := database.EnsureAdmin(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	// Valkey holds sessions on db 0 and the page cache on db 1 so a cache
	// flush never logs staff out.
	sessionClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, 0)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer sessionClient.Close()
	cacheClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, 1)
	if err != nil {
		return fmt.Errorf("connect valkey cache: %w", err)
	}
	defer cacheClient.Close()

	blobs, err := openBlobStores(cfg)
	if err != nil {
		return err
	}
	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}

	secureCookies := cfg.SecureCookies()
	sessionStore := session.NewStore(sessionClient, secureCookies)

	renderer, err := render.New(cfg.IsDev(), blobs.mediaURL)
	if err != nil {
		return fmt.Errorf("admin templates: %w", err)
	}
	eng, err := engine.New(blobs.mediaURL)
	if err != nil {
		return fmt.Errorf("public templates: %w", err)
	}

	stores := handlers.Stores{
		Users:       store.NewUserStore(db),
		Pages:       store.NewPageStore(db),
		Sections:    store.NewSectionStore(db),
		Site:        store.NewSiteStore(db),
		Navigation:  store.NewNavigationStore(db),
		Forms:       store.NewFormStore(db),
		Submissions: store.NewSubmissionStore(db),
		Files:       store.NewFileStore(db),
	}
	pageService := pages.NewService(pages.Repositories{
		Pages:      stores.Pages,
		Sections:   stores.Sections,
		Site:       stores.Site,
		Navigation: stores.Navigation,
	})
	intakeService := newIntakeService(cfg, db, blobs, notifier)
	pageCache := cache.NewPageCache(cacheClient, cache.DefaultPageTTL)

	adminHandlers := handlers.NewAdmin(renderer, sessionStore, stores, pageService, intakeService, blobs.media, pageCache)
	authHandlers := handlers.NewAuth(renderer, sessionStore, stores.Users)
	publicHandlers := handlers.NewPublic(eng, pageService, intakeService, sessionStore, blobs.media, pageCache, cfg.BaseURL)

	loginLimiter := middleware.NewRateLimiter(loginLimit, loginWindow)
	defer loginLimiter.Stop()
	intakeLimiter := middleware.NewRateLimiter(intakeLimit, intakeWindow)
	defer intakeLimiter.Stop()

	r := router.New(sessionStore, adminHandlers, authHandlers, publicHandlers, router.Options{
		SecureCookies: secureCookies,
		LoginLimiter:  loginLimiter,
		IntakeLimiter: intakeLimiter,
	})

	// WriteTimeout covers streaming attachment downloads; ReadTimeout
	// covers multipart uploads up to the intake size limit.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
