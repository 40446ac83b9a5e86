package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	emailPkg "bookclub/internal/adapters/email"
	web "bookclub/internal/adapters/http"
	"bookclub/internal/adapters/http/metrics"
	"bookclub/internal/adapters/http/middleware"
	"bookclub/internal/adapters/storage"
	bookStore "bookclub/internal/adapters/storage/book"
	galleryStore "bookclub/internal/adapters/storage/gallery"
	meetupStore "bookclub/internal/adapters/storage/meetup"
	memberStore "bookclub/internal/adapters/storage/member"
	portalStore "bookclub/internal/adapters/storage/portal"
	profileStore "bookclub/internal/adapters/storage/profile"
	suggestionStore "bookclub/internal/adapters/storage/suggestion"
	voteStore "bookclub/internal/adapters/storage/vote"
	"bookclub/internal/application/orchestrators"
	"bookclub/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bookclub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if cfg.GeneratedSecrets {
		log.Warn("session or CSRF secret not configured; generated for this process only, sessions will not survive a restart")
	}

	// WAL mode, foreign keys and busy timeout on every connection
	db, err := sql.Open("sqlite", storage.DSN(cfg.DBPath))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	m := metrics.New()
	timedDB := storage.NewTimedDB(db, log, m, cfg.SlowQuery)
	defer timedDB.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := timedDB.PingContext(context.Background()); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.InitDB(db); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	log.Info("database initialized", zap.String("path", cfg.DBPath))

	stores := web.Stores{
		Profiles:    profileStore.NewSQLiteStore(timedDB),
		Members:     memberStore.NewSQLiteStore(timedDB),
		Books:       bookStore.NewSQLiteStore(timedDB),
		Suggestions: suggestionStore.NewSQLiteStore(timedDB),
		Votes:       voteStore.NewSQLiteStore(timedDB),
		Gallery:     galleryStore.NewSQLiteStore(timedDB),
		Meetups:     meetupStore.NewSQLiteStore(timedDB),
		Portal:      portalStore.NewSQLiteStore(timedDB),
	}

	var sender emailPkg.Sender
	if cfg.ResendAPIKey != "" {
		sender = emailPkg.NewRetryingSender(emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, log), log)
		log.Info("email sender configured", zap.String("provider", "resend"))
	} else {
		sender = emailPkg.NewNoopSender(log)
		if cfg.IsProduction() {
			log.Warn("RESEND_API_KEY is not set; email delivery is disabled in production")
		} else {
			log.Info("email sender configured", zap.String("provider", "noop"))
		}
	}
	mailer := emailPkg.NewMailer(sender, emailPkg.MailerConfig{
		From:    cfg.EmailFrom,
		ReplyTo: cfg.ReplyTo,
		AppURL:  cfg.AppURL,
	}, m, log)

	seed, err := orchestrators.ExecuteSeedAdmin(context.Background(), orchestrators.SeedAdminInput{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, orchestrators.SeedAdminDeps{ProfileStore: stores.Profiles})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if seed.Created {
		fields := []zap.Field{zap.String("email", cfg.AdminEmail), zap.String("profile_id", seed.ProfileID)}
		if seed.InviteToken != "" {
			fields = append(fields, zap.String("set_password_url", mailer.ResetURL(seed.InviteToken)))
		}
		log.Info("seeded super admin", fields...)
	}

	srv := web.NewServer(web.Config{
		Secure:      cfg.IsProduction(),
		CSRFKey:     cfg.CSRFKey,
		StaticDir:   cfg.StaticDir,
		RateLimit:   cfg.RateLimit,
		SlowRequest: cfg.SlowRequest,
	}, web.Deps{
		Stores:  stores,
		Mailer:  mailer,
		Issuer:  middleware.NewTokenIssuer(cfg.SessionSecret),
		Metrics: m,
		Log:     log,
		DB:      timedDB,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("version", version),
			zap.String("addr", cfg.Addr),
			zap.String("env", cfg.Env),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
