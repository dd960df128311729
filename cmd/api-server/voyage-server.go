package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"assistancevoyage/db"
	"assistancevoyage/db/migrations"
	"assistancevoyage/internal/auth"
	"assistancevoyage/internal/config"
	"assistancevoyage/internal/dossier"
	"assistancevoyage/internal/flash"
	"assistancevoyage/internal/handlers"
	"assistancevoyage/internal/logging"
	"assistancevoyage/internal/mailer"
	"assistancevoyage/internal/media"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	dbConn, err := sqlx.Connect("postgres", cfg.PostgresConn)
	if err != nil {
		slog.Error("cannot connect to DB", "err", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		slog.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	flashStore, err := newFlashStore(cfg)
	if err != nil {
		slog.Error("cannot create flash store", "err", err)
		os.Exit(1)
	}

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store, handlers.Options{
		Files: media.NewStore(cfg.MediaRoot, cfg.MediaURL),
		Mailer: mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}),
		Flash:          flashStore,
		AdminEmail:     cfg.AdminEmail,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Policy:         dossier.Policy{StrictReview: cfg.StrictReview},
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h.Routes(r, auth.Middleware([]byte(cfg.JWTSecret)))

	// uploaded documents and guide forms
	mediaPrefix := "/" + strings.Trim(cfg.MediaURL, "/") + "/"
	r.Handle(mediaPrefix+"*", http.StripPrefix(mediaPrefix, http.FileServer(http.Dir(cfg.MediaRoot))))

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddress, "strict_review", cfg.StrictReview, "flash_store", cfg.FlashStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
}

func newFlashStore(cfg config.Config) (flash.Store, error) {
	if cfg.FlashStore != "redis" {
		return flash.NewMemoryStore(), nil
	}
	client, err := flash.NewRedisClient(&flash.RedisConfig{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		Namespace: cfg.RedisNamespace,
	})
	if err != nil {
		return nil, err
	}
	return flash.NewRedisStore(client, cfg.RedisNamespace), nil
}
