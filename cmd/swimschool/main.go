package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/swimschool/internal/config"
	"github.com/dukerupert/swimschool/internal/database"
	"github.com/dukerupert/swimschool/internal/email"
	"github.com/dukerupert/swimschool/internal/handler"
	"github.com/dukerupert/swimschool/internal/logging"
	"github.com/dukerupert/swimschool/internal/metrics"
	"github.com/dukerupert/swimschool/internal/notify"
	"github.com/dukerupert/swimschool/internal/server"
	"github.com/dukerupert/swimschool/internal/session"
	"github.com/dukerupert/swimschool/internal/store"
	"github.com/dukerupert/swimschool/internal/submission"
	"github.com/dukerupert/swimschool/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	metrics.Register()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transport, err := newTransport(cfg.Mail, logger)
	if err != nil {
		slog.Error("failed to set up mail transport", "error", err)
		os.Exit(1)
	}
	dispatcher, err := notify.New(transport, notify.Config{
		From:       cfg.Mail.From,
		OwnerEmail: cfg.Mail.Owner,
		SiteName:   cfg.Mail.SiteName,
	}, logger.With("component", "notify"))
	if err != nil {
		slog.Error("failed to load mail templates", "error", err)
		os.Exit(1)
	}

	sessionStore, memSessions, err := newSessionStore(cfg.Session)
	if err != nil {
		slog.Error("failed to set up session store", "error", err)
		os.Exit(1)
	}
	sessions := session.NewManager(sessionStore, session.Options{
		Secure: cfg.Session.SecureCookie,
		TTL:    cfg.Session.TTL,
	}, logger.With("component", "session"))

	templates, err := handler.ParseTemplates(web.Templates)
	if err != nil {
		slog.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	bookings := submission.NewBookingService(store.NewBookingStore(db), dispatcher, submission.BookingConfig{
		Policy:       cfg.Forms.Booking.Policy,
		CoursePeriod: cfg.Forms.Booking.CoursePeriod,
		TimeSlots:    cfg.Forms.Booking.TimeSlots,
		BaseURL:      cfg.BaseURL,
	}, logger.With("component", "booking"))
	contacts := submission.NewContactService(store.NewContactStore(db), dispatcher,
		cfg.Forms.Contact, logger.With("component", "contact"))

	srv := server.New(db, bookings, contacts, sessions, templates, server.Config{
		SiteName:      cfg.Mail.SiteName,
		ThrottleRPS:   cfg.Throttle.RPS,
		ThrottleBurst: cfg.Throttle.Burst,
	}, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if memSessions != nil {
					if n := memSessions.Cleanup(); n > 0 {
						slog.Info("cleaned up expired sessions", "count", n)
					}
				}
				srv.IPLimiter().Cleanup(time.Hour)
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("swimschool starting",
			"addr", ":"+cfg.Port,
			"mail", cfg.Mail.Transport,
			"sessions", cfg.Session.Backend,
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func newTransport(cfg config.MailConfig, logger *slog.Logger) (email.Transport, error) {
	if cfg.Transport == "postmark" {
		return email.NewClient(cfg.PostmarkToken, email.WithMessageStream(cfg.MessageStream)), nil
	}
	return email.NewLogTransport(logger.With("component", "mail")), nil
}

// newSessionStore also returns the in-memory store, if used, so main can
// sweep it periodically. Redis expires keys on its own.
func newSessionStore(cfg config.SessionConfig) (session.Store, *session.MemoryStore, error) {
	if cfg.Backend != "redis" {
		mem := session.NewMemoryStore(cfg.TTL)
		return mem, mem, nil
	}
	client, err := session.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(client, cfg.TTL), nil, nil
}
