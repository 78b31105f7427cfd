package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadcapture_backend/internal/analytics"
	"leadcapture_backend/internal/catalog"
	"leadcapture_backend/internal/email"
	"leadcapture_backend/internal/events"
	apphttp "leadcapture_backend/internal/http"
	"leadcapture_backend/internal/http/router"
	"leadcapture_backend/internal/leads"
	"leadcapture_backend/internal/leads/intake"
	leadsrepo "leadcapture_backend/internal/leads/repository"
	leadsvc "leadcapture_backend/internal/leads/service"
	"leadcapture_backend/internal/notification"
	"leadcapture_backend/internal/scheduler"
	"leadcapture_backend/platform/cache"
	"leadcapture_backend/platform/config"
	"leadcapture_backend/platform/db"
	"leadcapture_backend/platform/logger"
	"leadcapture_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	redisClient := initRedis(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	notifyClient, closeNotify := initNotificationClient(cfg, log)
	if closeNotify != nil {
		defer closeNotify()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadStore := leadsrepo.New(pool)

	catalogModule := catalog.NewModule(pool)
	statuses := catalogModule.Repository()

	// Shared validator instance for dependency injection
	val := validator.New()

	intakeService := intake.NewService(leadStore, statuses, eventBus, log)
	managementService := leadsvc.New(leadStore, statuses, eventBus, val, log)
	leadsModule := leads.NewModule(intakeService, managementService)

	analyticsModule := analytics.NewModule(
		leadStore, redisClient, cfg.AnalyticsCacheTTL, cfg.AnalyticsMaxRows, eventBus, log)

	// Notification subscriber queues new-lead emails for the worker process,
	// or sends them inline when no queue is configured.
	var enqueuer scheduler.NotificationEnqueuer
	if notifyClient != nil {
		enqueuer = notifyClient
	}
	var inlineSender email.Sender
	if notifyClient == nil && cfg.EmailEnabled {
		inlineSender = email.NewSMTPSender(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.EmailFromAddress, cfg.EmailFromName)
	}
	if enqueuer != nil || inlineSender != nil {
		notification.NewSubscriber(enqueuer, inlineSender, cfg.NotifyAddress, log).Register(eventBus)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			analyticsModule,
			catalogModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; analytics cache disabled")
		return nil
	}

	client, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable; analytics cache disabled", "error", err)
		return nil
	}
	return client
}

func initNotificationClient(cfg *config.Config, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; lead notifications disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize notification client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
