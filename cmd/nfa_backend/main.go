package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	portssvc "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/handlers"
	"github.com/samiti-tech/nonprofit_fund_app/internal/middleware"
	"github.com/samiti-tech/nonprofit_fund_app/internal/platform/config"
	"github.com/samiti-tech/nonprofit_fund_app/internal/repositories/database/pgsql"
	"github.com/samiti-tech/nonprofit_fund_app/pkg/database"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// logPublisher is the default event sink: it writes each outbox message to
// the structured log. Swap in a broker-backed EventPublisher to push events
// out of process.
type logPublisher struct {
	logger *slog.Logger
}

func (p *logPublisher) Publish(_ context.Context, msg domain.OutboxMessage) error {
	p.logger.Info("Publishing domain event",
		slog.String("message_id", msg.MessageID),
		slog.String("event_type", string(msg.Event.EventType)),
		slog.Time("occurred_at", msg.Event.OccurredAt),
	)
	return nil
}

// @title Nonprofit Fund App API
// @version 1.0
// @description Fund accounting backend: general ledger, donations and expenses.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		os.Exit(1)
	}

	// Wire repositories and services
	repos := pgsql.NewRepositoryProvider(dbPool)
	publisher := &logPublisher{logger: logger}
	serviceContainer := services.NewServiceContainer(cfg, repos, publisher)

	// Outbox dispatch loop
	scheduler := startOutboxScheduler(cfg, serviceContainer.Outbox, logger)
	defer scheduler.Stop()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT format", slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	// Stop the scheduler cleanly on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutdown signal received, stopping outbox scheduler")
		scheduler.Stop()
		os.Exit(0)
	}()

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations over a temporary
// database/sql connection, compatible with the pgx pool used at runtime.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		logger.Error("Failed to ping database for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// startOutboxScheduler runs the outbox dispatcher on the configured cron
// spec. Dispatch is at-least-once; a failed run just leaves messages for the
// next tick.
func startOutboxScheduler(cfg *config.Config, dispatcher portssvc.OutboxDispatcherSvc, logger *slog.Logger) *cron.Cron {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.OutboxPollSpec, func() {
		delivered, err := dispatcher.DispatchPending(context.Background())
		if err != nil {
			logger.Warn("Outbox dispatch run failed", slog.String("error", err.Error()), slog.Int("delivered", delivered))
			return
		}
		if delivered > 0 {
			logger.Info("Outbox dispatch run completed", slog.Int("delivered", delivered))
		}
	})
	if err != nil {
		logger.Error("Invalid OUTBOX_POLL_SPEC", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Outbox scheduler started", slog.String("spec", cfg.OutboxPollSpec))
	return scheduler
}
