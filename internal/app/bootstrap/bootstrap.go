package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	agentdirectory "agentdesk/contexts/identity-access/agent-directory"
	"agentdesk/contexts/identity-access/agent-directory/adapters/phone"
	identitypostgres "agentdesk/contexts/identity-access/agent-directory/adapters/postgres"
	"agentdesk/contexts/identity-access/agent-directory/adapters/security"
	identitycommands "agentdesk/contexts/identity-access/agent-directory/application/commands"
	distributionservice "agentdesk/contexts/list-distribution/distribution-service"
	distributionpostgres "agentdesk/contexts/list-distribution/distribution-service/adapters/postgres"
	workerapp "agentdesk/contexts/list-distribution/distribution-service/application/workers"
	"agentdesk/internal/app/bridge"
	"agentdesk/internal/platform/config"
	"agentdesk/internal/platform/db"
	"agentdesk/internal/platform/httpserver"
	"agentdesk/internal/platform/messaging"
	"agentdesk/internal/platform/metrics"
	"agentdesk/internal/shared/outbox"

	"golang.org/x/crypto/bcrypt"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	// relay is set in in-memory mode, where no separate worker can see the outbox.
	relay  *WorkerApp
	logger *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	notifier     workerapp.AssignmentNotifier
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, os.Stdout).With("service", cfg.ServiceName, "process", "api")
	slog.SetDefault(logger)

	tokens, err := security.NewJWTCodec(cfg.JWTSecret, cfg.ServiceName, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	hasher := security.BcryptHasher{Cost: bcrypt.DefaultCost}
	phones := phone.Validator{}

	var registry *metrics.Registry
	if cfg.EnableMetrics {
		registry = metrics.NewRegistry(metricsNamespace(cfg.ServiceName))
	}
	distributionConfig := distributionservice.Config{
		PoolSize:       cfg.DistributionPoolSize,
		MaxUploadBytes: cfg.UploadMaxBytes,
	}
	if registry != nil {
		distributionConfig.Metrics = registry
	}

	app := &APIApp{logger: logger}
	var identity agentdirectory.Module
	var distribution distributionservice.Module

	if cfg.InMemory() {
		logger.Warn("POSTGRES_DSN not set, running with in-memory storage",
			"event", "bootstrap_in_memory_mode",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		identity = agentdirectory.NewInMemoryModule(hasher, tokens, phones, logger)
		distribution = distributionservice.NewInMemoryModule(
			bridge.AgentWorkers{Users: identity.Store},
			distributionConfig,
			logger,
		)
		if err := seedAdmin(context.Background(), identity, cfg, logger); err != nil {
			return nil, err
		}

		bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
		if err != nil {
			return nil, err
		}
		app.relay = &WorkerApp{
			outboxRelay:  distribution.OutboxRelay(bus, outbox.DefaultRelayBatchSize, logger),
			notifier:     distribution.AssignmentNotifier(bus, logger),
			pollInterval: cfg.WorkerPollInterval,
			logger:       logger,
		}
	} else {
		pg, err := connect(cfg)
		if err != nil {
			return nil, err
		}
		app.postgres = pg

		users := identitypostgres.NewRepository(pg.DB, logger)
		batches := distributionpostgres.NewRepository(pg.DB, logger)
		if cfg.AutoMigrate {
			if err := db.Migrate(context.Background(), users, batches); err != nil {
				_ = pg.Close()
				return nil, err
			}
		}

		identity = agentdirectory.NewModule(agentdirectory.Dependencies{
			Users:  users,
			Hasher: hasher,
			Tokens: tokens,
			Phones: phones,
			Clock:  identitypostgres.SystemClock{},
			IDGen:  identitypostgres.UUIDGenerator{},
			Logger: logger,
		})
		distribution = distributionservice.NewModule(distributionservice.Dependencies{
			Workers:        batches,
			Batches:        batches,
			Outbox:         batches,
			Clock:          distributionpostgres.SystemClock{},
			IDGenerator:    distributionpostgres.UUIDGenerator{},
			Metrics:        distributionConfig.Metrics,
			PoolSize:       cfg.DistributionPoolSize,
			MaxUploadBytes: cfg.UploadMaxBytes,
			Logger:         logger,
		})
	}

	app.server = httpserver.New(identity, distribution, httpserver.Options{
		Addr:           normalizeAddr(cfg.HTTPPort),
		MaxUploadBytes: cfg.UploadMaxBytes,
		EnableSwagger:  cfg.EnableSwagger,
		Metrics:        registry,
		Logger:         logger,
	})
	return app, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, os.Stdout).With("service", cfg.ServiceName, "process", "worker")
	slog.SetDefault(logger)
	if cfg.InMemory() {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := distributionpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     distributionpostgres.SystemClock{},
			BatchSize: outbox.DefaultRelayBatchSize,
			Logger:    logger,
		},
		notifier: workerapp.AssignmentNotifier{
			Subscriber: kafka,
			Notifier:   workerapp.LogNotifier{Logger: logger},
			Logger:     logger,
		},
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}, nil
}

// SeedAdmin creates the configured admin account in the database.
func SeedAdmin(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := NewLogger(cfg, os.Stdout).With("service", cfg.ServiceName, "process", "seed")
	if cfg.InMemory() {
		return errors.New("POSTGRES_DSN is required")
	}

	pg, err := connect(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = pg.Close() }()

	users := identitypostgres.NewRepository(pg.DB, logger)
	if err := db.Migrate(ctx, users); err != nil {
		return err
	}
	identity := agentdirectory.NewModule(agentdirectory.Dependencies{
		Users:  users,
		Hasher: security.BcryptHasher{Cost: bcrypt.DefaultCost},
		Clock:  identitypostgres.SystemClock{},
		IDGen:  identitypostgres.UUIDGenerator{},
		Logger: logger,
	})
	return seedAdmin(ctx, identity, cfg, logger)
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	if a.relay == nil {
		return a.server.Start(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	relayErr := make(chan error, 1)
	go func() { relayErr <- a.relay.Run(ctx) }()

	err := a.server.Start(ctx)
	cancel()
	if relayFailure := <-relayErr; err == nil {
		err = relayFailure
	}
	return err
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.notifier.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg config.Config, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

func connect(cfg config.Config) (*db.Postgres, error) {
	return db.Connect(cfg.PostgresDSN, db.Options{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		LogLevel:        cfg.LogLevel,
	})
}

func seedAdmin(ctx context.Context, identity agentdirectory.Module, cfg config.Config, logger *slog.Logger) error {
	admin, created, err := identity.EnsureAdmin.Execute(ctx, identitycommands.EnsureAdminCommand{
		Name:     cfg.SeedAdminName,
		Email:    cfg.SeedAdminEmail,
		Mobile:   cfg.SeedAdminMobile,
		Password: cfg.SeedAdminPassword,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("admin account ready",
		"event", "bootstrap_admin_ready",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"user_id", admin.UserID,
		"email", admin.Email,
		"created", created,
	)
	return nil
}

func metricsNamespace(service string) string {
	return strings.ReplaceAll(strings.TrimSpace(service), "-", "_")
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
