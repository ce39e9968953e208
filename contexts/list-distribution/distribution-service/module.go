package distributionservice

import (
	"log/slog"

	httpadapter "agentdesk/contexts/list-distribution/distribution-service/adapters/http"
	"agentdesk/contexts/list-distribution/distribution-service/adapters/memory"
	"agentdesk/contexts/list-distribution/distribution-service/adapters/tabular"
	"agentdesk/contexts/list-distribution/distribution-service/application/commands"
	"agentdesk/contexts/list-distribution/distribution-service/application/queries"
	"agentdesk/contexts/list-distribution/distribution-service/application/workers"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
)

// Module is the distribution-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
	Outbox  ports.OutboxRepository
	Clock   ports.Clock
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Workers        ports.WorkerDirectory
	Batches        ports.BatchRepository
	Outbox         ports.OutboxRepository
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Metrics        ports.UploadMetrics
	PoolSize       int
	MaxUploadBytes int64
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	upload := commands.UseCase{
		Ingestor:       tabular.Ingestor{},
		Workers:        deps.Workers,
		Batches:        deps.Batches,
		Clock:          deps.Clock,
		IDGen:          deps.IDGenerator,
		Metrics:        deps.Metrics,
		PoolSize:       deps.PoolSize,
		MaxUploadBytes: deps.MaxUploadBytes,
		Logger:         deps.Logger,
	}
	query := queries.UseCase{
		Batches: deps.Batches,
		Workers: deps.Workers,
		Logger:  deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			Upload:  upload,
			Queries: query,
			Logger:  deps.Logger,
		},
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
	}
}

// Config carries the tunables shared by both module constructors.
type Config struct {
	PoolSize       int
	MaxUploadBytes int64
	Metrics        ports.UploadMetrics
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
// A nil directory falls back to the store's own worker list.
func NewInMemoryModule(directory ports.WorkerDirectory, config Config, logger *slog.Logger) Module {
	store := memory.NewStore(nil)
	if directory == nil {
		directory = store
	}
	module := NewModule(Dependencies{
		Workers:        directory,
		Batches:        store,
		Outbox:         store,
		Clock:          store,
		IDGenerator:    store,
		Metrics:        config.Metrics,
		PoolSize:       config.PoolSize,
		MaxUploadBytes: config.MaxUploadBytes,
		Logger:         logger,
	})
	module.Store = store
	return module
}

// OutboxRelay returns the relay worker publishing this module's outbox.
func (m Module) OutboxRelay(publisher ports.EventPublisher, batchSize int, logger *slog.Logger) workers.OutboxRelay {
	return workers.OutboxRelay{
		Outbox:    m.Outbox,
		Publisher: publisher,
		Clock:     m.Clock,
		BatchSize: batchSize,
		Logger:    logger,
	}
}

// AssignmentNotifier returns the consumer that announces new assignments to agents.
func (m Module) AssignmentNotifier(subscriber ports.EventSubscriber, logger *slog.Logger) workers.AssignmentNotifier {
	return workers.AssignmentNotifier{
		Subscriber: subscriber,
		Notifier:   workers.LogNotifier{Logger: logger},
		Logger:     logger,
	}
}
