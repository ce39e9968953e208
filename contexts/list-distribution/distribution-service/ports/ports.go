package ports

import (
	"context"
	"time"

	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	"agentdesk/internal/shared/events"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for batches and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Role is the caller role resolved at the transport boundary.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// Principal is the authenticated caller passed explicitly into every use case.
type Principal struct {
	UserID string
	Role   Role
}

// ContactIngestor normalizes an uploaded file into contact records.
type ContactIngestor interface {
	Parse(fileName string, data []byte) ([]entities.ContactRecord, error)
}

// WorkerDirectory is the read-only view of agents eligible for distribution.
// ListEligibleWorkers returns every agent, newest first, from a single snapshot.
type WorkerDirectory interface {
	ListEligibleWorkers(ctx context.Context) ([]entities.Worker, error)
	CountWorkers(ctx context.Context) (int, error)
}

// BatchRepository persists immutable distribution batches.
// CreateBatch stores the batch and its outbox message atomically.
type BatchRepository interface {
	CreateBatch(ctx context.Context, batch entities.DistributionBatch, message OutboxMessage) error
	GetBatch(ctx context.Context, batchID string) (entities.DistributionBatch, error)
	ListBatches(ctx context.Context, page int, pageSize int) ([]entities.DistributionBatch, int, error)
	CountBatches(ctx context.Context) (int, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
// A non-positive limit means the adapter's default page size.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// UploadMetrics records upload outcomes.
type UploadMetrics interface {
	ObserveUpload(fileType string, outcome string, records int)
}

// EventEnvelope reuses the shared event envelope.
type EventEnvelope = events.Envelope

// EventPublisher publishes envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
