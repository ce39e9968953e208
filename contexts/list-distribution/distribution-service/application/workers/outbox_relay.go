package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "agentdesk/contexts/list-distribution/distribution-service/application"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
)

type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	// BatchSize is handed to the repository as is; zero selects its default page.
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes one page of pending outbox rows. A row is marked published
// only after the broker accepted it, so a crash in between republishes it.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	topic := r.Topic
	if topic == "" {
		topic = application.TopicBatchCreated
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, r.BatchSize)
	if err != nil {
		logger.Error("outbox list pending failed",
			"event", "distribution_outbox_list_failed",
			"module", "list-distribution/distribution-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, message := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("outbox payload decode failed",
				"event", "distribution_outbox_decode_failed",
				"module", "list-distribution/distribution-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}

		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			logger.Error("outbox publish failed",
				"event", "distribution_outbox_publish_failed",
				"module", "list-distribution/distribution-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, message.OutboxID, now); err != nil {
			logger.Error("outbox mark published failed",
				"event", "distribution_outbox_mark_published_failed",
				"module", "list-distribution/distribution-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("outbox relay cycle completed",
			"event", "distribution_outbox_relay_completed",
			"module", "list-distribution/distribution-service",
			"layer", "worker",
			"published_count", len(pending),
		)
	}
	return nil
}
