package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	application "agentdesk/contexts/list-distribution/distribution-service/application"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
)

const defaultNotifierGroup = "distribution-assignment-notifier"

// Notification tells one agent how many contacts a batch assigned to them.
type Notification struct {
	BatchID     string
	WorkerID    string
	WorkerName  string
	SourceName  string
	RecordCount int
}

// Notifier delivers assignment notifications. The default writes them to the log.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

type AssignmentNotifier struct {
	Subscriber    ports.EventSubscriber
	Notifier      Notifier
	ConsumerGroup string
	Logger        *slog.Logger
}

func (n AssignmentNotifier) Start(ctx context.Context) error {
	group := n.ConsumerGroup
	if group == "" {
		group = defaultNotifierGroup
	}
	return n.Subscriber.Subscribe(ctx, application.TopicBatchCreated, group, n.Handle)
}

// Handle fans a batch_created event out into one notification per non-empty share.
func (n AssignmentNotifier) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(n.Logger)
	if event.EventType != application.EventBatchCreated {
		logger.Debug("assignment notifier skipped event",
			"event", "distribution_notifier_event_skipped",
			"module", "list-distribution/distribution-service",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
		return nil
	}

	var payload application.BatchCreatedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode batch created payload: %w", err)
	}
	if payload.BatchID == "" {
		return fmt.Errorf("batch created event missing batch_id")
	}

	notifier := n.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	sent := 0
	for _, share := range payload.Shares {
		if share.RecordCount == 0 {
			continue
		}
		if err := notifier.Notify(ctx, Notification{
			BatchID:     payload.BatchID,
			WorkerID:    share.WorkerID,
			WorkerName:  share.WorkerDisplayName,
			SourceName:  payload.SourceName,
			RecordCount: share.RecordCount,
		}); err != nil {
			logger.Error("assignment notification failed",
				"event", "distribution_notifier_notify_failed",
				"module", "list-distribution/distribution-service",
				"layer", "worker",
				"event_id", event.EventID,
				"batch_id", payload.BatchID,
				"worker_id", share.WorkerID,
				"error", err.Error(),
			)
			return err
		}
		sent++
	}

	logger.Info("batch assignment notifications sent",
		"event", "distribution_notifier_batch_processed",
		"module", "list-distribution/distribution-service",
		"layer", "worker",
		"event_id", event.EventID,
		"batch_id", payload.BatchID,
		"notification_count", sent,
	)
	return nil
}

type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(_ context.Context, notification Notification) error {
	application.ResolveLogger(l.Logger).Info("agent assigned contacts",
		"event", "distribution_agent_assigned",
		"module", "list-distribution/distribution-service",
		"layer", "worker",
		"batch_id", notification.BatchID,
		"worker_id", notification.WorkerID,
		"worker_name", notification.WorkerName,
		"source_name", notification.SourceName,
		"record_count", notification.RecordCount,
	)
	return nil
}
