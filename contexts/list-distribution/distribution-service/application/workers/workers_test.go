package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"agentdesk/contexts/list-distribution/distribution-service/adapters/memory"
	application "agentdesk/contexts/list-distribution/distribution-service/application"
	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	"agentdesk/contexts/list-distribution/distribution-service/domain/services"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
)

type capturePublisher struct {
	topics []string
	events []ports.EventEnvelope
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

type captureNotifier struct {
	sent []Notification
}

func (n *captureNotifier) Notify(_ context.Context, notification Notification) error {
	n.sent = append(n.sent, notification)
	return nil
}

type captureSubscriber struct {
	topic   string
	group   string
	handler func(context.Context, ports.EventEnvelope) error
}

func (s *captureSubscriber) Subscribe(
	_ context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	s.topic = topic
	s.group = consumerGroup
	s.handler = handler
	return nil
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore(nil)
	envelope := batchCreatedEnvelope(t, "batch_relay", []int{1, 1, 0, 0, 0})
	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope failed: %v", err)
	}
	createStoredBatch(t, store, "batch_relay", ports.OutboxMessage{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: "batch_relay",
		Payload:      raw,
		CreatedAt:    time.Now().UTC(),
	})

	publisher := &capturePublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if len(publisher.events) != 1 || publisher.topics[0] != application.TopicBatchCreated {
		t.Fatalf("unexpected published events %+v", publisher.topics)
	}
	if publisher.events[0].EventID != envelope.EventID {
		t.Fatalf("unexpected event id %s", publisher.events[0].EventID)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected outbox drained, got %d", len(pending))
	}
}

func TestOutboxRelayKeepsRowPendingWhenPublishFails(t *testing.T) {
	store := memory.NewStore(nil)
	envelope := batchCreatedEnvelope(t, "batch_retry", []int{1, 0, 0, 0, 0})
	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope failed: %v", err)
	}
	createStoredBatch(t, store, "batch_retry", ports.OutboxMessage{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: "batch_retry",
		Payload:      raw,
		CreatedAt:    time.Now().UTC(),
	})

	relay := OutboxRelay{Outbox: store, Publisher: &capturePublisher{err: errors.New("broker down")}}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected publish error")
	}
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected row to stay pending, got %d", len(pending))
	}
}

type limitRecordingOutbox struct {
	ports.OutboxRepository
	limits []int
}

func (o *limitRecordingOutbox) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	o.limits = append(o.limits, limit)
	return nil, nil
}

func TestOutboxRelayPassesBatchSizeToRepository(t *testing.T) {
	for _, size := range []int{0, 25} {
		outbox := &limitRecordingOutbox{}
		relay := OutboxRelay{Outbox: outbox, Publisher: &capturePublisher{}, BatchSize: size}
		if err := relay.RunOnce(context.Background()); err != nil {
			t.Fatalf("relay failed: %v", err)
		}
		if len(outbox.limits) != 1 || outbox.limits[0] != size {
			t.Fatalf("expected limit %d, got %v", size, outbox.limits)
		}
	}
}

func TestOutboxRelayDefaultPageReadsEveryPendingRow(t *testing.T) {
	store := memory.NewStore(nil)
	for i := 0; i < 3; i++ {
		batchID := fmt.Sprintf("batch_page_%d", i)
		envelope := batchCreatedEnvelope(t, batchID, []int{1, 0, 0, 0, 0})
		raw, err := json.Marshal(envelope)
		if err != nil {
			t.Fatalf("marshal envelope failed: %v", err)
		}
		createStoredBatch(t, store, batchID, ports.OutboxMessage{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: batchID,
			Payload:      raw,
			CreatedAt:    time.Now().UTC(),
		})
	}

	publisher := &capturePublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if len(publisher.events) != 3 {
		t.Fatalf("expected 3 published events, got %d", len(publisher.events))
	}
}

func TestAssignmentNotifierSkipsEmptyShares(t *testing.T) {
	notifier := &captureNotifier{}
	subscriber := &captureSubscriber{}
	consumer := AssignmentNotifier{Subscriber: subscriber, Notifier: notifier}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if subscriber.topic != application.TopicBatchCreated || subscriber.group != defaultNotifierGroup {
		t.Fatalf("unexpected subscription %s/%s", subscriber.topic, subscriber.group)
	}

	envelope := batchCreatedEnvelope(t, "batch_notify", []int{1, 1, 1, 0, 0})
	if err := subscriber.handler(context.Background(), envelope); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(notifier.sent) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifier.sent))
	}
	if notifier.sent[0].WorkerID != "agent_4" || notifier.sent[0].RecordCount != 1 {
		t.Fatalf("unexpected first notification %+v", notifier.sent[0])
	}
}

func TestAssignmentNotifierIgnoresOtherEvents(t *testing.T) {
	notifier := &captureNotifier{}
	consumer := AssignmentNotifier{Notifier: notifier}
	err := consumer.Handle(context.Background(), ports.EventEnvelope{EventID: "evt_other", EventType: "agent.created"})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notifications, got %d", len(notifier.sent))
	}
}

func TestAssignmentNotifierRejectsBadPayload(t *testing.T) {
	consumer := AssignmentNotifier{Notifier: &captureNotifier{}}
	err := consumer.Handle(context.Background(), ports.EventEnvelope{
		EventID:   "evt_bad",
		EventType: application.EventBatchCreated,
		Data:      json.RawMessage(`{"batch_id":`),
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func batchCreatedEnvelope(t *testing.T, batchID string, sizes []int) ports.EventEnvelope {
	t.Helper()
	payload := application.BatchCreatedPayload{
		BatchID:    batchID,
		SourceName: "leads.csv",
		CreatedAt:  time.Now().UTC(),
	}
	for i, size := range sizes {
		payload.TotalRecordCount += size
		payload.Shares = append(payload.Shares, application.ShareAssignedEntry{
			WorkerID:          fmt.Sprintf("agent_%d", 4-i),
			WorkerDisplayName: "Agent",
			RecordCount:       size,
		})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return ports.EventEnvelope{
		EventID:       "evt_" + batchID,
		EventType:     application.EventBatchCreated,
		OccurredAt:    payload.CreatedAt,
		SourceService: application.SourceService,
		SchemaVersion: application.BatchCreatedVersion,
		PartitionKey:  batchID,
		Data:          data,
	}
}

func createStoredBatch(t *testing.T, store *memory.Store, batchID string, message ports.OutboxMessage) {
	t.Helper()
	workers := make([]entities.Worker, 0, services.DefaultPoolSize)
	for i := 0; i < services.DefaultPoolSize; i++ {
		workers = append(workers, entities.Worker{
			ID:          fmt.Sprintf("agent_%d", i),
			DisplayName: "Agent",
			CreatedAt:   time.Date(2026, 1, 1, i, 0, 0, 0, time.UTC),
		})
	}
	batch, err := services.NewBatch(
		batchID,
		"leads.csv",
		[]entities.ContactRecord{{FirstName: "Ada", Phone: "+15550001111"}},
		services.OrderWorkers(workers),
		services.DefaultPoolSize,
		time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("build batch failed: %v", err)
	}
	if err := store.CreateBatch(context.Background(), batch, message); err != nil {
		t.Fatalf("create batch failed: %v", err)
	}
}
