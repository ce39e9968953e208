package messaging

import (
	"context"
	"log/slog"
	"sync"

	"agentdesk/internal/shared/events"
)

const subscriberBuffer = 128

// Kafka is the event bus used by the outbox relay and consumers.
// Delivery is in-process; the configured broker list is kept for the process
// banner until an external client replaces it.
type Kafka struct {
	mu          sync.Mutex
	brokers     []string
	subscribers map[string][]subscription
	// offsets rotates delivery among the members of a topic/group pair.
	offsets map[string]int
	logger  *slog.Logger
}

type subscription struct {
	group string
	ch    chan events.Envelope
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		brokers:     append([]string(nil), brokers...),
		subscribers: make(map[string][]subscription),
		offsets:     make(map[string]int),
		logger:      logger,
	}, nil
}

func (k *Kafka) Brokers() []string {
	return append([]string(nil), k.brokers...)
}

// Publish hands the event to one member of every consumer group subscribed
// to topic. It blocks while that member's buffer is full, so an acknowledged
// publish is never dropped.
func (k *Kafka) Publish(ctx context.Context, topic string, event events.Envelope) error {
	k.mu.Lock()
	subs := k.routeLocked(topic)
	k.mu.Unlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub.ch <- event:
		}
	}

	k.logger.Debug("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"group_count", len(subs),
	)
	return nil
}

// routeLocked picks one subscription per consumer group, in subscription order,
// rotating through the members of each group.
func (k *Kafka) routeLocked(topic string) []subscription {
	members := make(map[string][]subscription)
	groups := make([]string, 0)
	for _, sub := range k.subscribers[topic] {
		if _, ok := members[sub.group]; !ok {
			groups = append(groups, sub.group)
		}
		members[sub.group] = append(members[sub.group], sub)
	}

	targets := make([]subscription, 0, len(groups))
	for _, group := range groups {
		key := topic + "/" + group
		pool := members[group]
		targets = append(targets, pool[k.offsets[key]%len(pool)])
		k.offsets[key]++
	}
	return targets
}

func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, events.Envelope) error,
) error {
	sub := subscription{
		group: consumerGroup,
		ch:    make(chan events.Envelope, subscriberBuffer),
	}

	k.mu.Lock()
	k.subscribers[topic] = append(k.subscribers[topic], sub)
	k.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				k.removeSubscriber(topic, sub.ch)
				return
			case event := <-sub.ch:
				if err := handler(ctx, event); err != nil {
					k.logger.Error("consumer handler failed",
						"event", "kafka_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (k *Kafka) removeSubscriber(topic string, target chan events.Envelope) {
	k.mu.Lock()
	defer k.mu.Unlock()

	items := k.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]subscription, 0, len(items))
	for _, item := range items {
		if item.ch != target {
			filtered = append(filtered, item)
		}
	}
	k.subscribers[topic] = filtered
}
