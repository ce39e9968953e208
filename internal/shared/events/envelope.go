package events

import (
	"encoding/json"
	"time"
)

// Envelope is the event shape carried from module outboxes to the broker.
// Keep it backward compatible: consumers decode Data per EventType.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SourceService string          `json:"source_service"`
	SchemaVersion int             `json:"schema_version"`
	PartitionKey  string          `json:"partition_key"`
	Data          json.RawMessage `json:"data"`
}
