package application

import "time"

const (
	EventBatchCreated   = "distribution.batch_created"
	TopicBatchCreated   = "distribution.batch_created"
	SourceService       = "list-distribution/distribution-service"
	BatchCreatedVersion = 1
)

// BatchCreatedPayload is the data section of distribution.batch_created events.
type BatchCreatedPayload struct {
	BatchID          string               `json:"batch_id"`
	SourceName       string               `json:"source_name"`
	TotalRecordCount int                  `json:"total_record_count"`
	CreatedAt        time.Time            `json:"created_at"`
	Shares           []ShareAssignedEntry `json:"shares"`
}

type ShareAssignedEntry struct {
	WorkerID          string `json:"worker_id"`
	WorkerDisplayName string `json:"worker_display_name"`
	RecordCount       int    `json:"record_count"`
}
