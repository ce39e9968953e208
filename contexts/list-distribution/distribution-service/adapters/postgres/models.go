package postgresadapter

import (
	"time"

	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
)

type distributionBatchModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	SourceName       string    `gorm:"column:source_name;not null"`
	TotalRecordCount int       `gorm:"column:total_record_count;not null"`
	ShareCount       int       `gorm:"column:share_count;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;index"`
}

func (distributionBatchModel) TableName() string {
	return "distribution_batches"
}

type distributionShareModel struct {
	BatchID           string `gorm:"column:batch_id;primaryKey"`
	Position          int    `gorm:"column:position;primaryKey;autoIncrement:false"`
	WorkerID          string `gorm:"column:worker_id;not null;index"`
	WorkerDisplayName string `gorm:"column:worker_display_name;not null"`
	RecordCount       int    `gorm:"column:record_count;not null"`
}

func (distributionShareModel) TableName() string {
	return "distribution_shares"
}

type distributionContactModel struct {
	BatchID       string `gorm:"column:batch_id;primaryKey"`
	SharePosition int    `gorm:"column:share_position;primaryKey;autoIncrement:false"`
	Position      int    `gorm:"column:position;primaryKey;autoIncrement:false"`
	FirstName     string `gorm:"column:first_name;not null"`
	Phone         string `gorm:"column:phone;not null"`
	Notes         string `gorm:"column:notes;not null;default:''"`
}

func (distributionContactModel) TableName() string {
	return "distribution_contacts"
}

type distributionOutboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type;not null"`
	PartitionKey string     `gorm:"column:partition_key;not null"`
	Payload      []byte     `gorm:"column:payload;type:jsonb;not null"`
	Status       string     `gorm:"column:status;not null;index"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (distributionOutboxModel) TableName() string {
	return "distribution_outbox"
}

// agentProjectionModel is a read-only view over the identity context's users table.
type agentProjectionModel struct {
	ID        string    `gorm:"column:id"`
	Name      string    `gorm:"column:name"`
	Role      string    `gorm:"column:role"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (agentProjectionModel) TableName() string {
	return "users"
}

func batchModelsFromEntity(batch entities.DistributionBatch) (distributionBatchModel, []distributionShareModel, []distributionContactModel) {
	batchRow := distributionBatchModel{
		ID:               batch.ID,
		SourceName:       batch.SourceName,
		TotalRecordCount: batch.TotalRecordCount,
		ShareCount:       len(batch.Shares),
		CreatedAt:        batch.CreatedAt.UTC(),
	}
	shareRows := make([]distributionShareModel, 0, len(batch.Shares))
	contactRows := make([]distributionContactModel, 0, batch.TotalRecordCount)
	for sharePosition, share := range batch.Shares {
		shareRows = append(shareRows, distributionShareModel{
			BatchID:           batch.ID,
			Position:          sharePosition,
			WorkerID:          share.WorkerID,
			WorkerDisplayName: share.WorkerDisplayName,
			RecordCount:       len(share.Records),
		})
		for position, record := range share.Records {
			contactRows = append(contactRows, distributionContactModel{
				BatchID:       batch.ID,
				SharePosition: sharePosition,
				Position:      position,
				FirstName:     record.FirstName,
				Phone:         record.Phone,
				Notes:         record.Notes,
			})
		}
	}
	return batchRow, shareRows, contactRows
}
