package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	domainerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"
	"agentdesk/contexts/list-distribution/distribution-service/domain/services"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
	"agentdesk/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const contactInsertBatchSize = 500

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// AutoMigrate creates the tables owned by this module.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&distributionBatchModel{},
		&distributionShareModel{},
		&distributionContactModel{},
		&distributionOutboxModel{},
	); err != nil {
		return r.logError("distribution_repo_auto_migrate_failed", err)
	}
	return nil
}

// ListEligibleWorkers reads agents from the identity-owned users table.
// Access is read-only; the secondary id key makes equal timestamps deterministic.
func (r *Repository) ListEligibleWorkers(ctx context.Context) ([]entities.Worker, error) {
	var rows []agentProjectionModel
	if err := r.db.WithContext(ctx).
		Select("id", "name", "created_at").
		Where("role = ?", "agent").
		Order("created_at DESC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("distribution_repo_list_workers_failed", err)
	}
	workers := make([]entities.Worker, 0, len(rows))
	for _, row := range rows {
		workers = append(workers, entities.Worker{
			ID:          row.ID,
			DisplayName: row.Name,
			CreatedAt:   row.CreatedAt.UTC(),
		})
	}
	return workers, nil
}

func (r *Repository) CountWorkers(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&agentProjectionModel{}).
		Where("role = ?", "agent").
		Count(&count).Error; err != nil {
		return 0, r.logError("distribution_repo_count_workers_failed", err)
	}
	return int(count), nil
}

func (r *Repository) CreateBatch(ctx context.Context, batch entities.DistributionBatch, message ports.OutboxMessage) error {
	if err := services.ValidateBatch(batch, len(batch.Shares)); err != nil {
		r.logWarn("distribution_repo_create_batch_invalid_input",
			"batch_id", strings.TrimSpace(batch.ID),
			"error", err.Error(),
		)
		return err
	}
	if strings.TrimSpace(message.OutboxID) == "" {
		r.logWarn("distribution_repo_create_batch_missing_outbox",
			"batch_id", strings.TrimSpace(batch.ID),
		)
		return domainerrors.ErrInvalidBatch
	}

	batchRow, shareRows, contactRows := batchModelsFromEntity(batch)
	outboxRow := distributionOutboxModel{
		OutboxID:     strings.TrimSpace(message.OutboxID),
		EventType:    strings.TrimSpace(message.EventType),
		PartitionKey: strings.TrimSpace(message.PartitionKey),
		Payload:      append([]byte(nil), message.Payload...),
		Status:       outbox.StatusPending,
		CreatedAt:    message.CreatedAt.UTC(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&batchRow).Error; err != nil {
			return err
		}
		if err := tx.Create(&shareRows).Error; err != nil {
			return err
		}
		if len(contactRows) > 0 {
			if err := tx.CreateInBatches(&contactRows, contactInsertBatchSize).Error; err != nil {
				return err
			}
		}
		return tx.Create(&outboxRow).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			r.logWarn("distribution_repo_create_batch_unique_conflict",
				"batch_id", batchRow.ID,
				"outbox_id", outboxRow.OutboxID,
			)
			return domainerrors.ErrInvalidBatch
		}
		return r.logError("distribution_repo_create_batch_failed", err,
			"batch_id", batchRow.ID,
			"record_count", batchRow.TotalRecordCount,
		)
	}
	return nil
}

func (r *Repository) GetBatch(ctx context.Context, batchID string) (entities.DistributionBatch, error) {
	var row distributionBatchModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(batchID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.DistributionBatch{}, domainerrors.ErrBatchNotFound
		}
		return entities.DistributionBatch{}, r.logError("distribution_repo_get_batch_failed", err,
			"batch_id", strings.TrimSpace(batchID),
		)
	}
	batches, err := r.hydrate(ctx, []distributionBatchModel{row})
	if err != nil {
		return entities.DistributionBatch{}, err
	}
	return batches[0], nil
}

func (r *Repository) ListBatches(ctx context.Context, page int, pageSize int) ([]entities.DistributionBatch, int, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, domainerrors.ErrInvalidPage
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&distributionBatchModel{}).
		Count(&total).Error; err != nil {
		return nil, 0, r.logError("distribution_repo_count_batches_failed", err)
	}

	var rows []distributionBatchModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, r.logError("distribution_repo_list_batches_failed", err,
			"page", page,
			"page_size", pageSize,
		)
	}
	batches, err := r.hydrate(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return batches, int(total), nil
}

func (r *Repository) CountBatches(ctx context.Context) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&distributionBatchModel{}).
		Count(&total).Error; err != nil {
		return 0, r.logError("distribution_repo_count_batches_failed", err)
	}
	return int(total), nil
}

// hydrate loads shares and contacts for the given batch rows, preserving row order.
func (r *Repository) hydrate(ctx context.Context, rows []distributionBatchModel) ([]entities.DistributionBatch, error) {
	if len(rows) == 0 {
		return []entities.DistributionBatch{}, nil
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var shareRows []distributionShareModel
	if err := r.db.WithContext(ctx).
		Where("batch_id IN ?", ids).
		Order("batch_id ASC").
		Order("position ASC").
		Find(&shareRows).Error; err != nil {
		return nil, r.logError("distribution_repo_list_shares_failed", err,
			"batch_count", len(ids),
		)
	}

	var contactRows []distributionContactModel
	if err := r.db.WithContext(ctx).
		Where("batch_id IN ?", ids).
		Order("batch_id ASC").
		Order("share_position ASC").
		Order("position ASC").
		Find(&contactRows).Error; err != nil {
		return nil, r.logError("distribution_repo_list_contacts_failed", err,
			"batch_count", len(ids),
		)
	}

	sharesByBatch := make(map[string][]entities.Share, len(rows))
	for _, share := range shareRows {
		sharesByBatch[share.BatchID] = append(sharesByBatch[share.BatchID], entities.Share{
			WorkerID:          share.WorkerID,
			WorkerDisplayName: share.WorkerDisplayName,
			Records:           make([]entities.ContactRecord, 0, share.RecordCount),
		})
	}
	for _, contact := range contactRows {
		shares := sharesByBatch[contact.BatchID]
		if contact.SharePosition < 0 || contact.SharePosition >= len(shares) {
			r.logWarn("distribution_repo_orphan_contact",
				"batch_id", contact.BatchID,
				"share_position", contact.SharePosition,
			)
			continue
		}
		shares[contact.SharePosition].Records = append(shares[contact.SharePosition].Records, entities.ContactRecord{
			FirstName: contact.FirstName,
			Phone:     contact.Phone,
			Notes:     contact.Notes,
		})
	}

	batches := make([]entities.DistributionBatch, 0, len(rows))
	for _, row := range rows {
		shares := sharesByBatch[row.ID]
		if shares == nil {
			shares = []entities.Share{}
		}
		batches = append(batches, entities.DistributionBatch{
			ID:               row.ID,
			SourceName:       row.SourceName,
			TotalRecordCount: row.TotalRecordCount,
			Shares:           shares,
			CreatedAt:        row.CreatedAt.UTC(),
		})
	}
	return batches, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = outbox.DefaultRelayBatchSize
	}
	var rows []distributionOutboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("distribution_repo_list_pending_outbox_failed", err,
			"limit", limit,
		)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&distributionOutboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("distribution_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		r.logWarn("distribution_repo_mark_outbox_published_not_found",
			"outbox_id", strings.TrimSpace(outboxID),
		)
		return domainerrors.ErrBatchNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "list-distribution/distribution-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("distribution repository operation failed", fields...)
	return err
}

func (r *Repository) logWarn(event string, attrs ...any) {
	fields := make([]any, 0, len(attrs)+6)
	fields = append(fields,
		"event", event,
		"module", "list-distribution/distribution-service",
		"layer", "adapter",
	)
	fields = append(fields, attrs...)
	r.logger.Warn("distribution repository warning", fields...)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.WorkerDirectory  = (*Repository)(nil)
	_ ports.BatchRepository  = (*Repository)(nil)
	_ ports.OutboxRepository = (*Repository)(nil)
)
