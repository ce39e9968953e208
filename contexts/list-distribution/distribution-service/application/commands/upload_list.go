package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	application "agentdesk/contexts/list-distribution/distribution-service/application"
	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	domainerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"
	"agentdesk/contexts/list-distribution/distribution-service/domain/services"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
)

const defaultMaxUploadBytes int64 = 5 * 1024 * 1024

const (
	uploadOutcomeDistributed = "distributed"
	uploadOutcomeRejected    = "rejected"
	uploadOutcomeFailed      = "failed"
)

type UploadListCommand struct {
	Principal ports.Principal
	FileName  string
	SizeBytes int64
	Data      []byte
}

type UseCase struct {
	Ingestor       ports.ContactIngestor
	Workers        ports.WorkerDirectory
	Batches        ports.BatchRepository
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Metrics        ports.UploadMetrics
	PoolSize       int
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// UploadList ingests the file, splits it across the newest agents and stores the batch.
// Nothing is persisted unless every step succeeds.
func (uc UseCase) UploadList(ctx context.Context, cmd UploadListCommand) (entities.DistributionBatch, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := requireAdmin(cmd.Principal); err != nil {
		logger.Warn("distribution upload rejected for caller",
			"event", "distribution_upload_forbidden",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"user_id", strings.TrimSpace(cmd.Principal.UserID),
			"role", string(cmd.Principal.Role),
		)
		return entities.DistributionBatch{}, err
	}

	fileName := strings.TrimSpace(filepath.Base(strings.TrimSpace(cmd.FileName)))
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		return entities.DistributionBatch{}, domainerrors.ErrFileRequired
	}
	fileType, err := services.DetectFileType(fileName)
	if err != nil {
		uc.observe("unknown", uploadOutcomeRejected, 0)
		logger.Warn("distribution upload unsupported file type",
			"event", "distribution_upload_unsupported_type",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"file_name", fileName,
		)
		return entities.DistributionBatch{}, err
	}

	size := cmd.SizeBytes
	if int64(len(cmd.Data)) > size {
		size = int64(len(cmd.Data))
	}
	if size > uc.maxUploadBytes() {
		uc.observe(string(fileType), uploadOutcomeRejected, 0)
		logger.Warn("distribution upload too large",
			"event", "distribution_upload_too_large",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"file_name", fileName,
			"size_bytes", size,
			"max_bytes", uc.maxUploadBytes(),
		)
		return entities.DistributionBatch{}, domainerrors.ErrFileTooLarge
	}

	records, err := uc.Ingestor.Parse(fileName, cmd.Data)
	if err != nil {
		uc.observe(string(fileType), uploadOutcomeRejected, 0)
		logger.Warn("distribution upload ingest failed",
			"event", "distribution_upload_ingest_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"file_name", fileName,
			"file_type", string(fileType),
			"error", err.Error(),
		)
		return entities.DistributionBatch{}, err
	}

	workers, err := uc.Workers.ListEligibleWorkers(ctx)
	if err != nil {
		uc.observe(string(fileType), uploadOutcomeFailed, 0)
		logger.Error("distribution upload worker lookup failed",
			"event", "distribution_upload_worker_lookup_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"file_name", fileName,
			"error", err.Error(),
		)
		return entities.DistributionBatch{}, err
	}

	batchID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		uc.observe(string(fileType), uploadOutcomeFailed, 0)
		logger.Error("distribution upload id generation failed",
			"event", "distribution_upload_id_generation_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.DistributionBatch{}, err
	}

	batch, err := services.NewBatch(
		batchID,
		fileName,
		records,
		services.OrderWorkers(workers),
		uc.poolSize(),
		uc.Clock.Now(),
	)
	if err != nil {
		outcome := uploadOutcomeFailed
		if errors.Is(err, domainerrors.ErrInsufficientWorkers) {
			outcome = uploadOutcomeRejected
		}
		uc.observe(string(fileType), outcome, 0)
		logger.Warn("distribution upload batch build failed",
			"event", "distribution_upload_batch_build_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"file_name", fileName,
			"record_count", len(records),
			"worker_count", len(workers),
			"pool_size", uc.poolSize(),
			"error", err.Error(),
		)
		return entities.DistributionBatch{}, err
	}

	message, err := uc.batchCreatedMessage(ctx, batch)
	if err != nil {
		uc.observe(string(fileType), uploadOutcomeFailed, 0)
		logger.Error("distribution upload outbox build failed",
			"event", "distribution_upload_outbox_build_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"batch_id", batch.ID,
			"error", err.Error(),
		)
		return entities.DistributionBatch{}, err
	}

	if err := uc.Batches.CreateBatch(ctx, batch, message); err != nil {
		uc.observe(string(fileType), uploadOutcomeFailed, 0)
		logger.Error("distribution upload persist failed",
			"event", "distribution_upload_persist_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"batch_id", batch.ID,
			"file_name", fileName,
			"error", err.Error(),
		)
		return entities.DistributionBatch{}, err
	}

	uc.observe(string(fileType), uploadOutcomeDistributed, batch.TotalRecordCount)
	logger.Info("distribution batch created",
		"event", "distribution_batch_created",
		"module", "list-distribution/distribution-service",
		"layer", "application",
		"batch_id", batch.ID,
		"file_name", batch.SourceName,
		"file_type", string(fileType),
		"record_count", batch.TotalRecordCount,
		"share_count", len(batch.Shares),
		"user_id", cmd.Principal.UserID,
	)
	return batch, nil
}

func (uc UseCase) batchCreatedMessage(ctx context.Context, batch entities.DistributionBatch) (ports.OutboxMessage, error) {
	payload := application.BatchCreatedPayload{
		BatchID:          batch.ID,
		SourceName:       batch.SourceName,
		TotalRecordCount: batch.TotalRecordCount,
		CreatedAt:        batch.CreatedAt,
		Shares:           make([]application.ShareAssignedEntry, 0, len(batch.Shares)),
	}
	for _, share := range batch.Shares {
		payload.Shares = append(payload.Shares, application.ShareAssignedEntry{
			WorkerID:          share.WorkerID,
			WorkerDisplayName: share.WorkerDisplayName,
			RecordCount:       len(share.Records),
		})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	envelope := ports.EventEnvelope{
		EventID:       eventID,
		EventType:     application.EventBatchCreated,
		OccurredAt:    batch.CreatedAt,
		SourceService: application.SourceService,
		SchemaVersion: application.BatchCreatedVersion,
		PartitionKey:  batch.ID,
		Data:          data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	return ports.OutboxMessage{
		OutboxID:     eventID,
		EventType:    application.EventBatchCreated,
		PartitionKey: batch.ID,
		Payload:      raw,
		CreatedAt:    batch.CreatedAt,
	}, nil
}

func (uc UseCase) observe(fileType string, outcome string, records int) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.ObserveUpload(fileType, outcome, records)
}

func (uc UseCase) poolSize() int {
	if uc.PoolSize <= 0 {
		return services.DefaultPoolSize
	}
	return uc.PoolSize
}

func (uc UseCase) maxUploadBytes() int64 {
	if uc.MaxUploadBytes <= 0 {
		return defaultMaxUploadBytes
	}
	return uc.MaxUploadBytes
}

func requireAdmin(principal ports.Principal) error {
	if strings.TrimSpace(principal.UserID) == "" {
		return domainerrors.ErrUnauthorized
	}
	if principal.Role != ports.RoleAdmin {
		return domainerrors.ErrForbidden
	}
	return nil
}
