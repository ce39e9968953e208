package queries

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	application "agentdesk/contexts/list-distribution/distribution-service/application"
	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	domainerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"
	"agentdesk/contexts/list-distribution/distribution-service/domain/services"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type BatchPage struct {
	Batches []entities.DistributionBatch
	Page    int
	Limit   int
	Total   int
	Pages   int
}

type ExportFile struct {
	FileName string
	Content  []byte
	RowCount int
}

type Summary struct {
	AgentCount int
	BatchCount int
}

type UseCase struct {
	Batches ports.BatchRepository
	Workers ports.WorkerDirectory
	Logger  *slog.Logger
}

// ListBatches pages through batches newest first. Zero page/limit select the defaults.
func (uc UseCase) ListBatches(ctx context.Context, principal ports.Principal, page int, limit int) (BatchPage, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := requireAuthenticated(principal); err != nil {
		return BatchPage{}, err
	}
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if page < 1 || limit < 1 || limit > MaxPageSize {
		logger.Warn("distribution query invalid page",
			"event", "distribution_query_invalid_page",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"page", page,
			"limit", limit,
		)
		return BatchPage{}, domainerrors.ErrInvalidPage
	}

	batches, total, err := uc.Batches.ListBatches(ctx, page, limit)
	if err != nil {
		logger.Error("distribution query list batches failed",
			"event", "distribution_query_list_batches_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"page", page,
			"limit", limit,
			"error", err.Error(),
		)
		return BatchPage{}, err
	}
	return BatchPage{
		Batches: batches,
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   (total + limit - 1) / limit,
	}, nil
}

func (uc UseCase) GetBatch(ctx context.Context, principal ports.Principal, batchID string) (entities.DistributionBatch, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := requireAuthenticated(principal); err != nil {
		return entities.DistributionBatch{}, err
	}
	normalizedBatchID := strings.TrimSpace(batchID)
	batch, err := uc.Batches.GetBatch(ctx, normalizedBatchID)
	if err != nil {
		logger.Warn("distribution query get batch failed",
			"event", "distribution_query_get_batch_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"batch_id", normalizedBatchID,
			"error", err.Error(),
		)
		return entities.DistributionBatch{}, err
	}
	return batch, nil
}

// ExportBatch renders a batch as one CSV row per assigned contact.
func (uc UseCase) ExportBatch(ctx context.Context, principal ports.Principal, batchID string) (ExportFile, error) {
	logger := application.ResolveLogger(uc.Logger)
	batch, err := uc.GetBatch(ctx, principal, batchID)
	if err != nil {
		return ExportFile{}, err
	}

	rows := services.FlattenBatch(batch)
	var buf bytes.Buffer
	if err := services.WriteExportCSV(&buf, rows); err != nil {
		logger.Error("distribution query export encode failed",
			"event", "distribution_query_export_encode_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"batch_id", batch.ID,
			"error", err.Error(),
		)
		return ExportFile{}, err
	}
	logger.Info("distribution batch exported",
		"event", "distribution_batch_exported",
		"module", "list-distribution/distribution-service",
		"layer", "application",
		"batch_id", batch.ID,
		"row_count", len(rows),
		"user_id", principal.UserID,
	)
	return ExportFile{
		FileName: services.ExportFileName(batch.SourceName),
		Content:  buf.Bytes(),
		RowCount: len(rows),
	}, nil
}

func (uc UseCase) Summary(ctx context.Context, principal ports.Principal) (Summary, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := requireAuthenticated(principal); err != nil {
		return Summary{}, err
	}
	agents, err := uc.Workers.CountWorkers(ctx)
	if err != nil {
		logger.Error("distribution query count agents failed",
			"event", "distribution_query_count_agents_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"error", err.Error(),
		)
		return Summary{}, err
	}
	batches, err := uc.Batches.CountBatches(ctx)
	if err != nil {
		logger.Error("distribution query count batches failed",
			"event", "distribution_query_count_batches_failed",
			"module", "list-distribution/distribution-service",
			"layer", "application",
			"error", err.Error(),
		)
		return Summary{}, err
	}
	return Summary{AgentCount: agents, BatchCount: batches}, nil
}

func requireAuthenticated(principal ports.Principal) error {
	if strings.TrimSpace(principal.UserID) == "" {
		return domainerrors.ErrUnauthorized
	}
	return nil
}
