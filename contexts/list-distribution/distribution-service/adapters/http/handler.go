package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"agentdesk/contexts/list-distribution/distribution-service/application"
	"agentdesk/contexts/list-distribution/distribution-service/application/commands"
	"agentdesk/contexts/list-distribution/distribution-service/application/queries"
	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
	httptransport "agentdesk/contexts/list-distribution/distribution-service/transport/http"
)

type Handler struct {
	Upload  commands.UseCase
	Queries queries.UseCase
	Logger  *slog.Logger
}

// UploadListHandler godoc
// @Summary Upload and distribute a contact list
// @Description Parses a CSV, XLSX or XLS file and splits its rows across the newest agents. Admin only.
// @Tags distribution-service
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Contact list (.csv, .xlsx, .xls)"
// @Success 201 {object} httptransport.UploadListResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 413 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/lists/upload [post]
func (h Handler) UploadListHandler(
	ctx context.Context,
	principal ports.Principal,
	fileName string,
	sizeBytes int64,
	data []byte,
) (httptransport.UploadListResponse, error) {
	batch, err := h.Upload.UploadList(ctx, commands.UploadListCommand{
		Principal: principal,
		FileName:  fileName,
		SizeBytes: sizeBytes,
		Data:      data,
	})
	if err != nil {
		application.ResolveLogger(h.Logger).Warn("upload list request failed",
			"event", "http_upload_list_failed",
			"module", "list-distribution/distribution-service",
			"layer", "transport",
			"file_name", fileName,
			"error", err.Error(),
		)
		return httptransport.UploadListResponse{}, err
	}
	return httptransport.UploadListResponse{
		Message: fmt.Sprintf("list distributed across %d agents", len(batch.Shares)),
		Batch:   mapBatch(batch),
	}, nil
}

// ListBatchesHandler godoc
// @Summary List distribution batches
// @Description Returns batches newest first with page/limit pagination.
// @Tags distribution-service
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} httptransport.ListBatchesResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /api/lists/distributed [get]
func (h Handler) ListBatchesHandler(
	ctx context.Context,
	principal ports.Principal,
	page int,
	limit int,
) (httptransport.ListBatchesResponse, error) {
	result, err := h.Queries.ListBatches(ctx, principal, page, limit)
	if err != nil {
		return httptransport.ListBatchesResponse{}, err
	}
	items := make([]httptransport.BatchDTO, 0, len(result.Batches))
	for _, batch := range result.Batches {
		items = append(items, mapBatch(batch))
	}
	return httptransport.ListBatchesResponse{
		Items: items,
		Pagination: httptransport.PaginationDTO{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
			Pages: result.Pages,
		},
	}, nil
}

// GetBatchHandler godoc
// @Summary Get distribution batch
// @Tags distribution-service
// @Produce json
// @Security BearerAuth
// @Param batch_id path string true "Batch id"
// @Success 200 {object} httptransport.GetBatchResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/lists/distributed/{batch_id} [get]
func (h Handler) GetBatchHandler(ctx context.Context, principal ports.Principal, batchID string) (httptransport.GetBatchResponse, error) {
	batch, err := h.Queries.GetBatch(ctx, principal, batchID)
	if err != nil {
		return httptransport.GetBatchResponse{}, err
	}
	return httptransport.GetBatchResponse{Batch: mapBatch(batch)}, nil
}

// ExportBatchHandler godoc
// @Summary Export distribution batch as CSV
// @Tags distribution-service
// @Produce text/csv
// @Security BearerAuth
// @Param batch_id path string true "Batch id"
// @Success 200 {file} file
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/lists/distributed/{batch_id}/export [get]
func (h Handler) ExportBatchHandler(ctx context.Context, principal ports.Principal, batchID string) (httptransport.ExportBatchResponse, error) {
	file, err := h.Queries.ExportBatch(ctx, principal, batchID)
	if err != nil {
		return httptransport.ExportBatchResponse{}, err
	}
	return httptransport.ExportBatchResponse{
		FileName: file.FileName,
		Content:  file.Content,
		RowCount: file.RowCount,
	}, nil
}

// DashboardSummaryHandler godoc
// @Summary Dashboard counters
// @Tags distribution-service
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httptransport.DashboardSummaryResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /api/dashboard/summary [get]
func (h Handler) DashboardSummaryHandler(ctx context.Context, principal ports.Principal) (httptransport.DashboardSummaryResponse, error) {
	summary, err := h.Queries.Summary(ctx, principal)
	if err != nil {
		return httptransport.DashboardSummaryResponse{}, err
	}
	return httptransport.DashboardSummaryResponse{
		AgentCount: summary.AgentCount,
		BatchCount: summary.BatchCount,
	}, nil
}

func mapBatch(batch entities.DistributionBatch) httptransport.BatchDTO {
	shares := make([]httptransport.ShareDTO, 0, len(batch.Shares))
	for _, share := range batch.Shares {
		items := make([]httptransport.ContactDTO, 0, len(share.Records))
		for _, record := range share.Records {
			items = append(items, httptransport.ContactDTO{
				FirstName: record.FirstName,
				Phone:     record.Phone,
				Notes:     record.Notes,
			})
		}
		shares = append(shares, httptransport.ShareDTO{
			AgentID:     share.WorkerID,
			AgentName:   share.WorkerDisplayName,
			RecordCount: len(share.Records),
			Items:       items,
		})
	}
	return httptransport.BatchDTO{
		BatchID:    batch.ID,
		FileName:   batch.SourceName,
		TotalItems: batch.TotalRecordCount,
		Shares:     shares,
		CreatedAt:  batch.CreatedAt.UTC().Format(time.RFC3339),
	}
}
