package queries

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"agentdesk/contexts/list-distribution/distribution-service/adapters/memory"
	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	domainerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"
	"agentdesk/contexts/list-distribution/distribution-service/domain/services"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
)

var agentPrincipal = ports.Principal{UserID: "agent_9", Role: ports.RoleAgent}

func TestListBatchesDefaultsAndPageCount(t *testing.T) {
	store := seededStore(t, 12)
	useCase := UseCase{Batches: store, Workers: store}

	page, err := useCase.ListBatches(context.Background(), agentPrincipal, 0, 0)
	if err != nil {
		t.Fatalf("list batches failed: %v", err)
	}
	if page.Page != DefaultPage || page.Limit != DefaultPageSize {
		t.Fatalf("expected defaults, got page=%d limit=%d", page.Page, page.Limit)
	}
	if page.Total != 12 || page.Pages != 2 || len(page.Batches) != 10 {
		t.Fatalf("unexpected page total=%d pages=%d items=%d", page.Total, page.Pages, len(page.Batches))
	}
	if page.Batches[0].ID != "batch_11" {
		t.Fatalf("expected newest batch first, got %s", page.Batches[0].ID)
	}

	second, err := useCase.ListBatches(context.Background(), agentPrincipal, 2, 10)
	if err != nil {
		t.Fatalf("list second page failed: %v", err)
	}
	if len(second.Batches) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(second.Batches))
	}
}

func TestListBatchesValidation(t *testing.T) {
	store := seededStore(t, 1)
	useCase := UseCase{Batches: store, Workers: store}

	if _, err := useCase.ListBatches(context.Background(), ports.Principal{}, 1, 10); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	for _, tc := range []struct{ page, limit int }{{-1, 10}, {1, -5}, {1, MaxPageSize + 1}} {
		if _, err := useCase.ListBatches(context.Background(), agentPrincipal, tc.page, tc.limit); !errors.Is(err, domainerrors.ErrInvalidPage) {
			t.Fatalf("page=%d limit=%d: expected invalid page, got %v", tc.page, tc.limit, err)
		}
	}
}

func TestExportBatchProducesOneRowPerContact(t *testing.T) {
	store := seededStore(t, 1)
	useCase := UseCase{Batches: store, Workers: store}

	file, err := useCase.ExportBatch(context.Background(), agentPrincipal, "batch_0")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if file.FileName != "contacts-0.csv_distributed.csv" {
		t.Fatalf("unexpected export file name %s", file.FileName)
	}
	rows, err := csv.NewReader(strings.NewReader(string(file.Content))).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid csv: %v", err)
	}
	if len(rows) != 8 || file.RowCount != 7 {
		t.Fatalf("expected header plus 7 rows, got %d rows (count %d)", len(rows), file.RowCount)
	}
	if strings.Join(rows[0], ",") != "AgentID,Agent,FirstName,Phone,Notes" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "agent_4" || rows[1][2] != "name-0" {
		t.Fatalf("unexpected first export row %v", rows[1])
	}
}

func TestExportBatchNotFound(t *testing.T) {
	store := seededStore(t, 0)
	useCase := UseCase{Batches: store, Workers: store}
	_, err := useCase.ExportBatch(context.Background(), agentPrincipal, "missing")
	if !errors.Is(err, domainerrors.ErrBatchNotFound) {
		t.Fatalf("expected batch not found, got %v", err)
	}
}

func TestSummaryCountsAgentsAndBatches(t *testing.T) {
	store := seededStore(t, 3)
	useCase := UseCase{Batches: store, Workers: store}

	summary, err := useCase.Summary(context.Background(), agentPrincipal)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.AgentCount != 5 || summary.BatchCount != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func seededStore(t *testing.T, batches int) *memory.Store {
	t.Helper()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	workers := make([]entities.Worker, 0, 5)
	for i := 0; i < 5; i++ {
		workers = append(workers, entities.Worker{
			ID:          fmt.Sprintf("agent_%d", i),
			DisplayName: fmt.Sprintf("Agent %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}
	store := memory.NewStore(workers)
	ordered := services.OrderWorkers(workers)

	records := make([]entities.ContactRecord, 0, 7)
	for i := 0; i < 7; i++ {
		records = append(records, entities.ContactRecord{
			FirstName: fmt.Sprintf("name-%d", i),
			Phone:     fmt.Sprintf("+1555000%04d", i),
			Notes:     "call back",
		})
	}
	for i := 0; i < batches; i++ {
		batch, err := services.NewBatch(
			fmt.Sprintf("batch_%d", i),
			fmt.Sprintf("contacts-%d.csv", i),
			records,
			ordered,
			services.DefaultPoolSize,
			base.Add(time.Duration(i)*time.Minute),
		)
		if err != nil {
			t.Fatalf("build batch failed: %v", err)
		}
		if err := store.CreateBatch(context.Background(), batch, ports.OutboxMessage{
			OutboxID:     fmt.Sprintf("evt_%d", i),
			EventType:    "distribution.batch_created",
			PartitionKey: batch.ID,
			Payload:      []byte(`{}`),
			CreatedAt:    batch.CreatedAt,
		}); err != nil {
			t.Fatalf("create batch failed: %v", err)
		}
	}
	return store
}
