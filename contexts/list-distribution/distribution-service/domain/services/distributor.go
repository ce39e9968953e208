package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	domainerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"
)

// DefaultPoolSize is the number of agents a batch is split across unless configured otherwise.
const DefaultPoolSize = 5

// OrderWorkers returns a copy of workers ranked newest first.
// Identical creation times fall back to ascending worker id.
func OrderWorkers(workers []entities.Worker) []entities.Worker {
	ordered := append([]entities.Worker(nil), workers...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// ShareSizes splits n items over k slots; the first n%k slots get one extra item.
func ShareSizes(n int, k int) []int {
	if k <= 0 || n < 0 {
		return nil
	}
	base, remainder := n/k, n%k
	sizes := make([]int, k)
	for i := range sizes {
		sizes[i] = base
		if i < remainder {
			sizes[i]++
		}
	}
	return sizes
}

// Distribute assigns contiguous, order-preserving slices of records to the first
// poolSize workers. The pool must hold at least poolSize workers before truncation.
func Distribute(
	records []entities.ContactRecord,
	workers []entities.Worker,
	poolSize int,
) ([]entities.Share, error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf("%w: pool size must be positive, got %d", domainerrors.ErrInvalidBatch, poolSize)
	}
	if len(workers) < poolSize {
		return nil, fmt.Errorf(
			"%w: at least %d agents are required for distribution, currently have %d",
			domainerrors.ErrInsufficientWorkers,
			poolSize,
			len(workers),
		)
	}

	sizes := ShareSizes(len(records), poolSize)
	shares := make([]entities.Share, poolSize)
	start := 0
	for i, worker := range workers[:poolSize] {
		end := start + sizes[i]
		assigned := make([]entities.ContactRecord, sizes[i])
		copy(assigned, records[start:end])
		shares[i] = entities.Share{
			WorkerID:          worker.ID,
			WorkerDisplayName: worker.DisplayName,
			Records:           assigned,
		}
		start = end
	}
	return shares, nil
}

// NewBatch distributes records and packages the result as a persistable batch.
func NewBatch(
	batchID string,
	sourceName string,
	records []entities.ContactRecord,
	workers []entities.Worker,
	poolSize int,
	createdAt time.Time,
) (entities.DistributionBatch, error) {
	shares, err := Distribute(records, workers, poolSize)
	if err != nil {
		return entities.DistributionBatch{}, err
	}
	batch := entities.DistributionBatch{
		ID:               strings.TrimSpace(batchID),
		SourceName:       strings.TrimSpace(sourceName),
		TotalRecordCount: len(records),
		Shares:           shares,
		CreatedAt:        createdAt.UTC(),
	}
	if err := ValidateBatch(batch, poolSize); err != nil {
		return entities.DistributionBatch{}, err
	}
	return batch, nil
}

// ValidateBatch checks the invariants every stored batch must satisfy.
func ValidateBatch(batch entities.DistributionBatch, poolSize int) error {
	switch {
	case poolSize <= 0:
		return fmt.Errorf("%w: pool size must be positive, got %d", domainerrors.ErrInvalidBatch, poolSize)
	case strings.TrimSpace(batch.ID) == "":
		return fmt.Errorf("%w: id is required", domainerrors.ErrInvalidBatch)
	case strings.TrimSpace(batch.SourceName) == "":
		return fmt.Errorf("%w: source name is required", domainerrors.ErrInvalidBatch)
	case batch.TotalRecordCount < 0:
		return fmt.Errorf("%w: negative record count", domainerrors.ErrInvalidBatch)
	case len(batch.Shares) != poolSize:
		return fmt.Errorf("%w: expected %d shares, got %d", domainerrors.ErrInvalidBatch, poolSize, len(batch.Shares))
	case batch.AssignedCount() != batch.TotalRecordCount:
		return fmt.Errorf(
			"%w: shares hold %d records, total is %d",
			domainerrors.ErrInvalidBatch,
			batch.AssignedCount(),
			batch.TotalRecordCount,
		)
	}
	for i, share := range batch.Shares {
		if strings.TrimSpace(share.WorkerID) == "" {
			return fmt.Errorf("%w: share %d has no worker", domainerrors.ErrInvalidBatch, i)
		}
		for _, record := range share.Records {
			if !record.Valid() {
				return fmt.Errorf("%w: share %d holds an incomplete record", domainerrors.ErrInvalidBatch, i)
			}
		}
	}
	return nil
}
