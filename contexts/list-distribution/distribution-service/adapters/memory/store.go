package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	domainerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"
	"agentdesk/contexts/list-distribution/distribution-service/domain/services"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
	"agentdesk/internal/shared/outbox"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message     ports.OutboxMessage
	status      string
	publishedAt *time.Time
}

// Store is the in-memory adapter for development and tests.
// Batches are copied on the way in and out so callers cannot mutate stored history.
type Store struct {
	mu sync.RWMutex

	workers []entities.Worker
	batches map[string]entities.DistributionBatch
	order   []string
	outbox  map[string]outboxRecord
	outSeq  []string
}

func NewStore(seed []entities.Worker) *Store {
	return &Store{
		workers: append([]entities.Worker(nil), seed...),
		batches: make(map[string]entities.DistributionBatch),
		outbox:  make(map[string]outboxRecord),
	}
}

// AddWorker registers an eligible agent.
func (s *Store) AddWorker(worker entities.Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker)
}

func (s *Store) ListEligibleWorkers(_ context.Context) ([]entities.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return services.OrderWorkers(s.workers), nil
}

func (s *Store) CountWorkers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workers), nil
}

func (s *Store) CreateBatch(_ context.Context, batch entities.DistributionBatch, message ports.OutboxMessage) error {
	if err := services.ValidateBatch(batch, len(batch.Shares)); err != nil {
		return err
	}
	if strings.TrimSpace(message.OutboxID) == "" {
		return domainerrors.ErrInvalidBatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.batches[batch.ID]; exists {
		return domainerrors.ErrInvalidBatch
	}
	if _, exists := s.outbox[message.OutboxID]; exists {
		return domainerrors.ErrInvalidBatch
	}
	s.batches[batch.ID] = cloneBatch(batch)
	s.order = append(s.order, batch.ID)
	s.outbox[message.OutboxID] = outboxRecord{
		message: cloneMessage(message),
		status:  outbox.StatusPending,
	}
	s.outSeq = append(s.outSeq, message.OutboxID)
	return nil
}

func (s *Store) GetBatch(_ context.Context, batchID string) (entities.DistributionBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, exists := s.batches[strings.TrimSpace(batchID)]
	if !exists {
		return entities.DistributionBatch{}, domainerrors.ErrBatchNotFound
	}
	return cloneBatch(batch), nil
}

func (s *Store) ListBatches(_ context.Context, page int, pageSize int) ([]entities.DistributionBatch, int, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, domainerrors.ErrInvalidPage
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]entities.DistributionBatch, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.batches[id])
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	start := (page - 1) * pageSize
	if start >= total {
		return []entities.DistributionBatch{}, total, nil
	}
	end := min(start+pageSize, total)
	items := make([]entities.DistributionBatch, 0, end-start)
	for _, batch := range all[start:end] {
		items = append(items, cloneBatch(batch))
	}
	return items, total, nil
}

func (s *Store) CountBatches(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batches), nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = outbox.DefaultRelayBatchSize
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.OutboxMessage, 0)
	for _, id := range s.outSeq {
		record := s.outbox[id]
		if record.status != outbox.StatusPending {
			continue
		}
		items = append(items, cloneMessage(record.message))
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.outbox[strings.TrimSpace(outboxID)]
	if !exists {
		return domainerrors.ErrBatchNotFound
	}
	at := publishedAt.UTC()
	record.status = outbox.StatusPublished
	record.publishedAt = &at
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneBatch(batch entities.DistributionBatch) entities.DistributionBatch {
	cloned := batch
	cloned.Shares = make([]entities.Share, len(batch.Shares))
	for i, share := range batch.Shares {
		cloned.Shares[i] = entities.Share{
			WorkerID:          share.WorkerID,
			WorkerDisplayName: share.WorkerDisplayName,
			Records:           append(make([]entities.ContactRecord, 0, len(share.Records)), share.Records...),
		}
	}
	return cloned
}

func cloneMessage(message ports.OutboxMessage) ports.OutboxMessage {
	cloned := message
	cloned.Payload = append([]byte(nil), message.Payload...)
	return cloned
}

var (
	_ ports.WorkerDirectory  = (*Store)(nil)
	_ ports.BatchRepository  = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
)
