package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"refonte-quiz-service/internal/domain"
)

// SubmissionStore keeps submission records in process memory (useful for tests/demos).
type SubmissionStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	records []domain.SubmissionRecord
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{clock: time.Now}
}

// CreateSubmission appends the record and assigns its id and creation time.
func (s *SubmissionStore) CreateSubmission(ctx context.Context, record *domain.SubmissionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = strconv.Itoa(len(s.records) + 1)
	record.CreatedAt = s.clock().UTC()
	s.records = append(s.records, *record)
	return nil
}

// Records returns a snapshot of every stored record.
func (s *SubmissionStore) Records() []domain.SubmissionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SubmissionRecord(nil), s.records...)
}
