package memory

import (
	"context"
	"testing"
	"time"

	"refonte-quiz-service/internal/domain"
)

func TestSubmissionStoreAppends(t *testing.T) {
	store := NewSubmissionStore()
	store.clock = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

	for i := 0; i < 2; i++ {
		rec := &domain.SubmissionRecord{Email: "a@b.com", Scores: domain.Scores{"design": 5}}
		if err := store.CreateSubmission(context.Background(), rec); err != nil {
			t.Fatalf("create: %v", err)
		}
		if rec.ID == "" || rec.CreatedAt.IsZero() {
			t.Fatalf("expected id and createdAt assigned, got %+v", rec)
		}
	}

	records := store.Records()
	if len(records) != 2 || records[0].ID == records[1].ID {
		t.Fatalf("expected two distinct records, got %+v", records)
	}
}

func TestSubmissionStoreHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewSubmissionStore().CreateSubmission(ctx, &domain.SubmissionRecord{}); err == nil {
		t.Fatalf("expected canceled context error")
	}
}
