package postgres

import (
	"context"
	"strconv"
	"time"

	"refonte-quiz-service/internal/domain"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type submissionRow struct {
	bun.BaseModel `bun:"table:submissions"`

	ID        int64          `bun:"id,pk,autoincrement"`
	FirstName string         `bun:"first_name,notnull"`
	LastName  string         `bun:"last_name,notnull"`
	Email     string         `bun:"email,notnull"`
	URL       string         `bun:"url,notnull"`
	Scores    map[string]any `bun:"scores,type:jsonb,notnull"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// SubmissionStore appends submission records to the submissions table. The creation
// timestamp is assigned by the database.
type SubmissionStore struct {
	db *bun.DB
}

func NewSubmissionStore(db *bun.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

func (s *SubmissionStore) CreateSubmission(ctx context.Context, record *domain.SubmissionRecord) error {
	scores := map[string]any(record.Scores)
	if scores == nil {
		scores = map[string]any{}
	}
	row := &submissionRow{
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Email:     record.Email,
		URL:       record.URL,
		Scores:    scores,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id, created_at").Exec(ctx); err != nil {
		return errors.Wrap(err, "insert submission")
	}
	record.ID = strconv.FormatInt(row.ID, 10)
	record.CreatedAt = row.CreatedAt
	return nil
}

// CountSubmissions returns how many records were written for an email.
func (s *SubmissionStore) CountSubmissions(ctx context.Context, email string) (int, error) {
	n, err := s.db.NewSelect().Model((*submissionRow)(nil)).Where("email = ?", email).Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count submissions")
	}
	return n, nil
}
