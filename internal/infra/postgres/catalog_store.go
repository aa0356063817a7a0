package postgres

import (
	"context"

	"refonte-quiz-service/internal/catalog"
	"refonte-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

// CatalogStore loads and stores named catalog documents as JSONB.
type CatalogStore struct {
	pool *pgxpool.Pool
	name string
}

func NewCatalogStore(pool *pgxpool.Pool, name string) *CatalogStore {
	return &CatalogStore{pool: pool, name: name}
}

// LoadCatalog implements catalog.Loader.
func (s *CatalogStore) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM catalogs WHERE name=$1`, s.name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrInvalidCatalog, "catalog %q not found", s.name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load catalog %q", s.name)
	}
	return catalog.Parse(raw)
}

// SaveCatalog validates a catalog document and upserts it under the store's name.
func (s *CatalogStore) SaveCatalog(ctx context.Context, data []byte) error {
	if _, err := catalog.Parse(data); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO catalogs (name, data, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		s.name, string(data))
	if err != nil {
		return errors.Wrapf(err, "save catalog %q", s.name)
	}
	return nil
}
