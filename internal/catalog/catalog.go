// Package catalog loads and validates the quiz question catalog.
//
// A catalog document is a JSON array of sections:
//
//	[{"category": "Design", "slug": "design", "questions": [
//	    {"id": "design-1", "question": "...", "options": [{"text": "...", "score": 5}]}
//	]}]
//
// Documents are checked against an embedded JSON schema first, then for
// cross-entry constraints the schema cannot express (unique slugs and ids).
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"strings"

	"refonte-quiz-service/internal/domain"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

//go:embed default_catalog.json
var defaultCatalogJSON []byte

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

type rawSection struct {
	Category  string            `json:"category"`
	Slug      string            `json:"slug"`
	Questions []domain.Question `json:"questions"`
}

// Parse validates a catalog document and returns the typed catalog.
func Parse(data []byte) (*domain.Catalog, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidCatalog, "decode: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, errors.Wrap(domain.ErrInvalidCatalog, strings.Join(msgs, "; "))
	}

	var raw []rawSection
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidCatalog, "decode: %v", err)
	}

	catalog := &domain.Catalog{Sections: make([]domain.Section, 0, len(raw))}
	for _, s := range raw {
		catalog.Sections = append(catalog.Sections, domain.Section{
			Category:  domain.Category{Name: s.Category, Slug: s.Slug},
			Questions: s.Questions,
		})
	}
	if err := Validate(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Validate checks the invariants every catalog must hold regardless of its source.
func Validate(c *domain.Catalog) error {
	if c == nil || len(c.Sections) == 0 {
		return errors.Wrap(domain.ErrInvalidCatalog, "no categories")
	}
	slugs := make(map[string]struct{}, len(c.Sections))
	ids := make(map[string]string)
	for _, s := range c.Sections {
		if s.Slug == "" || strings.TrimSpace(s.Name) == "" {
			return errors.Wrap(domain.ErrInvalidCatalog, "category name and slug are required")
		}
		if _, dup := slugs[s.Slug]; dup {
			return errors.Wrapf(domain.ErrInvalidCatalog, "duplicate category slug %q", s.Slug)
		}
		slugs[s.Slug] = struct{}{}

		for _, q := range s.Questions {
			if q.ID == "" {
				return errors.Wrapf(domain.ErrInvalidCatalog, "question without id in %q", s.Slug)
			}
			if other, dup := ids[q.ID]; dup {
				return errors.Wrapf(domain.ErrInvalidCatalog, "duplicate question id %q in %q and %q", q.ID, other, s.Slug)
			}
			ids[q.ID] = s.Slug
			if len(q.Options) == 0 {
				return errors.Wrapf(domain.ErrInvalidCatalog, "question %q has no options", q.ID)
			}
			for i, opt := range q.Options {
				if strings.TrimSpace(opt.Label) == "" {
					return errors.Wrapf(domain.ErrInvalidCatalog, "question %q option %d has no label", q.ID, i)
				}
			}
		}
	}
	return nil
}

// Loader fetches a catalog from a backing source.
type Loader interface {
	LoadCatalog(ctx context.Context) (*domain.Catalog, error)
}

// EmbeddedLoader serves the catalog compiled into the binary.
type EmbeddedLoader struct{}

func NewEmbeddedLoader() EmbeddedLoader {
	return EmbeddedLoader{}
}

func (EmbeddedLoader) LoadCatalog(_ context.Context) (*domain.Catalog, error) {
	return Parse(defaultCatalogJSON)
}

// DefaultDocument returns the raw embedded catalog document.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultCatalogJSON...)
}

// FileLoader reads a catalog document from disk.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) LoadCatalog(_ context.Context) (*domain.Catalog, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", l.path)
	}
	return Parse(data)
}

// StaticLoader returns a catalog built in code (useful for tests/demos).
type StaticLoader struct {
	catalog *domain.Catalog
}

func NewStaticLoader(c *domain.Catalog) *StaticLoader {
	return &StaticLoader{catalog: c}
}

func (l *StaticLoader) LoadCatalog(_ context.Context) (*domain.Catalog, error) {
	if err := Validate(l.catalog); err != nil {
		return nil, err
	}
	return l.catalog, nil
}
