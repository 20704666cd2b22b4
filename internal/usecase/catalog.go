package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"business-recommender/internal/domain"
)

// Lookup fetches candidate businesses for a term. Implementations absorb
// their own failures and return an empty slice.
type Lookup interface {
	Search(ctx context.Context, term, location string) []domain.BusinessRecord
}

// CatalogManager makes sure the bucket for a requested term exists.
type CatalogManager struct {
	lookup Lookup
	logger *slog.Logger
	now    func() time.Time
}

func NewCatalogManager(lookup Lookup, logger *slog.Logger) (*CatalogManager, error) {
	if lookup == nil {
		return nil, errors.New("usecase: lookup must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogManager{lookup: lookup, logger: logger, now: time.Now}, nil
}

// EnsureBucket fetches businesses for req.SearchTerm the first time the term
// is seen; later calls never search again, even when the first search came
// back empty. The document is always stamped with today's date.
func (m *CatalogManager) EnsureBucket(ctx context.Context, doc domain.Document, req domain.Request) domain.Document {
	if doc.Catalog == nil {
		doc.Catalog = domain.NewCatalog()
	}
	if !doc.Catalog.Has(req.SearchTerm) {
		records := m.lookup.Search(ctx, req.SearchTerm, req.Location)
		m.logger.InfoContext(ctx, "populated bucket", "term", req.SearchTerm, "records", len(records))
		doc.Catalog.Set(req.SearchTerm, records)
	}
	doc.DateUpdated = domain.DateOf(m.now())
	return doc
}
