package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"business-recommender/internal/domain"
)

// ErrNotFound is returned by a Backend when no document has been written yet.
var ErrNotFound = errors.New("repository: document not found")

// Backend reads and overwrites the raw bytes of the single stored document.
type Backend interface {
	Fetch(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, body []byte) error
}

// Store persists the catalog document through a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// NewStore creates a Store. A nil logger falls back to slog.Default().
func NewStore(backend Backend, logger *slog.Logger) (*Store, error) {
	if backend == nil {
		return nil, errors.New("repository: backend must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger}, nil
}

// Get reads and decodes the document. A missing document is not an error and
// yields an empty one.
func (s *Store) Get(ctx context.Context) (domain.Document, error) {
	raw, err := s.backend.Fetch(ctx)
	if errors.Is(err, ErrNotFound) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("repository: Get: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.NewDocument(), nil
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("repository: Get decode: %w", err)
	}
	return doc, nil
}

// Put encodes doc and overwrites the stored copy.
func (s *Store) Put(ctx context.Context, doc domain.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("repository: Put encode: %w", err)
	}
	if err := s.backend.Store(ctx, raw); err != nil {
		return fmt.Errorf("repository: Put: %w", err)
	}
	return nil
}

// Load is Get with failures logged and replaced by an empty document.
func (s *Store) Load(ctx context.Context) domain.Document {
	doc, err := s.Get(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load document, starting empty", "err", err)
		return domain.NewDocument()
	}
	return doc
}

// Save is Put with failures logged and dropped.
func (s *Store) Save(ctx context.Context, doc domain.Document) {
	if err := s.Put(ctx, doc); err != nil {
		s.logger.ErrorContext(ctx, "failed to save document", "err", err)
	}
}
