package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/mo"

	"business-recommender/internal/domain"
	"business-recommender/internal/ranking"
)

const maxTermLength = 100

// DocumentStore loads and saves the catalog document. Both operations absorb
// backend failures.
type DocumentStore interface {
	Load(ctx context.Context) domain.Document
	Save(ctx context.Context, doc domain.Document)
}

// RecommendInput is the inbound message as delivered by the transport. Unless
// Decoded is set, "+" still stands in for spaces.
type RecommendInput struct {
	Body  string
	City  string
	State string
	Zip   string

	// Decoded marks fields that were already URL-decoded (form bodies), where
	// a "+" is a literal plus sign.
	Decoded bool
}

type RecommendOutput struct {
	Reply     string
	Selection mo.Option[domain.BusinessRecord]
}

type RecommendService struct {
	catalog *CatalogManager
	store   DocumentStore
	logger  *slog.Logger
	now     func() time.Time
}

func NewRecommendService(lookup Lookup, store DocumentStore, logger *slog.Logger) (*RecommendService, error) {
	if store == nil {
		return nil, errors.New("usecase: document store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	catalog, err := NewCatalogManager(lookup, logger)
	if err != nil {
		return nil, err
	}
	return &RecommendService{
		catalog: catalog,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// ParseRequest turns the inbound fields into a search request. Every field
// is required.
func ParseRequest(in RecommendInput) (domain.Request, error) {
	normalize := normalizeField
	if in.Decoded {
		normalize = strings.TrimSpace
	}
	term := normalize(in.Body)
	city := normalize(in.City)
	state := normalize(in.State)
	zip := normalize(in.Zip)

	switch {
	case term == "":
		return domain.Request{}, newError(ErrorInvalidInput, "empty_body", nil)
	case utf8.RuneCountInString(term) > maxTermLength:
		return domain.Request{}, newError(ErrorInvalidInput, "body_too_long", nil)
	case city == "":
		return domain.Request{}, newError(ErrorInvalidInput, "missing_city", nil)
	case state == "":
		return domain.Request{}, newError(ErrorInvalidInput, "missing_state", nil)
	case zip == "":
		return domain.Request{}, newError(ErrorInvalidInput, "missing_zip", nil)
	}
	return domain.Request{
		SearchTerm: term,
		Location:   city + " " + state + " " + zip,
	}, nil
}

func normalizeField(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "+", " "))
}

// Recommend serves one inbound message: it loads the document, fills the
// bucket for a new term, picks a business, saves the visit and renders the
// reply.
func (s *RecommendService) Recommend(ctx context.Context, in RecommendInput) (RecommendOutput, error) {
	req, err := ParseRequest(in)
	if err != nil {
		return RecommendOutput{}, err
	}

	doc := s.store.Load(ctx)
	doc = s.catalog.EnsureBucket(ctx, doc, req)

	today := domain.DateOf(s.now())
	selection := mo.None[domain.BusinessRecord]()
	if sel, ok := ranking.SelectBest(&doc, req, today).Get(); ok {
		s.logger.InfoContext(ctx, "selected business",
			"term", req.SearchTerm, "bucket", sel.Term, "name", sel.Record.Name, "score", sel.Score)
		selection = mo.Some(sel.Record)
	} else {
		s.logger.InfoContext(ctx, "no business scored above zero", "term", req.SearchTerm)
	}

	s.store.Save(ctx, doc)

	return RecommendOutput{
		Reply:     FormatReply(selection, req.SearchTerm),
		Selection: selection,
	}, nil
}
