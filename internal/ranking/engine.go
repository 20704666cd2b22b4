package ranking

import (
	"github.com/samber/mo"

	"business-recommender/internal/domain"
)

const (
	termMatchWeight = 2
	cityMatchWeight = 1
	categoryWeight  = 3
	nameWeight      = 10
	visitWeight     = -5
)

// Selection is the record picked for a reply and where it lives.
type Selection struct {
	Term   string
	Index  int
	Record domain.BusinessRecord
	Score  float64
}

// Score rates a record stored under term against req. Every category alias
// contributes, so records listing several matching categories score higher.
func Score(term string, record domain.BusinessRecord, req domain.Request, today domain.Date) float64 {
	score := 0.0
	if term == req.SearchTerm {
		score += termMatchWeight
	}
	if record.Location.City == req.City() {
		score += cityMatchWeight
	}
	for _, cat := range record.Categories {
		score += categoryWeight * Similarity(req.SearchTerm, cat.Alias)
	}
	score += nameWeight * Similarity(req.SearchTerm, record.Name)
	score += float64(FreshnessPenalty(record.DateUpdated, today))
	score += float64(visitWeight * record.NumVisited)
	return score
}

// Best walks buckets in insertion order and records in list order and keeps
// the first record with the highest score. Only positive scores qualify.
func Best(doc domain.Document, req domain.Request, today domain.Date) mo.Option[Selection] {
	best := mo.None[Selection]()
	bestScore := 0.0
	for _, term := range doc.Catalog.Terms() {
		records, _ := doc.Catalog.Bucket(term)
		for i, record := range records {
			score := Score(term, record, req, today)
			if score > bestScore {
				bestScore = score
				best = mo.Some(Selection{Term: term, Index: i, Record: record, Score: score})
			}
		}
	}
	return best
}

// SelectBest picks the best record and counts a visit for it in doc. The
// returned record carries the updated visit count.
func SelectBest(doc *domain.Document, req domain.Request, today domain.Date) mo.Option[Selection] {
	sel, ok := Best(*doc, req, today).Get()
	if !ok {
		return mo.None[Selection]()
	}
	if doc.MarkVisited(sel.Term, sel.Record.Name) {
		sel.Record.NumVisited++
	}
	return mo.Some(sel)
}
