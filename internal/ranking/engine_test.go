package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"business-recommender/internal/domain"
)

var today = domain.DateOf(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))

func pizzaRequest() domain.Request {
	return domain.Request{SearchTerm: "pizza", Location: "Springfield IL 62701"}
}

func pizzaPlace() domain.BusinessRecord {
	return domain.BusinessRecord{
		Name:        "Pizza Place",
		Rating:      4.5,
		Location:    domain.Location{Address1: "1 Main St", City: "Springfield"},
		Phone:       "+12175550100",
		Categories:  []domain.Category{{Alias: "pizza", Title: "Pizza"}},
		DateCreated: today,
		DateUpdated: today,
	}
}

func TestScore_Components(t *testing.T) {
	// 2 (term) + 1 (city) + 3*1 (category) + 10*0.5 (name)
	require.InDelta(t, 11.0, Score("pizza", pizzaPlace(), pizzaRequest(), today), 1e-9)

	other := pizzaPlace()
	other.Location.City = "Chicago"
	require.InDelta(t, 10.0, Score("pizza", other, pizzaRequest(), today), 1e-9)
	require.InDelta(t, 8.0, Score("slices", other, pizzaRequest(), today), 1e-9)

	stale := pizzaPlace()
	stale.DateUpdated = domain.DateOf(today.Time().AddDate(0, 0, -10))
	require.InDelta(t, 1.0, Score("pizza", stale, pizzaRequest(), today), 1e-9)
}

func TestScore_SumsEveryCategory(t *testing.T) {
	rec := pizzaPlace()
	rec.Categories = []domain.Category{{Alias: "pizza"}, {Alias: "pizzas"}}

	// sum: 3*1 + 3*10/11, neither the max (3) nor the last (30/11) alone
	want := 2 + 1 + 3 + 3*10.0/11.0 + 5
	require.InDelta(t, want, Score("pizza", rec, pizzaRequest(), today), 1e-9)

	rec.Categories = nil
	require.InDelta(t, 8.0, Score("pizza", rec, pizzaRequest(), today), 1e-9)
}

func TestScore_VisitsLowerScoreByFive(t *testing.T) {
	rec := pizzaPlace()
	for visits := 0; visits < 4; visits++ {
		rec.NumVisited = visits
		before := Score("pizza", rec, pizzaRequest(), today)
		rec.NumVisited = visits + 1
		after := Score("pizza", rec, pizzaRequest(), today)
		require.InDelta(t, 5.0, before-after, 1e-9)
	}
}

func TestBest_PicksHighestScore(t *testing.T) {
	doc := domain.NewDocument()
	doc.Catalog.Set("burgers", []domain.BusinessRecord{{Name: "Burger Barn", Categories: []domain.Category{{Alias: "burgers"}}}})
	doc.Catalog.Set("pizza", []domain.BusinessRecord{{Name: "Slice Shop"}, pizzaPlace()})

	sel, ok := Best(doc, pizzaRequest(), today).Get()
	require.True(t, ok)
	require.Equal(t, "pizza", sel.Term)
	require.Equal(t, 1, sel.Index)
	require.Equal(t, "Pizza Place", sel.Record.Name)
	require.InDelta(t, 11.0, sel.Score, 1e-9)
}

func TestBest_TieKeepsEarliest(t *testing.T) {
	twin := domain.BusinessRecord{Name: "Twin", Location: domain.Location{City: "Springfield"}}
	doc := domain.NewDocument()
	doc.Catalog.Set("first", []domain.BusinessRecord{twin})
	doc.Catalog.Set("second", []domain.BusinessRecord{twin, twin})

	sel, ok := Best(doc, domain.Request{SearchTerm: "qq", Location: "Springfield"}, today).Get()
	require.True(t, ok)
	require.Equal(t, "first", sel.Term)
	require.Equal(t, 0, sel.Index)

	doc = domain.NewDocument()
	doc.Catalog.Set("only", []domain.BusinessRecord{{Name: "A", Location: twin.Location}, {Name: "B", Location: twin.Location}})
	sel, ok = Best(doc, domain.Request{SearchTerm: "qq", Location: "Springfield"}, today).Get()
	require.True(t, ok)
	require.Equal(t, "A", sel.Record.Name)
}

func TestBest_NoPositiveScore(t *testing.T) {
	doc := domain.NewDocument()
	doc.Catalog.Set("burgers", []domain.BusinessRecord{{
		Name:       "Burger Barn",
		Location:   domain.Location{City: "Chicago"},
		Categories: []domain.Category{{Alias: "burgers"}},
	}})
	worn := pizzaPlace()
	worn.NumVisited = 3
	doc.Catalog.Set("pizza", []domain.BusinessRecord{worn})

	require.True(t, Best(doc, domain.Request{SearchTerm: "qqq", Location: "Springfield"}, today).IsAbsent())

	// 11 - 15 is not positive
	doc = domain.NewDocument()
	doc.Catalog.Set("pizza", []domain.BusinessRecord{worn})
	require.True(t, Best(doc, pizzaRequest(), today).IsAbsent())
}

func TestBest_EmptyDocument(t *testing.T) {
	require.True(t, Best(domain.NewDocument(), pizzaRequest(), today).IsAbsent())
	require.True(t, Best(domain.Document{}, pizzaRequest(), today).IsAbsent())
}

func TestSelectBest_CountsVisit(t *testing.T) {
	doc := domain.NewDocument()
	doc.Catalog.Set("pizza", []domain.BusinessRecord{pizzaPlace()})

	sel, ok := SelectBest(&doc, pizzaRequest(), today).Get()
	require.True(t, ok)
	require.Equal(t, 1, sel.Record.NumVisited)

	records, _ := doc.Catalog.Bucket("pizza")
	require.Equal(t, 1, records[0].NumVisited)
}

func TestSelectBest_NoSelectionLeavesDocument(t *testing.T) {
	doc := domain.NewDocument()
	doc.Catalog.Set("burgers", []domain.BusinessRecord{{Name: "Burger Barn"}})

	require.True(t, SelectBest(&doc, domain.Request{SearchTerm: "qqq", Location: "Nowhere"}, today).IsAbsent())
	records, _ := doc.Catalog.Bucket("burgers")
	require.Zero(t, records[0].NumVisited)
}
