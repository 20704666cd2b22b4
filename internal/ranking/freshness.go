package ranking

import "business-recommender/internal/domain"

const (
	recentPenalty = -5
	stalePenalty  = -10
)

// FreshnessPenalty adjusts a score by the age of a record's last update:
// 1-7 days old costs 5, 8-14 days old costs 10, anything else is free.
// Ages from the future count as zero days.
func FreshnessPenalty(lastUpdated, today domain.Date) int {
	if lastUpdated.IsZero() || today.IsZero() {
		return 0
	}
	age := max(lastUpdated.DaysUntil(today), 0)
	switch {
	case age >= 8 && age <= 14:
		return stalePenalty
	case age >= 1 && age <= 7:
		return recentPenalty
	default:
		return 0
	}
}
