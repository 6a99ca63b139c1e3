package services

import (
	"sort"

	"deal-scout/models"
	"deal-scout/utils"
)

// FilterConfig holds the hard quality constraints applied to deduplicated
// deals. All boundaries are inclusive.
type FilterConfig struct {
	MinPrice      float64
	MaxPrice      float64
	PopularityMin int
	DiscountMin   int
	TitleMinLen   int
}

// Aggregator merges deals gathered across sources into one ranked list:
// dedup (best score wins) → quality filter → stable sort → top-N truncation.
// Dedup runs before filtering on purpose: a duplicate's survival depends only
// on its score, and the single survivor is then filter-tested.
type Aggregator struct {
	filters FilterConfig
	logger  *utils.Logger
}

// NewAggregator creates an Aggregator with the given quality filters.
func NewAggregator(filters FilterConfig, logger *utils.Logger) *Aggregator {
	return &Aggregator{filters: filters, logger: logger}
}

// Aggregate produces the final ranked list, capped at maxN entries. The
// second and third return values report the sizes after dedup and after
// filtering, for the session summary.
func (a *Aggregator) Aggregate(deals []*models.Deal, maxN int) ([]*models.Deal, int, int) {
	deduped := a.Deduplicate(deals)
	filtered := a.Filter(deduped)

	// Stable sort keeps discovery order on equal scores.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})

	if maxN > 0 && len(filtered) > maxN {
		return filtered[:maxN], len(deduped), len(filtered)
	}
	return filtered, len(deduped), len(filtered)
}

// Deduplicate groups deals by identifier and keeps, per group, the one with
// the strictly higher score; ties keep the first seen. Discovery order of the
// survivors is preserved.
func (a *Aggregator) Deduplicate(deals []*models.Deal) []*models.Deal {
	byID := make(map[string]int, len(deals)) // id → index into result
	result := make([]*models.Deal, 0, len(deals))

	for _, d := range deals {
		idx, seen := byID[d.ID]
		if !seen {
			byID[d.ID] = len(result)
			result = append(result, d)
			continue
		}
		if d.Score > result[idx].Score {
			a.logger.Debug("[aggregator] Duplicate %s: replacing score %d with %d",
				d.ID, result[idx].Score, d.Score)
			result[idx] = d
		}
	}

	return result
}

// Filter drops deals failing any hard quality constraint.
func (a *Aggregator) Filter(deals []*models.Deal) []*models.Deal {
	result := make([]*models.Deal, 0, len(deals))
	for _, d := range deals {
		if !a.passes(d) {
			continue
		}
		result = append(result, d)
	}
	return result
}

func (a *Aggregator) passes(d *models.Deal) bool {
	f := a.filters
	switch {
	case d.Price < f.MinPrice || d.Price > f.MaxPrice:
		a.logger.Debug("[aggregator] Price out of band (%.2f): %s", d.Price, d.Title)
		return false
	case d.Popularity() < f.PopularityMin:
		a.logger.Debug("[aggregator] Popularity below floor (%d): %s", d.Popularity(), d.Title)
		return false
	case d.Discount < f.DiscountMin:
		a.logger.Debug("[aggregator] Discount below floor (%d%%): %s", d.Discount, d.Title)
		return false
	case len([]rune(d.Title)) < f.TitleMinLen:
		return false
	}
	return true
}
