package services

import (
	"math"

	"deal-scout/models"
)

// WeightProfile defines one deal-quality formula: fractional weights over the
// normalized sub-scores plus flat bonuses. Weights should sum to ≤1 so the
// capped bonuses cannot push the pre-clamp total far past 100.
type WeightProfile struct {
	Discount   float64
	Rating     float64
	Popularity float64
	Category   float64

	// SourceBonus is added for listings from high-intent deals feeds.
	SourceBonus float64

	// TrackableBonus is added when the marketplace item id was extracted,
	// since only those listings support click attribution.
	TrackableBonus float64
}

// MarketplaceProfile scores listings scraped directly from the marketplace,
// where star ratings and review counts are available.
var MarketplaceProfile = WeightProfile{
	Discount:    0.40,
	Rating:      0.20,
	Popularity:  0.15,
	Category:    0.15,
	SourceBonus: 10,
}

// CommunityProfile scores listings from community deal aggregators, where
// upvotes stand in for ratings and a trackable marketplace id is worth a
// bonus of its own.
var CommunityProfile = WeightProfile{
	Discount:       0.40,
	Popularity:     0.30,
	Category:       0.20,
	TrackableBonus: 10,
}

// ProfileByName resolves a source's configured profile name, defaulting to
// the community formula.
func ProfileByName(name string) WeightProfile {
	if name == "marketplace" {
		return MarketplaceProfile
	}
	return CommunityProfile
}

// defaultCategoryWeights ranks canonical categories by how well their deals
// tend to convert. "other" is the floor.
var defaultCategoryWeights = map[string]float64{
	CategoryElectronics: 100,
	CategoryComputers:   95,
	CategoryGames:       90,
	CategoryKitchen:     80,
	CategoryHome:        70,
	CategoryBeauty:      65,
	CategorySports:      60,
	CategoryToys:        55,
	CategoryFashion:     50,
	CategoryBooks:       45,
	CategoryOther:       40,
}

// Scorer computes the composite 0–100 deal-quality score. It is pure and
// deterministic: the score is a function of (discount, popularity, rating,
// category, source flags) and nothing else.
type Scorer struct {
	profile    WeightProfile
	highIntent bool
	weights    map[string]float64
}

// NewScorer creates a Scorer for one source population, using the built-in
// category weight table.
func NewScorer(profile WeightProfile, highIntent bool) *Scorer {
	return &Scorer{profile: profile, highIntent: highIntent, weights: defaultCategoryWeights}
}

// OverrideCategoryWeights merges overrides into the weight table, leaving
// categories not mentioned at their built-in weight. A nil or empty map is a
// no-op.
func (s *Scorer) OverrideCategoryWeights(overrides map[string]float64) {
	if len(overrides) == 0 {
		return
	}
	merged := make(map[string]float64, len(defaultCategoryWeights))
	for k, v := range s.weights {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	s.weights = merged
}

// Score computes the deal score for a normalized listing.
func (s *Scorer) Score(listing *models.RawListing, category string) int {
	p := s.profile

	total := discountScore(listing.Discount)*p.Discount +
		ratingScore(listing.Rating)*p.Rating +
		popularityScore(listing.Popularity())*p.Popularity +
		s.categoryScore(category)*p.Category

	if s.highIntent {
		total += p.SourceBonus
	}
	if listing.ASIN != "" {
		total += p.TrackableBonus
	}

	return int(math.Round(clamp(total, 0, 100)))
}

// discountScore saturates at a 40% discount: anything deeper is already a
// headline deal.
func discountScore(discount int) float64 {
	return clamp(float64(discount)/40*100, 0, 100)
}

// popularityScore compresses vote/review counts logarithmically so a deal
// with 100 upvotes beats one with 10, but 10,000 barely beats 1,000.
func popularityScore(popularity int) float64 {
	if popularity < 1 {
		popularity = 1
	}
	return clamp(math.Log10(float64(popularity)+1)/2*100, 0, 100)
}

// ratingScore treats 3.0 stars as the floor and 5.0 as perfect. Ratings
// below the floor clamp to zero rather than going negative.
func ratingScore(rating float64) float64 {
	if rating <= 0 {
		return 0
	}
	return clamp((rating-3.0)/2.0*100, 0, 100)
}

func (s *Scorer) categoryScore(category string) float64 {
	if w, ok := s.weights[category]; ok {
		return w
	}
	return s.weights[CategoryOther]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
