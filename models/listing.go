package models

import "time"

// RawListing holds one promotional product as extracted from a source page,
// before category normalization and scoring.
type RawListing struct {
	// ID is the dedup key: the marketplace item id (ASIN) when one could be
	// extracted, otherwise a synthetic id derived from source+title+price.
	ID             string
	ASIN           string
	Title          string
	Price          float64
	ListPrice      float64
	Discount       int
	ImageURL       string
	ListingURL     string
	MarketplaceURL string
	Rating         float64
	Reviews        int
	Votes          int
	RawCategory    string
	Source         string
	ScrapedAt      time.Time
}

// Popularity returns the community-validation signal for this listing:
// aggregator upvotes when present, marketplace review count otherwise.
func (r *RawListing) Popularity() int {
	if r.Votes > 0 {
		return r.Votes
	}
	return r.Reviews
}

// Deal is a RawListing after normalization and scoring — the shape that is
// ranked, persisted and handed to the creative pipeline.
type Deal struct {
	RawListing
	Category string
	Score    int
}

// SessionStats tracks one discovery run. It is owned by the session
// orchestrator, mutated by the fetcher on every attempt, and read-only once
// the session ends. It is never persisted.
type SessionStats struct {
	Requests   int
	Budget     int
	DealsFound int
	Errors     []string
	StartedAt  time.Time
}

// BudgetExhausted reports whether the session request ceiling was reached.
func (s *SessionStats) BudgetExhausted() bool {
	return s.Requests >= s.Budget
}

// AddError appends a diagnostic message to the session error log.
func (s *SessionStats) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// StoredDeal is the document shape persisted to the deal store. Posted and
// Clicks belong to the downstream creative/click-tracking flow and are only
// ever written with their defaults by the discovery pipeline.
type StoredDeal struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	Price     float64   `bson:"price"`
	ListPrice float64   `bson:"list_price,omitempty"`
	Discount  int       `bson:"discount"`
	Score     int       `bson:"score"`
	Category  string    `bson:"category"`
	ImageURL  string    `bson:"image_url,omitempty"`
	DealURL   string    `bson:"deal_url"`
	Source    string    `bson:"source"`
	Posted    bool      `bson:"posted"`
	Clicks    int       `bson:"clicks"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// ToStored converts a ranked Deal into its persistence shape. Posted/Clicks
// defaults are only applied on first insert by the store implementations.
func (d *Deal) ToStored(now time.Time) *StoredDeal {
	url := d.MarketplaceURL
	if url == "" {
		url = d.ListingURL
	}
	return &StoredDeal{
		ID:        d.ID,
		Title:     d.Title,
		Price:     d.Price,
		ListPrice: d.ListPrice,
		Discount:  d.Discount,
		Score:     d.Score,
		Category:  d.Category,
		ImageURL:  d.ImageURL,
		DealURL:   url,
		Source:    d.Source,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
