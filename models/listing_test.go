package models

import (
	"testing"
	"time"
)

func TestPopularityPrefersVotes(t *testing.T) {
	tests := []struct {
		name    string
		listing RawListing
		want    int
	}{
		{"votes win over reviews", RawListing{Votes: 150, Reviews: 9000}, 150},
		{"reviews when no votes", RawListing{Reviews: 856}, 856},
		{"neither", RawListing{}, 0},
	}

	for _, tt := range tests {
		if got := tt.listing.Popularity(); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestBudgetExhausted(t *testing.T) {
	s := &SessionStats{Budget: 2}
	if s.BudgetExhausted() {
		t.Error("fresh session should have budget")
	}
	s.Requests = 2
	if !s.BudgetExhausted() {
		t.Error("at the ceiling the budget is exhausted")
	}
}

func TestToStoredPrefersMarketplaceURL(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	tagged := &Deal{
		RawListing: RawListing{
			ID:             "B08WM3LMJF",
			MarketplaceURL: "https://www.amazon.com.br/dp/B08WM3LMJF?tag=scout-20",
			ListingURL:     "https://www.pelando.com.br/d/fone",
		},
		Score: 90,
	}
	stored := tagged.ToStored(now)
	if stored.DealURL != tagged.MarketplaceURL {
		t.Errorf("DealURL: got %q, want the tagged marketplace link", stored.DealURL)
	}
	if stored.Posted || stored.Clicks != 0 {
		t.Errorf("fresh stored deal must carry zero downstream state: posted=%v clicks=%d",
			stored.Posted, stored.Clicks)
	}
	if !stored.CreatedAt.Equal(now) || !stored.UpdatedAt.Equal(now) {
		t.Error("timestamps should both be the conversion time")
	}

	untagged := &Deal{RawListing: RawListing{ID: "x", ListingURL: "https://example.com/d/1"}}
	if got := untagged.ToStored(now).DealURL; got != "https://example.com/d/1" {
		t.Errorf("DealURL fallback: got %q", got)
	}
}
