package storage

import (
	"context"
	"errors"

	"deal-scout/models"
)

// ErrNotFound is returned by Get when no deal exists for the given id.
var ErrNotFound = errors.New("deal not found")

// DealStore is the keyed document store the discovery pipeline hands its
// ranked deals to. Implementations must provide duplicate-safe upsert
// semantics: re-running discovery over the same deals refreshes price,
// discount and score without touching posted/creative state or click
// counters.
type DealStore interface {
	// Get fetches a stored deal by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.StoredDeal, error)

	// Set creates a deal with downstream defaults (posted=false, clicks=0),
	// overwriting any existing document wholesale.
	Set(ctx context.Context, deal *models.StoredDeal) error

	// Update merges the given fields into an existing deal. Only
	// pricing/ranking fields are legal; posted and clicks are rejected.
	Update(ctx context.Context, id string, fields map[string]any) error

	// SaveBatch commits the ranked list in one group: new deals are created
	// with defaults, existing ones get their pricing/ranking refreshed.
	SaveBatch(ctx context.Context, deals []*models.StoredDeal) error

	// IncrementClicks bumps the click counter for a tracked redirect.
	IncrementClicks(ctx context.Context, id string) error

	// MarkPosted flags a deal as consumed by the creative pipeline.
	MarkPosted(ctx context.Context, id string) error

	Close(ctx context.Context) error
}

// updatableFields is the whitelist of columns Update may touch.
var updatableFields = map[string]bool{
	"title":      true,
	"price":      true,
	"list_price": true,
	"discount":   true,
	"score":      true,
	"category":   true,
	"image_url":  true,
	"deal_url":   true,
	"updated_at": true,
}

// validateUpdate rejects field merges that would clobber downstream state.
func validateUpdate(fields map[string]any) error {
	for k := range fields {
		if !updatableFields[k] {
			return errors.New("store: field not updatable: " + k)
		}
	}
	return nil
}
