package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"deal-scout/models"
)

// MongoStore implements DealStore on a MongoDB collection keyed by deal id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and returns a ready-to-use store.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Get fetches a stored deal by id.
func (m *MongoStore) Get(ctx context.Context, id string) (*models.StoredDeal, error) {
	var deal models.StoredDeal
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&deal)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: get %s: %w", id, err)
	}
	return &deal, nil
}

// Set creates (or wholesale replaces) a deal with downstream defaults.
func (m *MongoStore) Set(ctx context.Context, deal *models.StoredDeal) error {
	deal.Posted = false
	deal.Clicks = 0
	opts := options.Replace().SetUpsert(true)
	if _, err := m.coll.ReplaceOne(ctx, bson.M{"_id": deal.ID}, deal, opts); err != nil {
		return fmt.Errorf("mongo: set %s: %w", deal.ID, err)
	}
	return nil
}

// Update merges pricing/ranking fields into an existing deal.
func (m *MongoStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := validateUpdate(fields); err != nil {
		return err
	}
	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("mongo: update %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveBatch bulk-upserts the ranked list: $setOnInsert supplies the
// downstream defaults for new deals, $set refreshes pricing/ranking for
// existing ones without touching posted/clicks.
func (m *MongoStore) SaveBatch(ctx context.Context, deals []*models.StoredDeal) error {
	if len(deals) == 0 {
		return nil
	}

	now := time.Now()
	ops := make([]mongo.WriteModel, 0, len(deals))
	for _, d := range deals {
		ops = append(ops, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": d.ID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"title":      d.Title,
					"price":      d.Price,
					"list_price": d.ListPrice,
					"discount":   d.Discount,
					"score":      d.Score,
					"category":   d.Category,
					"image_url":  d.ImageURL,
					"deal_url":   d.DealURL,
					"source":     d.Source,
					"updated_at": now,
				},
				"$setOnInsert": bson.M{
					"posted":     false,
					"clicks":     0,
					"created_at": now,
				},
			}).
			SetUpsert(true))
	}

	if _, err := m.coll.BulkWrite(ctx, ops, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("mongo: save batch of %d: %w", len(deals), err)
	}
	return nil
}

// IncrementClicks bumps the click counter for a tracked redirect.
func (m *MongoStore) IncrementClicks(ctx context.Context, id string) error {
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"clicks": 1}})
	if err != nil {
		return fmt.Errorf("mongo: increment clicks %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPosted flags a deal as consumed by the creative pipeline.
func (m *MongoStore) MarkPosted(ctx context.Context, id string) error {
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"posted": true}})
	if err != nil {
		return fmt.Errorf("mongo: mark posted %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects the underlying client.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
