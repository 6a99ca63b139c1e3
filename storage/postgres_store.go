package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"deal-scout/models"
)

// PostgresStore implements DealStore on a PostgreSQL table keyed by deal id.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS deals (
			id          TEXT PRIMARY KEY,
			title       TEXT          NOT NULL,
			price       NUMERIC(10,2) NOT NULL DEFAULT 0,
			list_price  NUMERIC(10,2) NOT NULL DEFAULT 0,
			discount    INT           NOT NULL DEFAULT 0,
			score       INT           NOT NULL DEFAULT 0,
			category    VARCHAR(50)   NOT NULL DEFAULT 'other',
			image_url   TEXT          NOT NULL DEFAULT '',
			deal_url    TEXT          NOT NULL,
			source      VARCHAR(50)   NOT NULL,
			posted      BOOLEAN       NOT NULL DEFAULT FALSE,
			clicks      INT           NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_deals_score    ON deals(score);
		CREATE INDEX IF NOT EXISTS idx_deals_category ON deals(category);
		CREATE INDEX IF NOT EXISTS idx_deals_posted   ON deals(posted);
	`)
	return err
}

// Get fetches a stored deal by id.
func (ps *PostgresStore) Get(ctx context.Context, id string) (*models.StoredDeal, error) {
	row := ps.db.QueryRowContext(ctx, `
		SELECT id, title, price, list_price, discount, score, category,
		       image_url, deal_url, source, posted, clicks, created_at, updated_at
		FROM deals WHERE id = $1
	`, id)

	d := &models.StoredDeal{}
	err := row.Scan(
		&d.ID, &d.Title, &d.Price, &d.ListPrice, &d.Discount, &d.Score,
		&d.Category, &d.ImageURL, &d.DealURL, &d.Source, &d.Posted,
		&d.Clicks, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get %s: %w", id, err)
	}
	return d, nil
}

// Set creates (or wholesale replaces) a deal with downstream defaults.
func (ps *PostgresStore) Set(ctx context.Context, deal *models.StoredDeal) error {
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO deals (id, title, price, list_price, discount, score, category,
		                   image_url, deal_url, source, posted, clicks)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,FALSE,0)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, price = EXCLUDED.price,
			list_price = EXCLUDED.list_price, discount = EXCLUDED.discount,
			score = EXCLUDED.score, category = EXCLUDED.category,
			image_url = EXCLUDED.image_url, deal_url = EXCLUDED.deal_url,
			source = EXCLUDED.source, posted = FALSE, clicks = 0,
			updated_at = NOW()
	`, deal.ID, deal.Title, deal.Price, deal.ListPrice, deal.Discount,
		deal.Score, deal.Category, deal.ImageURL, deal.DealURL, deal.Source)
	if err != nil {
		return fmt.Errorf("postgres: set %s: %w", deal.ID, err)
	}
	return nil
}

// Update merges pricing/ranking fields into an existing deal.
func (ps *PostgresStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := validateUpdate(fields); err != nil {
		return err
	}

	set := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	i := 1
	for k, v := range fields {
		set = append(set, fmt.Sprintf("%s = $%d", k, i))
		args = append(args, v)
		i++
	}
	set = append(set, "updated_at = NOW()")
	args = append(args, id)

	res, err := ps.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE deals SET %s WHERE id = $%d", strings.Join(set, ", "), i),
		args...)
	if err != nil {
		return fmt.Errorf("postgres: update %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveBatch upserts the ranked list inside one transaction. Conflicting rows
// get their pricing/ranking refreshed; posted and clicks are never touched.
func (ps *PostgresStore) SaveBatch(ctx context.Context, deals []*models.StoredDeal) error {
	if len(deals) == 0 {
		return nil
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO deals (id, title, price, list_price, discount, score, category,
		                   image_url, deal_url, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, price = EXCLUDED.price,
			list_price = EXCLUDED.list_price, discount = EXCLUDED.discount,
			score = EXCLUDED.score, category = EXCLUDED.category,
			image_url = EXCLUDED.image_url, deal_url = EXCLUDED.deal_url,
			updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("postgres: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range deals {
		if _, err := stmt.ExecContext(ctx, d.ID, d.Title, d.Price, d.ListPrice,
			d.Discount, d.Score, d.Category, d.ImageURL, d.DealURL, d.Source); err != nil {
			return fmt.Errorf("postgres: upsert %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit batch of %d: %w", len(deals), err)
	}
	return nil
}

// IncrementClicks bumps the click counter for a tracked redirect.
func (ps *PostgresStore) IncrementClicks(ctx context.Context, id string) error {
	res, err := ps.db.ExecContext(ctx, "UPDATE deals SET clicks = clicks + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres: increment clicks %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPosted flags a deal as consumed by the creative pipeline.
func (ps *PostgresStore) MarkPosted(ctx context.Context, id string) error {
	res, err := ps.db.ExecContext(ctx, "UPDATE deals SET posted = TRUE, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres: mark posted %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying connection pool.
func (ps *PostgresStore) Close(_ context.Context) error {
	return ps.db.Close()
}
