package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"deal-scout/models"
)

// CSVWriter exports the final ranked deal list to a CSV file for
// spot-checking a run without opening the store.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"rank", "id", "title", "price", "list_price", "discount_pct", "score",
		"category", "source", "deal_url", "scraped_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteDeals writes the ranked deals in order, rank starting at 1.
func (c *CSVWriter) WriteDeals(deals []*models.Deal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, d := range deals {
		url := d.MarketplaceURL
		if url == "" {
			url = d.ListingURL
		}
		row := []string{
			strconv.Itoa(i + 1),
			d.ID,
			d.Title,
			fmt.Sprintf("%.2f", d.Price),
			fmt.Sprintf("%.2f", d.ListPrice),
			strconv.Itoa(d.Discount),
			strconv.Itoa(d.Score),
			d.Category,
			d.Source,
			url,
			d.ScrapedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
