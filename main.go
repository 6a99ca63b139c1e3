package main

import (
	"context"
	"fmt"
	"os"

	"deal-scout/config"
	"deal-scout/models"
	"deal-scout/scraper"
	"deal-scout/storage"
	"deal-scout/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Deal Scout discovery starting ===")
	logger.Info("Config — budget: %d | delay: %d–%dms | retries: %d | max/source: %d | top: %d",
		cfg.RequestBudget, cfg.MinDelayMs, cfg.MaxDelayMs, cfg.MaxRetries,
		cfg.MaxPerSource, cfg.ResultLimit)

	pack, err := config.LoadPack(cfg.SourcesFile)
	if err != nil {
		logger.Error("Failed to load sources: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var renderLoader *scraper.BrowserLoader
	if cfg.RenderJS {
		renderLoader = scraper.NewBrowserLoader(logger, cfg.ChromeBin)
	}

	session := scraper.NewSession(cfg, logger, pack, loaderOrNil(renderLoader))
	deals, stats := session.Discover(ctx, cfg.ResultLimit)

	if len(deals) == 0 {
		logger.Error("No deals survived the pipeline (errors: %d). Exiting.", len(stats.Errors))
		os.Exit(1)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	if err := csvWriter.WriteDeals(deals); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Ranked deals exported to %s", cfg.CSVOutputPath)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open deal store (%s): %v", cfg.StoreBackend, err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	stored := make([]*models.StoredDeal, 0, len(deals))
	for _, d := range deals {
		stored = append(stored, d.ToStored(d.ScrapedAt))
	}
	if err := store.SaveBatch(ctx, stored); err != nil {
		logger.Error("Store batch commit failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Committed %d deals to %s store", len(stored), cfg.StoreBackend)

	fmt.Printf("  Done. Top deal: %q (score %d, -%d%%) → %s\n\n",
		deals[0].Title, deals[0].Score, deals[0].Discount, cfg.CSVOutputPath)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.DealStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		return storage.NewPostgresStore(cfg.DSN())
	default:
		return storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoColl)
	}
}

// loaderOrNil avoids handing the session a typed-nil interface when no
// browser is available.
func loaderOrNil(b *scraper.BrowserLoader) scraper.PageLoader {
	if b == nil {
		return nil
	}
	return b
}
