package scraper

import (
	"context"
	"time"

	"deal-scout/config"
	"deal-scout/models"
	"deal-scout/services"
	"deal-scout/utils"
)

// Session drives one complete discovery run: every configured source in
// order, each fetch under the shared request budget, followed by the
// dedup → filter → rank post-processing. A session never fails as a whole —
// individual source failures land in the stats and the result is whatever
// survived.
type Session struct {
	cfg        *config.Config
	logger     *utils.Logger
	sources    []config.SourceConfig
	fetcher    *Fetcher
	extractor  *Extractor
	normalizer *services.Normalizer
	aggregator *services.Aggregator
	catWeights map[string]float64
	rnd        *utils.Randomizer

	// sleep is swappable so tests run instantly.
	sleep func(time.Duration)
}

// NewSession wires up a discovery session from a source pack. renderLoader
// may be nil to disable headless rendering.
func NewSession(cfg *config.Config, logger *utils.Logger, pack *config.SourcePack, renderLoader PageLoader) *Session {
	rnd := utils.NewRandomizer()
	return &Session{
		cfg:       cfg,
		logger:    logger,
		sources:   pack.Sources,
		fetcher:   NewFetcher(cfg, logger, rnd, renderLoader),
		extractor: NewExtractor(cfg, logger),
		normalizer: services.NewNormalizer(
			keywordTables(pack.Categories.ExactLabels),
			keywordTables(pack.Categories.FuzzyAliases),
		),
		aggregator: services.NewAggregator(services.FilterConfig{
			MinPrice:      cfg.MinPrice,
			MaxPrice:      cfg.MaxPrice,
			PopularityMin: cfg.PopularityMin,
			DiscountMin:   cfg.DiscountMin,
			TitleMinLen:   cfg.TitleMinLen,
		}, logger),
		catWeights: pack.Categories.Weights,
		rnd:        rnd,
		sleep:      time.Sleep,
	}
}

// keywordTables converts configured category keyword entries into the
// normalizer's table shape.
func keywordTables(entries []config.CategoryKeywords) []services.KeywordTable {
	tables := make([]services.KeywordTable, 0, len(entries))
	for _, e := range entries {
		tables = append(tables, services.KeywordTable{Category: e.Category, Keywords: e.Keywords})
	}
	return tables
}

// Discover runs the pipeline and returns the ranked top-N deals plus the
// session stats. limit ≤ 0 falls back to the configured default and is
// always capped at the configured hard maximum.
func (s *Session) Discover(ctx context.Context, limit int) ([]*models.Deal, *models.SessionStats) {
	if limit <= 0 {
		limit = s.cfg.ResultLimit
	}
	if limit > s.cfg.ResultHardCap {
		limit = s.cfg.ResultHardCap
	}

	stats := &models.SessionStats{
		Budget:    s.cfg.RequestBudget,
		StartedAt: time.Now(),
	}

	s.logger.Info("[session] Starting discovery — %d sources, budget %d requests, top %d",
		len(s.sources), stats.Budget, limit)

	var collected []*models.Deal
	for i, src := range s.sources {
		if stats.BudgetExhausted() {
			s.logger.Info("[session] Budget exhausted — skipping %d remaining source(s)",
				len(s.sources)-i)
			break
		}

		collected = append(collected, s.scrapeSource(ctx, src, stats)...)

		// Randomized pacing between sources; pointless after the last one or
		// once no budget remains for another fetch.
		if i < len(s.sources)-1 && !stats.BudgetExhausted() {
			delay := s.rnd.Jitter(
				time.Duration(s.cfg.MinDelayMs)*time.Millisecond,
				time.Duration(s.cfg.MaxDelayMs)*time.Millisecond,
			)
			s.logger.Debug("[session] Sleeping %v before next source", delay)
			s.sleep(delay)
		}
	}
	stats.DealsFound = len(collected)

	final, afterDedup, afterFilter := s.aggregator.Aggregate(collected, limit)

	s.logSummary(stats, len(final), afterDedup, afterFilter)
	return final, stats
}

// scrapeSource runs fetch → extract → normalize → score for one source.
func (s *Session) scrapeSource(ctx context.Context, src config.SourceConfig, stats *models.SessionStats) []*models.Deal {
	s.logger.Info("[session] Scraping %s (%s)", src.Name, src.URL)

	html, ok := s.fetcher.Fetch(ctx, src.URL, src, stats)
	if !ok {
		return nil
	}

	candidates := s.extractor.Extract(html, src)
	scorer := services.NewScorer(services.ProfileByName(src.Profile), src.HighIntent)
	scorer.OverrideCategoryWeights(s.catWeights)

	deals := make([]*models.Deal, 0, len(candidates))
	for _, c := range candidates {
		category := s.normalizer.Normalize(c.RawCategory)
		if category == services.CategoryOther {
			category = s.normalizer.Normalize(c.Title)
		}
		deals = append(deals, &models.Deal{
			RawListing: *c,
			Category:   category,
			Score:      scorer.Score(c, category),
		})
	}

	s.logger.Info("[session] %s yielded %d candidate(s)", src.Name, len(deals))
	return deals
}

func (s *Session) logSummary(stats *models.SessionStats, final, afterDedup, afterFilter int) {
	s.logger.Info("[session] Done in %v — requests %d/%d | found %d | after dedup %d | after filter %d | returned %d | errors %d",
		time.Since(stats.StartedAt).Round(time.Millisecond),
		stats.Requests, stats.Budget,
		stats.DealsFound, afterDedup, afterFilter, final, len(stats.Errors))
	for _, msg := range stats.Errors {
		s.logger.Warn("[session] error: %s", msg)
	}
}
