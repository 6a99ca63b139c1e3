package scraper

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"deal-scout/config"
	"deal-scout/models"
	"deal-scout/utils"
)

// blockKeywords are scanned (lower-cased) in returned bodies to detect
// bot-blocking pages served with a 200 status.
var blockKeywords = []string{
	"captcha",
	"robot",
	"automated access",
	"access denied",
	"unusual traffic",
	"verifique que você não é um robô",
	"digite os caracteres",
}

// PageLoader abstracts how a URL becomes HTML so the plain HTTP path and the
// headless-browser path share the Fetcher's budget/retry/block machinery.
type PageLoader interface {
	Load(ctx context.Context, url, userAgent string) (string, error)
}

// Fetcher performs rate-limited, retrying page fetches under a hard
// per-session request budget. It fails soft: any failure is recorded in the
// session stats and surfaces as ok=false, never as a panic or a propagated
// error.
type Fetcher struct {
	cfg    *config.Config
	logger *utils.Logger
	rnd    *utils.Randomizer

	httpLoader   PageLoader
	renderLoader PageLoader

	// sleep is swappable so tests run instantly.
	sleep func(time.Duration)
}

// NewFetcher creates a Fetcher. renderLoader may be nil, in which case
// RenderJS sources fall back to the plain HTTP path.
func NewFetcher(cfg *config.Config, logger *utils.Logger, rnd *utils.Randomizer, renderLoader PageLoader) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		logger: logger,
		rnd:    rnd,
		httpLoader: &httpLoader{
			client: &http.Client{
				// Per-attempt deadlines come from the context; the client
				// timeout is only a safety net.
				Timeout: time.Duration(cfg.TimeoutSec+5) * time.Second,
			},
		},
		renderLoader: renderLoader,
		sleep:        time.Sleep,
	}
}

// Fetch retrieves the page at url, consuming one unit of the session budget.
// Internal retries are free. Returns ("", false) once the budget is
// exhausted, after retries run out, or when bot-blocking is detected.
func (f *Fetcher) Fetch(ctx context.Context, url string, src config.SourceConfig, stats *models.SessionStats) (string, bool) {
	if stats.BudgetExhausted() {
		f.logger.Warn("[fetcher] Budget exhausted (%d/%d) — skipping %s",
			stats.Requests, stats.Budget, url)
		return "", false
	}
	stats.Requests++

	loader := f.httpLoader
	if src.RenderJS && f.renderLoader != nil {
		loader = f.renderLoader
	}

	retry := &utils.RetryConfig{
		MaxAttempts: f.cfg.MaxRetries,
		BaseDelay:   time.Duration(f.cfg.RetryBaseMs) * time.Millisecond,
		Logger:      f.logger,
		Sleep:       f.sleep,
	}

	var html string
	err := retry.Do(src.Name, func() error {
		page, err := f.attempt(ctx, loader, url)
		if err != nil {
			return err
		}
		// A bot wall answers every retry the same way; abort instead.
		if reason, blocked := detectBlocking(page); blocked {
			return utils.Terminal(fmt.Errorf("blocking detected (%s)", reason))
		}
		html = page
		return nil
	})
	if err == nil {
		return html, true
	}

	if utils.IsTerminal(err) {
		msg := fmt.Sprintf("%s: %v", src.Name, err)
		f.logger.Warn("[fetcher] %s — cooling down %ds", msg, f.cfg.BlockCooldownS)
		stats.AddError(msg)
		f.sleep(time.Duration(f.cfg.BlockCooldownS) * time.Second)
		return "", false
	}

	f.logger.Error("[fetcher] %v", err)
	stats.AddError(err.Error())
	return "", false
}

func (f *Fetcher) attempt(ctx context.Context, loader PageLoader, url string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, time.Duration(f.cfg.TimeoutSec)*time.Second)
	defer cancel()

	return loader.Load(attemptCtx, url, f.rnd.UserAgent())
}

func detectBlocking(html string) (string, bool) {
	lower := strings.ToLower(html)
	for _, kw := range blockKeywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// httpLoader is the default page loader: a plain GET with
// marketplace-plausible headers.
type httpLoader struct {
	client *http.Client
}

func (h *httpLoader) Load(ctx context.Context, url, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8")
	// Only gzip is advertised because only gzip is decoded below.
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Referer", "https://www.google.com.br/")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if strings.Contains(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("gzip body: %w", err)
		}
		defer gz.Close()
		body = gz
	}

	// Deal sites occasionally serve latin-1; normalize everything to UTF-8.
	utf8Body, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		utf8Body = body
	}

	data, err := io.ReadAll(utf8Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}
