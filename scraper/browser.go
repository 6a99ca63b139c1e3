package scraper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"deal-scout/utils"
)

// BrowserLoader renders JS-built pages (the marketplace deals grid loads its
// cards client-side) through headless Chrome and returns the settled DOM.
// It satisfies PageLoader, so budget, retries and block detection are still
// the Fetcher's job.
type BrowserLoader struct {
	logger    *utils.Logger
	chromeBin string
}

// NewBrowserLoader locates a Chrome/Chromium binary and returns a loader, or
// nil when no browser is available (callers then fall back to plain HTTP).
func NewBrowserLoader(logger *utils.Logger, chromeBin string) *BrowserLoader {
	bin := findChromeBinary(chromeBin)
	if bin == "" {
		logger.Warn("[browser] No Chrome binary found — JS-rendered sources will use plain HTTP")
		return nil
	}
	logger.Info("[browser] Using browser binary: %s", bin)
	return &BrowserLoader{logger: logger, chromeBin: bin}
}

// Load navigates to url in a fresh headless tab and returns the rendered
// outer HTML. The context deadline set by the Fetcher bounds the whole
// navigation.
func (b *BrowserLoader) Load(ctx context.Context, url, userAgent string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
		chromedp.ExecPath(b.chromeBin),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(3*time.Second),
		// Scroll so lazy-loaded deal cards enter the DOM.
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp render: %w", err)
	}
	return html, nil
}

// findChromeBinary locates a Chrome/Chromium binary, preferring the
// configured path over PATH lookup over well-known install locations. The
// environment is not consulted here; CHROME_BIN flows in through the config.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
