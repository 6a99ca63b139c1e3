package scraper

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"deal-scout/config"
	"deal-scout/models"
	"deal-scout/utils"
)

// Extractor turns raw source HTML into candidate listings. It performs no
// I/O: output is a function of the HTML, the source's selector tables and
// the extraction limits. Malformed or irrelevant cards are skipped silently —
// uncontrolled markup makes them expected noise, not errors.
type Extractor struct {
	maxPerSource int
	titleMinLen  int
	titleMaxLen  int
	affiliateTag string
	logger       *utils.Logger
}

// NewExtractor creates an Extractor with the configured limits.
func NewExtractor(cfg *config.Config, logger *utils.Logger) *Extractor {
	return &Extractor{
		maxPerSource: cfg.MaxPerSource,
		titleMinLen:  cfg.TitleMinLen,
		titleMaxLen:  cfg.TitleMaxLen,
		affiliateTag: cfg.AffiliateTag,
		logger:       logger,
	}
}

// Extract parses the page and returns up to maxPerSource candidate listings,
// deduplicated within the pass.
func (e *Extractor) Extract(html string, src config.SourceConfig) []*models.RawListing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Warn("[extractor] %s: unparseable HTML: %v", src.Name, err)
		return nil
	}

	cards := findCards(doc, src.Selectors.Card)
	if cards == nil {
		e.logger.Warn("[extractor] %s: no card selector matched — markup may have drifted", src.Name)
		return nil
	}

	seen := make(map[string]struct{})
	listings := make([]*models.RawListing, 0, e.maxPerSource)

	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(listings) >= e.maxPerSource {
			return false
		}

		listing := e.extractCard(card, src)
		if listing == nil {
			return true
		}

		// Overlapping selectors can surface the same listing twice within
		// one page; drop repeats by normalized key.
		key := passKey(listing)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		listings = append(listings, listing)
		return true
	})

	e.logger.Debug("[extractor] %s: %d cards → %d candidates", src.Name, cards.Length(), len(listings))
	return listings
}

// findCards tries each card selector in order and stops at the first one
// yielding at least one match. Selectors are never merged: mixing old and new
// markup generations double-counts listings.
func findCards(doc *goquery.Document, selectors config.FieldSelectors) *goquery.Selection {
	for _, sel := range selectors {
		if cards := doc.Find(sel); cards.Length() > 0 {
			return cards
		}
	}
	return nil
}

func (e *Extractor) extractCard(card *goquery.Selection, src config.SourceConfig) *models.RawListing {
	sels := src.Selectors

	title := collapseSpace(firstText(card, sels.Title))
	if len([]rune(title)) < e.titleMinLen {
		return nil
	}
	title = truncateRunes(title, e.titleMaxLen)

	listingURL := resolveURL(src.URL, firstAttr(card, sels.Link, "href"))

	// Aggregator sources only yield listings that point at the target
	// marketplace somewhere in the card.
	marketURL := ""
	if src.Marketplace != "" {
		marketURL = findMarketplaceLink(card, src.URL, src.Marketplace, src.Shorteners)
		if marketURL == "" {
			return nil
		}
	} else {
		marketURL = listingURL
	}

	asin := ExtractASIN(marketURL)
	if asin == "" {
		asin = ExtractASIN(listingURL)
	}
	if asin != "" {
		host := src.Marketplace
		if host == "" {
			host = "amazon.com.br"
		}
		marketURL = fmt.Sprintf("https://www.%s/dp/%s?tag=%s", host, asin, e.affiliateTag)
	}

	price := ParsePrice(firstText(card, sels.Price))
	listPrice := ParsePrice(firstText(card, sels.ListPrice))
	badge := ParsePercent(firstText(card, sels.Discount))

	listing := &models.RawListing{
		ASIN:           asin,
		Title:          title,
		Price:          price,
		ListPrice:      listPrice,
		Discount:       computeDiscount(price, listPrice, badge),
		ImageURL:       resolveURL(src.URL, firstAttr(card, sels.Image, "src", "data-src")),
		ListingURL:     listingURL,
		MarketplaceURL: marketURL,
		Rating:         ParseRating(firstText(card, sels.Rating)),
		Reviews:        ParseCount(firstText(card, sels.Reviews)),
		Votes:          ParseCount(firstText(card, sels.Votes)),
		RawCategory:    collapseSpace(firstText(card, sels.Category)),
		Source:         src.Name,
		ScrapedAt:      time.Now(),
	}

	listing.ID = asin
	if listing.ID == "" {
		listing.ID = syntheticID(src.Name, title, price)
	}
	return listing
}

// firstText tries each selector in order and returns the first non-empty
// trimmed text match.
func firstText(card *goquery.Selection, selectors config.FieldSelectors) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(card.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstAttr tries each selector in order, and for each match each attribute
// name in order, returning the first non-empty value.
func firstAttr(card *goquery.Selection, selectors config.FieldSelectors, attrs ...string) string {
	for _, sel := range selectors {
		node := card.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		for _, attr := range attrs {
			if val, ok := node.Attr(attr); ok && strings.TrimSpace(val) != "" {
				return strings.TrimSpace(val)
			}
		}
	}
	return ""
}

// findMarketplaceLink scans every anchor in the card for an outbound link
// whose host belongs to the target marketplace or one of the source's
// accepted shortener hosts.
func findMarketplaceLink(card *goquery.Selection, baseURL, marketplace string, shorteners []string) string {
	found := ""
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		resolved := resolveURL(baseURL, href)
		if resolved == "" {
			return true
		}
		u, err := url.Parse(resolved)
		if err != nil {
			return true
		}
		host := strings.ToLower(u.Host)
		if hostMatches(host, marketplace) {
			found = resolved
			return false
		}
		for _, s := range shorteners {
			if host == strings.ToLower(s) {
				found = resolved
				return false
			}
		}
		return true
	})
	return found
}

// hostMatches accepts the marketplace domain itself and its subdomains only;
// a bare suffix test would also pass lookalikes like "fakeamazon.com.br".
func hostMatches(host, marketplace string) bool {
	return host == marketplace || strings.HasSuffix(host, "."+marketplace)
}

// resolveURL makes card-relative hrefs absolute against the source page URL.
func resolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// passKey is the within-page dedup key: the item id when available, else the
// lowercased title truncated to 60 runes.
func passKey(l *models.RawListing) string {
	if l.ASIN != "" {
		return l.ASIN
	}
	return truncateRunes(strings.ToLower(l.Title), 60)
}

// syntheticID derives a stable identifier for listings without a marketplace
// item id.
func syntheticID(source, title string, price float64) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%.2f", source, strings.ToLower(title), price)))
	return source + "-" + hex.EncodeToString(sum[:])[:12]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
