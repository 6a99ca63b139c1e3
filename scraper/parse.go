package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// numberRegexp captures a pt-BR formatted amount ("1.234,56", "99,90", "89").
	numberRegexp = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
	// percentRegexp captures discount badges like "-35%" or "35% off".
	percentRegexp = regexp.MustCompile(`(\d{1,3})\s*%`)
	// ratingRegexp captures "4,7 de 5 estrelas" / "4.7 out of 5".
	ratingRegexp = regexp.MustCompile(`([0-5](?:[.,]\d{1,2})?)\s*(?:de|out of)\s*5`)
	// asinRegexp captures the marketplace item id from product URLs.
	asinRegexp = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})`)
	// countSuffixRegexp captures shorthand counts like "1,2 mil" or "3k".
	countSuffixRegexp = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(mil|k)`)
)

// ParsePrice extracts a numeric amount from pt-BR price text. Periods are
// thousands separators and the comma is the decimal mark:
//
//	"R$ 1.234,56" → 1234.56
//	"R$99,90"     → 99.90
//	"1.234"       → 1234
//
// Unparseable input ("", "grátis") yields 0.
func ParsePrice(raw string) float64 {
	match := numberRegexp.FindString(raw)
	if match == "" {
		return 0
	}

	hasComma := strings.Contains(match, ",")
	hasDot := strings.Contains(match, ".")

	switch {
	case hasComma:
		// Comma is the decimal mark; any dots are thousands separators.
		match = strings.ReplaceAll(match, ".", "")
		match = strings.Replace(match, ",", ".", 1)
	case hasDot:
		// Dot-only: a lone dot followed by exactly 3 digits is a thousands
		// separator ("1.234"); anything else is already a decimal point.
		parts := strings.Split(match, ".")
		if len(parts[len(parts)-1]) == 3 {
			match = strings.Join(parts, "")
		}
	}

	val, err := strconv.ParseFloat(match, 64)
	if err != nil || val < 0 {
		return 0
	}
	return val
}

// ParseCount extracts a non-negative integer count, understanding the "mil"
// and "k" shorthands aggregators use for vote totals ("1,2 mil" → 1200).
func ParseCount(raw string) int {
	lower := strings.ToLower(raw)

	if m := countSuffixRegexp.FindStringSubmatch(lower); m != nil {
		base, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err == nil {
			return int(math.Round(base * 1000))
		}
	}

	// Plain number, possibly with pt-BR thousands separators ("1.234").
	match := numberRegexp.FindString(lower)
	if match == "" {
		return 0
	}
	match = strings.ReplaceAll(match, ".", "")
	// A decimal comma makes no sense for a count; truncate at it.
	if idx := strings.Index(match, ","); idx != -1 {
		match = match[:idx]
	}
	n, err := strconv.Atoi(match)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParsePercent extracts a 0–100 discount percentage from badge text.
func ParsePercent(raw string) int {
	m := percentRegexp.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// ParseRating extracts a 0.0–5.0 star rating from marketplace rating text.
func ParseRating(raw string) float64 {
	m := ratingRegexp.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	val, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil || val < 0 || val > 5 {
		return 0
	}
	return val
}

// ExtractASIN pulls the 10-character marketplace item id out of a product
// URL, or returns "" when the URL has no recognizable id.
func ExtractASIN(url string) string {
	m := asinRegexp.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// computeDiscount derives the discount percentage from the price pair when
// both are present and sane, falling back to the badge value otherwise.
func computeDiscount(price, listPrice float64, badge int) int {
	if listPrice > price && price > 0 {
		return int(math.Round((listPrice - price) / listPrice * 100))
	}
	return badge
}
