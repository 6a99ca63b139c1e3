package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// FieldSelectors is an ordered list of CSS selectors tried in sequence; the
// first one yielding a non-empty value wins. Multiple candidates tolerate
// partial markup drift without full breakage.
type FieldSelectors []string

// Selectors maps every extracted field to its fallback selector chain.
type Selectors struct {
	Card      FieldSelectors `yaml:"card"`
	Title     FieldSelectors `yaml:"title"`
	Price     FieldSelectors `yaml:"price"`
	ListPrice FieldSelectors `yaml:"list_price"`
	Discount  FieldSelectors `yaml:"discount"`
	Image     FieldSelectors `yaml:"image"`
	Link      FieldSelectors `yaml:"link"`
	Rating    FieldSelectors `yaml:"rating"`
	Reviews   FieldSelectors `yaml:"reviews"`
	Votes     FieldSelectors `yaml:"votes"`
	Category  FieldSelectors `yaml:"category"`
}

// SourceConfig describes one deal source: where to fetch, how to locate
// listing cards, and which scoring profile its signals support.
type SourceConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`

	// Marketplace restricts aggregator cards to those containing at least one
	// outbound link whose host matches; empty means no restriction (the source
	// IS the marketplace).
	Marketplace string `yaml:"marketplace"`

	// Shorteners lists redirect hosts accepted as marketplace links in
	// addition to the marketplace domain itself.
	Shorteners []string `yaml:"shorteners"`

	// HighIntent marks dedicated deals feeds, which earn a source bonus when
	// scoring.
	HighIntent bool `yaml:"high_intent"`

	// RenderJS requests a headless-browser fetch for pages that build their
	// deal grid client-side.
	RenderJS bool `yaml:"render_js"`

	// Profile selects the scoring weight set: "marketplace" (discount,
	// rating, reviews) or "community" (discount, upvotes, trackable-id bonus).
	Profile string `yaml:"profile"`

	Selectors Selectors `yaml:"selectors"`
}

// CategoryKeywords maps one canonical category to its match keywords.
type CategoryKeywords struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// CategoryConfig overrides the compiled-in classification and scoring tables.
// Keyword tables replace their built-in counterpart wholesale (ordering is
// part of the semantics); Weights merges over the built-in weight table.
type CategoryConfig struct {
	ExactLabels  []CategoryKeywords `yaml:"exact_labels"`
	FuzzyAliases []CategoryKeywords `yaml:"fuzzy_aliases"`
	Weights      map[string]float64 `yaml:"weights"`
}

// SourcePack bundles everything an operator can retarget without rebuilding:
// the source list with its selector tables, and optional category overrides.
type SourcePack struct {
	Sources    []SourceConfig `yaml:"sources"`
	Categories CategoryConfig `yaml:"categories"`
}

// LoadPack reads a source pack from a YAML file, falling back to the
// compiled-in defaults when path is empty.
func LoadPack(path string) (*SourcePack, error) {
	if path == "" {
		return &SourcePack{Sources: DefaultSources()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sources: read %q: %w", path, err)
	}

	var pack SourcePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("sources: parse %q: %w", path, err)
	}
	if len(pack.Sources) == 0 {
		return nil, fmt.Errorf("sources: %q defines no sources", path)
	}
	return &pack, nil
}

// DefaultSources returns the built-in source pack: two community deal
// aggregators restricted to Amazon.com.br outbound links, plus the
// marketplace's own deals grid. Selector chains are ordered newest-markup
// first.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:        "pelando",
			URL:         "https://www.pelando.com.br/recentes",
			Marketplace: "amazon.com.br",
			Shorteners:  []string{"amzn.to"},
			HighIntent:  true,
			Profile:     "community",
			Selectors: Selectors{
				Card: FieldSelectors{
					"article[data-testid='deal-card']",
					"div[class*='DealCard']",
					"li[class*='thread']",
				},
				Title: FieldSelectors{
					"a[data-testid='deal-title']",
					"h2 a",
					"span[class*='title']",
				},
				Price: FieldSelectors{
					"span[data-testid='deal-price']",
					"span[class*='price']",
				},
				ListPrice: FieldSelectors{
					"span[data-testid='deal-old-price']",
					"del",
					"s",
				},
				Image: FieldSelectors{
					"img[data-testid='deal-image']",
					"img",
				},
				Link: FieldSelectors{
					"a[data-testid='deal-title']",
					"h2 a",
				},
				Votes: FieldSelectors{
					"span[data-testid='vote-count']",
					"div[class*='vote'] span",
					"span[class*='temperature']",
				},
				Category: FieldSelectors{
					"a[data-testid='deal-category']",
					"span[class*='category']",
				},
			},
		},
		{
			Name:        "promobit",
			URL:         "https://www.promobit.com.br/promocoes/amazon/",
			Marketplace: "amazon.com.br",
			Shorteners:  []string{"amzn.to"},
			HighIntent:  true,
			Profile:     "community",
			Selectors: Selectors{
				Card: FieldSelectors{
					"div[data-component='offer-card']",
					"article[class*='offer']",
					"div[class*='pr-tl-card']",
				},
				Title: FieldSelectors{
					"h3[data-component='offer-title']",
					"h3",
					"a[title]",
				},
				Price: FieldSelectors{
					"span[data-component='offer-price']",
					"div[class*='price'] span",
				},
				ListPrice: FieldSelectors{
					"span[data-component='offer-old-price']",
					"del",
				},
				Discount: FieldSelectors{
					"span[data-component='offer-discount']",
					"span[class*='discount']",
				},
				Image: FieldSelectors{
					"img[data-component='offer-image']",
					"img",
				},
				Link: FieldSelectors{
					"a[data-component='offer-link']",
					"a",
				},
				Votes: FieldSelectors{
					"span[data-component='offer-likes']",
					"span[class*='like']",
				},
				Category: FieldSelectors{
					"span[data-component='offer-category']",
				},
			},
		},
		{
			Name:       "amazon-deals",
			URL:        "https://www.amazon.com.br/deals",
			HighIntent: true,
			RenderJS:   true,
			Profile:    "marketplace",
			Selectors: Selectors{
				Card: FieldSelectors{
					"div[data-testid='grid-deal-card']",
					"div[data-component-type='s-search-result']",
					"div.DealGridItem-module__dealItem",
				},
				Title: FieldSelectors{
					"span[data-testid='deal-title']",
					"h2 a span",
					"div.DealContent-module__truncate",
				},
				Price: FieldSelectors{
					"span.a-price span.a-offscreen",
					"span.a-price-whole",
				},
				ListPrice: FieldSelectors{
					"span.a-price.a-text-price span.a-offscreen",
					"span.a-text-strike",
				},
				Discount: FieldSelectors{
					"span[data-testid='deal-badge']",
					"span.savingsPercentage",
				},
				Image: FieldSelectors{
					"img.s-image",
					"img",
				},
				Link: FieldSelectors{
					"a[data-testid='deal-link']",
					"h2 a",
					"a.a-link-normal",
				},
				Rating: FieldSelectors{
					"span.a-icon-alt",
					"i[data-testid='review-stars'] span",
				},
				Reviews: FieldSelectors{
					"span[data-testid='review-count']",
					"span.a-size-base.s-underline-text",
				},
			},
		},
	}
}
