package scraper

import (
	"strings"
	"testing"

	"deal-scout/config"
	"deal-scout/utils"
)

func testExtractorConfig() *config.Config {
	return &config.Config{
		MaxPerSource: 30,
		TitleMinLen:  8,
		TitleMaxLen:  120,
		AffiliateTag: "scout-20",
	}
}

func testSource() config.SourceConfig {
	return config.SourceConfig{
		Name:        "testdeals",
		URL:         "https://deals.example.test/hot",
		Marketplace: "amazon.com.br",
		Shorteners:  []string{"amzn.to"},
		HighIntent:  true,
		Profile:     "community",
		Selectors: config.Selectors{
			Card:      config.FieldSelectors{"div.missing-card", "article.deal"},
			Title:     config.FieldSelectors{"h1.gone", "h2.title a"},
			Price:     config.FieldSelectors{"span.price"},
			ListPrice: config.FieldSelectors{"span.old-price", "del"},
			Discount:  config.FieldSelectors{"span.badge"},
			Image:     config.FieldSelectors{"img"},
			Link:      config.FieldSelectors{"h2.title a"},
			Votes:     config.FieldSelectors{"span.votes"},
			Category:  config.FieldSelectors{"span.category"},
		},
	}
}

// fixturePage has three cards: a valid electronics deal at 30% off, a card
// with no title, and a card whose only price is the strikethrough one.
const fixturePage = `<!DOCTYPE html>
<html><body>
<article class="deal">
  <h2 class="title"><a href="/d/fone-jbl-510bt">Fone de Ouvido Bluetooth JBL Tune 510BT</a></h2>
  <span class="price">R$ 209,30</span>
  <span class="old-price">R$ 299,00</span>
  <a class="go" href="https://www.amazon.com.br/dp/B08WM3LMJF?tag=someone-else">Ver oferta</a>
  <img src="https://img.example.test/jbl.jpg">
  <span class="votes">150</span>
  <span class="category">Eletrônicos</span>
</article>
<article class="deal">
  <span class="price">R$ 49,90</span>
  <a href="https://www.amazon.com.br/dp/B0NOTITLE1">oferta relâmpago</a>
</article>
<article class="deal">
  <h2 class="title"><a href="/d/produto-generico">Produto Genérico Sem Preço Atual</a></h2>
  <span class="old-price">R$ 150,00</span>
  <a href="https://www.amazon.com.br/dp/B0SEMPREC9">Ver</a>
  <span class="votes">10</span>
</article>
</body></html>`

func TestExtractorFixturePage(t *testing.T) {
	e := NewExtractor(testExtractorConfig(), utils.NewLogger())

	listings := e.Extract(fixturePage, testSource())
	if len(listings) != 2 {
		t.Fatalf("expected 2 candidates (title-less card dropped), got %d", len(listings))
	}

	jbl := listings[0]
	if jbl.ASIN != "B08WM3LMJF" {
		t.Errorf("ASIN: got %q, want B08WM3LMJF", jbl.ASIN)
	}
	if jbl.ID != "B08WM3LMJF" {
		t.Errorf("ID should be the ASIN: got %q", jbl.ID)
	}
	if jbl.Price != 209.30 {
		t.Errorf("Price: got %.2f, want 209.30", jbl.Price)
	}
	if jbl.ListPrice != 299.00 {
		t.Errorf("ListPrice: got %.2f, want 299.00", jbl.ListPrice)
	}
	if jbl.Discount != 30 {
		t.Errorf("Discount: got %d, want 30", jbl.Discount)
	}
	if jbl.Votes != 150 {
		t.Errorf("Votes: got %d, want 150", jbl.Votes)
	}
	if jbl.MarketplaceURL != "https://www.amazon.com.br/dp/B08WM3LMJF?tag=scout-20" {
		t.Errorf("MarketplaceURL should carry our affiliate tag: got %q", jbl.MarketplaceURL)
	}
	if jbl.ListingURL != "https://deals.example.test/d/fone-jbl-510bt" {
		t.Errorf("ListingURL not resolved: got %q", jbl.ListingURL)
	}

	// The strikethrough-only card survives extraction with a zero price; the
	// aggregator's price band is what removes it later.
	if listings[1].Price != 0 {
		t.Errorf("strikethrough-only card price: got %.2f, want 0", listings[1].Price)
	}
}

// The fixture's card and title selectors both list a dead selector first; the
// extractor must fall through to the working one.
func TestExtractorSelectorFallback(t *testing.T) {
	e := NewExtractor(testExtractorConfig(), utils.NewLogger())

	listings := e.Extract(fixturePage, testSource())
	if len(listings) == 0 {
		t.Fatal("fallback selectors should still find cards")
	}
	if !strings.Contains(listings[0].Title, "JBL Tune 510BT") {
		t.Errorf("title from fallback selector: got %q", listings[0].Title)
	}
}

func TestExtractorNoCardSelectorMatches(t *testing.T) {
	e := NewExtractor(testExtractorConfig(), utils.NewLogger())

	src := testSource()
	src.Selectors.Card = config.FieldSelectors{"div.nope", "section.also-nope"}

	if listings := e.Extract(fixturePage, src); len(listings) != 0 {
		t.Errorf("expected 0 candidates, got %d", len(listings))
	}
}

func TestExtractorRequiresMarketplaceLink(t *testing.T) {
	e := NewExtractor(testExtractorConfig(), utils.NewLogger())

	page := `<article class="deal">
		<h2 class="title"><a href="/d/oferta-fora">Oferta de Outra Loja Qualquer</a></h2>
		<span class="price">R$ 99,90</span>
		<a href="https://www.outraloja.com.br/produto/123">Ver</a>
	</article>`

	if listings := e.Extract(page, testSource()); len(listings) != 0 {
		t.Errorf("card without marketplace link should be dropped, got %d", len(listings))
	}
}

// Suffix matching alone would let "fakeamazon.com.br" through the
// marketplace-link gate; only the domain itself and its subdomains qualify.
func TestExtractorRejectsLookalikeMarketplaceHosts(t *testing.T) {
	e := NewExtractor(testExtractorConfig(), utils.NewLogger())

	page := `<article class="deal">
		<h2 class="title"><a href="/d/oferta-falsa">Oferta Suspeita de Loja Imitadora</a></h2>
		<span class="price">R$ 59,90</span>
		<a href="https://fakeamazon.com.br/dp/B0FALSOFK1">Ver</a>
	</article>`

	if listings := e.Extract(page, testSource()); len(listings) != 0 {
		t.Errorf("lookalike host should be rejected, got %d listing(s)", len(listings))
	}
}

func TestExtractorAcceptsConfiguredShortener(t *testing.T) {
	e := NewExtractor(testExtractorConfig(), utils.NewLogger())

	page := `<article class="deal">
		<h2 class="title"><a href="/d/oferta-curta">Oferta Com Link Encurtado da Loja</a></h2>
		<span class="price">R$ 59,90</span>
		<a href="https://amzn.to/3xYzAbC">Ver</a>
	</article>`

	listings := e.Extract(page, testSource())
	if len(listings) != 1 {
		t.Fatalf("configured shortener should pass, got %d listing(s)", len(listings))
	}
	if listings[0].MarketplaceURL != "https://amzn.to/3xYzAbC" {
		t.Errorf("MarketplaceURL: got %q", listings[0].MarketplaceURL)
	}

	src := testSource()
	src.Shorteners = nil
	if listings := e.Extract(page, src); len(listings) != 0 {
		t.Errorf("unconfigured shortener must not pass, got %d listing(s)", len(listings))
	}
}

func TestExtractorMarketplaceSourceNeedsNoOutboundLink(t *testing.T) {
	e := NewExtractor(testExtractorConfig(), utils.NewLogger())

	src := testSource()
	src.Marketplace = "" // the source IS the marketplace

	page := `<article class="deal">
		<h2 class="title"><a href="/dp/B0DIRECT01">Smart TV LG 50 Polegadas 4K</a></h2>
		<span class="price">R$ 1.999,00</span>
	</article>`

	listings := e.Extract(page, src)
	if len(listings) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(listings))
	}
	if listings[0].ASIN != "B0DIRECT01" {
		t.Errorf("ASIN from listing URL: got %q", listings[0].ASIN)
	}
	if listings[0].Price != 1999.00 {
		t.Errorf("price: got %.2f, want 1999.00", listings[0].Price)
	}
}

func TestExtractorCapsCandidatesPerSource(t *testing.T) {
	cfg := testExtractorConfig()
	cfg.MaxPerSource = 2
	e := NewExtractor(cfg, utils.NewLogger())

	var sb strings.Builder
	for _, id := range []string{"B0AAAAAAA1", "B0AAAAAAA2", "B0AAAAAAA3", "B0AAAAAAA4"} {
		sb.WriteString(`<article class="deal">
			<h2 class="title"><a href="/d/x">Produto Numerado Para Teste ` + id + `</a></h2>
			<span class="price">R$ 50,00</span>
			<a href="https://www.amazon.com.br/dp/` + id + `">Ver</a>
		</article>`)
	}

	listings := e.Extract(sb.String(), testSource())
	if len(listings) != 2 {
		t.Errorf("cap: got %d candidates, want 2", len(listings))
	}
}

func TestExtractorDedupesWithinPass(t *testing.T) {
	e := NewExtractor(testExtractorConfig(), utils.NewLogger())

	card := `<article class="deal">
		<h2 class="title"><a href="/d/x">Echo Dot 5ª Geração com Alexa</a></h2>
		<span class="price">R$ 279,00</span>
		<a href="https://www.amazon.com.br/dp/B09B8VN8YQ">Ver</a>
	</article>`

	listings := e.Extract(card+card, testSource())
	if len(listings) != 1 {
		t.Errorf("same listing surfaced twice should dedup to 1, got %d", len(listings))
	}
}

func TestExtractorSyntheticIDStable(t *testing.T) {
	e := NewExtractor(testExtractorConfig(), utils.NewLogger())

	src := testSource()
	src.Marketplace = ""

	page := `<article class="deal">
		<h2 class="title"><a href="/oferta/sem-asin">Cafeteira Expresso Automática 20 Bar</a></h2>
		<span class="price">R$ 349,90</span>
	</article>`

	first := e.Extract(page, src)
	second := e.Extract(page, src)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected 1 candidate per pass, got %d and %d", len(first), len(second))
	}
	if first[0].ID == "" || first[0].ID != second[0].ID {
		t.Errorf("synthetic id not stable across scrapes: %q vs %q", first[0].ID, second[0].ID)
	}
	if !strings.HasPrefix(first[0].ID, src.Name+"-") {
		t.Errorf("synthetic id should carry the source prefix: %q", first[0].ID)
	}
}

func TestExtractorTruncatesLongTitles(t *testing.T) {
	cfg := testExtractorConfig()
	cfg.TitleMaxLen = 20
	e := NewExtractor(cfg, utils.NewLogger())

	page := `<article class="deal">
		<h2 class="title"><a href="/d/x">Um Título Extremamente Longo Que Não Cabe No Display De Jeito Nenhum</a></h2>
		<span class="price">R$ 99,90</span>
		<a href="https://www.amazon.com.br/dp/B0LONGTTL1">Ver</a>
	</article>`

	listings := e.Extract(page, testSource())
	if len(listings) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(listings))
	}
	if got := len([]rune(listings[0].Title)); got != 20 {
		t.Errorf("title length: got %d runes, want 20", got)
	}
}
