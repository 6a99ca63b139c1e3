package services

import "strings"

// Canonical product categories. Every listing maps to exactly one; "other"
// is the catch-all for text matching neither keyword table.
const (
	CategoryElectronics = "electronics"
	CategoryComputers   = "computers"
	CategoryHome        = "home"
	CategoryKitchen     = "kitchen"
	CategoryFashion     = "fashion"
	CategoryBeauty      = "beauty"
	CategorySports      = "sports"
	CategoryToys        = "toys"
	CategoryBooks       = "books"
	CategoryGames       = "games"
	CategoryOther       = "other"
)

// KeywordTable maps one canonical category to the keywords that select it.
// Tables are ordered: matching is substring containment tried top to bottom,
// first hit wins.
type KeywordTable struct {
	Category string
	Keywords []string
}

// defaultExactLabels carries the marketplace's own pt-BR taxonomy strings. It
// is matched before the colloquial alias table so a listing tagged with an
// official department name never falls through to a fuzzy guess.
var defaultExactLabels = []KeywordTable{
	{CategoryElectronics, []string{"eletrônicos", "eletronicos", "celulares e comunicação", "tv, áudio e home theater"}},
	{CategoryComputers, []string{"informática", "informatica", "computadores"}},
	{CategoryKitchen, []string{"cozinha", "eletroportáteis", "eletrodomésticos", "eletrodomesticos"}},
	{CategoryHome, []string{"casa", "móveis e decoração", "moveis e decoracao", "ferramentas e construção"}},
	{CategoryFashion, []string{"roupas, calçados e joias", "moda"}},
	{CategoryBeauty, []string{"beleza", "cuidados pessoais", "saúde e bem-estar"}},
	{CategorySports, []string{"esportes e aventura", "esporte e lazer"}},
	{CategoryToys, []string{"brinquedos e jogos"}},
	{CategoryBooks, []string{"livros", "loja kindle"}},
	{CategoryGames, []string{"games e consoles", "videogames"}},
}

// defaultFuzzyAliases maps colloquial product terms to categories.
var defaultFuzzyAliases = []KeywordTable{
	{CategoryElectronics, []string{"notebook", "laptop", "smartphone", "celular", "iphone", "galaxy", "fone", "headphone", "earbud", "smart tv", "televisão", "tablet", "caixa de som", "smartwatch", "echo", "alexa", "kindle"}},
	{CategoryComputers, []string{"macbook", "ssd", "monitor", "teclado", "mouse", "placa de vídeo", "processador", "notebook gamer"}},
	{CategoryGames, []string{"playstation", "ps5", "ps4", "xbox", "nintendo", "switch", "controle sem fio", "gamer"}},
	{CategoryKitchen, []string{"air fryer", "fritadeira", "cafeteira", "liquidificador", "panela", "micro-ondas", "geladeira", "fogão"}},
	{CategoryHome, []string{"aspirador", "ventilador", "colchão", "travesseiro", "luminária", "furadeira", "parafusadeira", "sofá"}},
	{CategoryFashion, []string{"tênis", "camiseta", "jaqueta", "mochila", "relógio", "óculos", "sandália"}},
	{CategoryBeauty, []string{"perfume", "shampoo", "hidratante", "maquiagem", "barbeador", "secador", "protetor solar"}},
	{CategorySports, []string{"bicicleta", "esteira", "halter", "suplemento", "whey", "creatina", "bola"}},
	{CategoryToys, []string{"lego", "boneca", "brinquedo", "quebra-cabeça", "hot wheels"}},
	{CategoryBooks, []string{"livro", "box ", "mangá", "hq "}},
}

// Normalizer maps free-text category labels (or, failing that, any
// descriptive text such as the title) to a canonical category. Matching is
// deliberately order-sensitive and substring-based: ambiguous text takes the
// first listed category. Changing the order changes scoring downstream.
type Normalizer struct {
	exact []KeywordTable
	fuzzy []KeywordTable
}

// NewNormalizer creates a Normalizer. An empty table falls back to the
// corresponding built-in one, so operators can override either independently.
func NewNormalizer(exact, fuzzy []KeywordTable) *Normalizer {
	if len(exact) == 0 {
		exact = defaultExactLabels
	}
	if len(fuzzy) == 0 {
		fuzzy = defaultFuzzyAliases
	}
	return &Normalizer{exact: exact, fuzzy: fuzzy}
}

// Normalize classifies freeText, returning CategoryOther when neither table
// matches.
func (n *Normalizer) Normalize(freeText string) string {
	text := strings.ToLower(strings.TrimSpace(freeText))
	if text == "" {
		return CategoryOther
	}

	for _, table := range [][]KeywordTable{n.exact, n.fuzzy} {
		for _, entry := range table {
			for _, kw := range entry.Keywords {
				if strings.Contains(text, kw) {
					return entry.Category
				}
			}
		}
	}
	return CategoryOther
}

var defaultNormalizer = NewNormalizer(nil, nil)

// NormalizeCategory classifies freeText with the built-in keyword tables.
func NormalizeCategory(freeText string) string {
	return defaultNormalizer.Normalize(freeText)
}
