package services

import "testing"

func TestNormalizeCategoryFuzzyAliases(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Notebook Lenovo IdeaPad 3i 8GB", CategoryElectronics},
		{"Fone de Ouvido Bluetooth JBL", CategoryElectronics},
		{"SSD Kingston NV2 1TB NVMe", CategoryComputers},
		{"Air Fryer Mondial 4L", CategoryKitchen},
		{"Console PlayStation 5 Slim", CategoryGames},
		{"Tênis Olympikus Corre 3", CategoryFashion},
		{"Whey Protein Concentrado 900g", CategorySports},
		{"Kit LEGO Star Wars", CategoryToys},
		{"", CategoryOther},
		{"Vale-presente genérico", CategoryOther},
	}

	for _, tt := range tests {
		got := NormalizeCategory(tt.text)
		if got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q; want %q", tt.text, got, tt.want)
		}
	}
}

func TestNormalizeCategoryExactLabels(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Eletrônicos", CategoryElectronics},
		{"Informática", CategoryComputers},
		{"Cozinha", CategoryKitchen},
		{"Brinquedos e Jogos", CategoryToys},
		{"Games e Consoles", CategoryGames},
	}

	for _, tt := range tests {
		got := NormalizeCategory(tt.label)
		if got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q; want %q", tt.label, got, tt.want)
		}
	}
}

// Exact marketplace labels must win over colloquial aliases: a listing filed
// under "Informática" stays computers even when its text also mentions a
// phone.
func TestNormalizeCategoryExactBeforeFuzzy(t *testing.T) {
	got := NormalizeCategory("Informática - suporte de celular para notebook")
	if got != CategoryComputers {
		t.Errorf("exact label should win: got %q, want %q", got, CategoryComputers)
	}
}

func TestNormalizeCategoryCaseInsensitive(t *testing.T) {
	if got := NormalizeCategory("NOTEBOOK GAMER ACER NITRO"); got != CategoryElectronics {
		t.Errorf("got %q, want %q", got, CategoryElectronics)
	}
}

func TestNormalizerCustomTables(t *testing.T) {
	n := NewNormalizer(nil, []KeywordTable{
		{Category: CategoryHome, Keywords: []string{"cafeteira"}},
	})

	// Custom fuzzy table replaces the built-in one wholesale.
	if got := n.Normalize("Cafeteira Expresso"); got != CategoryHome {
		t.Errorf("custom alias: got %q, want %q", got, CategoryHome)
	}
	if got := n.Normalize("Notebook Lenovo"); got != CategoryOther {
		t.Errorf("built-in aliases should be gone: got %q", got)
	}
	// The exact-label table was not overridden and still applies first.
	if got := n.Normalize("Eletrônicos"); got != CategoryElectronics {
		t.Errorf("default exact labels should survive: got %q", got)
	}
}

func TestNormalizerEmptyTablesFallBackToDefaults(t *testing.T) {
	n := NewNormalizer(nil, nil)
	if got := n.Normalize("Fone de Ouvido JBL"); got != CategoryElectronics {
		t.Errorf("got %q, want %q", got, CategoryElectronics)
	}
}
