package orchestrator

import "testing"

func TestCatalogMatch(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"exact name", "I think the mighty middler would work", "Mighty Middler", true},
		{"yard size", "do you have a 16 yard dumpster?", "Mighty Middler", true},
		{"hyphenated yards", "the 21-yard one please", "Big Junker", true},
		{"typo fuzzy", "the litle junker sounds right", "Little Junker", true},
		{"upper case", "BIG JUNKER please", "Big Junker", true},
		{"no product talk", "what are your hours?", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, ok := c.Match(tt.text)
			if ok != tt.ok {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && tier.Name != tt.want {
				t.Errorf("Match(%q) = %q, want %q", tt.text, tier.Name, tt.want)
			}
		})
	}
}

func TestCatalogMatchPrecedence(t *testing.T) {
	c := DefaultCatalog()
	// When several tiers are mentioned the earliest catalog entry wins.
	tier, ok := c.Match("torn between the big junker and the little junker")
	if !ok {
		t.Fatal("expected a match")
	}
	if tier.Name != "Big Junker" {
		t.Errorf("got %q, want Big Junker (catalog order)", tier.Name)
	}
}

func TestTierLabel(t *testing.T) {
	tier := Tier{Name: "Mighty Middler", Yards: 16}
	if got := tier.Label(); got != "16-yard Mighty Middler" {
		t.Errorf("Label() = %q", got)
	}
}
