package orchestrator

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
)

// fuzzyThreshold is the Jaro-Winkler score above which a phrase in the
// conversation counts as a product-name mention. Tolerates customer typos
// like "mighty midler" without matching unrelated words.
const fuzzyThreshold = 0.92

// Tier is one entry of the product catalog.
type Tier struct {
	// Name is the product's display name (e.g., "Mighty Middler").
	Name string `yaml:"name"`

	// Yards is the container size. A bare mention of this number in the
	// conversation counts as a tier signal.
	Yards int `yaml:"yards"`

	// URL is the product's booking page.
	URL string `yaml:"url"`
}

// Label returns the tier's full human-readable label, e.g.
// "16-yard Mighty Middler".
func (t Tier) Label() string {
	return fmt.Sprintf("%d-yard %s", t.Yards, t.Name)
}

// Catalog is the fixed product catalog used for tier inference and for the
// ensure-link post-processing stage. Tiers are listed in match precedence
// order; the first tier whose name or size appears in the text wins.
type Catalog struct {
	Tiers []Tier `yaml:"tiers"`

	// OverviewURL is the all-products page, used as the default link when no
	// tier matches.
	OverviewURL string `yaml:"overview_url"`
}

// DefaultCatalog returns the production dumpster catalog, in match precedence
// order (middle tier first, matching the original deployment's bias toward
// the most commonly booked size).
func DefaultCatalog() Catalog {
	return Catalog{
		Tiers: []Tier{
			{Name: "Mighty Middler", Yards: 16, URL: "https://www.littlejunkersllc.com/shop/the-mighty-middler-16-yard-dumpster-4"},
			{Name: "Big Junker", Yards: 21, URL: "https://www.littlejunkersllc.com/shop/the-big-junker-21-yard-dumpster-46"},
			{Name: "Little Junker", Yards: 11, URL: "https://www.littlejunkersllc.com/shop/the-little-junker-11-yard-dumpster-60"},
		},
		OverviewURL: "https://www.littlejunkersllc.com/shop",
	}
}

// wordPunct strips the punctuation that commonly clings to tokens in chat
// text before number comparison.
const wordPunct = ".,!?;:()\"'"

// Match returns the first tier whose name (exact or fuzzy) or yard size
// appears in text, and false if none does.
func (c Catalog) Match(text string) (Tier, bool) {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	for i, w := range words {
		words[i] = strings.Trim(w, wordPunct)
	}

	for _, tier := range c.Tiers {
		name := strings.ToLower(tier.Name)
		if strings.Contains(lower, name) {
			return tier, true
		}
		yards := fmt.Sprint(tier.Yards)
		for _, w := range words {
			// "16" alone or hyphenated forms like "16-yard".
			if w == yards || strings.HasPrefix(w, yards+"-") {
				return tier, true
			}
		}
		if fuzzyContains(words, name) {
			return tier, true
		}
	}
	return Tier{}, false
}

// RecommendLabel returns the matched tier's label, or "" when the
// conversation never settles on a size.
func (c Catalog) RecommendLabel(text string) string {
	if tier, ok := c.Match(text); ok {
		return tier.Label()
	}
	return ""
}

// fuzzyContains reports whether any n-word window of words is a close
// Jaro-Winkler match for the (space-joined) name.
func fuzzyContains(words []string, name string) bool {
	n := len(strings.Fields(name))
	if n == 0 || len(words) < n {
		return false
	}
	for i := 0; i+n <= len(words); i++ {
		window := strings.Join(words[i:i+n], " ")
		if matchr.JaroWinkler(window, name, false) >= fuzzyThreshold {
			return true
		}
	}
	return false
}
