package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bitebuilder/bite-cli/internal/model"
)

// cupUnitGrams maps the retailer's cup-price units to the grams (or
// millilitres at 1 g/mL) the quoted price covers. Anything outside this set
// falls through to the shelf-price path.
var cupUnitGrams = map[string]float64{
	"1kg":   1000,
	"100g":  100,
	"1g":    1,
	"1l":    1000,
	"100ml": 100,
	"1ml":   1,
}

var sizeTokenPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*(kg|g|mg|l|ml)$`)

// NormalizePricePerKg converts a product's pricing to a canonical dollars per
// kilogram. The retailer cup price wins when present and its unit is
// recognized; otherwise the shelf price is divided by the parsed package
// size. A false return means the price is unknown, which is distinct from
// free: dollar-based metrics must stay undefined rather than read as 0.
func NormalizePricePerKg(p *model.Product) (float64, bool) {
	if p == nil {
		return 0, false
	}
	if p.CupPriceValue != nil && *p.CupPriceValue > 0 {
		unit := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(p.CupPriceUnit), " ", ""))
		if grams, ok := cupUnitGrams[unit]; ok {
			return *p.CupPriceValue * 1000 / grams, true
		}
	}
	if perGram, ok := shelfPricePerGram(p); ok {
		return perGram * 1000, true
	}
	return 0, false
}

// PricePerGram is the per-gram variant of NormalizePricePerKg.
func PricePerGram(p *model.Product) (float64, bool) {
	perKg, ok := NormalizePricePerKg(p)
	if !ok {
		return 0, false
	}
	return perKg / 1000, true
}

func shelfPricePerGram(p *model.Product) (float64, bool) {
	if p.PriceCurrent == nil || *p.PriceCurrent <= 0 {
		return 0, false
	}
	grams, ok := ParseSizeToGrams(p.Size)
	if !ok || grams <= 0 {
		return 0, false
	}
	return *p.PriceCurrent / grams, true
}

// ParseSizeToGrams parses free-text package sizes like "450g", "1.2kg" or
// "500ml" into grams, assuming 1 g/mL for liquids. Ranges ("450g-650g",
// en-dash included) resolve to the mean of the two bounds. Unparseable input
// returns false.
func ParseSizeToGrams(size string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(size))
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, "–", "-")
	if lo, hi, ok := splitSizeRange(s); ok {
		a, okA := parseSizeToken(lo)
		b, okB := parseSizeToken(hi)
		if okA && okB {
			return (a + b) / 2, true
		}
		return 0, false
	}
	return parseSizeToken(s)
}

func splitSizeRange(s string) (string, string, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return "", "", false
	}
	lo := strings.TrimSpace(parts[0])
	hi := strings.TrimSpace(parts[1])
	if lo == "" || hi == "" {
		return "", "", false
	}
	return lo, hi, true
}

func parseSizeToken(s string) (float64, bool) {
	m := sizeTokenPattern.FindStringSubmatch(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	switch m[2] {
	case "kg":
		return value * 1000, true
	case "g":
		return value, true
	case "mg":
		return value / 1000, true
	case "l":
		return value * 1000, true
	case "ml":
		return value, true
	}
	return 0, false
}
