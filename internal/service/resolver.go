package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/bitebuilder/bite-cli/internal/model"
)

const kilojoulesPerKcal = 4.184

// nutrientAliases maps each canonical nutrient code to the spellings seen
// across the two upstream schemas: registry codes on relational rows and
// OFF-style keys on scraped nutrition payloads. Matching is case-insensitive.
var nutrientAliases = map[string][]string{
	"energy_kcal":   {"energy-kcal", "kcal", "calories"},
	"energy_kj":     {"energy-kj", "energy", "kj", "kilojoules"},
	"protein":       {"proteins"},
	"fat_total":     {"fat", "total_fat", "fats_total"},
	"fat_saturated": {"fat-saturated", "saturated_fat", "saturated"},
	"carbohydrate":  {"carbohydrates", "carbs", "carbohydrate_total"},
	"sugars":        {"sugar", "carbohydrates-sugars"},
	"fiber":         {"fibre", "dietary_fiber", "dietary_fibre"},
	"sodium":        {"salt", "na"},
	"cholesterol":   {"cholesterol-mg"},
	"calcium":       {},
	"iron":          {},
	"magnesium":     {},
	"potassium":     {},
	"phosphorus":    {},
	"zinc":          {},
	"vitamin_a":     {"vitamin-a"},
	"vitamin_c":     {"vitamin-c"},
	"vitamin_d":     {"vitamin-d"},
	"vitamin_b6":    {"vitamin-b6"},
	"vitamin_b12":   {"vitamin-b12"},
	"vitamin_e":     {"vitamin-e"},
	"vitamin_k":     {"vitamin-k"},
	"folate":        {"folic_acid"},
}

// ResolveNutrientPer100g returns the best-effort amount of the coded nutrient
// per 100g of product, searching relational nutrient rows first and the
// denormalized scraped payload second. Absence resolves to 0; the value 0
// therefore cannot be told apart from a missing nutrient. That matches the
// upstream data, which makes the same conflation.
//
// The one cross-unit derivation performed here: when energy_kcal is requested
// and nothing resolves, kilojoule entries are converted at 4.184 kJ/kcal.
func ResolveNutrientPer100g(p *model.Product, code string) float64 {
	if p == nil {
		return 0
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return 0
	}
	aliases := aliasSet(code)

	if v, ok := resolveRelational(p, aliases); ok {
		return v
	}
	if v, ok := resolveDenormalized(p, aliases); ok {
		return v
	}
	if code == "energy_kcal" {
		kj := aliasSet("energy_kj")
		if v, ok := resolveRelational(p, kj); ok && v > 0 {
			return v / kilojoulesPerKcal
		}
		if v, ok := resolveDenormalized(p, kj); ok && v > 0 {
			return v / kilojoulesPerKcal
		}
	}
	return 0
}

func aliasSet(code string) map[string]bool {
	set := map[string]bool{code: true}
	for _, a := range nutrientAliases[code] {
		set[strings.ToLower(a)] = true
	}
	return set
}

func resolveRelational(p *model.Product, aliases map[string]bool) (float64, bool) {
	for _, pn := range p.Nutrients {
		if !aliases[strings.ToLower(strings.TrimSpace(pn.Nutrient.Code))] {
			continue
		}
		if pn.AmountPer100g == nil {
			return 0, true
		}
		v := *pn.AmountPer100g
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, true
		}
		return v, true
	}
	return 0, false
}

func resolveDenormalized(p *model.Product, aliases map[string]bool) (float64, bool) {
	for key, node := range p.Nutrition {
		if !aliases[strings.ToLower(strings.TrimSpace(key))] {
			continue
		}
		if v, ok := probeNutritionNode(node); ok {
			return v, true
		}
	}
	return 0, false
}

// probeNutritionNode digs through the loosely-typed scraped node for the
// first finite positive number: per_100.value, per_100.amount, per_100 as a
// bare number, then a top-level value field.
func probeNutritionNode(node any) (float64, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		if v, ok := coerceNumber(node); ok && v > 0 {
			return v, true
		}
		return 0, false
	}
	if per100, ok := m["per_100"]; ok && per100 != nil {
		if inner, ok := per100.(map[string]any); ok {
			if v, ok := coerceNumber(inner["value"]); ok && v > 0 {
				return v, true
			}
			if v, ok := coerceNumber(inner["amount"]); ok && v > 0 {
				return v, true
			}
		} else if v, ok := coerceNumber(per100); ok && v > 0 {
			return v, true
		}
	}
	if v, ok := coerceNumber(m["value"]); ok && v > 0 {
		return v, true
	}
	return 0, false
}

// coerceNumber defensively converts untrusted payload values to float64.
// Strings are accepted because scraped feeds quote numerics inconsistently.
func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
