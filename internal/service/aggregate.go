package service

import (
	"math"

	"github.com/bitebuilder/bite-cli/internal/model"
)

// NutrientTotals is the fixed engine output for a meal or a day: absolute
// summed quantities with every field present (zero when nothing contributed),
// so callers never null-check individual nutrients. PriceTotal accumulates
// only over items whose product has a resolvable price.
type NutrientTotals struct {
	EnergyKcal    float64 `json:"energy_kcal"`
	EnergyKJ      float64 `json:"energy_kj"`
	ProteinG      float64 `json:"protein_g"`
	FatTotalG     float64 `json:"fat_total_g"`
	FatSaturatedG float64 `json:"fat_saturated_g"`
	CarbohydrateG float64 `json:"carbohydrate_g"`
	SugarsG       float64 `json:"sugars_g"`
	FiberG        float64 `json:"fiber_g"`
	SodiumMg      float64 `json:"sodium_mg"`
	CalciumMg     float64 `json:"calcium_mg"`
	IronMg        float64 `json:"iron_mg"`
	MagnesiumMg   float64 `json:"magnesium_mg"`
	PotassiumMg   float64 `json:"potassium_mg"`
	ZincMg        float64 `json:"zinc_mg"`
	VitaminCMg    float64 `json:"vitamin_c_mg"`
	PriceTotal    float64 `json:"price_total"`
}

// AggregateMealTotals sums nutrient and price contributions across a meal's
// items. Items with a missing product or non-positive quantity contribute
// nothing; a product without a resolvable price still contributes its
// nutrients. Pure function of its input: identical meals aggregate to
// identical totals.
func AggregateMealTotals(meal *model.Meal) NutrientTotals {
	var t NutrientTotals
	if meal != nil {
		accumulateItems(&t, meal.Items)
	}
	roundTotals(&t)
	return t
}

// AggregateDayTotals sums across several meals (a day's eaten log). Rounding
// happens once at the end, not per meal, so repeated partial aggregation
// cannot drift.
func AggregateDayTotals(meals []*model.Meal) NutrientTotals {
	var t NutrientTotals
	for _, meal := range meals {
		if meal == nil {
			continue
		}
		accumulateItems(&t, meal.Items)
	}
	roundTotals(&t)
	return t
}

// ItemNutrition is the single-item scaling of a product's per-100g values,
// rounded to one decimal place.
type ItemNutrition struct {
	EnergyKcal    float64 `json:"energy_kcal"`
	EnergyKJ      float64 `json:"energy_kj"`
	ProteinG      float64 `json:"protein_g"`
	FatTotalG     float64 `json:"fat_total_g"`
	FatSaturatedG float64 `json:"fat_saturated_g"`
	CarbohydrateG float64 `json:"carbohydrate_g"`
	SugarsG       float64 `json:"sugars_g"`
	FiberG        float64 `json:"fiber_g"`
	SodiumMg      float64 `json:"sodium_mg"`
}

// MealItemNutrition scales one item's nutrients by its own quantity. Returns
// nil when the item has no product or no positive quantity.
func MealItemNutrition(item model.MealItem) *ItemNutrition {
	if item.Product == nil || !(item.Quantity > 0) {
		return nil
	}
	factor := item.Quantity / 100
	at := func(code string) float64 {
		return round1(ResolveNutrientPer100g(item.Product, code) * factor)
	}
	return &ItemNutrition{
		EnergyKcal:    at("energy_kcal"),
		EnergyKJ:      at("energy_kj"),
		ProteinG:      at("protein"),
		FatTotalG:     at("fat_total"),
		FatSaturatedG: at("fat_saturated"),
		CarbohydrateG: at("carbohydrate"),
		SugarsG:       at("sugars"),
		FiberG:        at("fiber"),
		SodiumMg:      at("sodium"),
	}
}

func accumulateItems(t *NutrientTotals, items []model.MealItem) {
	for _, item := range items {
		if item.Product == nil || !(item.Quantity > 0) {
			continue
		}
		factor := item.Quantity / 100
		p := item.Product

		t.EnergyKcal += ResolveNutrientPer100g(p, "energy_kcal") * factor
		t.EnergyKJ += ResolveNutrientPer100g(p, "energy_kj") * factor
		t.ProteinG += ResolveNutrientPer100g(p, "protein") * factor
		t.FatTotalG += ResolveNutrientPer100g(p, "fat_total") * factor
		t.FatSaturatedG += ResolveNutrientPer100g(p, "fat_saturated") * factor
		t.CarbohydrateG += ResolveNutrientPer100g(p, "carbohydrate") * factor
		t.SugarsG += ResolveNutrientPer100g(p, "sugars") * factor
		t.FiberG += ResolveNutrientPer100g(p, "fiber") * factor
		t.SodiumMg += ResolveNutrientPer100g(p, "sodium") * factor
		t.CalciumMg += ResolveNutrientPer100g(p, "calcium") * factor
		t.IronMg += ResolveNutrientPer100g(p, "iron") * factor
		t.MagnesiumMg += ResolveNutrientPer100g(p, "magnesium") * factor
		t.PotassiumMg += ResolveNutrientPer100g(p, "potassium") * factor
		t.ZincMg += ResolveNutrientPer100g(p, "zinc") * factor
		t.VitaminCMg += ResolveNutrientPer100g(p, "vitamin_c") * factor

		if perGram, ok := PricePerGram(p); ok {
			t.PriceTotal += perGram * item.Quantity
		}
	}
}

// Rounding policy: energy to whole units, protein to 1dp, price to cents.
// Other fields keep full precision for downstream derived math.
func roundTotals(t *NutrientTotals) {
	t.EnergyKcal = math.Round(t.EnergyKcal)
	t.EnergyKJ = math.Round(t.EnergyKJ)
	t.ProteinG = round1(t.ProteinG)
	t.PriceTotal = round2(t.PriceTotal)
}
