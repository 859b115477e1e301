package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/bitebuilder/bite-cli/internal/model"
)

// Yield index reference ceilings. proteinEfficiencyTarget is the g/$ level
// treated as fully cost-efficient; proteinDensityCeiling is the g/100kcal
// level treated as fully calorie-lean (pure isolated protein sits near 25).
const (
	proteinEfficiencyTarget = 20.0
	proteinDensityCeiling   = 25.0
)

// EfficiencyMetrics are per-product (or quantity-weighted per-meal) cost and
// nutrient efficiency scores. Pointer fields are nil when the inputs they
// need did not resolve; they are never NaN or infinite.
type EfficiencyMetrics struct {
	PricePerKg           float64  `json:"price_per_kg"`
	PricePer100g         float64  `json:"price_per_100g"`
	ProteinPerDollar     *float64 `json:"protein_per_dollar,omitempty"`
	KcalPerDollar        *float64 `json:"kcal_per_dollar,omitempty"`
	ProteinToFatRatio    *float64 `json:"protein_to_fat_ratio,omitempty"`
	ProteinPerKcal       *float64 `json:"protein_per_kcal,omitempty"`
	HealthValue          *float64 `json:"health_value,omitempty"`
	YieldIndex           *float64 `json:"yield_index,omitempty"`
	EfficiencyGPerDollar *float64 `json:"efficiency_g_per_dollar,omitempty"`
	DensityGPer100Kcal   *float64 `json:"density_g_per_100kcal,omitempty"`
}

// ComputeMetrics derives efficiency scores for one product. Without a
// positive price basis no dollar-denominated score is meaningful, so the
// whole result is nil.
func ComputeMetrics(p *model.Product) *EfficiencyMetrics {
	pricePerKg, ok := NormalizePricePerKg(p)
	if !ok || pricePerKg <= 0 {
		return nil
	}
	pricePer100g := pricePerKg / 10

	protein := ResolveNutrientPer100g(p, "protein")
	fat := ResolveNutrientPer100g(p, "fat_total")
	kcal := ResolveNutrientPer100g(p, "energy_kcal")

	m := &EfficiencyMetrics{
		PricePerKg:   pricePerKg,
		PricePer100g: pricePer100g,
	}
	if protein > 0 {
		m.ProteinPerDollar = ptr(protein / pricePer100g)
	}
	if kcal > 0 {
		m.KcalPerDollar = ptr(kcal / pricePer100g)
	}
	if fat > 0 {
		m.ProteinToFatRatio = ptr(protein / fat)
	}
	if kcal > 0 {
		m.ProteinPerKcal = ptr(protein / kcal)
	}
	if stars, ok := parseHealthStar(p.HealthStar); ok {
		m.HealthValue = ptr(stars / pricePerKg)
	}

	if protein > 0 {
		efficiency := protein / pricePer100g
		m.EfficiencyGPerDollar = ptr(efficiency)
		if kcal > 0 {
			density := protein / kcal * 100
			m.DensityGPer100Kcal = ptr(density)
			m.YieldIndex = ptr(yieldIndex(efficiency, density))
		}
	}
	return m
}

// yieldIndex is the geometric mean of two levers normalized to [0,1]:
// cost efficiency against proteinEfficiencyTarget and calorie-lean density
// against proteinDensityCeiling. Near-zero on either axis collapses the
// index, so one-sided products cannot score well.
func yieldIndex(efficiency, density float64) float64 {
	e := math.Min(1, efficiency/proteinEfficiencyTarget)
	d := math.Min(1, density/proteinDensityCeiling)
	return math.Sqrt(e * d)
}

// ComputeMealMetrics averages item metrics weighted by quantity in grams.
// Items whose product yields no metrics are skipped rather than zero-filled;
// each pointer field averages over the items where it resolved. Returns nil
// when no item produces metrics.
func ComputeMealMetrics(meal *model.Meal) *EfficiencyMetrics {
	if meal == nil || len(meal.Items) == 0 {
		return nil
	}

	var priceKgSum, price100Sum, weightSum float64
	perDollar := weightedMean{}
	kcalDollar := weightedMean{}
	protFat := weightedMean{}
	protKcal := weightedMean{}
	health := weightedMean{}
	yield := weightedMean{}
	efficiency := weightedMean{}
	density := weightedMean{}

	for _, item := range meal.Items {
		if item.Product == nil || !(item.Quantity > 0) {
			continue
		}
		m := ComputeMetrics(item.Product)
		if m == nil {
			continue
		}
		w := item.Quantity
		weightSum += w
		priceKgSum += m.PricePerKg * w
		price100Sum += m.PricePer100g * w
		perDollar.add(m.ProteinPerDollar, w)
		kcalDollar.add(m.KcalPerDollar, w)
		protFat.add(m.ProteinToFatRatio, w)
		protKcal.add(m.ProteinPerKcal, w)
		health.add(m.HealthValue, w)
		yield.add(m.YieldIndex, w)
		efficiency.add(m.EfficiencyGPerDollar, w)
		density.add(m.DensityGPer100Kcal, w)
	}
	if weightSum <= 0 {
		return nil
	}
	return &EfficiencyMetrics{
		PricePerKg:           priceKgSum / weightSum,
		PricePer100g:         price100Sum / weightSum,
		ProteinPerDollar:     perDollar.mean(),
		KcalPerDollar:        kcalDollar.mean(),
		ProteinToFatRatio:    protFat.mean(),
		ProteinPerKcal:       protKcal.mean(),
		HealthValue:          health.mean(),
		YieldIndex:           yield.mean(),
		EfficiencyGPerDollar: efficiency.mean(),
		DensityGPer100Kcal:   density.mean(),
	}
}

type weightedMean struct {
	sum    float64
	weight float64
}

func (w *weightedMean) add(v *float64, weight float64) {
	if v == nil {
		return
	}
	w.sum += *v * weight
	w.weight += weight
}

func (w *weightedMean) mean() *float64 {
	if w.weight <= 0 {
		return nil
	}
	return ptr(w.sum / w.weight)
}

// parseHealthStar reads the upstream rating string ("4.5"). Missing or
// malformed ratings mean "no claim", not zero stars.
func parseHealthStar(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
