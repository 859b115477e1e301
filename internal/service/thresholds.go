package service

import (
	"math"

	"github.com/bitebuilder/bite-cli/internal/model"
)

// Band is a three-way health classification plus "unknown" for unresolvable
// inputs.
type Band string

const (
	BandGood    Band = "good"
	BandOK      Band = "ok"
	BandHigh    Band = "high"
	BandLow     Band = "low"
	BandUnknown Band = "unknown"
)

// ThresholdLimits holds the two cut points of a lower-is-better band.
type ThresholdLimits struct {
	Good float64
	OK   float64
}

// Reference limits. Sodium bands follow the published low/moderate-sodium
// convention (low <=120 mg/100g, moderate <=400 mg/100g). Ratio limits are
// unitless; density limits are g/100g.
var (
	FatToProteinLimits      = ThresholdLimits{Good: 1.0, OK: 2.0}
	SugarToFiberLimits      = ThresholdLimits{Good: 1.0, OK: 3.0}
	SaturatedFatShareLimits = ThresholdLimits{Good: 0.33, OK: 0.66}
	SodiumDensityLimits     = ThresholdLimits{Good: 120, OK: 400}

	FiberDensityFloors   = ThresholdLimits{Good: 6, OK: 3}
	ProteinDensityFloors = ThresholdLimits{Good: 10, OK: 5}
)

// ClassifyThreshold bands a lower-is-better value: good at or under the
// first limit, ok at or under the second, high above. Nil or non-finite
// input is unknown.
func ClassifyThreshold(value *float64, limits ThresholdLimits) Band {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return BandUnknown
	}
	switch {
	case *value <= limits.Good:
		return BandGood
	case *value <= limits.OK:
		return BandOK
	default:
		return BandHigh
	}
}

// ClassifyMinimum is the higher-is-better inverse: good at or above the
// first floor, ok at or above the second, low below.
func ClassifyMinimum(value *float64, floors ThresholdLimits) Band {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return BandUnknown
	}
	switch {
	case *value >= floors.Good:
		return BandGood
	case *value >= floors.OK:
		return BandOK
	default:
		return BandLow
	}
}

// HealthSignals bundles the banded ratio and density signals for a product.
type HealthSignals struct {
	FatToProtein      Band `json:"fat_to_protein"`
	SugarToFiber      Band `json:"sugar_to_fiber"`
	SaturatedFatShare Band `json:"saturated_fat_share"`
	SodiumDensity     Band `json:"sodium_density"`
	FiberDensity      Band `json:"fiber_density"`
	ProteinDensity    Band `json:"protein_density"`
}

// ClassifySignals computes and bands the product-level health ratios. A zero
// denominator leaves the ratio undefined (unknown), never infinite.
func ClassifySignals(p *model.Product) HealthSignals {
	protein := ResolveNutrientPer100g(p, "protein")
	fat := ResolveNutrientPer100g(p, "fat_total")
	satFat := ResolveNutrientPer100g(p, "fat_saturated")
	sugars := ResolveNutrientPer100g(p, "sugars")
	fiber := ResolveNutrientPer100g(p, "fiber")
	sodium := ResolveNutrientPer100g(p, "sodium")

	return HealthSignals{
		FatToProtein:      ClassifyThreshold(ratio(fat, protein), FatToProteinLimits),
		SugarToFiber:      ClassifyThreshold(ratio(sugars, fiber), SugarToFiberLimits),
		SaturatedFatShare: ClassifyThreshold(ratio(satFat, fat), SaturatedFatShareLimits),
		SodiumDensity:     ClassifyThreshold(ptr(sodium), SodiumDensityLimits),
		FiberDensity:      ClassifyMinimum(ptr(fiber), FiberDensityFloors),
		ProteinDensity:    ClassifyMinimum(ptr(protein), ProteinDensityFloors),
	}
}

func ratio(numerator, denominator float64) *float64 {
	if denominator <= 0 {
		return nil
	}
	return ptr(numerator / denominator)
}
