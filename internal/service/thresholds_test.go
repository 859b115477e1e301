package service_test

import (
	"math"
	"testing"

	"github.com/bitebuilder/bite-cli/internal/model"
	"github.com/bitebuilder/bite-cli/internal/service"
)

func fptr(v float64) *float64 { return &v }

func TestClassifyThresholdBands(t *testing.T) {
	t.Parallel()
	limits := service.ThresholdLimits{Good: 120, OK: 400}
	cases := []struct {
		value *float64
		want  service.Band
	}{
		{fptr(120), service.BandGood},
		{fptr(121), service.BandOK},
		{fptr(400), service.BandOK},
		{fptr(401), service.BandHigh},
		{nil, service.BandUnknown},
		{fptr(math.NaN()), service.BandUnknown},
		{fptr(math.Inf(1)), service.BandUnknown},
	}
	for _, c := range cases {
		if got := service.ClassifyThreshold(c.value, limits); got != c.want {
			t.Fatalf("value %v: expected %q, got %q", c.value, c.want, got)
		}
	}
}

func TestClassifyMinimumBands(t *testing.T) {
	t.Parallel()
	floors := service.ThresholdLimits{Good: 6, OK: 3}
	cases := []struct {
		value *float64
		want  service.Band
	}{
		{fptr(6), service.BandGood},
		{fptr(4), service.BandOK},
		{fptr(2.9), service.BandLow},
		{nil, service.BandUnknown},
	}
	for _, c := range cases {
		if got := service.ClassifyMinimum(c.value, floors); got != c.want {
			t.Fatalf("value %v: expected %q, got %q", c.value, c.want, got)
		}
	}
}

func TestClassifySignals(t *testing.T) {
	t.Parallel()
	protein := 25.0
	fat := 10.0
	satFat := 2.0
	sugars := 1.0
	fiber := 4.0
	sodium := 90.0
	p := &model.Product{
		Nutrients: []model.ProductNutrient{
			{Nutrient: model.Nutrient{Code: "protein"}, AmountPer100g: &protein},
			{Nutrient: model.Nutrient{Code: "fat_total"}, AmountPer100g: &fat},
			{Nutrient: model.Nutrient{Code: "fat_saturated"}, AmountPer100g: &satFat},
			{Nutrient: model.Nutrient{Code: "sugars"}, AmountPer100g: &sugars},
			{Nutrient: model.Nutrient{Code: "fiber"}, AmountPer100g: &fiber},
			{Nutrient: model.Nutrient{Code: "sodium"}, AmountPer100g: &sodium},
		},
	}
	s := service.ClassifySignals(p)
	if s.FatToProtein != service.BandGood {
		t.Fatalf("expected good fat:protein, got %q", s.FatToProtein)
	}
	if s.SugarToFiber != service.BandGood {
		t.Fatalf("expected good sugar:fiber, got %q", s.SugarToFiber)
	}
	if s.SaturatedFatShare != service.BandGood {
		t.Fatalf("expected good sat-fat share, got %q", s.SaturatedFatShare)
	}
	if s.SodiumDensity != service.BandGood {
		t.Fatalf("expected good sodium density, got %q", s.SodiumDensity)
	}
	if s.FiberDensity != service.BandOK {
		t.Fatalf("expected ok fiber density, got %q", s.FiberDensity)
	}
	if s.ProteinDensity != service.BandGood {
		t.Fatalf("expected good protein density, got %q", s.ProteinDensity)
	}
}

func TestClassifySignalsZeroDenominatorsAreUnknown(t *testing.T) {
	t.Parallel()
	sugars := 12.0
	p := &model.Product{
		Nutrients: []model.ProductNutrient{
			{Nutrient: model.Nutrient{Code: "sugars"}, AmountPer100g: &sugars},
		},
	}
	s := service.ClassifySignals(p)
	if s.FatToProtein != service.BandUnknown {
		t.Fatalf("expected unknown fat:protein without protein, got %q", s.FatToProtein)
	}
	if s.SugarToFiber != service.BandUnknown {
		t.Fatalf("expected unknown sugar:fiber without fiber, got %q", s.SugarToFiber)
	}
	if s.SaturatedFatShare != service.BandUnknown {
		t.Fatalf("expected unknown sat-fat share without fat, got %q", s.SaturatedFatShare)
	}
}
