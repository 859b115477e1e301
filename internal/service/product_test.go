package service_test

import (
	"testing"

	"github.com/bitebuilder/bite-cli/internal/service"
)

func TestSaveAndGetProductRelational(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	id := saveTestProduct(t, sqldb, "greek yogurt", 10, 60, 8)

	p, err := service.GetProduct(sqldb, id)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Name != "greek yogurt" {
		t.Fatalf("expected name round-trip, got %q", p.Name)
	}
	if len(p.Nutrients) != 2 {
		t.Fatalf("expected 2 nutrient rows, got %d", len(p.Nutrients))
	}
	if got := service.ResolveNutrientPer100g(p, "protein"); got != 10 {
		t.Fatalf("expected stored product to resolve protein 10, got %v", got)
	}
}

func TestSaveProductUpsertsByBarcode(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	price1 := 4.0
	first, err := service.SaveProduct(sqldb, service.SaveProductInput{
		Barcode:      "9300601234567",
		Name:         "oats",
		PriceCurrent: &price1,
		Size:         "750g",
	})
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	price2 := 5.0
	second, err := service.SaveProduct(sqldb, service.SaveProductInput{
		Barcode:      "9300601234567",
		Name:         "rolled oats",
		PriceCurrent: &price2,
		Size:         "750g",
	})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if first != second {
		t.Fatalf("expected barcode upsert to reuse id, got %q and %q", first, second)
	}
	p, err := service.GetProduct(sqldb, "9300601234567")
	if err != nil {
		t.Fatalf("get by barcode: %v", err)
	}
	if p.Name != "rolled oats" || p.PriceCurrent == nil || *p.PriceCurrent != 5 {
		t.Fatalf("expected updated fields, got %+v", p)
	}
}

func TestSaveProductStoresDenormalizedPayload(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	id, err := service.SaveProduct(sqldb, service.SaveProductInput{
		Name:          "scraped muesli",
		PrimarySource: "woolworths",
		Nutrition: map[string]any{
			"proteins": map[string]any{
				"label":   "Protein",
				"per_100": map[string]any{"value": 12.5, "unit": "g"},
			},
			"energy-kj": map[string]any{
				"per_100": map[string]any{"value": 1600.0, "unit": "kJ"},
			},
		},
	})
	if err != nil {
		t.Fatalf("save product: %v", err)
	}
	p, err := service.GetProduct(sqldb, id)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got := service.ResolveNutrientPer100g(p, "protein"); got != 12.5 {
		t.Fatalf("expected denormalized payload to survive storage, got %v", got)
	}
	if got := service.ResolveNutrientPer100g(p, "energy_kcal"); got == 0 {
		t.Fatalf("expected kJ-derived kcal from stored payload")
	}
}

func TestSaveProductUnknownNutrientCodeIgnored(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	amount := 1.0
	id, err := service.SaveProduct(sqldb, service.SaveProductInput{
		Name: "novelty bar",
		Nutrients: []service.NutrientAmount{
			{Code: "astaxanthin", Per100g: &amount},
			{Code: "protein", Per100g: &amount},
		},
	})
	if err != nil {
		t.Fatalf("save product: %v", err)
	}
	p, err := service.GetProduct(sqldb, id)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if len(p.Nutrients) != 1 {
		t.Fatalf("expected non-canonical code dropped, got %d rows", len(p.Nutrients))
	}
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	saveTestProduct(t, sqldb, "chicken breast", 22, 120, 11)
	saveTestProduct(t, sqldb, "chicken thigh", 18, 180, 9)
	saveTestProduct(t, sqldb, "tofu firm", 14, 120, 7)

	results, err := service.SearchProducts(sqldb, "chicken", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	for _, p := range results {
		if len(p.Nutrients) == 0 {
			t.Fatalf("expected search results to carry nutrient rows")
		}
	}
	if _, err := service.SearchProducts(sqldb, "  ", 10); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestSaveProductValidation(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	if _, err := service.SaveProduct(sqldb, service.SaveProductInput{Name: "  "}); err == nil {
		t.Fatalf("expected name requirement error")
	}
	bad := -1.0
	if _, err := service.SaveProduct(sqldb, service.SaveProductInput{Name: "x", PriceCurrent: &bad}); err == nil {
		t.Fatalf("expected negative price rejection")
	}
}
