package openfoodfacts

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupBarcodeMapsNutrimentsToRegistryCodes(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "code": "3017620422003",
    "product_name": "Hazelnut Spread",
    "brands": "Brand Co",
    "quantity": "400 g",
    "serving_quantity": 15,
    "serving_quantity_unit": "g",
    "nutriments": {
      "energy-kcal_100g": 539,
      "proteins_100g": 6.3,
      "fat_100g": 30.9,
      "saturated-fat_100g": 10.6,
      "sugars_100g": 56.3,
      "sodium_100g": 0.0428,
      "calcium_100g": "0.108",
      "proteins_serving": 0.9
    }
  }
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	p, err := c.LookupBarcode(context.Background(), "3017620422003")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	if p.Barcode != "3017620422003" || p.Name != "Hazelnut Spread" || p.Quantity != "400 g" {
		t.Fatalf("unexpected identity: %+v", p)
	}
	if p.ServingSizeValue == nil || *p.ServingSizeValue != 15 || p.ServingSizeUnit != "g" {
		t.Fatalf("unexpected serving size: %v %q", p.ServingSizeValue, p.ServingSizeUnit)
	}

	rows := map[string]NutrientRow{}
	for _, row := range p.Nutrients {
		rows[row.Code] = row
	}
	if row := rows["protein"]; row.Per100g == nil || *row.Per100g != 6.3 {
		t.Fatalf("unexpected protein per 100g: %+v", row)
	}
	if row := rows["protein"]; row.PerServing == nil || *row.PerServing != 0.9 {
		t.Fatalf("unexpected protein per serving: %+v", row)
	}
	if row := rows["fat_saturated"]; row.Per100g == nil || *row.Per100g != 10.6 {
		t.Fatalf("unexpected saturated fat: %+v", row)
	}
	// Sodium and calcium are published in grams; registry unit is mg.
	if row := rows["sodium"]; row.Per100g == nil || math.Abs(*row.Per100g-42.8) > 1e-9 {
		t.Fatalf("expected sodium scaled to mg, got %+v", row)
	}
	if row := rows["calcium"]; row.Per100g == nil || math.Abs(*row.Per100g-108) > 1e-9 {
		t.Fatalf("expected string-coerced calcium in mg, got %+v", row)
	}
	if _, ok := rows["energy_kj"]; ok {
		t.Fatalf("expected no kJ row when source omits it")
	}
}

func TestLookupBarcodeNotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": 0, "product": {}}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.LookupBarcode(context.Background(), "0000000000000"); err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestSearchReturnsNamedProducts(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "products": [
    {"code": "111", "product_name": "Greek Yogurt", "nutriments": {"proteins_100g": 10}},
    {"code": "222", "product_name": ""},
    {"code": "333", "product_name": "Set Yogurt", "nutriments": {"proteins_100g": 4.1}}
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	products, err := c.Search(context.Background(), "yogurt", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected unnamed results dropped, got %d", len(products))
	}
	if products[0].Name != "Greek Yogurt" || len(products[0].Nutrients) != 1 {
		t.Fatalf("unexpected first result: %+v", products[0])
	}
}

func TestSearchNoResults(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products": []}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.Search(context.Background(), "unobtainium", 5); err == nil {
		t.Fatalf("expected no-results error")
	}
}
