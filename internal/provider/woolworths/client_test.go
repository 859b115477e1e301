package woolworths

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func nipFixture() string {
	payload := map[string]any{
		"Attributes": []map[string]string{
			{"Name": "Serving Size - Total - NIP", "Value": "30 g"},
			{"Name": "Servings Per Pack - Total - NIP", "Value": "10"},
			{"Name": "Energy Quantity Per 100g - Total - NIP", "Value": "1600kJ"},
			{"Name": "Protein Quantity Per 100g - Total - NIP", "Value": "12.5g"},
			{"Name": "Fat, Total Quantity Per 100g - Total - NIP", "Value": "8g"},
			{"Name": "Sugars Quantity Per Serve - Total - NIP", "Value": "<1g"},
			{"Name": "Sodium Quantity Per 100g - Total - NIP", "Value": "44.0mg"},
			{"Name": "Moisture Quantity Per 100g", "Value": "12g"},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func searchFixture(products ...map[string]any) map[string]any {
	return map[string]any{
		"Products": []map[string]any{
			{"Products": products},
		},
	}
}

func serveJSON(t *testing.T, v any) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("encode fixture: %v", err)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestSearchNormalizesProduct(t *testing.T) {
	t.Parallel()

	ts := serveJSON(t, searchFixture(map[string]any{
		"Barcode":     "9300601234567",
		"Stockcode":   123456,
		"DisplayName": "Rolled Oats 750g",
		"Brand":       "Macro",
		"Description": "Wholegrain <b>rolled oats</b>",
		"PackageSize": "750g",
		"Price":       4.50,
		"CupPrice":    0.60,
		"CupMeasure":  "100G",
		"IsOnSpecial": true,
		"AdditionalAttributes": map[string]any{
			"nutritionalinformation": nipFixture(),
			"healthstarrating":       "4.5",
		},
	}))

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	products, err := c.Search(context.Background(), "oats", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.Barcode != "9300601234567" || p.Name != "Rolled Oats 750g" || p.Brand != "Macro" {
		t.Fatalf("unexpected identity: %+v", p)
	}
	if p.Description != "Wholegrain rolled oats" {
		t.Fatalf("expected html stripped, got %q", p.Description)
	}
	if p.PriceCurrent == nil || *p.PriceCurrent != 4.50 {
		t.Fatalf("unexpected price: %+v", p.PriceCurrent)
	}
	if p.CupPriceValue == nil || *p.CupPriceValue != 0.60 || p.CupPriceUnit != "100g" {
		t.Fatalf("expected canonical cup price, got %v %q", p.CupPriceValue, p.CupPriceUnit)
	}
	if p.HealthStar != "4.5" || !p.IsOnSpecial {
		t.Fatalf("unexpected attributes: %+v", p)
	}
	if p.ServingSizeValue == nil || *p.ServingSizeValue != 30 || p.ServingSizeUnit != "g" {
		t.Fatalf("unexpected serving size: %v %q", p.ServingSizeValue, p.ServingSizeUnit)
	}
	if p.ServingsPerPack == nil || *p.ServingsPerPack != 10 {
		t.Fatalf("unexpected servings per pack: %v", p.ServingsPerPack)
	}
}

func TestSearchParsesNutritionPanel(t *testing.T) {
	t.Parallel()

	ts := serveJSON(t, searchFixture(map[string]any{
		"Barcode":     "9300601234567",
		"DisplayName": "Rolled Oats",
		"AdditionalAttributes": map[string]any{
			"nutritionalinformation": nipFixture(),
		},
	}))

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	products, err := c.Search(context.Background(), "oats", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	nutrition := products[0].Nutrition

	node, _ := nutrition["proteins"].(map[string]any)
	if node == nil {
		t.Fatalf("expected proteins node, got %v", nutrition)
	}
	per100, _ := node["per_100"].(map[string]any)
	if per100["value"] != 12.5 || per100["unit"] != "g" {
		t.Fatalf("unexpected protein per_100: %v", per100)
	}

	energy, _ := nutrition["energy-kj"].(map[string]any)
	ePer100, _ := energy["per_100"].(map[string]any)
	if ePer100["value"] != 1600.0 || ePer100["unit"] != "kJ" {
		t.Fatalf("unexpected energy per_100: %v", ePer100)
	}

	sugars, _ := nutrition["carbohydrates-sugars"].(map[string]any)
	perServing, _ := sugars["per_serving"].(map[string]any)
	if perServing["value"] != 1.0 {
		t.Fatalf("expected <1g coerced to 1, got %v", perServing)
	}

	sodium, _ := nutrition["sodium"].(map[string]any)
	sPer100, _ := sodium["per_100"].(map[string]any)
	if sPer100["value"] != 44.0 || sPer100["unit"] != "mg" {
		t.Fatalf("unexpected sodium per_100: %v", sPer100)
	}

	if _, ok := nutrition["moisture"]; ok {
		t.Fatalf("expected unknown panel rows to be dropped")
	}
}

func TestSearchDeduplicatesByBarcode(t *testing.T) {
	t.Parallel()

	item := map[string]any{"Barcode": "9300601234567", "DisplayName": "Oats"}
	ts := serveJSON(t, searchFixture(item, item, map[string]any{"DisplayName": "No identifier"}))

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	products, err := c.Search(context.Background(), "oats", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected duplicates and unidentified items dropped, got %d", len(products))
	}
}

func TestSearchNoResults(t *testing.T) {
	t.Parallel()

	ts := serveJSON(t, searchFixture())
	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.Search(context.Background(), "unobtainium", 10); err == nil {
		t.Fatalf("expected no-results error")
	}
}
