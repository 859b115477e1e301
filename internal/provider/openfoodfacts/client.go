// Package openfoodfacts looks up products on Open Food Facts by barcode or
// free-text search and maps the nutriments onto the canonical nutrient
// registry codes.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://world.openfoodfacts.org"

// NutrientRow is one per-100g (and optionally per-serving) amount keyed by
// a canonical registry code such as "protein" or "energy_kcal".
type NutrientRow struct {
	Code       string
	Per100g    *float64
	PerServing *float64
}

type Product struct {
	Barcode string
	Name    string
	Brand   string
	// Quantity is the package size string as published ("750 g").
	Quantity string

	ServingSizeValue *float64
	ServingSizeUnit  string

	Nutrients []NutrientRow
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

type lookupResponse struct {
	Status  int        `json:"status"`
	Product rawProduct `json:"product"`
}

type searchResponse struct {
	Products []rawProduct `json:"products"`
}

type rawProduct struct {
	Code                string         `json:"code"`
	ProductName         string         `json:"product_name"`
	Brands              string         `json:"brands"`
	Quantity            string         `json:"quantity"`
	ServingQuantity     float64        `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	ServingSize         string         `json:"serving_size"`
	Nutriments          map[string]any `json:"nutriments"`
}

// LookupBarcode fetches a single product by barcode.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Product, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}

	u := fmt.Sprintf("%s/api/v2/product/%s.json", base, url.PathEscape(strings.TrimSpace(barcode)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Product{}, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", "bite-cli/1.0 (+https://github.com/bitebuilder/bite-cli)")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Product{}, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Product{}, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}

	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return Product{}, fmt.Errorf("no openfoodfacts product found for barcode %q", barcode)
	}

	p := normalizeProduct(parsed.Product)
	if p.Barcode == "" {
		p.Barcode = strings.TrimSpace(barcode)
	}
	return p, nil
}

// Search queries the legacy search endpoint and returns up to limit
// normalized products. Results without a name are dropped.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	if limit <= 0 {
		limit = 10
	}

	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		base,
		url.QueryEscape(strings.TrimSpace(query)),
		limit,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts search request: %w", err)
	}
	req.Header.Set("User-Agent", "bite-cli/1.0 (+https://github.com/bitebuilder/bite-cli)")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openfoodfacts search request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts search response: %w", err)
	}

	out := make([]Product, 0, len(parsed.Products))
	for _, raw := range parsed.Products {
		if strings.TrimSpace(raw.ProductName) == "" {
			continue
		}
		out = append(out, normalizeProduct(raw))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no openfoodfacts product found for query %q", query)
	}
	return out, nil
}

// nutrimentCodes maps Open Food Facts nutriment keys onto registry codes.
// scale converts the published unit (grams for minerals and vitamins) into
// the registry unit.
var nutrimentCodes = map[string]struct {
	code  string
	scale float64
}{
	"energy-kj":     {"energy_kj", 1},
	"energy-kcal":   {"energy_kcal", 1},
	"proteins":      {"protein", 1},
	"fat":           {"fat_total", 1},
	"saturated-fat": {"fat_saturated", 1},
	"carbohydrates": {"carbohydrate", 1},
	"sugars":        {"sugars", 1},
	"fiber":         {"fiber", 1},
	"sodium":        {"sodium", 1000},
	"calcium":       {"calcium", 1000},
	"iron":          {"iron", 1000},
	"magnesium":     {"magnesium", 1000},
	"potassium":     {"potassium", 1000},
	"phosphorus":    {"phosphorus", 1000},
	"zinc":          {"zinc", 1000},
	"vitamin-c":     {"vitamin_c", 1000},
	"vitamin-b6":    {"vitamin_b6", 1000},
	"vitamin-e":     {"vitamin_e", 1000},
	"vitamin-a":     {"vitamin_a", 1e6},
	"vitamin-d":     {"vitamin_d", 1e6},
	"vitamin-b12":   {"vitamin_b12", 1e6},
	"vitamin-k":     {"vitamin_k", 1e6},
	"folates":       {"folate", 1e6},
}

func normalizeProduct(raw rawProduct) Product {
	p := Product{
		Barcode:  strings.TrimSpace(raw.Code),
		Name:     strings.TrimSpace(raw.ProductName),
		Brand:    strings.TrimSpace(raw.Brands),
		Quantity: strings.TrimSpace(raw.Quantity),
	}
	if raw.ServingQuantity > 0 {
		v := raw.ServingQuantity
		p.ServingSizeValue = &v
		p.ServingSizeUnit = strings.ToLower(strings.TrimSpace(raw.ServingQuantityUnit))
		if p.ServingSizeUnit == "" {
			p.ServingSizeUnit = "g"
		}
	}

	for key, mapping := range nutrimentCodes {
		per100, ok100 := nutrimentValue(raw.Nutriments, key+"_100g")
		perServ, okServ := nutrimentValue(raw.Nutriments, key+"_serving")
		if !ok100 && !okServ {
			continue
		}
		row := NutrientRow{Code: mapping.code}
		if ok100 {
			v := per100 * mapping.scale
			row.Per100g = &v
		}
		if okServ {
			v := perServ * mapping.scale
			row.PerServing = &v
		}
		p.Nutrients = append(p.Nutrients, row)
	}
	sort.Slice(p.Nutrients, func(i, j int) bool { return p.Nutrients[i].Code < p.Nutrients[j].Code })
	return p
}

func nutrimentValue(n map[string]any, key string) (float64, bool) {
	switch t := n[key].(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
