// Package woolworths searches the Woolworths public product endpoint and
// normalizes each result into a source-agnostic product with an
// OFF-keyed nutrition payload.
package woolworths

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.woolworths.com.au"

// Product is one normalized search result, ready to hand to storage.
// Pointer fields stay nil when the store did not publish the value.
type Product struct {
	Barcode     string
	Stockcode   string
	Name        string
	Brand       string
	Description string
	Size        string

	PriceCurrent *float64
	PriceWas     *float64
	IsOnSpecial  bool

	CupPriceValue *float64
	CupPriceUnit  string

	HealthStar string

	ServingSizeValue *float64
	ServingSizeUnit  string
	ServingsPerPack  *float64

	// Nutrition is keyed by OFF-style slugs ("proteins", "energy-kj",
	// "carbohydrates-sugars") with per_100/per_serving value+unit nodes.
	Nutrition map[string]any
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

type searchResponse struct {
	Products []struct {
		Products []rawProduct `json:"Products"`
	} `json:"Products"`
}

type rawProduct struct {
	Barcode         string          `json:"Barcode"`
	Stockcode       json.Number     `json:"Stockcode"`
	DisplayName     string          `json:"DisplayName"`
	Name            string          `json:"Name"`
	Brand           string          `json:"Brand"`
	Description     string          `json:"Description"`
	PackageSize     string          `json:"PackageSize"`
	Price           *float64        `json:"Price"`
	InstorePrice    *float64        `json:"InstorePrice"`
	WasPrice        *float64        `json:"WasPrice"`
	IsOnSpecial     bool            `json:"IsOnSpecial"`
	CupPrice        *float64        `json:"CupPrice"`
	CupMeasure      string          `json:"CupMeasure"`
	AdditionalAttrs additionalAttrs `json:"AdditionalAttributes"`
}

type additionalAttrs struct {
	NutritionalInformation string `json:"nutritionalinformation"`
	HealthStarRating       string `json:"healthstarrating"`
}

// nipPayload is the nested JSON string inside AdditionalAttributes.
type nipPayload struct {
	Attributes []struct {
		Name  string `json:"Name"`
		Value string `json:"Value"`
	} `json:"Attributes"`
}

// Search queries the store and returns normalized products, de-duplicated
// by barcode. Items without a name or any identifier are dropped.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	if limit <= 0 {
		limit = 24
	}

	u := fmt.Sprintf("%s/apis/ui/Search/products?searchTerm=%s", base, strings.ReplaceAll(strings.TrimSpace(query), " ", "+"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create woolworths search request: %w", err)
	}
	// The endpoint rejects non-browser user agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute woolworths search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read woolworths search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("woolworths search request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode woolworths search response: %w", err)
	}

	seen := map[string]bool{}
	out := make([]Product, 0, limit)
	for _, bucket := range parsed.Products {
		for _, raw := range bucket.Products {
			p := normalizeItem(raw)
			if p.Name == "" {
				continue
			}
			key := p.Barcode
			if key == "" {
				key = p.Stockcode
			}
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, p)
			if len(out) >= limit {
				return out, nil
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no woolworths product found for query %q", query)
	}
	return out, nil
}

func normalizeItem(raw rawProduct) Product {
	p := Product{
		Barcode:     strings.TrimSpace(raw.Barcode),
		Stockcode:   strings.TrimSpace(raw.Stockcode.String()),
		Name:        firstNonEmpty(raw.DisplayName, raw.Name),
		Brand:       strings.TrimSpace(raw.Brand),
		Description: stripHTML(raw.Description),
		Size:        strings.TrimSpace(raw.PackageSize),
		IsOnSpecial: raw.IsOnSpecial,
		HealthStar:  strings.TrimSpace(raw.AdditionalAttrs.HealthStarRating),
	}
	if raw.InstorePrice != nil {
		p.PriceCurrent = raw.InstorePrice
	} else {
		p.PriceCurrent = raw.Price
	}
	p.PriceWas = raw.WasPrice
	p.CupPriceValue = raw.CupPrice
	p.CupPriceUnit = canonCupUnit(raw.CupMeasure)

	if nip := raw.AdditionalAttrs.NutritionalInformation; nip != "" {
		p.Nutrition = parseNIP(nip)
		p.ServingSizeValue, p.ServingSizeUnit = servingSize(nip)
		p.ServingsPerPack = servingsPerPack(nip)
	}
	return p
}

// labelAliases maps a lowered NIP row name prefix to its canonical label.
// Longer prefixes first so "fat, total" does not fall through to "fat".
var labelAliases = []struct {
	prefix string
	label  string
}{
	{"fat, total", "Fat"},
	{"fat total", "Fat"},
	{"saturated", "Saturated fat"},
	{"carbohydrate", "Carbohydrate"},
	{"sugars", "Sugars"},
	{"dietary fibre", "Fibre"},
	{"fibre", "Fibre"},
	{"fiber", "Fibre"},
	{"sodium", "Sodium"},
	{"protein", "Protein"},
	{"energy", "Energy"},
	{"potassium", "Potassium"},
	{"calcium", "Calcium"},
}

var offKeys = map[string]string{
	"Energy":        "energy-kj",
	"Protein":       "proteins",
	"Fat":           "fat",
	"Saturated fat": "fat-saturated",
	"Carbohydrate":  "carbohydrates",
	"Sugars":        "carbohydrates-sugars",
	"Fibre":         "fiber",
	"Sodium":        "sodium",
	"Potassium":     "potassium",
	"Calcium":       "calcium",
}

var defaultNutrientUnits = map[string]string{
	"energy-kj":            "kJ",
	"proteins":             "g",
	"fat":                  "g",
	"fat-saturated":        "g",
	"carbohydrates":        "g",
	"carbohydrates-sugars": "g",
	"fiber":                "g",
	"sodium":               "mg",
	"potassium":            "mg",
	"calcium":              "mg",
}

var cupUnitCanon = map[string]string{
	"100G":  "100g",
	"100ML": "100ml",
	"1KG":   "1kg",
	"1L":    "1l",
	"1EA":   "1ea",
}

func canonCupUnit(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if canon, ok := cupUnitCanon[strings.ToUpper(u)]; ok {
		return canon
	}
	return strings.ToLower(u)
}

// parseNIP turns the nutrition panel attribute list into the denormalized
// payload shape: key -> {label, per_100: {value, unit}, per_serving: {...}}.
func parseNIP(nipJSON string) map[string]any {
	var payload nipPayload
	if err := json.Unmarshal([]byte(nipJSON), &payload); err != nil {
		return nil
	}

	nutrition := map[string]any{}
	for _, attr := range payload.Attributes {
		name := strings.ToLower(attr.Name)
		var bucket string
		switch {
		case strings.Contains(name, "per 100"):
			bucket = "per_100"
		case strings.Contains(name, "per serv"):
			bucket = "per_serving"
		default:
			continue
		}

		label := canonLabel(attr.Name)
		key, ok := offKeys[label]
		if !ok {
			continue
		}
		value, unit, ok := parseQuantity(attr.Value)
		if !ok {
			continue
		}
		if unit == "" {
			unit = defaultNutrientUnits[key]
		}

		node, _ := nutrition[key].(map[string]any)
		if node == nil {
			node = map[string]any{"label": label}
			nutrition[key] = node
		}
		node[bucket] = map[string]any{"value": value, "unit": unit}
	}
	if len(nutrition) == 0 {
		return nil
	}
	return nutrition
}

func canonLabel(rawName string) string {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(rawName), "–—- "))
	for _, alias := range labelAliases {
		if strings.HasPrefix(s, alias.prefix) {
			return alias.label
		}
	}
	return strings.TrimSpace(rawName)
}

var quantityPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Zµμ]*)\s*$`)

// parseQuantity parses "44.0mg" or "12.5 g"; "<1g" is coerced to 1.
func parseQuantity(raw string) (float64, string, bool) {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "<")
	m := quantityPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, "", false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	unit := strings.ToLower(m[2])
	if unit == "kj" {
		unit = "kJ"
	}
	return value, unit, true
}

func servingSize(nipJSON string) (*float64, string) {
	raw := nipAttribute(nipJSON, "serving size")
	if raw == "" {
		return nil, ""
	}
	value, unit, ok := parseQuantity(raw)
	if !ok || value <= 0 {
		return nil, ""
	}
	return &value, unit
}

func servingsPerPack(nipJSON string) *float64 {
	raw := nipAttribute(nipJSON, "servings per pack")
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}

func nipAttribute(nipJSON, prefix string) string {
	var payload nipPayload
	if err := json.Unmarshal([]byte(nipJSON), &payload); err != nil {
		return ""
	}
	for _, attr := range payload.Attributes {
		if strings.HasPrefix(strings.ToLower(attr.Name), prefix) {
			return attr.Value
		}
	}
	return ""
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
