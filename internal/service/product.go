package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bitebuilder/bite-cli/internal/model"
)

// NutrientAmount is one relational nutrient value keyed by canonical code,
// as supplied by barcode imports or manual entry.
type NutrientAmount struct {
	Code       string
	Per100g    *float64
	PerServing *float64
}

type SaveProductInput struct {
	Barcode     string
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
	NutritionBasis   string

	PrimarySource string

	Nutrients []NutrientAmount
	Nutrition map[string]any
}

// SaveProduct inserts a product, or updates the existing row when the
// barcode is already known. Relational nutrient rows are replaced wholesale
// on update.
func SaveProduct(db *sql.DB, in SaveProductInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return "", fmt.Errorf("product name is required")
	}
	in.Barcode = strings.TrimSpace(in.Barcode)
	if in.PriceCurrent != nil {
		if err := validateNonNegativeFloat("price", *in.PriceCurrent); err != nil {
			return "", err
		}
	}
	if in.CupPriceValue != nil {
		if err := validateNonNegativeFloat("cup price", *in.CupPriceValue); err != nil {
			return "", err
		}
	}
	if strings.TrimSpace(in.PrimarySource) == "" {
		in.PrimarySource = "user_added"
	}

	nutritionJSON := ""
	if len(in.Nutrition) > 0 {
		encoded, err := json.Marshal(in.Nutrition)
		if err != nil {
			return "", fmt.Errorf("marshal nutrition payload: %w", err)
		}
		nutritionJSON = string(encoded)
	}

	id := ""
	if in.Barcode != "" {
		err := db.QueryRow(`SELECT id FROM products WHERE barcode = ?`, in.Barcode).Scan(&id)
		if err != nil && err != sql.ErrNoRows {
			return "", fmt.Errorf("lookup product by barcode %q: %w", in.Barcode, err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin product tx: %w", err)
	}

	var barcode any
	if in.Barcode != "" {
		barcode = in.Barcode
	}

	if id == "" {
		id = uuid.NewString()
		_, err = tx.Exec(`
INSERT INTO products(id, barcode, name, brand, description, size, price_current, price_was, is_on_special,
  cup_price_value, cup_price_unit, health_star, serving_size_value, serving_size_unit, servings_per_pack,
  nutrition_basis, primary_source, nutrition_json)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, barcode, in.Name, strings.TrimSpace(in.Brand), strings.TrimSpace(in.Description), strings.TrimSpace(in.Size),
			in.PriceCurrent, in.PriceWas, boolToInt(in.IsOnSpecial),
			in.CupPriceValue, strings.TrimSpace(in.CupPriceUnit), strings.TrimSpace(in.HealthStar),
			in.ServingSizeValue, strings.TrimSpace(in.ServingSizeUnit), in.ServingsPerPack,
			strings.TrimSpace(in.NutritionBasis), in.PrimarySource, nutritionJSON)
		if err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("insert product: %w", err)
		}
	} else {
		_, err = tx.Exec(`
UPDATE products SET name=?, brand=?, description=?, size=?, price_current=?, price_was=?, is_on_special=?,
  cup_price_value=?, cup_price_unit=?, health_star=?, serving_size_value=?, serving_size_unit=?,
  servings_per_pack=?, nutrition_basis=?, primary_source=?, nutrition_json=?, updated_at=?
WHERE id=?
`, in.Name, strings.TrimSpace(in.Brand), strings.TrimSpace(in.Description), strings.TrimSpace(in.Size),
			in.PriceCurrent, in.PriceWas, boolToInt(in.IsOnSpecial),
			in.CupPriceValue, strings.TrimSpace(in.CupPriceUnit), strings.TrimSpace(in.HealthStar),
			in.ServingSizeValue, strings.TrimSpace(in.ServingSizeUnit), in.ServingsPerPack,
			strings.TrimSpace(in.NutritionBasis), in.PrimarySource, nutritionJSON,
			time.Now().Format(time.RFC3339), id)
		if err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("update product: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM product_nutrients WHERE product_id = ?`, id); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("clear product nutrients: %w", err)
		}
	}

	for _, na := range in.Nutrients {
		code := normalizeName(na.Code)
		if code == "" {
			continue
		}
		var nutrientID int64
		if err := tx.QueryRow(`SELECT id FROM nutrients WHERE code = ?`, code).Scan(&nutrientID); err != nil {
			if err == sql.ErrNoRows {
				continue // codes outside the canonical registry live in nutrition_json only
			}
			_ = tx.Rollback()
			return "", fmt.Errorf("lookup nutrient %q: %w", code, err)
		}
		if _, err := tx.Exec(`
INSERT INTO product_nutrients(product_id, nutrient_id, amount_per_100g, amount_per_serving)
VALUES(?, ?, ?, ?)
ON CONFLICT(product_id, nutrient_id) DO UPDATE SET
  amount_per_100g=excluded.amount_per_100g,
  amount_per_serving=excluded.amount_per_serving
`, id, nutrientID, na.Per100g, na.PerServing); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("insert product nutrient %q: %w", code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit product tx: %w", err)
	}
	return id, nil
}

// GetProduct loads a product by id or barcode, with relational nutrient rows
// and the decoded denormalized payload attached.
func GetProduct(db *sql.DB, key string) (*model.Product, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("product id or barcode is required")
	}
	p, err := scanProduct(db.QueryRow(`
SELECT id, IFNULL(barcode, ''), name, brand, description, size,
  price_current, price_was, is_on_special, cup_price_value, cup_price_unit, health_star,
  serving_size_value, serving_size_unit, servings_per_pack, nutrition_basis, primary_source,
  nutrition_json, created_at, updated_at
FROM products
WHERE id = ? OR barcode = ?
`, key, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product %q not found", key)
		}
		return nil, fmt.Errorf("load product %q: %w", key, err)
	}
	if err := attachNutrients(db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SearchProducts matches name or brand, most recently updated first.
func SearchProducts(db *sql.DB, query string, limit int) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := db.Query(`
SELECT id, IFNULL(barcode, ''), name, brand, description, size,
  price_current, price_was, is_on_special, cup_price_value, cup_price_unit, health_star,
  serving_size_value, serving_size_unit, servings_per_pack, nutrition_basis, primary_source,
  nutrition_json, created_at, updated_at
FROM products
WHERE name LIKE ? OR brand LIKE ?
ORDER BY updated_at DESC
LIMIT ?
`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	for i := range products {
		if err := attachNutrients(db, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	var nutritionJSON string
	var createdAt, updatedAt string
	var isOnSpecial int
	if err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.Brand, &p.Description, &p.Size,
		&p.PriceCurrent, &p.PriceWas, &isOnSpecial, &p.CupPriceValue, &p.CupPriceUnit, &p.HealthStar,
		&p.ServingSizeValue, &p.ServingSizeUnit, &p.ServingsPerPack, &p.NutritionBasis, &p.PrimarySource,
		&nutritionJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.IsOnSpecial = isOnSpecial != 0
	if nutritionJSON != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(nutritionJSON), &decoded); err == nil {
			p.Nutrition = decoded
		}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}

func attachNutrients(db *sql.DB, p *model.Product) error {
	rows, err := db.Query(`
SELECT n.id, n.code, n.name, n.unit, IFNULL(n.category, ''), pn.amount_per_100g, pn.amount_per_serving
FROM product_nutrients pn
JOIN nutrients n ON n.id = pn.nutrient_id
WHERE pn.product_id = ?
ORDER BY n.display_order, n.name
`, p.ID)
	if err != nil {
		return fmt.Errorf("load product nutrients: %w", err)
	}
	defer rows.Close()

	nutrients := make([]model.ProductNutrient, 0)
	for rows.Next() {
		var pn model.ProductNutrient
		if err := rows.Scan(&pn.Nutrient.ID, &pn.Nutrient.Code, &pn.Nutrient.Name, &pn.Nutrient.Unit,
			&pn.Nutrient.Category, &pn.AmountPer100g, &pn.AmountPerServing); err != nil {
			return fmt.Errorf("scan product nutrient: %w", err)
		}
		nutrients = append(nutrients, pn)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate product nutrients: %w", err)
	}
	p.Nutrients = nutrients
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
