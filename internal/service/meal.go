package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bitebuilder/bite-cli/internal/model"
)

var mealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

type CreateMealInput struct {
	Name     string
	MealType string
	Notes    string
}

func CreateMeal(db *sql.DB, in CreateMealInput) (string, error) {
	in.MealType = normalizeName(in.MealType)
	if !mealTypes[in.MealType] {
		return "", fmt.Errorf("invalid meal type %q (expected breakfast, lunch, dinner, or snack)", in.MealType)
	}
	id := uuid.NewString()
	_, err := db.Exec(`
INSERT INTO meals(id, name, meal_type, notes)
VALUES(?, ?, ?, ?)
`, id, strings.TrimSpace(in.Name), in.MealType, strings.TrimSpace(in.Notes))
	if err != nil {
		return "", fmt.Errorf("insert meal: %w", err)
	}
	return id, nil
}

// AddMealItem attaches a product to a meal with a quantity in grams.
func AddMealItem(db *sql.DB, mealID, productKey string, quantity float64) (string, error) {
	if !(quantity > 0) {
		return "", fmt.Errorf("quantity must be > 0 grams")
	}
	meal, err := GetMeal(db, mealID)
	if err != nil {
		return "", err
	}
	product, err := GetProduct(db, productKey)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := db.Exec(`
INSERT INTO meal_items(id, meal_id, product_id, quantity)
VALUES(?, ?, ?, ?)
`, id, meal.ID, product.ID, quantity); err != nil {
		return "", fmt.Errorf("insert meal item: %w", err)
	}
	return id, nil
}

func RemoveMealItem(db *sql.DB, itemID string) error {
	itemID = strings.TrimSpace(itemID)
	res, err := db.Exec(`DELETE FROM meal_items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("delete meal item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve deleted meal item: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("meal item %q not found", itemID)
	}
	return nil
}

// GetMeal loads a meal with its items and their full products, ready for the
// aggregation engine.
func GetMeal(db *sql.DB, id string) (*model.Meal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("meal id is required")
	}
	var m model.Meal
	var createdAt string
	err := db.QueryRow(`
SELECT id, name, meal_type, notes, created_at
FROM meals
WHERE id = ?
`, id).Scan(&m.ID, &m.Name, &m.MealType, &m.Notes, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("meal %q not found", id)
		}
		return nil, fmt.Errorf("load meal %q: %w", id, err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		m.CreatedAt = t
	}

	rows, err := db.Query(`
SELECT id, product_id, quantity
FROM meal_items
WHERE meal_id = ?
`, m.ID)
	if err != nil {
		return nil, fmt.Errorf("load meal items: %w", err)
	}
	defer rows.Close()

	type itemRow struct {
		id        string
		productID string
		quantity  float64
	}
	itemRows := make([]itemRow, 0)
	for rows.Next() {
		var r itemRow
		if err := rows.Scan(&r.id, &r.productID, &r.quantity); err != nil {
			return nil, fmt.Errorf("scan meal item: %w", err)
		}
		itemRows = append(itemRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal items: %w", err)
	}

	m.Items = make([]model.MealItem, 0, len(itemRows))
	for _, r := range itemRows {
		product, err := GetProduct(db, r.productID)
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, model.MealItem{ID: r.id, Product: product, Quantity: r.quantity})
	}
	return &m, nil
}

func ListMeals(db *sql.DB) ([]model.Meal, error) {
	rows, err := db.Query(`
SELECT id, name, meal_type, notes, created_at
FROM meals
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	meals := make([]model.Meal, 0)
	for rows.Next() {
		var m model.Meal
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Name, &m.MealType, &m.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			m.CreatedAt = t
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meals: %w", err)
	}
	return meals, nil
}
