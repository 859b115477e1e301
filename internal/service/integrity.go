package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

type DoctorReport struct {
	OrphanMealItems    int `json:"orphan_meal_items"`
	OrphanEatenMeals   int `json:"orphan_eaten_meals"`
	InvalidNutrition   int `json:"invalid_nutrition"`
	FixedNutritionRows int `json:"fixed_nutrition_rows,omitempty"`
}

// RunDoctor checks referential integrity and stored payload validity. With
// fix set, products whose nutrition_json no longer parses get the payload
// cleared; relational rows are untouched.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	if err := db.QueryRow(`
SELECT COUNT(1) FROM meal_items mi
LEFT JOIN meals m ON m.id = mi.meal_id
LEFT JOIN products p ON p.id = mi.product_id
WHERE m.id IS NULL OR p.id IS NULL
`).Scan(&report.OrphanMealItems); err != nil {
		return report, fmt.Errorf("doctor orphan item check: %w", err)
	}

	if err := db.QueryRow(`
SELECT COUNT(1) FROM eaten_meals e
LEFT JOIN meals m ON m.id = e.meal_id
WHERE m.id IS NULL
`).Scan(&report.OrphanEatenMeals); err != nil {
		return report, fmt.Errorf("doctor orphan eaten check: %w", err)
	}

	rows, err := db.Query(`SELECT id, nutrition_json FROM products`)
	if err != nil {
		return report, fmt.Errorf("doctor nutrition query: %w", err)
	}
	invalidIDs := make([]string, 0)
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor nutrition scan: %w", err)
		}
		payload = strings.TrimSpace(payload)
		if payload == "" {
			continue
		}
		if !json.Valid([]byte(payload)) {
			report.InvalidNutrition++
			invalidIDs = append(invalidIDs, id)
		}
	}
	_ = rows.Close()

	if fix && len(invalidIDs) > 0 {
		tx, err := db.Begin()
		if err != nil {
			return report, fmt.Errorf("doctor fix begin tx: %w", err)
		}
		for _, id := range invalidIDs {
			if _, err := tx.Exec(`UPDATE products SET nutrition_json = '', updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
				_ = tx.Rollback()
				return report, fmt.Errorf("doctor fix nutrition row %s: %w", id, err)
			}
			report.FixedNutritionRows++
		}
		if err := tx.Commit(); err != nil {
			return report, fmt.Errorf("doctor fix commit: %w", err)
		}
	}

	return report, nil
}
