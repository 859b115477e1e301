package service

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
)

func ptr(v float64) *float64 {
	return &v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func nutrientIDByCode(db *sql.DB, code string) (int64, error) {
	code = normalizeName(code)
	if code == "" {
		return 0, fmt.Errorf("nutrient code is required")
	}
	var id int64
	if err := db.QueryRow(`SELECT id FROM nutrients WHERE code = ?`, code).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("nutrient %q does not exist", code)
		}
		return 0, fmt.Errorf("lookup nutrient %q: %w", code, err)
	}
	return id, nil
}
