package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bitebuilder/bite-cli/internal/model"
)

// LogMeal records one eaten instance of a meal template.
func LogMeal(db *sql.DB, mealID string, at time.Time) (string, error) {
	meal, err := GetMeal(db, mealID)
	if err != nil {
		return "", err
	}
	if at.IsZero() {
		at = time.Now()
	}
	id := uuid.NewString()
	if _, err := db.Exec(`
INSERT INTO eaten_meals(id, meal_id, eaten_at)
VALUES(?, ?, ?)
`, id, meal.ID, at.Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("insert eaten meal: %w", err)
	}
	return id, nil
}

// ListEatenMeals returns the eaten log for one day (YYYY-MM-DD), oldest first.
func ListEatenMeals(db *sql.DB, date string) ([]model.EatenMeal, error) {
	start, end, err := dayBounds(date)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`
SELECT e.id, e.meal_id, m.name, m.meal_type, e.eaten_at
FROM eaten_meals e
JOIN meals m ON m.id = e.meal_id
WHERE e.eaten_at >= ? AND e.eaten_at < ?
ORDER BY e.eaten_at ASC
`, start, end)
	if err != nil {
		return nil, fmt.Errorf("query eaten meals: %w", err)
	}
	defer rows.Close()

	eaten := make([]model.EatenMeal, 0)
	for rows.Next() {
		var e model.EatenMeal
		var eatenAt string
		if err := rows.Scan(&e.ID, &e.MealID, &e.MealName, &e.MealType, &eatenAt); err != nil {
			return nil, fmt.Errorf("scan eaten meal: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, eatenAt); err == nil {
			e.EatenAt = t
		}
		eaten = append(eaten, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eaten meals: %w", err)
	}
	return eaten, nil
}

// DaySummary is the dashboard view for one day: engine totals across all
// eaten meals plus the per-meal log.
type DaySummary struct {
	Date       string           `json:"date"`
	MealsEaten int              `json:"meals_eaten"`
	Totals     NutrientTotals   `json:"totals"`
	Eaten      []model.EatenMeal `json:"eaten"`
}

// SummarizeDay aggregates every meal eaten on the given day through the
// engine. Totals are summed raw across meals and rounded once.
func SummarizeDay(db *sql.DB, date string) (*DaySummary, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	eaten, err := ListEatenMeals(db, date)
	if err != nil {
		return nil, err
	}
	meals := make([]*model.Meal, 0, len(eaten))
	for _, e := range eaten {
		meal, err := GetMeal(db, e.MealID)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}
	return &DaySummary{
		Date:       date,
		MealsEaten: len(eaten),
		Totals:     AggregateDayTotals(meals),
		Eaten:      eaten,
	}, nil
}

func dayBounds(date string) (string, string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return "", "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return t.Format(time.RFC3339), t.Add(24 * time.Hour).Format(time.RFC3339), nil
}
