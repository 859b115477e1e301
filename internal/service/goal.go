package service

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/bitebuilder/bite-cli/internal/model"
)

var resetFrequencies = map[string]bool{
	"daily":   true,
	"weekly":  true,
	"monthly": true,
	"none":    true,
}

type SetGoalInput struct {
	TargetCalories *int64
	TargetWeightKg *float64
	ResetFrequency string
}

// SetGoal creates or updates the single goal row.
func SetGoal(db *sql.DB, in SetGoalInput) (int64, error) {
	if in.TargetCalories != nil && *in.TargetCalories < 0 {
		return 0, fmt.Errorf("target calories must be >= 0")
	}
	if in.TargetWeightKg != nil && *in.TargetWeightKg <= 0 {
		return 0, fmt.Errorf("target weight must be > 0")
	}
	freq := normalizeName(in.ResetFrequency)
	if freq == "" {
		freq = "none"
	}
	if !resetFrequencies[freq] {
		return 0, fmt.Errorf("invalid reset frequency %q (expected daily, weekly, monthly, or none)", in.ResetFrequency)
	}

	id, err := goalID(db)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		res, err := db.Exec(`
INSERT INTO goals(target_calories, target_weight_kg, reset_frequency)
VALUES(?, ?, ?)
`, in.TargetCalories, in.TargetWeightKg, freq)
		if err != nil {
			return 0, fmt.Errorf("insert goal: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("resolve inserted goal id: %w", err)
		}
		return id, nil
	}
	if _, err := db.Exec(`
UPDATE goals SET target_calories=?, target_weight_kg=?, reset_frequency=?
WHERE id=?
`, in.TargetCalories, in.TargetWeightKg, freq, id); err != nil {
		return 0, fmt.Errorf("update goal: %w", err)
	}
	return id, nil
}

// SetGoalNutrient upserts one per-nutrient target in the nutrient's own unit.
func SetGoalNutrient(db *sql.DB, code string, targetAmount float64) error {
	if err := validateNonNegativeFloat("target amount", targetAmount); err != nil {
		return err
	}
	nutrientID, err := nutrientIDByCode(db, code)
	if err != nil {
		return err
	}
	id, err := goalID(db)
	if err != nil {
		return err
	}
	if id == 0 {
		id, err = SetGoal(db, SetGoalInput{})
		if err != nil {
			return err
		}
	}
	if _, err := db.Exec(`
INSERT INTO goal_nutrients(goal_id, nutrient_id, target_amount)
VALUES(?, ?, ?)
ON CONFLICT(goal_id, nutrient_id) DO UPDATE SET target_amount=excluded.target_amount
`, id, nutrientID, targetAmount); err != nil {
		return fmt.Errorf("set goal nutrient %q: %w", code, err)
	}
	return nil
}

// RecalculateGoalProgress rebuilds consumed amounts for every goal nutrient
// by walking the entire eaten log through the resolver: each eaten meal's
// items contribute amount-per-100g x quantity/100 in the nutrient's unit.
// Items with missing products or quantities are skipped, never fatal.
func RecalculateGoalProgress(db *sql.DB) (map[string]float64, error) {
	targets, err := GoalProgress(db)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return map[string]float64{}, nil
	}

	rows, err := db.Query(`SELECT meal_id FROM eaten_meals`)
	if err != nil {
		return nil, fmt.Errorf("query eaten meals: %w", err)
	}
	mealIDs := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan eaten meal: %w", err)
		}
		mealIDs = append(mealIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate eaten meals: %w", err)
	}
	rows.Close()

	totals := make(map[string]float64, len(targets))
	for _, gn := range targets {
		totals[gn.NutrientCode] = 0
	}
	for _, mealID := range mealIDs {
		meal, err := GetMeal(db, mealID)
		if err != nil {
			return nil, err
		}
		for _, item := range meal.Items {
			if item.Product == nil || !(item.Quantity > 0) {
				continue
			}
			factor := item.Quantity / 100
			for code := range totals {
				totals[code] += ResolveNutrientPer100g(item.Product, code) * factor
			}
		}
	}

	for code, consumed := range totals {
		if _, err := db.Exec(`
UPDATE goal_nutrients SET consumed_amount = ?
WHERE nutrient_id = (SELECT id FROM nutrients WHERE code = ?)
`, consumed, code); err != nil {
			return nil, fmt.Errorf("update consumed amount for %q: %w", code, err)
		}
	}
	return totals, nil
}

// GoalProgress lists all nutrient targets with consumed amounts.
func GoalProgress(db *sql.DB) ([]model.GoalNutrient, error) {
	rows, err := db.Query(`
SELECT gn.id, n.code, n.name, n.unit, gn.target_amount, gn.consumed_amount
FROM goal_nutrients gn
JOIN nutrients n ON n.id = gn.nutrient_id
ORDER BY n.display_order, n.name
`)
	if err != nil {
		return nil, fmt.Errorf("list goal nutrients: %w", err)
	}
	defer rows.Close()

	out := make([]model.GoalNutrient, 0)
	for rows.Next() {
		var gn model.GoalNutrient
		if err := rows.Scan(&gn.ID, &gn.NutrientCode, &gn.NutrientName, &gn.NutrientUnit,
			&gn.TargetAmount, &gn.ConsumedAmount); err != nil {
			return nil, fmt.Errorf("scan goal nutrient: %w", err)
		}
		out = append(out, gn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal nutrients: %w", err)
	}
	return out, nil
}

// CurrentGoal returns the goal row, or nil when none is set.
func CurrentGoal(db *sql.DB) (*model.Goal, error) {
	var g model.Goal
	var createdAt string
	err := db.QueryRow(`
SELECT id, target_calories, target_weight_kg, reset_frequency, created_at
FROM goals
ORDER BY id
LIMIT 1
`).Scan(&g.ID, &g.TargetCalories, &g.TargetWeightKg, &g.ResetFrequency, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load goal: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		g.CreatedAt = t
	}
	return &g, nil
}

// ProgressPercent is consumed over target, capped at 100, one decimal.
func ProgressPercent(gn model.GoalNutrient) float64 {
	if gn.TargetAmount <= 0 {
		return 0
	}
	return round1(math.Min(gn.ConsumedAmount/gn.TargetAmount*100, 100))
}

func goalID(db *sql.DB) (int64, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM goals ORDER BY id LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lookup goal: %w", err)
	}
	return id, nil
}
