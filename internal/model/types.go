package model

import "time"

// Nutrient is one entry in the canonical nutrient registry seeded at init
// (codes like "protein", "fat_total", "energy_kcal", "sodium").
type Nutrient struct {
	ID       int64
	Code     string
	Name     string
	Unit     string
	Category string
}

// ProductNutrient is a relational per-product nutrient row.
type ProductNutrient struct {
	Nutrient         Nutrient
	AmountPer100g    *float64
	AmountPerServing *float64
}

// Product carries nutrition data in one or both of two shapes: relational
// Nutrients rows (database-backed or barcode imports) and the Nutrition map,
// a denormalized scraped payload decoded straight from JSON
// (key -> {label, per_100:{value,unit}, per_serving:{value,unit}}).
type Product struct {
	ID          string
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

	Nutrients []ProductNutrient
	Nutrition map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MealItem links a product into a meal with a quantity in grams.
type MealItem struct {
	ID       string
	Product  *Product
	Quantity float64
}

type Meal struct {
	ID        string
	Name      string
	MealType  string
	Notes     string
	Items     []MealItem
	CreatedAt time.Time
}

// EatenMeal is one logged instance of a meal template.
type EatenMeal struct {
	ID       string
	MealID   string
	MealName string
	MealType string
	EatenAt  time.Time
}

type Goal struct {
	ID             int64
	TargetCalories *int64
	TargetWeightKg *float64
	ResetFrequency string
	CreatedAt      time.Time
}

// GoalNutrient tracks one nutrient target and the consumed amount so far,
// both in the nutrient's own unit.
type GoalNutrient struct {
	ID             int64
	NutrientCode   string
	NutrientName   string
	NutrientUnit   string
	TargetAmount   float64
	ConsumedAmount float64
}
