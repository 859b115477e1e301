package service_test

import (
	"math"
	"testing"

	"github.com/bitebuilder/bite-cli/internal/model"
	"github.com/bitebuilder/bite-cli/internal/service"
)

// The end-to-end scenario: 150g of a product with 20g protein and 200 kcal
// per 100g, cup-priced at $10/1kg.
func scenarioMeal() *model.Meal {
	cup := 10.0
	protein := 20.0
	kcal := 200.0
	p := &model.Product{
		Name:          "chicken breast",
		CupPriceValue: &cup,
		CupPriceUnit:  "1kg",
		Nutrients: []model.ProductNutrient{
			{Nutrient: model.Nutrient{Code: "protein", Unit: "g"}, AmountPer100g: &protein},
			{Nutrient: model.Nutrient{Code: "energy_kcal", Unit: "kcal"}, AmountPer100g: &kcal},
		},
	}
	return &model.Meal{Items: []model.MealItem{{Product: p, Quantity: 150}}}
}

func TestAggregateMealTotalsEndToEnd(t *testing.T) {
	t.Parallel()
	totals := service.AggregateMealTotals(scenarioMeal())
	if totals.ProteinG != 30 {
		t.Fatalf("expected 30g protein, got %v", totals.ProteinG)
	}
	if totals.EnergyKcal != 300 {
		t.Fatalf("expected 300 kcal, got %v", totals.EnergyKcal)
	}
	if totals.PriceTotal != 1.50 {
		t.Fatalf("expected price total 1.50, got %v", totals.PriceTotal)
	}
}

func TestAggregateMealTotalsIdempotent(t *testing.T) {
	t.Parallel()
	meal := scenarioMeal()
	first := service.AggregateMealTotals(meal)
	second := service.AggregateMealTotals(meal)
	if first != second {
		t.Fatalf("expected identical totals, got %+v vs %+v", first, second)
	}
}

func TestAggregateMealTotalsEmptyMealIsAllZero(t *testing.T) {
	t.Parallel()
	totals := service.AggregateMealTotals(&model.Meal{})
	if totals != (service.NutrientTotals{}) {
		t.Fatalf("expected zero-valued totals, got %+v", totals)
	}
	if nilTotals := service.AggregateMealTotals(nil); nilTotals != (service.NutrientTotals{}) {
		t.Fatalf("expected zero totals for nil meal, got %+v", nilTotals)
	}
}

func TestAggregateSkipsBrokenItemsSilently(t *testing.T) {
	t.Parallel()
	meal := scenarioMeal()
	meal.Items = append(meal.Items,
		model.MealItem{Product: nil, Quantity: 100},
		model.MealItem{Product: &model.Product{Name: "zero qty"}, Quantity: 0},
		model.MealItem{Product: &model.Product{Name: "negative"}, Quantity: -50},
	)
	totals := service.AggregateMealTotals(meal)
	if totals.ProteinG != 30 || totals.EnergyKcal != 300 {
		t.Fatalf("expected broken items to contribute nothing, got %+v", totals)
	}
}

func TestAggregatePricelessProductStillContributesNutrients(t *testing.T) {
	t.Parallel()
	protein := 8.0
	meal := scenarioMeal()
	meal.Items = append(meal.Items, model.MealItem{
		Product: &model.Product{
			Name: "no price",
			Nutrients: []model.ProductNutrient{
				{Nutrient: model.Nutrient{Code: "protein", Unit: "g"}, AmountPer100g: &protein},
			},
		},
		Quantity: 100,
	})
	totals := service.AggregateMealTotals(meal)
	if totals.ProteinG != 38 {
		t.Fatalf("expected protein from priceless product, got %v", totals.ProteinG)
	}
	if totals.PriceTotal != 1.50 {
		t.Fatalf("expected price unchanged at 1.50, got %v", totals.PriceTotal)
	}
}

func TestAggregateDayTotalsSumsMealsBeforeRounding(t *testing.T) {
	t.Parallel()
	day := service.AggregateDayTotals([]*model.Meal{scenarioMeal(), scenarioMeal(), nil})
	if day.ProteinG != 60 {
		t.Fatalf("expected 60g protein over two meals, got %v", day.ProteinG)
	}
	if day.PriceTotal != 3.00 {
		t.Fatalf("expected 3.00 price total, got %v", day.PriceTotal)
	}
}

func TestMealItemNutrition(t *testing.T) {
	t.Parallel()
	meal := scenarioMeal()
	item := meal.Items[0]
	n := service.MealItemNutrition(item)
	if n == nil {
		t.Fatalf("expected item nutrition")
	}
	if math.Abs(n.ProteinG-30) > 1e-9 || math.Abs(n.EnergyKcal-300) > 1e-9 {
		t.Fatalf("expected scaled item record, got %+v", n)
	}
}

func TestMealItemNutritionNilForUnusableItem(t *testing.T) {
	t.Parallel()
	if n := service.MealItemNutrition(model.MealItem{Quantity: 100}); n != nil {
		t.Fatalf("expected nil for missing product, got %+v", n)
	}
	if n := service.MealItemNutrition(model.MealItem{Product: &model.Product{}, Quantity: 0}); n != nil {
		t.Fatalf("expected nil for zero quantity, got %+v", n)
	}
}
