package service_test

import (
	"testing"

	"github.com/bitebuilder/bite-cli/internal/service"
)

func TestCreateMealAndAddItems(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	productID := saveTestProduct(t, sqldb, "chicken breast", 20, 200, 10)

	mealID, err := service.CreateMeal(sqldb, service.CreateMealInput{Name: "post-workout", MealType: "lunch"})
	if err != nil {
		t.Fatalf("create meal: %v", err)
	}
	if _, err := service.AddMealItem(sqldb, mealID, productID, 150); err != nil {
		t.Fatalf("add item: %v", err)
	}

	meal, err := service.GetMeal(sqldb, mealID)
	if err != nil {
		t.Fatalf("get meal: %v", err)
	}
	if len(meal.Items) != 1 || meal.Items[0].Quantity != 150 {
		t.Fatalf("expected one 150g item, got %+v", meal.Items)
	}

	totals := service.AggregateMealTotals(meal)
	if totals.ProteinG != 30 || totals.EnergyKcal != 300 || totals.PriceTotal != 1.50 {
		t.Fatalf("expected engine totals from stored meal, got %+v", totals)
	}
}

func TestCreateMealRejectsBadType(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	if _, err := service.CreateMeal(sqldb, service.CreateMealInput{MealType: "brunch"}); err == nil {
		t.Fatalf("expected invalid meal type error")
	}
}

func TestAddMealItemValidation(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	productID := saveTestProduct(t, sqldb, "rice", 3, 130, 4)
	mealID, err := service.CreateMeal(sqldb, service.CreateMealInput{MealType: "dinner"})
	if err != nil {
		t.Fatalf("create meal: %v", err)
	}
	if _, err := service.AddMealItem(sqldb, mealID, productID, 0); err == nil {
		t.Fatalf("expected zero quantity rejection")
	}
	if _, err := service.AddMealItem(sqldb, "missing-meal", productID, 100); err == nil {
		t.Fatalf("expected missing meal error")
	}
	if _, err := service.AddMealItem(sqldb, mealID, "missing-product", 100); err == nil {
		t.Fatalf("expected missing product error")
	}
}

func TestRemoveMealItem(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	productID := saveTestProduct(t, sqldb, "rice", 3, 130, 4)
	mealID, err := service.CreateMeal(sqldb, service.CreateMealInput{MealType: "dinner"})
	if err != nil {
		t.Fatalf("create meal: %v", err)
	}
	itemID, err := service.AddMealItem(sqldb, mealID, productID, 100)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := service.RemoveMealItem(sqldb, itemID); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if err := service.RemoveMealItem(sqldb, itemID); err == nil {
		t.Fatalf("expected not-found on second removal")
	}
	meal, err := service.GetMeal(sqldb, mealID)
	if err != nil {
		t.Fatalf("get meal: %v", err)
	}
	if len(meal.Items) != 0 {
		t.Fatalf("expected no items after removal, got %d", len(meal.Items))
	}
}

func TestListMeals(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	if _, err := service.CreateMeal(sqldb, service.CreateMealInput{Name: "a", MealType: "breakfast"}); err != nil {
		t.Fatalf("create meal: %v", err)
	}
	if _, err := service.CreateMeal(sqldb, service.CreateMealInput{Name: "b", MealType: "snack"}); err != nil {
		t.Fatalf("create meal: %v", err)
	}
	meals, err := service.ListMeals(sqldb)
	if err != nil {
		t.Fatalf("list meals: %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(meals))
	}
}
