package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/bitebuilder/bite-cli/internal/db"
	"github.com/bitebuilder/bite-cli/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bite.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func saveTestProduct(t *testing.T, sqldb *sql.DB, name string, proteinPer100g, kcalPer100g, cupPricePerKg float64) string {
	t.Helper()
	id, err := service.SaveProduct(sqldb, service.SaveProductInput{
		Name:          name,
		CupPriceValue: &cupPricePerKg,
		CupPriceUnit:  "1kg",
		Nutrients: []service.NutrientAmount{
			{Code: "protein", Per100g: &proteinPer100g},
			{Code: "energy_kcal", Per100g: &kcalPer100g},
		},
	})
	if err != nil {
		t.Fatalf("save product %q: %v", name, err)
	}
	return id
}
