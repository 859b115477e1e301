package service_test

import (
	"testing"

	"github.com/bitebuilder/bite-cli/internal/service"
)

func TestRunDoctorCleanDatabase(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	saveTestProduct(t, sqldb, "oats", 13, 380, 5)

	report, err := service.RunDoctor(sqldb, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report != (service.DoctorReport{}) {
		t.Fatalf("expected clean report, got %+v", report)
	}
}

func TestRunDoctorFixesInvalidNutritionPayload(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	id := saveTestProduct(t, sqldb, "oats", 13, 380, 5)
	if _, err := sqldb.Exec(`UPDATE products SET nutrition_json = '{broken' WHERE id = ?`, id); err != nil {
		t.Fatalf("corrupt payload: %v", err)
	}

	report, err := service.RunDoctor(sqldb, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.InvalidNutrition != 1 {
		t.Fatalf("expected 1 invalid payload, got %+v", report)
	}

	report, err = service.RunDoctor(sqldb, true)
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if report.FixedNutritionRows != 1 {
		t.Fatalf("expected 1 fixed row, got %+v", report)
	}

	report, err = service.RunDoctor(sqldb, false)
	if err != nil {
		t.Fatalf("doctor recheck: %v", err)
	}
	if report.InvalidNutrition != 0 {
		t.Fatalf("expected payload cleared, got %+v", report)
	}
}
