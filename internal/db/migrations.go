package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS nutrients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL UNIQUE,
  unit TEXT NOT NULL,
  category TEXT,
  display_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  barcode TEXT UNIQUE,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  size TEXT NOT NULL DEFAULT '',
  price_current REAL CHECK(price_current >= 0),
  price_was REAL CHECK(price_was >= 0),
  is_on_special INTEGER NOT NULL DEFAULT 0,
  cup_price_value REAL CHECK(cup_price_value >= 0),
  cup_price_unit TEXT NOT NULL DEFAULT '',
  health_star TEXT NOT NULL DEFAULT '',
  serving_size_value REAL CHECK(serving_size_value >= 0),
  serving_size_unit TEXT NOT NULL DEFAULT '',
  servings_per_pack REAL CHECK(servings_per_pack >= 0),
  nutrition_basis TEXT NOT NULL DEFAULT '',
  primary_source TEXT NOT NULL DEFAULT 'user_added',
  nutrition_json TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_products_barcode ON products(barcode);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand);

CREATE TABLE IF NOT EXISTS product_nutrients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id TEXT NOT NULL,
  nutrient_id INTEGER NOT NULL,
  amount_per_100g REAL CHECK(amount_per_100g >= 0),
  amount_per_serving REAL CHECK(amount_per_serving >= 0),
  UNIQUE(product_id, nutrient_id),
  FOREIGN KEY(product_id) REFERENCES products(id) ON DELETE CASCADE,
  FOREIGN KEY(nutrient_id) REFERENCES nutrients(id)
);

CREATE INDEX IF NOT EXISTS idx_product_nutrients_product ON product_nutrients(product_id);

CREATE TABLE IF NOT EXISTS meals (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  meal_type TEXT NOT NULL CHECK(meal_type IN ('breakfast', 'lunch', 'dinner', 'snack')),
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS meal_items (
  id TEXT PRIMARY KEY,
  meal_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity REAL NOT NULL CHECK(quantity > 0),
  FOREIGN KEY(meal_id) REFERENCES meals(id) ON DELETE CASCADE,
  FOREIGN KEY(product_id) REFERENCES products(id)
);

CREATE INDEX IF NOT EXISTS idx_meal_items_meal ON meal_items(meal_id);

CREATE TABLE IF NOT EXISTS eaten_meals (
  id TEXT PRIMARY KEY,
  meal_id TEXT NOT NULL,
  eaten_at DATETIME NOT NULL,
  FOREIGN KEY(meal_id) REFERENCES meals(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_eaten_meals_eaten_at ON eaten_meals(eaten_at);

CREATE TABLE IF NOT EXISTS goals (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  target_calories INTEGER CHECK(target_calories >= 0),
  target_weight_kg REAL CHECK(target_weight_kg > 0),
  reset_frequency TEXT NOT NULL DEFAULT 'none' CHECK(reset_frequency IN ('daily', 'weekly', 'monthly', 'none')),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS goal_nutrients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  goal_id INTEGER NOT NULL,
  nutrient_id INTEGER NOT NULL,
  target_amount REAL NOT NULL CHECK(target_amount >= 0),
  consumed_amount REAL NOT NULL DEFAULT 0,
  UNIQUE(goal_id, nutrient_id),
  FOREIGN KEY(goal_id) REFERENCES goals(id) ON DELETE CASCADE,
  FOREIGN KEY(nutrient_id) REFERENCES nutrients(id)
);
`,
	},
	{
		version: 2,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}

// seedNutrients is the canonical registry; codes are the resolver's
// vocabulary and the goal targets' foreign key.
var seedNutrients = []struct {
	code     string
	name     string
	unit     string
	category string
}{
	{"energy_kj", "Energy (kJ)", "kJ", "macronutrient"},
	{"energy_kcal", "Energy (kcal)", "kcal", "macronutrient"},
	{"protein", "Protein", "g", "macronutrient"},
	{"fat_total", "Total Fat", "g", "macronutrient"},
	{"fat_saturated", "Saturated Fat", "g", "macronutrient"},
	{"carbohydrate", "Carbohydrates", "g", "macronutrient"},
	{"sugars", "Sugars", "g", "macronutrient"},
	{"fiber", "Dietary Fiber", "g", "macronutrient"},
	{"sodium", "Sodium", "mg", "mineral"},
	{"calcium", "Calcium", "mg", "mineral"},
	{"iron", "Iron", "mg", "mineral"},
	{"magnesium", "Magnesium", "mg", "mineral"},
	{"potassium", "Potassium", "mg", "mineral"},
	{"phosphorus", "Phosphorus", "mg", "mineral"},
	{"zinc", "Zinc", "mg", "mineral"},
	{"vitamin_a", "Vitamin A", "µg", "vitamin"},
	{"vitamin_c", "Vitamin C", "mg", "vitamin"},
	{"vitamin_d", "Vitamin D", "µg", "vitamin"},
	{"vitamin_b6", "Vitamin B6", "mg", "vitamin"},
	{"vitamin_b12", "Vitamin B12", "µg", "vitamin"},
	{"vitamin_e", "Vitamin E", "mg", "vitamin"},
	{"vitamin_k", "Vitamin K", "µg", "vitamin"},
	{"folate", "Folate", "µg", "vitamin"},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	for order, n := range seedNutrients {
		if _, err := db.Exec(`
INSERT INTO nutrients(code, name, unit, category, display_order)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(code) DO UPDATE SET name=excluded.name, unit=excluded.unit, category=excluded.category, display_order=excluded.display_order
`, n.code, n.name, n.unit, n.category, order); err != nil {
			return fmt.Errorf("seed nutrient %s: %w", n.code, err)
		}
	}

	return nil
}
