package service

import (
	"database/sql"
	"fmt"
	"strings"
)

const (
	ConfigImportProvider = "import_provider"
	ConfigStoreBaseURL   = "store_base_url"
	ConfigOFFBaseURL     = "openfoodfacts_base_url"
)

var knownConfigKeys = map[string]bool{
	ConfigImportProvider: true,
	ConfigStoreBaseURL:   true,
	ConfigOFFBaseURL:     true,
}

func SetConfig(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(key)
	if !knownConfigKeys[key] {
		return fmt.Errorf("unknown config key %q", key)
	}
	if _, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP
`, key, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, strings.TrimSpace(key)).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get config %q: %w", key, err)
	}
	return value, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan config row: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config rows: %w", err)
	}
	return out, nil
}
