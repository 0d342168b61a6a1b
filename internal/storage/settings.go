package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// ─────────────────────────────────────────────────────────────
// App settings
// ─────────────────────────────────────────────────────────────
//
// Simple key/value rows in app_settings, used for values that outlive a
// session such as the last selected pen.

// GetSetting returns the value stored under name, or ErrNotFound.
func (db *DB) GetSetting(name string) (string, error) {
	var value string
	err := db.conn.QueryRow(db.rebind(`SELECT value FROM app_settings WHERE name = ?`), name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", name, err)
	}
	return value, nil
}

// PutSetting inserts or replaces a setting.
func (db *DB) PutSetting(name, value string) error {
	query := `INSERT INTO app_settings (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`
	if db.dialect == DialectMySQL {
		query = `INSERT INTO app_settings (name, value) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE value = VALUES(value)`
	}
	if _, err := db.conn.Exec(db.rebind(query), name, value); err != nil {
		return fmt.Errorf("put setting %s: %w", name, err)
	}
	return nil
}
