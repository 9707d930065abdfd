package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/bigviv/CleanSheet/internal/errors"
)

// GetSetting decodes the JSON value stored under key into dst.
// found is false when the key has never been written.
func GetSetting(ctx context.Context, db DBTX, key string, dst any) (found bool, err error) {
	var raw string
	err = db.QueryRowContext(ctx, `SELECT value_json FROM settings WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// PutSetting stores value as JSON under key, replacing any previous value.
func PutSetting(ctx context.Context, db DBTX, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.NewInternal(err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO settings (key, value_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at
	`, key, string(data), time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
