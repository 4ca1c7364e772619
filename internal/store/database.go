package store

import (
	"database/sql"
	"errors"
	"fmt"

	"lustbot-widget/internal/db"
)

// DatabaseStore keeps values in the widget_kv table, scoped by profile so
// several terminals can share one database without sharing identities.
type DatabaseStore struct {
	db      *db.DB
	profile string
}

func NewDatabaseStore(database *db.DB, profile string) *DatabaseStore {
	return &DatabaseStore{db: database, profile: profile}
}

func (ds *DatabaseStore) Get(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}

	var value string
	query := `
		SELECT value
		FROM widget_kv
		WHERE profile = $1 AND key = $2
	`
	err := ds.db.QueryRow(query, ds.profile, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (ds *DatabaseStore) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	query := `
		INSERT INTO widget_kv (profile, key, value, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (profile, key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`
	if _, err := ds.db.Exec(query, ds.profile, key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
