package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Well-known setting keys.
const (
	KeyShape         = "shape"
	KeyColor         = "color"
	KeyActiveProfile = "active_profile"
)

// Setting is a single key-value row.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// SettingsRepository reads and writes application settings.
type SettingsRepository struct {
	db *sqlx.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key.
// Returns ErrNotFound if the key has never been set.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.Get(&value, `SELECT value FROM settings WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// GetOr returns the value stored under key, or def when it is missing.
func (r *SettingsRepository) GetOr(key, def string) (string, error) {
	v, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	return v, err
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// Delete removes key. Deleting a missing key returns ErrNotFound.
func (r *SettingsRepository) Delete(key string) error {
	res, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every setting ordered by key.
func (r *SettingsRepository) List() ([]Setting, error) {
	settings := []Setting{}
	if err := r.db.Select(&settings, `SELECT key, value, updated_at FROM settings ORDER BY key`); err != nil {
		return nil, err
	}
	return settings, nil
}
