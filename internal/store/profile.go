package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ayusman/mudra/internal/gesture"
)

// Profile is a named set of gesture thresholds.
type Profile struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Config    gesture.Config `json:"config"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type profileRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Config    string    `db:"config"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row profileRow) profile() (*Profile, error) {
	p := &Profile{
		ID:        row.ID,
		Name:      row.Name,
		Config:    gesture.DefaultConfig(),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Config), &p.Config); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", row.ID, err)
	}
	return p, nil
}

// ProfileRepository provides CRUD operations for calibration profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// Profiles returns the calibration profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Create inserts p, assigning an ID when it has none.
func (r *ProfileRepository) Create(p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cfg, err := json.Marshal(p.Config)
	if err != nil {
		return fmt.Errorf("encode profile config: %w", err)
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = r.db.Exec(
		`INSERT INTO calibration_profiles (id, name, config, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(cfg), p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	var row profileRow
	err := r.db.Get(&row,
		`SELECT id, name, config, created_at, updated_at
		 FROM calibration_profiles WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.profile()
}

// GetByName retrieves a profile by its unique name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	var row profileRow
	err := r.db.Get(&row,
		`SELECT id, name, config, created_at, updated_at
		 FROM calibration_profiles WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.profile()
}

// List returns all profiles ordered by name.
func (r *ProfileRepository) List() ([]*Profile, error) {
	var rows []profileRow
	err := r.db.Select(&rows,
		`SELECT id, name, config, created_at, updated_at
		 FROM calibration_profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}

	profiles := make([]*Profile, 0, len(rows))
	for _, row := range rows {
		p, err := row.profile()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Update replaces the name and thresholds of an existing profile.
func (r *ProfileRepository) Update(p *Profile) error {
	cfg, err := json.Marshal(p.Config)
	if err != nil {
		return fmt.Errorf("encode profile config: %w", err)
	}
	p.UpdatedAt = time.Now()

	res, err := r.db.Exec(
		`UPDATE calibration_profiles SET name = ?, config = ?, updated_at = ? WHERE id = ?`,
		p.Name, string(cfg), p.UpdatedAt, p.ID,
	)
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

// Delete removes a profile by ID.
func (r *ProfileRepository) Delete(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM calibration_profiles WHERE id = ?`, id)
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

	// A deleted profile can no longer be the active one.
	if _, err := tx.Exec(`DELETE FROM settings WHERE key = ? AND value = ?`, KeyActiveProfile, id); err != nil {
		return err
	}
	return tx.Commit()
}
