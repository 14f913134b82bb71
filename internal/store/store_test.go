package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"settings", "calibration_profiles"} {
		var name string
		err := s.DB().Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}

	var idx string
	if err := s.DB().Get(&idx, "SELECT name FROM sqlite_master WHERE type='index' AND name=?", "idx_calibration_profiles_name"); err != nil {
		t.Errorf("profile name index should exist: %v", err)
	}
}

func TestNewStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Settings().Set(KeyShape, "heart"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	got, err := s.Settings().Get(KeyShape)
	if err != nil || got != "heart" {
		t.Errorf("Get(shape) after reopen = %q, %v; want heart", got, err)
	}
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("close should not return error: %v", err)
	}
	if _, err := s.DB().Exec("SELECT 1"); err == nil {
		t.Error("DB operations should fail after close")
	}
}

func TestStore_ForeignKeysEnabled(t *testing.T) {
	s := newTestStore(t)

	var fkEnabled int
	if err := s.DB().Get(&fkEnabled, "PRAGMA foreign_keys"); err != nil {
		t.Fatalf("failed to check foreign keys pragma: %v", err)
	}
	if fkEnabled != 1 {
		t.Error("foreign keys should be enabled")
	}
}

func TestSettings(t *testing.T) {
	repo := newTestStore(t).Settings()

	if _, err := repo.Get(KeyColor); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on missing key error = %v, want ErrNotFound", err)
	}
	if v, err := repo.GetOr(KeyColor, "#ff0055"); err != nil || v != "#ff0055" {
		t.Fatalf("GetOr() = %q, %v; want default", v, err)
	}

	steps := []struct {
		key, value string
	}{
		{KeyColor, "#00ff00"},
		{KeyShape, "saturn"},
		{KeyColor, "#123456"},
	}
	for _, st := range steps {
		if err := repo.Set(st.key, st.value); err != nil {
			t.Fatalf("Set(%q) error = %v", st.key, err)
		}
	}

	if v, _ := repo.Get(KeyColor); v != "#123456" {
		t.Errorf("Get(color) = %q, want overwritten value", v)
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 || all[0].Key != KeyColor || all[1].Key != KeyShape {
		t.Errorf("List() = %+v, want color then shape", all)
	}
	if all[0].UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}

	if err := repo.Delete(KeyShape); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := repo.Delete(KeyShape); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestProfiles_CRUD(t *testing.T) {
	s := newTestStore(t)
	repo := s.Profiles()

	cfg := gesture.DefaultConfig()
	cfg.FistSpread = 0.07
	cfg.SwipeCooldown = 300 * time.Millisecond
	cfg.Convention = gesture.PositiveIsRight

	p := &Profile{Name: "desk", Config: cfg}
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID == "" {
		t.Fatal("Create() should assign an ID")
	}

	got, err := repo.GetByID(p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "desk" || got.Config != cfg {
		t.Errorf("GetByID() = %+v, want name desk and config %+v", got, cfg)
	}

	if byName, err := repo.GetByName("desk"); err != nil || byName.ID != p.ID {
		t.Errorf("GetByName() = %+v, %v", byName, err)
	}

	if err := repo.Create(&Profile{Name: "desk", Config: cfg}); err == nil {
		t.Error("duplicate name should fail")
	}
	if err := repo.Create(&Profile{Name: "couch", Config: gesture.DefaultConfig()}); err != nil {
		t.Fatalf("Create(couch) error = %v", err)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "couch" || list[1].Name != "desk" {
		t.Errorf("List() names = %v, want [couch desk]", profileNames(list))
	}

	got.Name = "standing desk"
	got.Config.OpenSpread = 0.3
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	updated, _ := repo.GetByID(p.ID)
	if updated.Name != "standing desk" || updated.Config.OpenSpread != 0.3 {
		t.Errorf("Update() not persisted: %+v", updated)
	}

	if err := repo.Update(&Profile{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestProfiles_DeleteClearsActive(t *testing.T) {
	s := newTestStore(t)
	repo := s.Profiles()

	p := &Profile{Name: "tmp", Config: gesture.DefaultConfig()}
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Settings().Set(KeyActiveProfile, p.ID); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := repo.Delete(p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := s.Settings().Get(KeyActiveProfile); !errors.Is(err, ErrNotFound) {
		t.Errorf("active profile should be cleared, got %v", err)
	}
	if err := repo.Delete(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func profileNames(ps []*Profile) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}
