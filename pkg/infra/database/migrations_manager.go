package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

const migrationsTable = "public.schema_migrations"

// Migration is one schema step. IDs sort lexically in apply order, so they
// start with a date.
type Migration struct {
	ID   string
	Name string
	Up   func(db *gorm.DB) error
	Down func(db *gorm.DB) error
}

var registry = struct {
	sync.Mutex
	byID map[string]Migration
}{byID: make(map[string]Migration)}

func RegisterMigration(m Migration) {
	registry.Lock()
	defer registry.Unlock()
	if _, exists := registry.byID[m.ID]; exists {
		panic(fmt.Sprintf("migration with ID %s already registered", m.ID))
	}
	registry.byID[m.ID] = m
}

func registeredMigrations() []Migration {
	registry.Lock()
	defer registry.Unlock()
	out := make([]Migration, 0, len(registry.byID))
	for _, m := range registry.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type MigrationsManager struct {
	db *gorm.DB
}

func NewMigrationsManager(db *gorm.DB) *MigrationsManager {
	return &MigrationsManager{db: db}
}

func (m *MigrationsManager) ensureMigrationsTable(ctx context.Context) error {
	return m.db.WithContext(ctx).Exec(`
CREATE TABLE IF NOT EXISTS ` + migrationsTable + ` (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`).Error
}

func (m *MigrationsManager) appliedIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if err := m.db.WithContext(ctx).Raw("SELECT id FROM " + migrationsTable).Scan(&ids).Error; err != nil {
		return nil, err
	}
	applied := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		applied[id] = struct{}{}
	}
	return applied, nil
}

// ApplyPending runs every registered migration not yet recorded, each in its
// own transaction together with its bookkeeping row. It returns the ids applied.
func (m *MigrationsManager) ApplyPending(ctx context.Context) ([]string, error) {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure migrations table: %w", err)
	}
	applied, err := m.appliedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}

	var done []string
	for _, mig := range registeredMigrations() {
		if _, ok := applied[mig.ID]; ok {
			continue
		}
		if mig.Up == nil {
			return done, fmt.Errorf("migration %s has no Up function", mig.ID)
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx); err != nil {
				return err
			}
			return tx.Exec(
				"INSERT INTO "+migrationsTable+" (id, name, applied_at) VALUES (?, ?, ?)",
				mig.ID, mig.Name, time.Now(),
			).Error
		})
		if err != nil {
			return done, fmt.Errorf("apply migration %s (%s): %w", mig.ID, mig.Name, err)
		}
		done = append(done, mig.ID)
	}
	return done, nil
}
