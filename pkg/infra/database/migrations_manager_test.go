package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRegisterMigration_SortedByID(t *testing.T) {
	noop := func(*gorm.DB) error { return nil }
	RegisterMigration(Migration{ID: "29990102_test_second", Name: "second", Up: noop})
	RegisterMigration(Migration{ID: "29990101_test_first", Name: "first", Up: noop})

	var ids []string
	for _, m := range registeredMigrations() {
		ids = append(ids, m.ID)
	}
	first := indexOf(ids, "29990101_test_first")
	second := indexOf(ids, "29990102_test_second")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
}

func TestRegisterMigration_DuplicatePanics(t *testing.T) {
	RegisterMigration(Migration{ID: "29990201_test_dup", Name: "dup"})
	assert.Panics(t, func() {
		RegisterMigration(Migration{ID: "29990201_test_dup", Name: "dup again"})
	})
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := (&Config{MaxOpenConns: 10, MaxIdleConns: 50}).withDefaults()

	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, defaultConnMaxLifetime, cfg.ConnMaxLifetime)
	assert.Equal(t, defaultSlowQuery, cfg.SlowQuery)
	assert.Equal(t, defaultMigrationTimeout, cfg.MigrationTimeout)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
