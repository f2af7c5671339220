package migrations

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20250915_create_rate_limits_table",
		Name: "Create rate_limits table mirroring per-client limit status",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS rate_limits (
					id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					session_id  UUID,
					client_id   TEXT NOT NULL,
					name        TEXT NOT NULL,
					"limit"     INTEGER NOT NULL,
					remaining   INTEGER NOT NULL,
					reset_at    TIMESTAMPTZ NOT NULL,
					updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE(client_id, name)
				);
			`).Error; err != nil {
				return err
			}
			return nil
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS rate_limits;`).Error
		},
	})
}
