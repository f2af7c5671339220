package migrations

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/database"
	"gorm.io/gorm"
)

// Tables: sessions, messages, audio_buffers, function_calls
func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20250901_initial_realtime_schema",
		Name: "Create realtime tables: sessions, messages, audio_buffers, function_calls",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE EXTENSION IF NOT EXISTS pgcrypto;
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS sessions (
					id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					client_id         TEXT NOT NULL,
					status            TEXT NOT NULL DEFAULT 'active',
					model             TEXT NOT NULL,
					modalities        TEXT[],
					voice             TEXT,
					temperature       DOUBLE PRECISION NOT NULL DEFAULT 0.7,
					instructions      TEXT,
					turn_detection    TEXT,
					tools             JSONB,
					metadata          JSONB,
					created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					last_activity_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT sessions_status_check
						CHECK (status IN ('active', 'completed', 'expired', 'error'))
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS messages (
					id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					session_id     UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
					parent_id      UUID REFERENCES messages(id) ON DELETE CASCADE,
					role           TEXT NOT NULL,
					content        TEXT,
					content_type   TEXT NOT NULL,
					token_count    INTEGER NOT NULL DEFAULT 0,
					status         TEXT NOT NULL DEFAULT 'completed',
					function_call  JSONB,
					created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT messages_role_check
						CHECK (role IN ('system', 'user', 'assistant', 'function')),
					CONSTRAINT messages_content_type_check
						CHECK (content_type IN ('text', 'audio', 'function_call'))
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS audio_buffers (
					id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					session_id     UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
					message_id     UUID REFERENCES messages(id) ON DELETE SET NULL,
					file_ref       TEXT,
					duration_ms    INTEGER NOT NULL DEFAULT 0,
					format         TEXT NOT NULL,
					transcription  TEXT,
					processed_at   TIMESTAMPTZ,
					created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS function_calls (
					id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					message_id    UUID NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
					session_id    UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
					call_id       TEXT NOT NULL,
					name          TEXT NOT NULL,
					arguments     TEXT,
					result        TEXT,
					status        TEXT NOT NULL DEFAULT 'pending',
					created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					completed_at  TIMESTAMPTZ,
					CONSTRAINT function_calls_status_check
						CHECK (status IN ('pending', 'running', 'completed', 'failed'))
				);
			`).Error; err != nil {
				return err
			}

			for _, stmt := range []string{
				`CREATE INDEX IF NOT EXISTS idx_sessions_client_id ON sessions (client_id);`,
				`CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages (session_id, created_at);`,
				`CREATE INDEX IF NOT EXISTS idx_audio_buffers_session_id ON audio_buffers (session_id);`,
				`CREATE INDEX IF NOT EXISTS idx_function_calls_session_call ON function_calls (session_id, call_id);`,
			} {
				if err := db.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`
				DROP TABLE IF EXISTS function_calls;
				DROP TABLE IF EXISTS audio_buffers;
				DROP TABLE IF EXISTS messages;
				DROP TABLE IF EXISTS sessions;
			`).Error
		},
	})
}
