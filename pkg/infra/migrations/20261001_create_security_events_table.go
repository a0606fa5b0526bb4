package migrations

import (
	"github.com/NeuralTrust/SiteGuard/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20261001_create_security_events_table",
		Name: "Create security_events table",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS security_events (
					id           TEXT PRIMARY KEY,
					timestamp    TIMESTAMPTZ NOT NULL,
					type         TEXT NOT NULL,
					severity     TEXT NOT NULL,
					method       TEXT,
					path         TEXT,
					ip           TEXT NOT NULL,
					user_agent   TEXT,
					client       JSONB,
					user_id      TEXT,
					user_email   TEXT,
					detections   JSONB NOT NULL DEFAULT '[]'::jsonb,
					request_body JSONB,
					status_code  INTEGER NOT NULL DEFAULT 0,
					details      TEXT,
					response     TEXT,
					trace_id     TEXT
				);
			`).Error; err != nil {
				return err
			}

			for _, stmt := range []string{
				`CREATE INDEX IF NOT EXISTS idx_security_events_timestamp ON security_events (timestamp DESC, id DESC);`,
				`CREATE INDEX IF NOT EXISTS idx_security_events_type ON security_events (type);`,
				`CREATE INDEX IF NOT EXISTS idx_security_events_severity ON security_events (severity);`,
				`CREATE INDEX IF NOT EXISTS idx_security_events_ip ON security_events (ip);`,
			} {
				if err := db.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS security_events;`).Error
		},
	})
}
