package store

import (
	"fmt"
	"strings"
)

func (s *Store) migrate() error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "DATETIME"
	fp := "REAL"
	switch s.dialect {
	case dialectPostgres:
		id = "BIGSERIAL PRIMARY KEY"
		ts = "TIMESTAMPTZ"
		fp = "DOUBLE PRECISION"
	case dialectMySQL:
		id = "BIGINT PRIMARY KEY AUTO_INCREMENT"
		ts = "DATETIME(6)"
		fp = "DOUBLE"
	}

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS locations (
			id %s,
			latitude %s NOT NULL,
			longitude %s NOT NULL,
			altitude %s,
			accuracy %s,
			timestamp %s NOT NULL,
			device_id VARCHAR(255),
			tracker_id VARCHAR(10),
			battery INTEGER,
			connection VARCHAR(50),
			user_id VARCHAR(255),
			server_received_at %s NOT NULL,
			raw_data TEXT
		)`, id, fp, fp, fp, fp, ts, ts),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS api_keys (
			id %s,
			key_hash VARCHAR(64) NOT NULL,
			key_prefix VARCHAR(16) NOT NULL,
			user_name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			expires_at %s,
			created_at %s NOT NULL,
			last_used %s,
			CONSTRAINT uq_api_keys_hash UNIQUE (key_hash)
		)`, id, ts, ts, ts),

		`CREATE INDEX idx_locations_server_received_at ON locations(server_received_at)`,
		`CREATE INDEX idx_locations_device_time ON locations(device_id, server_received_at)`,
		`CREATE INDEX idx_api_keys_user ON api_keys(user_name)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// MySQL has no CREATE INDEX IF NOT EXISTS, so index creation is
			// retried on every start; treat "already exists" as a no-op.
			msg := strings.ToLower(err.Error())
			if strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate key name") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
