package catalog

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS plants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		common_name TEXT,
		plant_type TEXT NOT NULL DEFAULT '',
		is_synonym_of INTEGER REFERENCES plants(id),
		is_user_submitted INTEGER NOT NULL DEFAULT 0,
		submitter_id TEXT,
		name_norm TEXT NOT NULL DEFAULT '',
		common_name_norm TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_plants_name_norm ON plants(name_norm);`,
	`CREATE INDEX IF NOT EXISTS idx_plants_common_name_norm ON plants(common_name_norm);`,
	`CREATE INDEX IF NOT EXISTS idx_plants_synonym_of ON plants(is_synonym_of);`,
}

// Migrate creates the catalog tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("catalog migration failed: %w", err)
		}
	}
	return nil
}
