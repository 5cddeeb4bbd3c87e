package audit

import "fmt"

// migrations[i] moves the schema from version i to i+1. The version lives in
// SQLite's user_version header field. Append only.
var migrations = [][]string{
	{
		`CREATE TABLE decisions (
			id            TEXT PRIMARY KEY,
			decided_at    TEXT NOT NULL,
			report        TEXT NOT NULL,
			property_id   TEXT NOT NULL,
			credential_fp TEXT NOT NULL,
			outcome       TEXT NOT NULL
		)`,
		`CREATE INDEX idx_decisions_decided_at ON decisions(decided_at)`,
		`CREATE INDEX idx_decisions_outcome ON decisions(outcome)`,
	},
	{
		`CREATE INDEX idx_decisions_property ON decisions(property_id, decided_at)`,
	},
}

// SchemaVersion returns the applied schema version.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// Migrate applies every pending migration, each in its own transaction.
func (db *DB) Migrate() error {
	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("audit schema version %d is newer than this binary (%d)", current, len(migrations))
	}
	for v := current; v < len(migrations); v++ {
		if err := db.apply(v+1, migrations[v]); err != nil {
			return fmt.Errorf("migrating audit schema to v%d: %w", v+1, err)
		}
	}
	return nil
}

func (db *DB) apply(version int, statements []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return err
	}
	return tx.Commit()
}
