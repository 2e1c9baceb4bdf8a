package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations are applied in order; each entry runs once, keyed by name.
var migrations = []struct {
	Name string
	SQL  string
}{
	{
		Name: "0001_jobs",
		SQL: `CREATE TABLE jobs (
			id            TEXT PRIMARY KEY,
			job_type      TEXT NOT NULL,
			state         TEXT NOT NULL DEFAULT 'PENDING',
			text          TEXT NOT NULL,
			font_size     INTEGER NOT NULL,
			input_path    TEXT NOT NULL,
			output_path   TEXT NOT NULL DEFAULT '',
			error_message TEXT,
			progress      INTEGER NOT NULL DEFAULT 0,
			width         INTEGER,
			height        INTEGER,
			duration_secs REAL,
			created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
			started_at    TEXT,
			completed_at  TEXT
		);
		CREATE INDEX idx_jobs_state_created ON jobs(state, created_at);`,
	},
}

func Migrate(database *sql.DB) error {
	_, err := database.Exec(`CREATE TABLE IF NOT EXISTS _migrations (
		name       TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := database.QueryRow("SELECT COUNT(*) FROM _migrations WHERE name = ?", m.Name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", m.Name, err)
		}
		if count > 0 {
			continue
		}

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", m.Name, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO _migrations (name) VALUES (?)", m.Name); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.Name, err)
		}

		slog.Info("applied migration", "name", m.Name)
	}

	return nil
}
