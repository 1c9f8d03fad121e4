package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrate runs database migrations
func (s *SQLiteDB) migrate() error {
	ctx := context.Background()

	// Create migrations table
	if err := s.createMigrationsTable(ctx); err != nil {
		return err
	}

	// Run migrations
	migrations := []migration{
		{version: 1, name: "initial_schema", up: migrateV1},
		{version: 2, name: "decision_maker_contact_fields", up: migrateV2},
		{version: 3, name: "company_run_tracking", up: migrateV3},
		{version: 4, name: "job_verification_status", up: migrateV4},
	}

	for _, m := range migrations {
		if err := s.runMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
	}

	return nil
}

type migration struct {
	version int
	name    string
	up      func(context.Context, *sql.Tx) error
}

func (s *SQLiteDB) createMigrationsTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *SQLiteDB) runMigration(ctx context.Context, m migration) error {
	// Check if migration already applied
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version).Scan(&count)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil // Already applied
	}

	// Start transaction
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Run migration
	if err := m.up(ctx, tx); err != nil {
		return err
	}

	// Record migration
	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, strftime('%s', 'now'))",
		m.version, m.name)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// migrateV1 creates the initial schema
func migrateV1(ctx context.Context, tx *sql.Tx) error {
	queries := []string{
		// Companies keyed by normalized domain
		`CREATE TABLE IF NOT EXISTS companies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			domain TEXT NOT NULL UNIQUE,
			website TEXT,
			industry TEXT,
			keywords TEXT,
			technologies TEXT,
			employee_count INTEGER,
			ats_provider TEXT,
			ats_board_token TEXT,
			careers_page_url TEXT,
			last_checked_at TIMESTAMP,
			urgency_score INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Jobs, one row per (company, external id)
		`CREATE TABLE IF NOT EXISTS jobs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id INTEGER NOT NULL,
			external_id TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT,
			department TEXT,
			location TEXT,
			description TEXT,
			job_url TEXT,
			posting_date TIMESTAMP,
			discovered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN DEFAULT 1,
			relevance_score REAL DEFAULT 0,
			UNIQUE(company_id, external_id),
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE RESTRICT
		)`,

		// Per-company audit row written once per run
		`CREATE TABLE IF NOT EXISTS run_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			run_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			company_id INTEGER NOT NULL,
			jobs_found INTEGER DEFAULT 0,
			new_jobs INTEGER DEFAULT 0,
			removed_jobs INTEGER DEFAULT 0,
			status TEXT,
			error_message TEXT,
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE RESTRICT
		)`,

		// Job state transitions
		`CREATE TABLE IF NOT EXISTS job_changes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id INTEGER NOT NULL,
			run_id TEXT NOT NULL,
			change_type TEXT NOT NULL,
			changed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE RESTRICT
		)`,

		// Detection cache, one row per domain
		`CREATE TABLE IF NOT EXISTS ats_cache (
			domain TEXT PRIMARY KEY,
			ats_provider TEXT NOT NULL,
			board_token TEXT,
			detected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			expires_at TIMESTAMP NOT NULL
		)`,

		// At most one contact per company
		`CREATE TABLE IF NOT EXISTS decision_makers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id INTEGER NOT NULL UNIQUE,
			person_name TEXT NOT NULL,
			title TEXT,
			source_url TEXT,
			confidence TEXT,
			looked_up_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE RESTRICT
		)`,

		// Source-level dedup markers
		`CREATE TABLE IF NOT EXISTS seen_companies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			domain TEXT NOT NULL UNIQUE,
			company_name TEXT,
			github_listing_date TEXT,
			run_id TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_active ON jobs(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_relevance ON jobs(relevance_score)`,
		`CREATE INDEX IF NOT EXISTS idx_changes_run ON job_changes(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_companies_domain ON companies(domain)`,
		`CREATE INDEX IF NOT EXISTS idx_dm_company ON decision_makers(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_seen_domain ON seen_companies(domain)`,
	}

	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
		}
	}

	return nil
}

// migrateV2 adds contact fields populated by the email lookup pass
func migrateV2(ctx context.Context, tx *sql.Tx) error {
	return addColumns(ctx, tx, "decision_makers", map[string]string{
		"email":        "TEXT",
		"linkedin_url": "TEXT",
	})
}

// migrateV3 adds run-tracking columns used for resurfacing detection
func migrateV3(ctx context.Context, tx *sql.Tx) error {
	return addColumns(ctx, tx, "companies", map[string]string{
		"first_seen_date": "TEXT",
		"last_csv_date":   "TEXT",
		"current_run_id":  "TEXT",
	})
}

// migrateV4 adds the liveness verdict set by the job verifier
func migrateV4(ctx context.Context, tx *sql.Tx) error {
	return addColumns(ctx, tx, "jobs", map[string]string{
		"verification_status": "TEXT DEFAULT 'unverified'",
	})
}

// addColumns applies ALTER TABLE ADD COLUMN for each column that does
// not already exist, sniffed via PRAGMA table_info.
func addColumns(ctx context.Context, tx *sql.Tx, table string, columns map[string]string) error {
	existing, err := tableColumns(ctx, tx, table)
	if err != nil {
		return err
	}

	for name, definition := range columns {
		if existing[name] {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, name, definition)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", table, name, err)
		}
	}

	return nil
}

func tableColumns(ctx context.Context, tx *sql.Tx, table string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
