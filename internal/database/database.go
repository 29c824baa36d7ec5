// internal/database/database.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Config for the database connection.
type Config struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// Connect opens the database, verifies the connection and applies the
// schema migrations.
func Connect(cfg Config) (*sqlx.DB, error) {
	driver, err := driverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == "postgres" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// sqlite serializes writers; a single connection avoids
		// SQLITE_BUSY under concurrent handlers.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Printf("✅ Connected to %s database", cfg.Driver)
	return db, nil
}

func driverName(driver string) (string, error) {
	switch driver {
	case "", "sqlite":
		return "sqlite", nil
	case "postgres":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    owner TEXT NOT NULL,
    due_date TEXT,
    next_step TEXT,
    status TEXT DEFAULT 'open',
    created_at TEXT NOT NULL,
    completed_at TEXT,
    notes TEXT
);

CREATE TABLE IF NOT EXISTS task_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id INTEGER NOT NULL,
    action TEXT NOT NULL,
    details TEXT,
    timestamp TEXT NOT NULL,
    FOREIGN KEY (task_id) REFERENCES tasks (id)
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    owner TEXT NOT NULL,
    due_date TEXT,
    next_step TEXT,
    status TEXT DEFAULT 'open',
    created_at TEXT NOT NULL,
    completed_at TEXT,
    notes TEXT
);

CREATE TABLE IF NOT EXISTS task_history (
    id BIGSERIAL PRIMARY KEY,
    task_id BIGINT NOT NULL REFERENCES tasks (id),
    action TEXT NOT NULL,
    details TEXT,
    timestamp TEXT NOT NULL
);
`

// Migrate creates the base schema and backfills columns added by later
// releases (priority, category) on databases created before them.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "postgres" {
		schema = postgresSchema
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if err := ensureColumn(ctx, db, "priority", "TEXT DEFAULT 'medium'"); err != nil {
		return err
	}
	if err := ensureColumn(ctx, db, "category", "TEXT"); err != nil {
		return err
	}

	return nil
}

func ensureColumn(ctx context.Context, db *sqlx.DB, name, definition string) error {
	if db.DriverName() == "postgres" {
		stmt := fmt.Sprintf("ALTER TABLE tasks ADD COLUMN IF NOT EXISTS %s %s", name, definition)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add tasks.%s column: %w", name, err)
		}
		return nil
	}

	var exists int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM pragma_table_info('tasks') WHERE name = ? LIMIT 1", name).Scan(&exists)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check tasks.%s column: %w", name, err)
	}

	stmt := fmt.Sprintf("ALTER TABLE tasks ADD COLUMN %s %s", name, definition)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("add tasks.%s column: %w", name, err)
	}

	return nil
}
