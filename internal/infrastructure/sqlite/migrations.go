package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/jmoiron/sqlx"
)

// Migration is one schema step, identified by a semantic version.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all schema migrations in order.
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS customers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    street TEXT NOT NULL DEFAULT '',
    number INTEGER NOT NULL DEFAULT 0,
    zip TEXT NOT NULL DEFAULT '',
    city TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT 0,
    reward_points INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS products (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    price REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL,
    total REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
    id TEXT PRIMARY KEY,
    order_id TEXT NOT NULL,
    product_id TEXT NOT NULL,
    name TEXT NOT NULL,
    price REAL NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    position INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id, position);
`

const migrationV1Down = `
DROP TABLE IF EXISTS order_items;
DROP TABLE IF EXISTS orders;
DROP TABLE IF EXISTS products;
DROP TABLE IF EXISTS customers;
DROP TABLE IF EXISTS schema_version;
`

// CurrentVersion returns the highest applied migration, or 0.0.0.
func CurrentVersion(ctx context.Context, db *sqlx.DB) (*semver.Version, error) {
	current := semver.MustParse("0.0.0")

	var tables []string
	if err := db.SelectContext(ctx, &tables,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'"); err != nil {
		return nil, fmt.Errorf("check schema_version table: %w", err)
	}
	if len(tables) == 0 {
		return current, nil
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_version"); err != nil {
		return nil, fmt.Errorf("read schema_version: %w", err)
	}
	for _, raw := range applied {
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", raw, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, nil
}

// ApplyMigrations runs every migration newer than the current schema version.
func ApplyMigrations(ctx context.Context, db *sqlx.DB) error {
	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range AllMigrations {
		version, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}
		if !current.LessThan(version) {
			continue
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", migration.Version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", migration.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		current = version
	}
	return nil
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(ctx context.Context, db *sqlx.DB) error {
	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return err
	}

	for i := len(AllMigrations) - 1; i >= 0; i-- {
		migration := AllMigrations[i]
		if migration.Version != current.Original() {
			continue
		}
		if _, err := db.ExecContext(ctx, migration.Down); err != nil {
			return fmt.Errorf("rollback migration %s: %w", migration.Version, err)
		}
		// the first migration drops schema_version itself
		if i > 0 {
			if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
				return fmt.Errorf("remove migration record %s: %w", migration.Version, err)
			}
		}
		return nil
	}
	return fmt.Errorf("migration %s not found", current.Original())
}
