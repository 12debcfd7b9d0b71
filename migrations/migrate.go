// Package migrations embeds the goose schema migrations of the client's
// local SQLite database and the reference server's PostgreSQL database.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed client/*.sql server/*.sql
var embedMigrations embed.FS

const (
	clientDir = "client"
	serverDir = "server"
)

// MigrateClient applies the local store schema to a SQLite database.
func MigrateClient(db *sql.DB) error {
	return migrate(db, "sqlite3", clientDir)
}

// MigrateServer applies the reference server schema to a PostgreSQL database
// opened through the pgx stdlib driver.
func MigrateServer(db *sql.DB) error {
	return migrate(db, "pgx", serverDir)
}

func migrate(db *sql.DB, dialect, dir string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
