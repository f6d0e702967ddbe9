// internal/storage/database.go
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Driver registration
	migrate "github.com/rubenv/sql-migrate"

	"github.com/Annany2002/flashdeck-backend/config"
	"github.com/Annany2002/flashdeck-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()

	//go:embed migrations/*.sql
	migrationFiles embed.FS
)

// Foreign keys on, WAL for concurrent readers, a 5s busy timeout, and
// BEGIN IMMEDIATE so concurrent writers queue instead of failing on upgrade.
const dsnParams = "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"

// ConnectDB initializes the connection pool for the catalog SQLite database
// and brings its schema up to date.
func ConnectDB(cfg *config.Config) (*sql.DB, error) {
	if err := os.MkdirAll(cfg.DbDir, 0o750); err != nil {
		customLog.Warnf("Storage: Error creating data directory '%s': %v", cfg.DbDir, err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := Open(filepath.Join(cfg.DbDir, cfg.DbFile))
	if err != nil {
		return nil, err
	}

	if _, err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Open opens and pings the SQLite file at dbPath without touching the schema.
func Open(dbPath string) (*sql.DB, error) {
	customLog.Printf("Storage: Opening catalog database: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath+dsnParams)
	if err != nil {
		customLog.Warnf("Storage: Failed to open db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to open catalog db: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to connect to catalog db: %w", err)
	}
	customLog.Println("Storage: Catalog database connection successful.")
	return db, nil
}

// Migrate applies every pending embedded migration and returns how many ran.
func Migrate(db *sql.DB) (int, error) {
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}

	migrate.SetTable("schema_migrations")
	n, err := migrate.Exec(db, "sqlite3", source, migrate.Up)
	if err != nil {
		customLog.Warnf("Storage: Failed to apply migrations: %v", err)
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}
	customLog.Printf("Storage: Applied %d migration(s).", n)
	return n, nil
}
