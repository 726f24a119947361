package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"cityevents/pkg/logger"
)

type Migration struct {
	ID        int64
	Name      string
	AppliedAt time.Time
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("database directory could not be created: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("database could not be opened: %w", err)
	}

	// SQLite serializes writers; one connection keeps the snapshot writes ordered.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database could not be reached: %w", err)
	}

	return db, nil
}

type MigrationService struct {
	db     *sql.DB
	logger logger.Logger
}

func NewMigrationService(db *sql.DB, logger logger.Logger) *MigrationService {
	return &MigrationService{
		db:     db,
		logger: logger,
	}
}

func (m *MigrationService) InitMigrationTable() error {
	query := `
    CREATE TABLE IF NOT EXISTS migrations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL UNIQUE,
        applied_at TIMESTAMP NOT NULL
    )
    `

	_, err := m.db.Exec(query)
	if err != nil {
		m.logger.Error("Migration table could not be created", map[string]interface{}{"error": err.Error()})
		return err
	}

	return nil
}

func (m *MigrationService) IsMigrationApplied(name string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM migrations WHERE name = ?"
	err := m.db.QueryRow(query, name).Scan(&count)
	if err != nil {
		m.logger.Error("Migration state could not be checked", map[string]interface{}{"name": name, "error": err.Error()})
		return false, err
	}

	return count > 0, nil
}

func (m *MigrationService) ApplyMigration(name string, migrationFunc func(*sql.Tx) error) (err error) {
	applied, err := m.IsMigrationApplied(name)
	if err != nil {
		return err
	}

	if applied {
		m.logger.Debug("Migration already applied", map[string]interface{}{"name": name})
		return nil
	}

	m.logger.Info("Applying migration", map[string]interface{}{"name": name})

	tx, err := m.db.Begin()
	if err != nil {
		m.logger.Error("Transaction could not be started", map[string]interface{}{"error": err.Error()})
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			m.logger.Error("Migration rolled back", map[string]interface{}{"name": name, "error": err.Error()})
		}
	}()

	if err = migrationFunc(tx); err != nil {
		return err
	}

	if _, err = tx.Exec("INSERT INTO migrations (name, applied_at) VALUES (?, ?)", name, time.Now()); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	m.logger.Info("Migration applied", map[string]interface{}{"name": name})
	return nil
}

func (m *MigrationService) RunMigrations() error {
	if err := m.InitMigrationTable(); err != nil {
		return fmt.Errorf("migration table could not be created: %w", err)
	}

	migrations := []struct {
		Name string
		Func func(*sql.Tx) error
	}{
		{"create_snapshots_table", CreateSnapshotsTable},
	}

	for _, migration := range migrations {
		if err := m.ApplyMigration(migration.Name, migration.Func); err != nil {
			return fmt.Errorf("migration %s could not be applied: %w", migration.Name, err)
		}
	}

	return nil
}

func CreateSnapshotsTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS snapshots (
        name TEXT PRIMARY KEY,
        data BLOB NOT NULL,
        saved_at TIMESTAMP NOT NULL
    )
    `

	_, err := tx.Exec(query)
	return err
}
