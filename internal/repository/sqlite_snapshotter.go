package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cityevents/pkg/logger"
	"cityevents/pkg/metrics"
)

const sqliteBackend = "sqlite"

// SQLiteSnapshotter keeps every snapshot as one row of the snapshots table.
// The table is created by database.MigrationService.
type SQLiteSnapshotter struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewSQLiteSnapshotter(db *sql.DB, logger logger.Logger) *SQLiteSnapshotter {
	return &SQLiteSnapshotter{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *SQLiteSnapshotter) Backend() string {
	return sqliteBackend
}

func (s *SQLiteSnapshotter) Read(name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM snapshots WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot could not be queried: %w", err)
	}
	return data, nil
}

func (s *SQLiteSnapshotter) Write(name string, data []byte) (err error) {
	started := time.Now()
	defer func() {
		metrics.RecordSnapshotWrite(sqliteBackend, name, time.Since(started), err)
	}()

	query := `
		INSERT INTO snapshots (name, data, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at
	`

	if _, err = s.db.Exec(query, name, data, s.now()); err != nil {
		return fmt.Errorf("snapshot could not be stored: %w", err)
	}

	s.logger.Debug("Snapshot written", map[string]interface{}{"name": name, "bytes": len(data)})
	return nil
}

// Backup copies the row to <name>.backup.<unix millis> and returns that name.
func (s *SQLiteSnapshotter) Backup(name string) (string, error) {
	now := s.now()
	backupName := fmt.Sprintf("%s.backup.%d", name, now.UnixMilli())

	query := `
		INSERT INTO snapshots (name, data, saved_at)
		SELECT ?, data, ? FROM snapshots WHERE name = ?
	`

	res, err := s.db.Exec(query, backupName, now, name)
	if err != nil {
		return "", fmt.Errorf("snapshot backup failed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", fmt.Errorf("snapshot %s not found", name)
	}

	return backupName, nil
}

func (s *SQLiteSnapshotter) Close() error {
	return s.db.Close()
}
