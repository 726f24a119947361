package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cityevents/internal/domain"
	"cityevents/pkg/logger"
)

// Snapshotter stores whole serialized collections under a name. Read returns
// nil data and no error when nothing has been stored yet.
type Snapshotter interface {
	Backend() string
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
	Backup(name string) (string, error)
	Close() error
}

// decodeSnapshot reads name into v. It reports false when the snapshot is
// absent or empty. Undecodable data is backed up and reported as
// ErrCorruptSnapshot.
func decodeSnapshot(snap Snapshotter, name string, log logger.Logger, v interface{}) (bool, error) {
	data, err := snap.Read(name)
	if err != nil {
		log.Error("Snapshot could not be read", map[string]interface{}{"name": name, "backend": snap.Backend(), "error": err.Error()})
		return false, fmt.Errorf("snapshot %s could not be read: %w", name, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		log.Info("Snapshot not found, starting empty", map[string]interface{}{"name": name, "backend": snap.Backend()})
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		log.Error("Snapshot could not be decoded", map[string]interface{}{"name": name, "backend": snap.Backend(), "error": err.Error()})

		backup, backupErr := snap.Backup(name)
		if backupErr != nil {
			log.Error("Snapshot backup failed", map[string]interface{}{"name": name, "error": backupErr.Error()})
		} else {
			log.Warn("Corrupt snapshot backed up", map[string]interface{}{"name": name, "backup": backup})
		}
		return false, fmt.Errorf("%w: %s: %v", domain.ErrCorruptSnapshot, name, err)
	}

	return true, nil
}

func encodeSnapshot(snap Snapshotter, name string, log logger.Logger, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error("Snapshot could not be encoded", map[string]interface{}{"name": name, "error": err.Error()})
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if err := snap.Write(name, data); err != nil {
		log.Error("Snapshot could not be written", map[string]interface{}{"name": name, "backend": snap.Backend(), "error": err.Error()})
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return nil
}
