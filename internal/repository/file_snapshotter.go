package repository

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"cityevents/pkg/logger"
	"cityevents/pkg/metrics"
)

const fileBackend = "file"

// FileSnapshotter keeps one file per snapshot name inside dir. Writes go to a
// temporary file that is renamed over the target.
type FileSnapshotter struct {
	dir    string
	logger logger.Logger
	now    func() time.Time
}

func NewFileSnapshotter(dir string, logger logger.Logger) (*FileSnapshotter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("data directory could not be created: %w", err)
	}

	return &FileSnapshotter{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *FileSnapshotter) Backend() string {
	return fileBackend
}

func (s *FileSnapshotter) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileSnapshotter) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FileSnapshotter) Write(name string, data []byte) (err error) {
	started := time.Now()
	defer func() {
		metrics.RecordSnapshotWrite(fileBackend, name, time.Since(started), err)
	}()

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("temporary snapshot could not be created: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot could not be written: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot could not be synced: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("snapshot could not be closed: %w", err)
	}
	if err = os.Rename(tmpPath, s.Path(name)); err != nil {
		return fmt.Errorf("snapshot could not be replaced: %w", err)
	}

	s.logger.Debug("Snapshot written", map[string]interface{}{"name": name, "bytes": len(data)})
	return nil
}

// Backup copies the current snapshot to <name>.backup.<unix millis> and
// returns the backup path.
func (s *FileSnapshotter) Backup(name string) (string, error) {
	src, err := os.Open(s.Path(name))
	if err != nil {
		return "", err
	}
	defer src.Close()

	backupPath := s.Path(fmt.Sprintf("%s.backup.%d", name, s.now().UnixMilli()))
	dst, err := os.OpenFile(backupPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	return backupPath, nil
}

func (s *FileSnapshotter) Close() error {
	return nil
}
