// Package backup snapshots every storage slot into timestamped JSON files and
// restores them, whichever provider holds the data.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/logger"
)

const snapshotVersion = 1

// Source is the slot storage being backed up.
type Source interface {
	Keys() ([]string, error)
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Snapshot is the on-disk backup format
type Snapshot struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Slots     map[string]string `json:"slots"`
}

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager handles backup operations
type Manager struct {
	source    Source
	backupDir string
	now       func() time.Time
}

func NewManager(source Source, backupDir string) *Manager {
	return &Manager{
		source:    source,
		backupDir: backupDir,
		now:       time.Now,
	}
}

func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes a snapshot of every slot and prunes backups beyond MaxBackups
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// createBackup skips rotation when called from a restore, so the safety copy
// never pushes out the backup being restored
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	snapshot, err := m.snapshot()
	if err != nil {
		return "", err
	}

	path, err := m.nextBackupPath(snapshot.CreatedAt)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize backup: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}

	logger.Info("Backup created", "path", path, "slots", len(snapshot.Slots))
	return path, nil
}

func (m *Manager) snapshot() (Snapshot, error) {
	keys, err := m.source.Keys()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list slots: %w", err)
	}

	s := Snapshot{
		Version:   snapshotVersion,
		CreatedAt: m.now().UTC(),
		Slots:     make(map[string]string, len(keys)),
	}
	for _, key := range keys {
		value, err := m.source.Get(key)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to read slot %s: %w", key, err)
		}
		s.Slots[key] = string(value)
	}
	return s, nil
}

// nextBackupPath uses minute precision, then seconds, then a counter to stay unique
func (m *Manager) nextBackupPath(at time.Time) (string, error) {
	name := func(stamp string) string {
		return filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)
	}
	exists := func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	path := name(at.Format("20060102-1504"))
	if !exists(path) {
		return path, nil
	}

	stamp := at.Format("20060102-150405")
	path = name(stamp)
	for counter := 1; exists(path); counter++ {
		if counter > 100 {
			return "", errors.New("failed to generate unique backup filename")
		}
		path = name(fmt.Sprintf("%s-%d", stamp, counter))
	}
	return path, nil
}

// ListBackups returns all backups, newest first
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		timestamp, ok := parseBackupName(entry.Name())
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseBackupName reads the timestamp out of foodplannery-YYYYMMDD-HHMM[SS][-N].json
func parseBackupName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	parts := strings.Split(stamp, "-")
	if len(parts) == 3 {
		stamp = parts[0] + "-" + parts[1]
	}

	for _, layout := range []string{"20060102-1504", "20060102-150405"} {
		if t, err := time.Parse(layout, stamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// ReadBackup loads and checks a snapshot file
func ReadBackup(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("backup file does not exist: %s", path)
		}
		return Snapshot{}, fmt.Errorf("failed to read backup: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}
	if s.Version < 1 || s.Version > snapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported backup version %d", s.Version)
	}
	if s.Slots == nil {
		s.Slots = map[string]string{}
	}
	return s, nil
}

// RestoreBackup replaces every slot with the snapshot's contents. The current
// state is backed up first and slots absent from the snapshot are removed.
// It returns the path of that safety backup.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	snapshot, err := ReadBackup(backupPath)
	if err != nil {
		return "", err
	}

	safety, err := m.createBackup(true)
	if err != nil {
		return "", fmt.Errorf("failed to backup current data before restore: %w", err)
	}

	keys, err := m.source.Keys()
	if err != nil {
		return safety, fmt.Errorf("failed to list slots: %w", err)
	}
	for _, key := range keys {
		if _, keep := snapshot.Slots[key]; keep {
			continue
		}
		if err := m.source.Delete(key); err != nil {
			return safety, fmt.Errorf("failed to clear slot %s: %w", key, err)
		}
	}

	restored := make([]string, 0, len(snapshot.Slots))
	for key := range snapshot.Slots {
		restored = append(restored, key)
	}
	sort.Strings(restored)
	for _, key := range restored {
		if err := m.source.Set(key, []byte(snapshot.Slots[key])); err != nil {
			return safety, fmt.Errorf("failed to restore slot %s: %w", key, err)
		}
	}

	logger.Info("Backup restored", "path", backupPath, "safety_backup", safety)
	return safety, nil
}
