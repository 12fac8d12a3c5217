package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alimgiray/contribboard/internal/models"
	"github.com/alimgiray/contribboard/pkg/logger"
)

// SnapshotRepository persists snapshots as JSON files under a data directory.
// Each file is written in full via a temp file and rename, so a crash mid-run
// leaves previously persisted snapshots untouched.
type SnapshotRepository struct {
	dataDir string
}

func NewSnapshotRepository(dataDir string) *SnapshotRepository {
	return &SnapshotRepository{dataDir: dataDir}
}

// Save writes a snapshot to <dataDir>/<name>.json atomically
func (r *SnapshotRepository) Save(name string, snapshot *models.Snapshot) error {
	return r.writeJSON(name, snapshot)
}

// Load reads a snapshot from <dataDir>/<name>.json. A missing or unparsable
// file is treated as absence of prior state, not an error: the caller falls
// back to a full fetch.
func (r *SnapshotRepository) Load(name string) (*models.Snapshot, error) {
	data, err := os.ReadFile(r.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		logger.WithError(err).Warnf("Failed to read snapshot %s, treating as absent", name)
		return nil, nil
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		logger.WithError(err).Warnf("Failed to parse snapshot %s, treating as absent", name)
		return nil, nil
	}

	return &snapshot, nil
}

// SaveRecentActivities writes the recent-activity feed
func (r *SnapshotRepository) SaveRecentActivities(feed *models.RecentActivityFeed) error {
	return r.writeJSON("recent-activities", feed)
}

// LoadRecentActivities reads the recent-activity feed, nil if absent
func (r *SnapshotRepository) LoadRecentActivities() (*models.RecentActivityFeed, error) {
	data, err := os.ReadFile(r.path("recent-activities"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var feed models.RecentActivityFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		logger.WithError(err).Warn("Failed to parse recent activities, treating as absent")
		return nil, nil
	}

	return &feed, nil
}

func (r *SnapshotRepository) path(name string) string {
	return filepath.Join(r.dataDir, name+".json")
}

func (r *SnapshotRepository) writeJSON(name string, v interface{}) error {
	if err := os.MkdirAll(r.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(r.dataDir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), r.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to rename temp file for %s: %w", name, err)
	}

	return nil
}
