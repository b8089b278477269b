package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/reperio/internal/interfaces"
	"github.com/ternarybob/reperio/internal/models"
)

// SnapshotStorage persists each tenant snapshot as a JSON file named after
// its agent key. Writes go through a temp file and rename so a crash
// mid-write never leaves a truncated snapshot behind.
type SnapshotStorage struct {
	dir    string
	logger arbor.ILogger
}

// NewSnapshotStorage creates a file-backed snapshot store rooted at dir
func NewSnapshotStorage(dir string, logger arbor.ILogger) (interfaces.SnapshotStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("filestore directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create filestore directory: %w", err)
	}

	logger.Debug().Str("dir", dir).Msg("Filestore snapshot storage initialized")

	return &SnapshotStorage{
		dir:    dir,
		logger: logger,
	}, nil
}

func (s *SnapshotStorage) path(agentKey string) string {
	return filepath.Join(s.dir, agentKey+".json")
}

// Save writes the snapshot atomically to <dir>/<agent_key>.json
func (s *SnapshotStorage) Save(ctx context.Context, snapshot *models.TenantSnapshot) error {
	if snapshot == nil || snapshot.AgentKey == "" {
		return fmt.Errorf("snapshot must have an agent key")
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tenant snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, snapshot.AgentKey+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(snapshot.AgentKey)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	s.logger.Debug().
		Str("agent_key", snapshot.AgentKey).
		Int("documents", len(snapshot.Documents)).
		Msg("Tenant snapshot persisted")

	return nil
}

// LoadAll reads every *.json snapshot in the directory. Files that fail to
// parse are skipped with a warning so one corrupt tenant cannot block
// startup for the rest.
func (s *SnapshotStorage) LoadAll(ctx context.Context) ([]*models.TenantSnapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read filestore directory: %w", err)
	}

	var snapshots []*models.TenantSnapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", path).Msg("Skipping unreadable tenant snapshot")
			continue
		}

		var snapshot models.TenantSnapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			s.logger.Warn().Err(err).Str("file", path).Msg("Skipping corrupt tenant snapshot")
			continue
		}
		if snapshot.AgentKey == "" {
			s.logger.Warn().Str("file", path).Msg("Skipping tenant snapshot with empty agent key")
			continue
		}

		snapshots = append(snapshots, &snapshot)
	}

	s.logger.Debug().Int("count", len(snapshots)).Msg("Loaded tenant snapshots")
	return snapshots, nil
}

// Close is a no-op for the file-backed store
func (s *SnapshotStorage) Close() error {
	return nil
}
