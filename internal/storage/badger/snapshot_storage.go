package badger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/reperio/internal/interfaces"
	"github.com/ternarybob/reperio/internal/models"
)

// snapshotRecord is the stored form of a TenantSnapshot. The snapshot body is
// kept as a JSON payload so each tenant decodes independently and a corrupt
// record can be skipped on load without losing the rest.
type snapshotRecord struct {
	AgentKey string `badgerhold:"key"`
	Payload  []byte
}

// SnapshotStorage persists one TenantSnapshot record per agent key in Badger.
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

// Save inserts or replaces the snapshot for its agent key
func (s *SnapshotStorage) Save(ctx context.Context, snapshot *models.TenantSnapshot) error {
	if snapshot == nil || snapshot.AgentKey == "" {
		return fmt.Errorf("snapshot must have an agent key")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode tenant snapshot: %w", err)
	}

	record := snapshotRecord{AgentKey: snapshot.AgentKey, Payload: payload}
	if err := s.db.Store().Upsert(record.AgentKey, &record); err != nil {
		return fmt.Errorf("failed to upsert tenant snapshot: %w", err)
	}

	s.logger.Debug().
		Str("agent_key", snapshot.AgentKey).
		Int("documents", len(snapshot.Documents)).
		Msg("Tenant snapshot persisted")

	return nil
}

// LoadAll returns every persisted tenant snapshot. An undecodable or
// inconsistent record is logged and skipped rather than failing the load.
func (s *SnapshotStorage) LoadAll(ctx context.Context) ([]*models.TenantSnapshot, error) {
	var records []snapshotRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to load tenant snapshots: %w", err)
	}

	snapshots := make([]*models.TenantSnapshot, 0, len(records))
	for i := range records {
		var snapshot models.TenantSnapshot
		if err := json.Unmarshal(records[i].Payload, &snapshot); err != nil {
			s.logger.Warn().
				Err(err).
				Str("agent_key", records[i].AgentKey).
				Msg("Skipping corrupt tenant snapshot")
			continue
		}
		if snapshot.AgentKey == "" {
			s.logger.Warn().
				Str("agent_key", records[i].AgentKey).
				Msg("Skipping tenant snapshot with no agent key")
			continue
		}
		snapshots = append(snapshots, &snapshot)
	}

	s.logger.Debug().Int("count", len(snapshots)).Msg("Loaded tenant snapshots")
	return snapshots, nil
}

// Close closes the underlying database connection
func (s *SnapshotStorage) Close() error {
	return s.db.Close()
}
