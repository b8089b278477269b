package interfaces

import (
	"context"

	"github.com/ternarybob/reperio/internal/models"
)

// SnapshotStorage persists one snapshot record per tenant. The lexical index
// is never persisted; it is rebuilt from the snapshot on load.
type SnapshotStorage interface {
	// Save durably writes the tenant snapshot, replacing any previous record
	// for the same agent key.
	Save(ctx context.Context, snapshot *models.TenantSnapshot) error

	// LoadAll returns every persisted tenant snapshot. A single unreadable
	// record is logged and skipped rather than failing the whole load.
	LoadAll(ctx context.Context) ([]*models.TenantSnapshot, error)

	// Close releases the underlying storage.
	Close() error
}
