package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/reperio/internal/common"
	"github.com/ternarybob/reperio/internal/interfaces"
	"github.com/ternarybob/reperio/internal/storage/badger"
	"github.com/ternarybob/reperio/internal/storage/filestore"
)

// NewSnapshotStorage creates a snapshot storage backend based on config
func NewSnapshotStorage(logger arbor.ILogger, config *common.Config) (interfaces.SnapshotStorage, error) {
	switch config.Storage.Type {
	case "", "filestore":
		return filestore.NewSnapshotStorage(config.Storage.Filestore.Dir, logger)
	case "badger":
		db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
		if err != nil {
			return nil, err
		}
		return badger.NewSnapshotStorage(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: filestore, badger)", config.Storage.Type)
	}
}
