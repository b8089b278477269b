package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/reperio/internal/common"
	"github.com/ternarybob/reperio/internal/models"
)

func openTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(common.GetLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "badger"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testSnapshot(agentKey string) *models.TenantSnapshot {
	return &models.TenantSnapshot{
		AgentKey: agentKey,
		Documents: []models.SnapshotDocument{
			{SourceID: "doc1", RawText: "cats are great pets"},
			{SourceID: "doc2", RawText: "dogs are loyal animals"},
		},
		UpdatedAt: time.Now().UTC(),
	}
}

func TestSaveAndLoadAll(t *testing.T) {
	db := openTestDB(t)
	store := NewSnapshotStorage(db, common.GetLogger())

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testSnapshot("agent-a")))
	require.NoError(t, store.Save(ctx, testSnapshot("agent-b")))

	snapshots, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	keys := map[string]int{}
	for _, s := range snapshots {
		keys[s.AgentKey] = len(s.Documents)
	}
	assert.Equal(t, 2, keys["agent-a"])
	assert.Equal(t, 2, keys["agent-b"])
}

func TestSaveReplacesExistingRecord(t *testing.T) {
	db := openTestDB(t)
	store := NewSnapshotStorage(db, common.GetLogger())

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testSnapshot("agent-a")))

	updated := testSnapshot("agent-a")
	updated.Documents = append(updated.Documents, models.SnapshotDocument{
		SourceID: "doc3",
		RawText:  "parrots can mimic speech",
	})
	require.NoError(t, store.Save(ctx, updated))

	snapshots, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Len(t, snapshots[0].Documents, 3)
}

func TestSaveRequiresAgentKey(t *testing.T) {
	db := openTestDB(t)
	store := NewSnapshotStorage(db, common.GetLogger())

	ctx := context.Background()
	assert.Error(t, store.Save(ctx, nil))
	assert.Error(t, store.Save(ctx, &models.TenantSnapshot{}))
}

func TestLoadAllSkipsCorruptRecord(t *testing.T) {
	db := openTestDB(t)
	store := NewSnapshotStorage(db, common.GetLogger())

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testSnapshot("agent-good")))

	// A record whose payload no longer parses must not take down the rest.
	bad := snapshotRecord{AgentKey: "agent-bad", Payload: []byte("{not json")}
	require.NoError(t, db.Store().Upsert(bad.AgentKey, &bad))

	snapshots, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "agent-good", snapshots[0].AgentKey)
}
