package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/reperio/internal/common"
	"github.com/ternarybob/reperio/internal/models"
)

// memorySnapshots is an in-memory SnapshotStorage for store tests.
type memorySnapshots struct {
	mu      sync.Mutex
	records map[string]*models.TenantSnapshot
	saveErr error
	saves   int
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{records: make(map[string]*models.TenantSnapshot)}
}

func (m *memorySnapshots) Save(ctx context.Context, snapshot *models.TenantSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[snapshot.AgentKey] = snapshot
	m.saves++
	return nil
}

func (m *memorySnapshots) LoadAll(ctx context.Context) ([]*models.TenantSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.TenantSnapshot, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *memorySnapshots) Close() error { return nil }

func (m *memorySnapshots) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func newTestStore(t *testing.T) (*Store, *memorySnapshots) {
	t.Helper()
	snapshots := newMemorySnapshots()
	return NewStore(snapshots, " ", common.GetLogger()), snapshots
}

func TestIngestAndQueryRanking(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ingest(ctx, "K", "doc1", "cats are great pets"))
	require.NoError(t, store.Ingest(ctx, "K", "doc2", "dogs are loyal animals"))

	result, ok, err := store.Query(ctx, "K", "loyal dog", 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dogs are loyal animals", result)
}

func TestQueryNoVocabularyOverlap(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ingest(ctx, "K", "doc1", "quantum physics research"))

	_, ok, err := store.Query(ctx, "K", "banana recipe", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueryUnknownTenant(t *testing.T) {
	store, _ := newTestStore(t)

	result, ok, err := store.Query(context.Background(), "nonexistent-key", "anything", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, result)
}

func TestQueryTopNJoinsInRankOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ingest(ctx, "K", "a", "rivers flow to the sea"))
	require.NoError(t, store.Ingest(ctx, "K", "b", "mountains rise above valleys"))
	require.NoError(t, store.Ingest(ctx, "K", "c", "the sea is salty"))

	result, ok, err := store.Query(ctx, "K", "salty sea", 2)
	require.NoError(t, err)
	require.True(t, ok)
	// Best match first, second match appended with the separator.
	assert.Equal(t, "the sea is salty rivers flow to the sea", result)
}

func TestIngestIdempotence(t *testing.T) {
	store, snapshots := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ingest(ctx, "K", "doc", "stable content"))
	first := snapshots.saveCount()

	require.NoError(t, store.Ingest(ctx, "K", "doc", "stable content"))
	assert.Equal(t, first, snapshots.saveCount(), "identical re-ingest must not persist")
}

func TestIngestUpdateReflectedInNextQuery(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ingest(ctx, "K", "doc", "original topic alpha"))
	require.NoError(t, store.Ingest(ctx, "K", "doc", "replacement topic zebra"))

	result, ok, err := store.Query(ctx, "K", "zebra", 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "replacement topic zebra", result)

	// The stale content is gone entirely.
	_, ok, err = store.Query(ctx, "K", "alpha", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIngestInvalidInput(t *testing.T) {
	store, snapshots := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.Ingest(ctx, "K", "doc", "   "), ErrInvalidInput)
	assert.ErrorIs(t, store.Ingest(ctx, "", "doc", "text"), ErrInvalidInput)
	assert.ErrorIs(t, store.Ingest(ctx, "K", "", "text"), ErrInvalidInput)
	assert.Equal(t, 0, snapshots.saveCount())

	_, _, err := store.Query(ctx, "K", "  ", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIngestSurfacesPersistenceFailure(t *testing.T) {
	store, snapshots := newTestStore(t)
	ctx := context.Background()

	snapshots.saveErr = errors.New("disk full")
	err := store.Ingest(ctx, "K", "doc", "some content")
	require.Error(t, err)

	// The in-memory mutation stands and stays queryable; only durability
	// failed.
	result, ok, qerr := store.Query(ctx, "K", "content", 1)
	require.NoError(t, qerr)
	assert.True(t, ok)
	assert.Equal(t, "some content", result)
}

func TestPersistenceRoundTrip(t *testing.T) {
	snapshots := newMemorySnapshots()
	store := NewStore(snapshots, " ", common.GetLogger())
	ctx := context.Background()

	require.NoError(t, store.Ingest(ctx, "K", "doc1", "cats are great pets"))
	require.NoError(t, store.Ingest(ctx, "K", "doc2", "dogs are loyal animals"))

	before, ok, err := store.Query(ctx, "K", "loyal dog", 1)
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate a process restart against the same durable storage.
	reloaded := NewStore(snapshots, " ", common.GetLogger())
	require.NoError(t, reloaded.LoadAll(ctx))
	require.Equal(t, 1, reloaded.TenantCount())

	after, ok, err := reloaded.Query(ctx, "K", "loyal dog", 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestConcurrentIngestSameTenant(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Each document carries a distinct alphabetic marker word. Digits would
	// be stripped by normalization, leaving the documents indistinguishable.
	marker := func(i int) string {
		return fmt.Sprintf("topic%c%c", 'a'+i/26, 'a'+i%26)
	}

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Ingest(ctx, "K", fmt.Sprintf("doc-%d", i), fmt.Sprintf("a passage about %s entirely", marker(i)))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// No lost updates: all n documents made it into the corpus and each one
	// is retrievable by its marker.
	require.Equal(t, n, store.tenants["K"].corpus.Len())
	for i := 0; i < n; i++ {
		result, ok, err := store.Query(ctx, "K", marker(i), 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("a passage about %s entirely", marker(i)), result)
	}
}

func TestConcurrentQueriesDuringIngest(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ingest(ctx, "K", "seed", "seed document about oceans"))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = store.Ingest(ctx, "K", fmt.Sprintf("doc-%d", i), fmt.Sprintf("filler text %d", i))
		}
		close(stop)
	}()

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				// Must always succeed against a consistent view.
				result, ok, err := store.Query(ctx, "K", "oceans", 1)
				if err != nil {
					t.Errorf("query failed mid-ingest: %v", err)
					return
				}
				if ok && result != "seed document about oceans" {
					t.Errorf("query observed inconsistent view: %q", result)
					return
				}
			}
		}()
	}

	wg.Wait()
}

func TestTenantsAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ingest(ctx, "tenant-a", "doc", "alpha content for tenant a"))
	require.NoError(t, store.Ingest(ctx, "tenant-b", "doc", "beta content for tenant b"))

	result, ok, err := store.Query(ctx, "tenant-a", "beta", 1)
	require.NoError(t, err)
	assert.False(t, ok, "tenant-a must not see tenant-b documents")
	assert.Empty(t, result)
}
