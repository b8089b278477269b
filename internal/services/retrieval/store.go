package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/reperio/internal/interfaces"
	"github.com/ternarybob/reperio/internal/models"
	"github.com/ternarybob/reperio/internal/services/index"
	"github.com/ternarybob/reperio/internal/services/textnorm"
)

// ErrInvalidInput is returned for empty or unusable text; no state mutates.
var ErrInvalidInput = errors.New("invalid input")

// view is the immutable (documents, index) pair a query reads. A rebuilt pair
// is swapped in atomically so readers observe either the fully-old or
// fully-new state, never a mix.
type view struct {
	docs []models.Document
	ix   *index.Index
}

// tenant holds one agent key's corpus and its current query view. The mutex
// serializes ingest for this tenant only; queries read the view pointer and
// never take the lock.
type tenant struct {
	mu      sync.Mutex
	corpus  *Corpus
	current atomic.Pointer[view]
}

// Store maps agent keys to their corpus and lexical index, coordinates
// incremental updates and full index rebuilds, and keeps durable snapshots in
// sync with the in-memory state.
type Store struct {
	mu        sync.RWMutex
	tenants   map[string]*tenant
	snapshots interfaces.SnapshotStorage
	logger    arbor.ILogger
	separator string
}

// NewStore creates a retrieval store backed by the given snapshot storage.
// separator joins ranked raw texts in query results; empty means a single
// space.
func NewStore(snapshots interfaces.SnapshotStorage, separator string, logger arbor.ILogger) *Store {
	if separator == "" {
		separator = " "
	}
	return &Store{
		tenants:   make(map[string]*tenant),
		snapshots: snapshots,
		logger:    logger,
		separator: separator,
	}
}

// LoadAll reconstructs every persisted tenant and eagerly rebuilds each
// lexical index so the first query never pays a rebuild cost.
func (s *Store) LoadAll(ctx context.Context) error {
	records, err := s.snapshots.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tenant snapshots: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		corpus := corpusFromSnapshot(record)
		t := &tenant{corpus: corpus}
		t.current.Store(&view{
			docs: corpus.Documents(),
			ix:   index.Build(corpus.TokenSequences()),
		})
		s.tenants[record.AgentKey] = t

		s.logger.Debug().
			Str("agent_key", record.AgentKey).
			Int("documents", corpus.Len()).
			Msg("Tenant snapshot loaded")
	}

	s.logger.Info().
		Int("tenants", len(s.tenants)).
		Msg("Retrieval store loaded")

	return nil
}

// Ingest adds or updates one document under agentKey. On a content change the
// tenant's index is rebuilt and its snapshot persisted before Ingest returns;
// re-ingesting identical content is a no-op. Concurrent ingests for the same
// key are serialized; other tenants are unaffected.
func (s *Store) Ingest(ctx context.Context, agentKey, sourceID, rawText string) error {
	if agentKey == "" || sourceID == "" {
		return fmt.Errorf("%w: agent key and source id are required", ErrInvalidInput)
	}
	if strings.TrimSpace(rawText) == "" {
		return fmt.Errorf("%w: raw text is empty", ErrInvalidInput)
	}

	t := s.tenantFor(agentKey)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.corpus.Upsert(sourceID, rawText) == Unchanged {
		s.logger.Debug().
			Str("agent_key", agentKey).
			Str("source_id", sourceID).
			Msg("Ingest unchanged, skipping rebuild")
		return nil
	}

	// Rebuild from scratch; a failure here must leave the previous view
	// intact, so the swap happens only after the build succeeds.
	docs := t.corpus.Documents()
	ix := index.Build(t.corpus.TokenSequences())

	snapshot := t.corpus.Snapshot(agentKey)
	snapshot.UpdatedAt = time.Now()

	t.current.Store(&view{docs: docs, ix: ix})

	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		// The in-memory mutation stands but will not survive a restart; the
		// caller must see the failure rather than a silent success.
		s.logger.Error().
			Err(err).
			Str("agent_key", agentKey).
			Str("source_id", sourceID).
			Msg("Snapshot write failed after ingest")
		return fmt.Errorf("failed to persist tenant snapshot: %w", err)
	}

	s.logger.Info().
		Str("agent_key", agentKey).
		Str("source_id", sourceID).
		Int("documents", len(docs)).
		Msg("Document ingested")

	return nil
}

// Query normalizes queryText, scores it against agentKey's current index and
// returns the top-N original raw texts joined in rank order. The second
// return is false on no match: unknown key, empty corpus, empty query after
// normalization, or zero similarity everywhere. Queries never take the
// per-tenant ingest lock.
func (s *Store) Query(ctx context.Context, agentKey, queryText string, topN int) (string, bool, error) {
	if strings.TrimSpace(queryText) == "" {
		return "", false, fmt.Errorf("%w: query text is empty", ErrInvalidInput)
	}

	s.mu.RLock()
	t, ok := s.tenants[agentKey]
	s.mu.RUnlock()
	if !ok {
		// Unknown tenant is not an error; it behaves like an empty corpus.
		return "", false, nil
	}

	v := t.current.Load()
	if v == nil || len(v.docs) == 0 {
		return "", false, nil
	}

	matches := v.ix.Score(textnorm.Normalize(queryText), topN)
	if len(matches) == 0 {
		return "", false, nil
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = v.docs[m.Position].RawText
	}

	s.logger.Debug().
		Str("agent_key", agentKey).
		Int("matches", len(matches)).
		Float64("top_similarity", matches[0].Similarity).
		Msg("Query matched")

	return strings.Join(texts, s.separator), true, nil
}

// TenantCount reports the number of loaded tenants.
func (s *Store) TenantCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tenants)
}

// tenantFor returns the tenant for agentKey, allocating an empty one on
// first ingest.
func (s *Store) tenantFor(agentKey string) *tenant {
	s.mu.RLock()
	t, ok := s.tenants[agentKey]
	s.mu.RUnlock()
	if ok {
		return t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok = s.tenants[agentKey]; ok {
		return t
	}
	t = &tenant{corpus: NewCorpus()}
	s.tenants[agentKey] = t
	return t
}
