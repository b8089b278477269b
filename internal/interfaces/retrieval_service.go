package interfaces

import "context"

// RetrievalService owns the agent key -> (corpus, index) mapping and exposes
// the ingest/query operations the service layer calls.
type RetrievalService interface {
	// Ingest adds or updates one document under the given agent key. A first
	// ingest for a new key allocates an empty tenant. Re-ingesting identical
	// content is a no-op; changed content triggers an index rebuild and a
	// snapshot write before Ingest returns.
	Ingest(ctx context.Context, agentKey, sourceID, rawText string) error

	// Query ranks the tenant's documents against queryText and returns the
	// original raw text of the top-N matches joined in rank order. The second
	// return is false when there is no match: unknown agent key, empty
	// corpus, or zero similarity for every document. topN <= 0 means 1.
	Query(ctx context.Context, agentKey, queryText string, topN int) (string, bool, error)

	// LoadAll reconstructs every persisted tenant and eagerly rebuilds each
	// lexical index. Called once at startup.
	LoadAll(ctx context.Context) error

	// TenantCount reports the number of loaded tenants.
	TenantCount() int
}
