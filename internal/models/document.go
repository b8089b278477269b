package models

import "time"

// Document is a single ingested text for one tenant. RawText is returned
// verbatim at query time; Tokens is derived by the normalizer and is never
// persisted or hand-edited.
type Document struct {
	SourceID string   `json:"source_id"`
	RawText  string   `json:"raw_text"`
	Tokens   []string `json:"-"`
}

// SnapshotDocument is the persisted form of a Document. Tokens are always
// rebuilt from RawText on load, so only the source pair is stored.
type SnapshotDocument struct {
	SourceID string `json:"source_id"`
	RawText  string `json:"raw_text"`
}

// TenantSnapshot is the durable record for one agent key: the ordered
// (source_id, raw_text) pairs sufficient to reconstruct the corpus and
// rebuild its lexical index.
type TenantSnapshot struct {
	AgentKey  string             `json:"agent_key"`
	Documents []SnapshotDocument `json:"documents"`
	UpdatedAt time.Time          `json:"updated_at"`
}
