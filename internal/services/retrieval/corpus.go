package retrieval

import (
	"github.com/ternarybob/reperio/internal/models"
	"github.com/ternarybob/reperio/internal/services/textnorm"
)

// UpsertResult reports whether an upsert mutated the corpus. A Changed result
// obligates the caller to rebuild the lexical index and persist a snapshot
// before the tenant is considered consistent again.
type UpsertResult int

const (
	Unchanged UpsertResult = iota
	Changed
)

// Corpus is one tenant's insertion-ordered document collection with at most
// one document per source ID. Positions are stable once assigned; content
// updates replace in place.
type Corpus struct {
	docs      []models.Document
	positions map[string]int
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		positions: make(map[string]int),
	}
}

// Upsert inserts or replaces the document for sourceID. A new source appends;
// an existing source with byte-identical raw text is a no-op; an existing
// source with different raw text is replaced in place, keeping its position.
func (c *Corpus) Upsert(sourceID, rawText string) UpsertResult {
	if pos, ok := c.positions[sourceID]; ok {
		if c.docs[pos].RawText == rawText {
			return Unchanged
		}
		c.docs[pos].RawText = rawText
		c.docs[pos].Tokens = textnorm.Normalize(rawText)
		return Changed
	}

	c.positions[sourceID] = len(c.docs)
	c.docs = append(c.docs, models.Document{
		SourceID: sourceID,
		RawText:  rawText,
		Tokens:   textnorm.Normalize(rawText),
	})
	return Changed
}

// Documents returns a copy of the corpus in insertion order. The copy is safe
// to hold across later mutations.
func (c *Corpus) Documents() []models.Document {
	out := make([]models.Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// TokenSequences returns each document's normalized tokens in corpus order,
// the row basis for an index build.
func (c *Corpus) TokenSequences() [][]string {
	out := make([][]string, len(c.docs))
	for i := range c.docs {
		out[i] = c.docs[i].Tokens
	}
	return out
}

// Len reports the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Snapshot captures the corpus as a durable record for agentKey.
func (c *Corpus) Snapshot(agentKey string) *models.TenantSnapshot {
	docs := make([]models.SnapshotDocument, len(c.docs))
	for i, d := range c.docs {
		docs[i] = models.SnapshotDocument{SourceID: d.SourceID, RawText: d.RawText}
	}
	return &models.TenantSnapshot{AgentKey: agentKey, Documents: docs}
}

// corpusFromSnapshot reconstructs a corpus verbatim, re-deriving tokens.
func corpusFromSnapshot(snapshot *models.TenantSnapshot) *Corpus {
	c := NewCorpus()
	for _, d := range snapshot.Documents {
		c.Upsert(d.SourceID, d.RawText)
	}
	return c
}
