package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/reperio/internal/common"
	"github.com/ternarybob/reperio/internal/models"
)

type mockScraper struct {
	results map[string]*models.ScrapeResult
	err     error
}

func (m *mockScraper) Scrape(ctx context.Context, url string) (*models.ScrapeResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if result, ok := m.results[url]; ok {
		return result, nil
	}
	return &models.ScrapeResult{URL: url, Title: "Page", Content: "content for " + url, Timestamp: time.Now()}, nil
}

type mockRetrieval struct {
	ingested  map[string]string
	ingestErr error
	matched   string
	found     bool
	queryErr  error
}

func (m *mockRetrieval) Ingest(ctx context.Context, agentKey, sourceID, rawText string) error {
	if m.ingestErr != nil {
		return m.ingestErr
	}
	if m.ingested == nil {
		m.ingested = make(map[string]string)
	}
	m.ingested[sourceID] = rawText
	return nil
}

func (m *mockRetrieval) Query(ctx context.Context, agentKey, queryText string, topN int) (string, bool, error) {
	return m.matched, m.found, m.queryErr
}

func (m *mockRetrieval) LoadAll(ctx context.Context) error { return nil }
func (m *mockRetrieval) TenantCount() int                  { return len(m.ingested) }

type mockAnswer struct {
	response string
	err      error
}

func (m *mockAnswer) Answer(ctx context.Context, query, contextText string) (string, error) {
	return m.response, m.err
}

func TestScrapeAndStore(t *testing.T) {
	retrieval := &mockRetrieval{}
	handler := NewScrapeHandler(&mockScraper{}, retrieval, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/scrape", strings.NewReader(`{"urls":"http://a.com, http://b.com"}`))
	rec := httptest.NewRecorder()
	handler.ScrapeAndStore(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScrapeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AgentKey)
	assert.Len(t, resp.Documents, 2)
	assert.Len(t, retrieval.ingested, 2)
	assert.Equal(t, "content for http://a.com", retrieval.ingested["http://a.com"])
}

func TestScrapeAndStoreRequiresURLs(t *testing.T) {
	handler := NewScrapeHandler(&mockScraper{}, &mockRetrieval{}, common.GetLogger())

	for _, body := range []string{`{}`, `{"urls":""}`, `{"urls":" , "}`} {
		req := httptest.NewRequest("POST", "/api/scrape", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ScrapeAndStore(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestScrapeAndStoreFailsOnScrapeError(t *testing.T) {
	handler := NewScrapeHandler(&mockScraper{err: errors.New("connection refused")}, &mockRetrieval{}, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/scrape", strings.NewReader(`{"urls":"http://a.com"}`))
	rec := httptest.NewRecorder()
	handler.ScrapeAndStore(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestScrapeAndStoreRejectsGet(t *testing.T) {
	handler := NewScrapeHandler(&mockScraper{}, &mockRetrieval{}, common.GetLogger())

	req := httptest.NewRequest("GET", "/api/scrape", nil)
	rec := httptest.NewRecorder()
	handler.ScrapeAndStore(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestQuerySearchReturnsAnswer(t *testing.T) {
	retrieval := &mockRetrieval{matched: "dogs are loyal animals", found: true}
	answer := &mockAnswer{response: "Yes, dogs are loyal."}
	handler := NewQueryHandler(retrieval, answer, 1, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"agent_key":"k","user_query":"are dogs loyal"}`))
	rec := httptest.NewRecorder()
	handler.QuerySearch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp QueryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Yes, dogs are loyal.", resp.Response)
	assert.Equal(t, "dogs are loyal animals", resp.Source)
}

func TestQuerySearchFallbackWhenNoMatch(t *testing.T) {
	handler := NewQueryHandler(&mockRetrieval{found: false}, &mockAnswer{}, 1, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"agent_key":"k","user_query":"unrelated"}`))
	rec := httptest.NewRecorder()
	handler.QuerySearch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp QueryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Response, "Fallback")
	assert.Equal(t, "None", resp.NoMatch)
	assert.Empty(t, resp.Source)
}

func TestQuerySearchValidatesRequest(t *testing.T) {
	handler := NewQueryHandler(&mockRetrieval{}, &mockAnswer{}, 1, common.GetLogger())

	for _, body := range []string{`{}`, `{"agent_key":"k"}`, `{"user_query":"q"}`, `not json`} {
		req := httptest.NewRequest("POST", "/api/query", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.QuerySearch(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestQuerySearchAnswerFailure(t *testing.T) {
	retrieval := &mockRetrieval{matched: "context", found: true}
	handler := NewQueryHandler(retrieval, &mockAnswer{err: errors.New("api down")}, 1, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"agent_key":"k","user_query":"q"}`))
	rec := httptest.NewRecorder()
	handler.QuerySearch(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndVersionHandlers(t *testing.T) {
	handler := NewAPIHandler()

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	req = httptest.NewRequest("GET", "/api/version", nil)
	rec = httptest.NewRecorder()
	handler.VersionHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")
}
