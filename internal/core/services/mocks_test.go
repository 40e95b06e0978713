package services

import (
	"context"
	"sync"
	"time"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
)

// mockEmbedder returns deterministic vectors keyed by text length.
type mockEmbedder struct {
	mu          sync.Mutex
	embedCalls  int
	batchCalls  int
	failBatches int           // fail the first N EmbedBatch calls
	batchDelay  time.Duration // slow down EmbedBatch to widen race windows
	embedErr    error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	if m.batchDelay > 0 {
		time.Sleep(m.batchDelay)
	}
	if m.failBatches > 0 {
		m.failBatches--
		return nil, context.DeadlineExceeded
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1, 0}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int                { return 3 }
func (m *mockEmbedder) ModelName() string              { return "mock-embed" }
func (m *mockEmbedder) Ping(ctx context.Context) error { return nil }
func (m *mockEmbedder) Close() error                   { return nil }

// mockStore is an in-memory VectorStore recording call order.
type mockStore struct {
	mu      sync.Mutex
	chunks  []domain.Chunk
	version *domain.IndexVersion
	calls   []string

	searchHits []driven.VectorHit
	searchErr  error
	addErr     error
	versionErr error
}

func (m *mockStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockStore) AddChunks(ctx context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("AddChunks")
	if m.addErr != nil {
		return m.addErr
	}
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *mockStore) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Search")
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.searchHits != nil {
		if len(m.searchHits) > k {
			return m.searchHits[:k], nil
		}
		return m.searchHits, nil
	}
	hits := make([]driven.VectorHit, 0, k)
	for i := 0; i < len(m.chunks) && i < k; i++ {
		hits = append(hits, driven.VectorHit{Chunk: m.chunks[i], Similarity: 1.0 - float64(i)*0.1})
	}
	return hits, nil
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Count")
	return len(m.chunks), nil
}

func (m *mockStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Clear")
	m.chunks = nil
	return nil
}

func (m *mockStore) Version() (*domain.IndexVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Version")
	if m.versionErr != nil {
		return nil, m.versionErr
	}
	return m.version, nil
}

func (m *mockStore) WriteVersion(v domain.IndexVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("WriteVersion")
	m.version = &v
	return nil
}

func (m *mockStore) ClearVersion() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ClearVersion")
	m.version = nil
	return nil
}

func (m *mockStore) Close() error { return nil }

// mockLoader serves a fixed document set.
type mockLoader struct {
	docs []domain.Document
	err  error
}

func (m *mockLoader) Load(ctx context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

// mockRegistry serves a fixed source table.
type mockRegistry struct {
	sources  []domain.FeedSource
	loadErrs []error
	err      error
}

func (m *mockRegistry) Load() ([]domain.FeedSource, []error, error) {
	return m.sources, m.loadErrs, m.err
}

// mockFetcher serves canned items per source name, with optional
// per-source errors and delays.
type mockFetcher struct {
	mu    sync.Mutex
	items map[string][]domain.FeedItem
	errs  map[string]error
	block map[string]bool // block until ctx expires
	calls []string
}

func (m *mockFetcher) Fetch(ctx context.Context, source domain.FeedSource) ([]domain.FeedItem, error) {
	m.mu.Lock()
	m.calls = append(m.calls, source.Name)
	blocked := m.block[source.Name]
	err := m.errs[source.Name]
	items := m.items[source.Name]
	m.mu.Unlock()

	if blocked {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// mockLLM echoes a canned completion.
type mockLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string              { return "mock-llm" }
func (m *mockLLM) Ping(ctx context.Context) error { return nil }
func (m *mockLLM) Close() error                   { return nil }

// mockIndex is a canned IndexService for retrieval tests.
type mockIndex struct {
	chunks []domain.Chunk
	scores []float64
	err    error
}

func (m *mockIndex) EnsureReady(ctx context.Context, force bool) (*domain.IndexVersion, error) {
	return &domain.IndexVersion{Token: domain.CurrentIndexToken}, nil
}

func (m *mockIndex) Query(ctx context.Context, vector []float32, k int) ([]domain.Chunk, []float64, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	if len(m.chunks) > k {
		return m.chunks[:k], m.scores[:k], nil
	}
	return m.chunks, m.scores, nil
}

// mockAggregator is a canned AggregatorService for retrieval tests.
type mockAggregator struct {
	results map[string]domain.FeedResult
	err     error
}

func (m *mockAggregator) FetchAll(ctx context.Context) (map[string]domain.FeedResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}
