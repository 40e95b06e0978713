package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driving"
	"github.com/halcyon-labs/lore-cli/internal/logger"
)

// IndexManager owns the persistent index lifecycle: deciding at
// startup whether the stored index is usable, rebuilding it when it
// is not, and gating queries until the index is ready.
//
// The version marker is the arbiter of validity. It is cleared before
// any destructive step and rewritten only after a build fully
// succeeds, so a crash mid-rebuild always leaves the marker absent
// and the next startup rebuilds from scratch.
type IndexManager struct {
	loader   driven.CorpusLoader
	pipeline *IngestPipeline
	embedder driven.EmbeddingService
	store    driven.VectorStore

	mu    sync.Mutex
	ready bool
}

var _ driving.IndexService = (*IndexManager)(nil)

// NewIndexManager creates an index manager.
func NewIndexManager(
	loader driven.CorpusLoader,
	pipeline *IngestPipeline,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
) *IndexManager {
	return &IndexManager{
		loader:   loader,
		pipeline: pipeline,
		embedder: embedder,
		store:    store,
	}
}

// EnsureReady makes the index queryable, rebuilding it if the stored
// one is missing, stale, or forced out. Concurrent callers serialise
// on the build lock; a caller that waited out another's build
// re-checks state instead of building again.
func (m *IndexManager) EnsureReady(ctx context.Context, force bool) (*domain.IndexVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	version, reason := m.decide(ctx, force)
	if version != nil {
		logger.Info("index: reusing stored index (%d documents, %d chunks, built %s)",
			version.Documents, version.Chunks, version.CreatedAt.Format("2006-01-02 15:04"))
		m.ready = true
		return version, nil
	}

	logger.Info("index: rebuilding (%s)", reason)
	built, err := m.rebuild(ctx)
	if err != nil {
		m.ready = false
		return nil, err
	}
	m.ready = true
	return built, nil
}

// decide inspects stored state and returns either a usable version or
// the reason a rebuild is needed.
func (m *IndexManager) decide(ctx context.Context, force bool) (*domain.IndexVersion, string) {
	if force {
		return nil, "rebuild forced"
	}

	version, err := m.store.Version()
	if err != nil {
		return nil, fmt.Sprintf("version marker unreadable: %v", err)
	}
	if version == nil {
		return nil, "no version marker found"
	}
	if version.Token != domain.CurrentIndexToken {
		return nil, fmt.Sprintf("index version %q does not match current %q",
			version.Token, domain.CurrentIndexToken)
	}

	count, err := m.store.Count(ctx)
	if err != nil {
		return nil, fmt.Sprintf("chunk count unreadable: %v", err)
	}
	if count == 0 {
		return nil, "version marker present but store is empty"
	}

	if _, err := m.smokeTest(ctx); err != nil {
		return nil, fmt.Sprintf("smoke test failed: %v", err)
	}

	return version, ""
}

// rebuild clears the marker first, then the chunks, then builds, and
// only then writes the new marker. Ordering is what makes a crash at
// any point recoverable.
func (m *IndexManager) rebuild(ctx context.Context) (*domain.IndexVersion, error) {
	logger.Section("index rebuild")
	if err := m.store.ClearVersion(); err != nil {
		return nil, fmt.Errorf("%w: clearing version marker: %w", domain.ErrBuildFailed, err)
	}
	if err := m.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("%w: clearing chunks: %w", domain.ErrBuildFailed, err)
	}

	docs, err := m.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorpusUnreadable, err)
	}

	report, err := m.pipeline.Build(ctx, docs)
	if err != nil {
		return nil, err
	}

	hits, err := m.smokeTest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: post-build smoke test: %w", domain.ErrBuildFailed, err)
	}

	version := domain.NewIndexVersion(report.DocumentCount, report.ChunkCount)
	if err := m.store.WriteVersion(version); err != nil {
		return nil, fmt.Errorf("%w: writing version marker: %w", domain.ErrBuildFailed, err)
	}

	logger.Info("index: built %d chunks from %d documents (%d chars), smoke test returned %d hit(s)",
		report.ChunkCount, report.DocumentCount, report.CharCount, hits)
	return &version, nil
}

// smokeTest runs one embedding plus one store search to prove the
// stored index actually answers before we trust it. It returns the
// probe hit count.
func (m *IndexManager) smokeTest(ctx context.Context) (int, error) {
	vector, err := m.embedder.Embed(ctx, "smoke test")
	if err != nil {
		return 0, fmt.Errorf("embedding probe: %w", err)
	}
	hits, err := m.store.Search(ctx, vector, 1)
	if err != nil {
		return 0, fmt.Errorf("search probe: %w", err)
	}
	if len(hits) == 0 {
		return 0, errors.New("search probe returned no hits on a non-empty store")
	}
	return len(hits), nil
}

// Query embeds nothing itself; it takes a pre-embedded vector so the
// retrieval layer keeps control of embedding cost and caching.
func (m *IndexManager) Query(ctx context.Context, vector []float32, k int) ([]domain.Chunk, []float64, error) {
	m.mu.Lock()
	ready := m.ready
	m.mu.Unlock()
	if !ready {
		return nil, nil, domain.ErrIndexUnavailable
	}

	hits, err := m.store.Search(ctx, vector, k)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	chunks := make([]domain.Chunk, len(hits))
	scores := make([]float64, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
		scores[i] = h.Similarity
	}
	return chunks, scores, nil
}
