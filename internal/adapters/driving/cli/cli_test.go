package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driving"
)

// mockAnswer is a canned AnswerService.
type mockAnswer struct {
	answer *driving.Answer
	err    error
}

func (m *mockAnswer) Ask(ctx context.Context, question string) (*driving.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

// mockIndex is a canned IndexService.
type mockIndex struct {
	version domain.IndexVersion
	err     error
	calls   int
	forced  bool
}

func (m *mockIndex) EnsureReady(ctx context.Context, force bool) (*domain.IndexVersion, error) {
	m.calls++
	m.forced = force
	if m.err != nil {
		return nil, m.err
	}
	return &m.version, nil
}

func (m *mockIndex) Query(ctx context.Context, vector []float32, k int) ([]domain.Chunk, []float64, error) {
	return nil, nil, nil
}

// mockRegistry is a canned FeedRegistry.
type mockRegistry struct {
	sources []domain.FeedSource
	rowErrs []error
	err     error
}

func (m *mockRegistry) Load() ([]domain.FeedSource, []error, error) {
	return m.sources, m.rowErrs, m.err
}

// mockAggregator is a canned AggregatorService.
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

// mockWatcher signals once then closes.
type mockWatcher struct {
	signals chan struct{}
}

func (m *mockWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	return m.signals, nil
}

func (m *mockWatcher) Close() error { return nil }

func setupTestWiring(w Wiring) func() {
	old := Wiring{
		Answer:     answerService,
		Index:      indexService,
		Aggregator: aggregatorService,
		Registry:   feedRegistry,
		Watcher:    corpusWatcher,
	}
	SetWiring(w)
	return func() { SetWiring(old) }
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lore version")
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_UnconfiguredService(t *testing.T) {
	cleanup := setupTestWiring(Wiring{})
	defer cleanup()

	_, err := execute(t, "ask", "how does indexing work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestAskCmd_PrintsAnswer(t *testing.T) {
	cleanup := setupTestWiring(Wiring{
		Answer: &mockAnswer{answer: &driving.Answer{Text: "indexing stores pages"}},
		Index:  &mockIndex{version: domain.NewIndexVersion(2, 10)},
	})
	defer cleanup()

	out, err := execute(t, "ask", "how does indexing work")
	require.NoError(t, err)
	assert.Contains(t, out, "indexing stores pages")
}

func TestAskCmd_ShowSources(t *testing.T) {
	result := &domain.RetrievalResult{
		Route: domain.RouteBoth,
		Evidence: []domain.Evidence{
			{Provenance: domain.ProvenanceIndex, Score: 0.9, Title: "guide.md"},
			{Provenance: domain.ProvenanceFeed, Score: 0.5, Title: "news entry",
				Item: &domain.FeedItem{Link: "https://example.com/news"}},
		},
	}
	cleanup := setupTestWiring(Wiring{
		Answer: &mockAnswer{answer: &driving.Answer{Text: "the answer", Result: result}},
		Index:  &mockIndex{},
	})
	defer cleanup()
	defer func() { askShowSources = false }()

	out, err := execute(t, "ask", "--sources", "latest seo news")
	require.NoError(t, err)
	assert.Contains(t, out, "guide.md")
	assert.Contains(t, out, "https://example.com/news")
	assert.Contains(t, out, "route: both")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	result := &domain.RetrievalResult{
		Route: domain.RouteStatic,
		Evidence: []domain.Evidence{
			{Provenance: domain.ProvenanceIndex, Score: 0.85, Title: "crawling.md"},
		},
	}
	cleanup := setupTestWiring(Wiring{
		Answer: &mockAnswer{answer: &driving.Answer{Text: "crawling discovers pages", Result: result}},
		Index:  &mockIndex{},
	})
	defer cleanup()
	defer func() { askJSON = false }()

	out, err := execute(t, "ask", "--json", "how does crawling work")
	require.NoError(t, err)

	var parsed askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "crawling discovers pages", parsed.Answer)
	assert.Equal(t, "static", parsed.Route)
	require.Len(t, parsed.Sources, 1)
	assert.Equal(t, "crawling.md", parsed.Sources[0].Title)
	assert.InDelta(t, 0.85, parsed.Sources[0].Score, 1e-9)
}

func TestAskCmd_EnsuresIndexFirst(t *testing.T) {
	index := &mockIndex{}
	cleanup := setupTestWiring(Wiring{
		Answer: &mockAnswer{answer: &driving.Answer{Text: "ok"}},
		Index:  index,
	})
	defer cleanup()

	_, err := execute(t, "ask", "a question")
	require.NoError(t, err)
	assert.Equal(t, 1, index.calls)
	assert.False(t, index.forced)
}

func TestIndexCmd_PrintsReport(t *testing.T) {
	index := &mockIndex{version: domain.IndexVersion{
		Token:     domain.CurrentIndexToken,
		CreatedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		Documents: 21,
		Chunks:    340,
	}}
	cleanup := setupTestWiring(Wiring{Index: index})
	defer cleanup()

	out, err := execute(t, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "documents: 21")
	assert.Contains(t, out, "chunks:    340")
	assert.False(t, index.forced)
}

func TestIndexCmd_ForceFlag(t *testing.T) {
	index := &mockIndex{version: domain.NewIndexVersion(1, 1)}
	cleanup := setupTestWiring(Wiring{Index: index})
	defer cleanup()
	defer func() { indexForce = false }()

	_, err := execute(t, "index", "--force")
	require.NoError(t, err)
	assert.True(t, index.forced)
}

func TestIndexCmd_BuildFailure(t *testing.T) {
	cleanup := setupTestWiring(Wiring{Index: &mockIndex{err: domain.ErrBuildFailed}})
	defer cleanup()

	_, err := execute(t, "index")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)
}

func TestSourcesCmd_ListsSourcesAndSkippedRows(t *testing.T) {
	cleanup := setupTestWiring(Wiring{
		Registry: &mockRegistry{
			sources: []domain.FeedSource{
				{Name: "Google Search Central", URL: "https://example.com/g", Tier: 1,
					Category: domain.CategoryOfficial},
			},
			rowErrs: []error{errors.New("line 3: tier \"high\" is not a number")},
		},
	})
	defer cleanup()

	out, err := execute(t, "sources")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered sources: 1")
	assert.Contains(t, out, "Google Search Central")
	assert.Contains(t, out, "Skipped rows: 1")
	assert.Contains(t, out, "line 3")
}

func TestSourcesCmd_FetchReportsResults(t *testing.T) {
	cleanup := setupTestWiring(Wiring{
		Registry: &mockRegistry{sources: []domain.FeedSource{
			{Name: "good", URL: "https://example.com/good", Tier: 1, Category: domain.CategoryOfficial},
			{Name: "bad", URL: "https://example.com/bad", Tier: 1, Category: domain.CategoryMedia},
		}},
		Aggregator: &mockAggregator{results: map[string]domain.FeedResult{
			"good": {Items: []domain.FeedItem{{Title: "a"}, {Title: "b"}}},
			"bad":  {Err: errors.New("connection refused")},
		}},
	})
	defer cleanup()
	defer func() { sourcesFetch = false }()

	out, err := execute(t, "sources", "--fetch")
	require.NoError(t, err)
	assert.Contains(t, out, "2 items")
	assert.Contains(t, out, "FAILED: connection refused")
}

func TestWatchCmd_RebuildsOnSignal(t *testing.T) {
	signals := make(chan struct{}, 1)
	signals <- struct{}{}
	close(signals)

	index := &mockIndex{version: domain.NewIndexVersion(3, 30)}
	cleanup := setupTestWiring(Wiring{
		Index:   index,
		Watcher: &mockWatcher{signals: signals},
	})
	defer cleanup()

	out, err := execute(t, "watch")
	require.NoError(t, err)
	assert.Contains(t, out, "Watching corpus")
	assert.Contains(t, out, "Rebuilt: 3 documents, 30 chunks")
	// Initial build plus one forced rebuild.
	assert.Equal(t, 2, index.calls)
	assert.True(t, index.forced)
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}
