package driving

import (
	"context"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
)

// IndexService owns the persistent index lifecycle.
type IndexService interface {
	// EnsureReady resolves index state at startup. With force it
	// rebuilds unconditionally; otherwise it builds only when no
	// usable marker exists. Safe for concurrent callers: at most one
	// build runs, and waiters share its outcome.
	EnsureReady(ctx context.Context, force bool) (*domain.IndexVersion, error)

	// Query searches the ready index. Returns
	// domain.ErrIndexUnavailable before EnsureReady has succeeded.
	Query(ctx context.Context, vector []float32, k int) ([]domain.Chunk, []float64, error)
}

// RetrievalService routes a query and returns fused, ranked evidence.
type RetrievalService interface {
	// Retrieve classifies the query, consults the index and/or the
	// feed layer per the route, and returns at most k evidence units.
	// An empty result is a valid outcome, not an error.
	Retrieve(ctx context.Context, query string, k int) (*domain.RetrievalResult, error)
}

// Answer is the synthesised response handed back to the caller.
type Answer struct {
	// Text is the generated answer, or the refusal/empty message.
	Text string

	// Result is the evidence behind the answer.
	Result *domain.RetrievalResult

	// OffTopic reports that the query failed the domain gate and no
	// retrieval was attempted.
	OffTopic bool
}

// AnswerService combines retrieval with answer generation.
type AnswerService interface {
	// Ask answers one question end to end.
	Ask(ctx context.Context, question string) (*Answer, error)
}

// AggregatorService exposes the feed layer to the CLI.
type AggregatorService interface {
	// FetchAll runs one aggregation cycle over the registered
	// sources, honouring tier caps and per-source isolation.
	FetchAll(ctx context.Context) (map[string]domain.FeedResult, error)
}
