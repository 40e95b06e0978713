package driven

import (
	"context"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
)

// FeedRegistry loads the declarative feed source table.
type FeedRegistry interface {
	// Load returns the valid sources in file order, plus one error
	// per skipped row. A malformed row never fails the load; only an
	// unreadable file does.
	Load() ([]domain.FeedSource, []error, error)
}

// FeedFetcher retrieves entries from one feed source.
// Each call is an independent network operation with its own failure
// domain; the aggregator supplies the per-source timeout via ctx.
type FeedFetcher interface {
	// Fetch returns the source's current entries, newest first.
	Fetch(ctx context.Context, source domain.FeedSource) ([]domain.FeedItem, error)
}
