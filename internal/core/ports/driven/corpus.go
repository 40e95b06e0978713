package driven

import (
	"context"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
)

// CorpusLoader reads the static document corpus for ingestion.
// Text extraction from rich formats happens upstream; the loader
// consumes plain-text segments only.
type CorpusLoader interface {
	// Load scans the corpus wholesale and returns every document.
	// Zero documents is a valid (reported) outcome, not an error.
	Load(ctx context.Context) ([]domain.Document, error)
}

// CorpusWatcher reports corpus directory changes so a rebuild can be
// triggered without restarting the process.
type CorpusWatcher interface {
	// Watch delivers one signal per settled batch of filesystem
	// changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)

	// Close releases the underlying watcher.
	Close() error
}
