package driven

import (
	"context"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
)

// VectorStore persists embedded chunks and serves similarity search.
// The store is mutated only by the build path; query handling is
// read-only and safe for unlimited concurrent callers.
type VectorStore interface {
	// AddChunks persists a batch of embedded chunks.
	AddChunks(ctx context.Context, chunks []domain.Chunk) error

	// Search finds the k nearest chunks to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Clear removes all stored chunks. Called before a rebuild.
	Clear(ctx context.Context) error

	// Version reads the persisted index marker. A nil version with a
	// nil error means no marker exists — the index is unusable.
	Version() (*domain.IndexVersion, error)

	// WriteVersion atomically persists the marker. Called only after
	// a build has fully succeeded.
	WriteVersion(v domain.IndexVersion) error

	// ClearVersion removes the marker. Called before clearing chunks
	// so a crash mid-rebuild cannot leave a marker over partial data.
	ClearVersion() error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Chunk is the matched chunk, embedding included.
	Chunk domain.Chunk

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
