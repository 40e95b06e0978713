// Package chunker provides fixed-size text chunking for ingestion.
package chunker

import (
	"github.com/halcyon-labs/lore-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Chunker splits document content into fixed-size chunks.
// Chunk IDs are derived from the document ID and position, so an
// unchanged document always yields the same chunks in the same order.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave forward progress per step.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Split chunks one document. A chunk never crosses into another
// document: each call operates on a single document's content only.
// Empty content yields no chunks.
//
// Sizes are in runes, not bytes, so a boundary never lands inside a
// multi-byte character and every chunk is valid UTF-8 on its own.
func (c *Chunker) Split(doc *domain.Document) []domain.Chunk {
	content := doc.Content()
	if content == "" {
		return nil
	}

	runes := []rune(content)
	step := c.chunkSize - c.overlap
	estimated := len(runes)/step + 1
	chunks := make([]domain.Chunk, 0, estimated)

	position := 0
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, position),
			DocumentID: doc.ID,
			Content:    string(runes[start:end]),
			Position:   position,
		})
		position++

		if end == len(runes) {
			break
		}
	}

	return chunks
}
