package services

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/halcyon-labs/lore-cli/internal/chunker"
	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/lore-cli/internal/logger"
)

// IngestPipeline converts documents into embedded chunks and writes
// them to the vector store. It never commits a partial index: any
// batch that exhausts its retry budget fails the whole build, and the
// caller (the index manager) only writes the version marker after
// Build returns nil.
type IngestPipeline struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	policy   domain.Policy

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// NewIngestPipeline creates an ingestion pipeline.
func NewIngestPipeline(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	policy domain.Policy,
) *IngestPipeline {
	return &IngestPipeline{
		embedder: embedder,
		store:    store,
		policy:   policy,
		sleep:    time.Sleep,
	}
}

// Build ingests the full document set and reports counts for operator
// verification. Zero documents is a build failure, not a silent
// success: an empty corpus would otherwise masquerade as a valid
// index.
func (p *IngestPipeline) Build(ctx context.Context, docs []domain.Document) (domain.BuildReport, error) {
	var report domain.BuildReport

	if len(docs) == 0 {
		return report, fmt.Errorf("%w: no documents found in corpus", domain.ErrBuildFailed)
	}

	// Sort by ID so chunk ordering is reproducible regardless of how
	// the loader walked the corpus.
	sorted := make([]domain.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	// Character counts are runes: sizing thresholds and the report
	// must mean the same thing for ASCII and multi-byte corpora.
	totalChars := 0
	for i := range sorted {
		totalChars += utf8.RuneCountInString(sorted[i].Content())
	}

	chunkSize, batchSize := p.sizing(totalChars)
	split := chunker.New(
		chunker.WithChunkSize(chunkSize),
		chunker.WithOverlap(p.policy.ChunkOverlap),
	)

	var chunks []domain.Chunk
	for i := range sorted {
		docChunks := split.Split(&sorted[i])
		logger.Info("ingest: %s -> %d chunks (%d chars)",
			sorted[i].ID, len(docChunks), utf8.RuneCountInString(sorted[i].Content()))
		chunks = append(chunks, docChunks...)
	}

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := p.embedBatch(ctx, chunks[start:end]); err != nil {
			return report, fmt.Errorf("%w: batch at chunk %d: %w", domain.ErrBuildFailed, start, err)
		}
		if err := p.store.AddChunks(ctx, chunks[start:end]); err != nil {
			return report, fmt.Errorf("%w: persist batch at chunk %d: %w", domain.ErrBuildFailed, start, err)
		}
		logger.Debug("ingest: committed chunks %d-%d", start, end-1)
	}

	report = domain.BuildReport{
		DocumentCount: len(sorted),
		CharCount:     totalChars,
		ChunkCount:    len(chunks),
	}
	return report, nil
}

// sizing picks chunk and batch sizes for the corpus volume. Oversized
// corpora use smaller chunks and halved batches to stay inside
// provider token limits.
func (p *IngestPipeline) sizing(totalChars int) (chunkSize, batchSize int) {
	chunkSize = p.policy.ChunkSize
	batchSize = p.policy.EmbedBatchSize
	if totalChars > p.policy.LargeCorpusChars {
		chunkSize = p.policy.SmallChunkSize
		batchSize = p.policy.EmbedBatchSize / 2
		if batchSize < 1 {
			batchSize = 1
		}
		logger.Warn("ingest: large corpus (%d chars), reducing chunk size to %d and batch size to %d",
			totalChars, chunkSize, batchSize)
	}
	return chunkSize, batchSize
}

// embedBatch embeds one batch with bounded retries and exponential
// backoff. Exhausting the budget returns the last error.
func (p *IngestPipeline) embedBatch(ctx context.Context, batch []domain.Chunk) error {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Content
	}

	var lastErr error
	backoff := p.policy.EmbedBackoff
	for attempt := 0; attempt <= p.policy.EmbedRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("ingest: embedding retry %d/%d after error: %v",
				attempt, p.policy.EmbedRetries, lastErr)
			p.sleep(backoff)
			backoff *= 2
		}

		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			lastErr = err
			continue
		}
		if len(vectors) != len(batch) {
			lastErr = fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(batch))
			continue
		}

		for i := range batch {
			batch[i].Embedding = vectors[i]
		}
		return nil
	}

	return lastErr
}
