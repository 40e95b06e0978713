package domain

import "time"

// Policy groups every tunable retrieval constant in one place so tests
// can override values deterministically instead of patching scattered
// constants.
type Policy struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// SmallChunkSize replaces ChunkSize for oversized corpora.
	SmallChunkSize int

	// ChunkOverlap is the number of overlapping characters.
	ChunkOverlap int

	// LargeCorpusChars is the corpus size above which SmallChunkSize
	// and a halved batch size apply.
	LargeCorpusChars int

	// EmbedBatchSize is the number of chunks embedded per request.
	EmbedBatchSize int

	// EmbedRetries is the retry budget per embedding batch.
	EmbedRetries int

	// EmbedBackoff is the base delay between batch retries,
	// doubled per attempt.
	EmbedBackoff time.Duration

	// TierCaps limits how many sources of each tier are polled per
	// aggregation cycle.
	TierCaps map[int]int

	// CategoryWeights maps feed categories to fusion weights.
	CategoryWeights map[FeedCategory]float64

	// CacheTTL is the feed cache freshness window.
	CacheTTL time.Duration

	// MaxCachedItems bounds the number of items kept per source.
	MaxCachedItems int

	// FetchTimeout is the independent timeout per feed source fetch.
	FetchTimeout time.Duration

	// TopK is the default bounded evidence set size.
	TopK int

	// IndexWeight and FeedWeight scale normalised scores per layer
	// in the fusion path.
	IndexWeight float64
	FeedWeight  float64

	// RecencyHalfLife controls the decay of feed item scores by age.
	RecencyHalfLife time.Duration
}

// DefaultPolicy returns the production policy constants.
func DefaultPolicy() Policy {
	return Policy{
		ChunkSize:        500,
		SmallChunkSize:   300,
		ChunkOverlap:     200,
		LargeCorpusChars: 800_000,
		EmbedBatchSize:   50,
		EmbedRetries:     2,
		EmbedBackoff:     time.Second,
		TierCaps:         map[int]int{1: 5, 2: 10, 3: 5},
		CategoryWeights: map[FeedCategory]float64{
			CategoryOfficial:   1.0,
			CategoryExpert:     0.9,
			CategoryMedia:      0.8,
			CategoryToolVendor: 0.7,
		},
		CacheTTL:        24 * time.Hour,
		MaxCachedItems:  100,
		FetchTimeout:    10 * time.Second,
		TopK:            10,
		IndexWeight:     0.6,
		FeedWeight:      0.3,
		RecencyHalfLife: 72 * time.Hour,
	}
}

// CategoryWeight returns the fusion weight for a category, with a
// conservative default for unknown categories.
func (p Policy) CategoryWeight(c FeedCategory) float64 {
	if w, ok := p.CategoryWeights[c]; ok {
		return w
	}
	return 0.5
}

// TierCap returns the polling cap for a tier. Unknown tiers are not
// polled at all.
func (p Policy) TierCap(tier int) int {
	return p.TierCaps[tier]
}
