package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driving"
	"github.com/halcyon-labs/lore-cli/internal/logger"
)

// Retriever executes a routed query against the static index, the
// live feeds, or both, and fuses the legs into one ranked evidence
// list. When a route needs both legs and one fails, the other's
// results are returned alone; only both legs failing is an error.
type Retriever struct {
	router     *LexicalRouter
	index      driving.IndexService
	aggregator driving.AggregatorService
	embedder   driven.EmbeddingService
	policy     domain.Policy

	// now is swappable for tests of recency scoring.
	now func() time.Time
}

var _ driving.RetrievalService = (*Retriever)(nil)

// NewRetriever creates a retrieval service.
func NewRetriever(
	router *LexicalRouter,
	index driving.IndexService,
	aggregator driving.AggregatorService,
	embedder driven.EmbeddingService,
	policy domain.Policy,
) *Retriever {
	return &Retriever{
		router:     router,
		index:      index,
		aggregator: aggregator,
		embedder:   embedder,
		policy:     policy,
		now:        time.Now,
	}
}

// Retrieve classifies the query, runs its route, and returns ranked
// evidence.
func (r *Retriever) Retrieve(ctx context.Context, text string, k int) (*domain.RetrievalResult, error) {
	if k <= 0 {
		k = r.policy.TopK
	}

	query := r.router.Route(text)
	logger.Debug("retrieve: route=%s for %q", query.Route, text)

	result := &domain.RetrievalResult{
		Route:       query.Route,
		RetrievedAt: r.now().UTC(),
	}

	var static []domain.Evidence
	var live []domain.Evidence
	var sourcesTried int
	var staticErr, liveErr error

	switch query.Route {
	case domain.RouteStatic:
		static, staticErr = r.staticLeg(ctx, query.Text, k)
		if staticErr != nil {
			return nil, staticErr
		}
	case domain.RouteLive:
		live, sourcesTried, liveErr = r.liveLeg(ctx, query.Text)
		if liveErr != nil {
			return nil, liveErr
		}
	case domain.RouteBoth:
		static, staticErr = r.staticLeg(ctx, query.Text, k)
		live, sourcesTried, liveErr = r.liveLeg(ctx, query.Text)
		if staticErr != nil && liveErr != nil {
			return nil, errors.Join(staticErr, liveErr)
		}
		if staticErr != nil {
			logger.Warn("retrieve: index leg failed, using feeds only: %v", staticErr)
		}
		if liveErr != nil {
			logger.Warn("retrieve: feed leg failed, using index only: %v", liveErr)
		}
	}

	result.SourcesTried = sourcesTried
	result.Evidence = r.fuse(static, live, k)
	return result, nil
}

// staticLeg embeds the query and searches the persistent index.
func (r *Retriever) staticLeg(ctx context.Context, text string, k int) ([]domain.Evidence, error) {
	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	chunks, scores, err := r.index.Query(ctx, vector, k)
	if err != nil {
		return nil, err
	}

	evidence := make([]domain.Evidence, len(chunks))
	for i := range chunks {
		chunk := chunks[i]
		evidence[i] = domain.Evidence{
			Provenance: domain.ProvenanceIndex,
			Score:      scores[i],
			Chunk:      &chunk,
			Title:      chunk.DocumentID,
			Content:    chunk.Content,
		}
	}
	return evidence, nil
}

// liveLeg aggregates the feeds and scores items by lexical overlap
// with the query, category weight, and recency decay. It also reports
// how many sources were consulted, failures included.
func (r *Retriever) liveLeg(ctx context.Context, text string) ([]domain.Evidence, int, error) {
	results, err := r.aggregator.FetchAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	var evidence []domain.Evidence
	allFailed := len(results) > 0
	for _, fr := range results {
		if fr.Err != nil && len(fr.Items) == 0 {
			continue
		}
		allFailed = false
		for i := range fr.Items {
			item := fr.Items[i]
			score := r.scoreItem(text, item)
			if score <= 0 {
				continue
			}
			evidence = append(evidence, domain.Evidence{
				Provenance: domain.ProvenanceFeed,
				Score:      score,
				Item:       &item,
				Title:      item.Title,
				Content:    item.Summary,
			})
		}
	}
	if allFailed {
		// Every source failed. An empty evidence set is the contract
		// here, not an error: the caller reports "nothing found" and
		// the per-source failures are already recorded on the results.
		logger.Warn("retrieve: all %d feed sources failed", len(results))
		return nil, len(results), nil
	}

	sort.SliceStable(evidence, func(i, j int) bool {
		return evidence[i].Score > evidence[j].Score
	})
	return evidence, len(results), nil
}

// scoreItem combines lexical overlap, source category weight, and a
// recency half-life decay into one feed-item score.
func (r *Retriever) scoreItem(query string, item domain.FeedItem) float64 {
	overlap := lexicalOverlap(query, item.Title+" "+item.Summary)
	if overlap == 0 {
		return 0
	}

	score := overlap * item.CategoryWeight

	if !item.Published.IsZero() && r.policy.RecencyHalfLife > 0 {
		age := r.now().Sub(item.Published)
		if age > 0 {
			halves := float64(age) / float64(r.policy.RecencyHalfLife)
			score *= math.Exp2(-halves)
		}
	}
	return score
}

// lexicalOverlap is the fraction of query terms appearing in the
// candidate text.
func lexicalOverlap(query, text string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}
	lowered := strings.ToLower(text)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// fuse min-max normalises each leg's scores, applies the layer
// weights, and merges. The static leg wins score ties so index
// evidence stays the grounding backbone.
func (r *Retriever) fuse(static, live []domain.Evidence, k int) []domain.Evidence {
	normalise(static)
	normalise(live)
	for i := range static {
		static[i].Score *= r.policy.IndexWeight
	}
	for i := range live {
		live[i].Score *= r.policy.FeedWeight
	}

	merged := make([]domain.Evidence, 0, len(static)+len(live))
	merged = append(merged, static...)
	merged = append(merged, live...)

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		// Tie: index evidence before feed evidence.
		return merged[i].Provenance == domain.ProvenanceIndex &&
			merged[j].Provenance == domain.ProvenanceFeed
	})

	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// normalise rescales scores into [0,1] per leg. A single-result leg
// gets 1.0; an empty leg is untouched.
func normalise(evidence []domain.Evidence) {
	if len(evidence) == 0 {
		return
	}
	min, max := evidence[0].Score, evidence[0].Score
	for _, e := range evidence[1:] {
		if e.Score < min {
			min = e.Score
		}
		if e.Score > max {
			max = e.Score
		}
	}
	if max == min {
		for i := range evidence {
			evidence[i].Score = 1.0
		}
		return
	}
	span := max - min
	for i := range evidence {
		evidence[i].Score = (evidence[i].Score - min) / span
	}
}
