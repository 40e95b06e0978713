package domain

import "time"

// Route is the evidence-sourcing decision for a query.
// It is a closed set: every query maps to exactly one route.
type Route int

const (
	// RouteStatic consults only the persistent corpus index.
	// This is the default when classification is inconclusive,
	// since the curated corpus is the higher-precision source.
	RouteStatic Route = iota

	// RouteLive consults only the feed aggregator.
	RouteLive

	// RouteBoth consults both and fuses the results.
	RouteBoth
)

// String returns the route label used in logs.
func (r Route) String() string {
	switch r {
	case RouteLive:
		return "live"
	case RouteBoth:
		return "both"
	default:
		return "static"
	}
}

// Query is one incoming question. It exists for the duration of a
// single request and is discarded after retrieval completes.
type Query struct {
	// Text is the raw user input.
	Text string

	// Route is the classification decision.
	Route Route

	// OnTopic reports whether the query passed the domain gate.
	// Off-topic queries skip retrieval entirely.
	OnTopic bool
}

// Provenance tags an evidence unit with its origin.
type Provenance string

const (
	// ProvenanceIndex marks evidence from the persistent corpus index.
	ProvenanceIndex Provenance = "index"

	// ProvenanceFeed marks evidence from the live feed layer.
	ProvenanceFeed Provenance = "feed"
)

// Evidence is one ranked unit of supporting material.
type Evidence struct {
	// Provenance is the evidence origin.
	Provenance Provenance

	// Score is the normalised relevance score in [0, 1].
	Score float64

	// Chunk is set when Provenance is ProvenanceIndex.
	Chunk *Chunk

	// Item is set when Provenance is ProvenanceFeed.
	Item *FeedItem

	// Title is a display label (document path or feed entry title).
	Title string

	// Content is the evidence text handed to answer generation.
	Content string
}

// RetrievalResult is the fused, ranked evidence set for one query.
// An empty result is a valid state ("no relevant material found"),
// never a system failure.
type RetrievalResult struct {
	// Route is the classification that produced this result.
	Route Route

	// Evidence is ordered by descending score.
	Evidence []Evidence

	// SourcesTried counts feed sources consulted, including failures.
	SourcesTried int

	// RetrievedAt is when retrieval completed.
	RetrievedAt time.Time
}

// Empty reports whether retrieval found nothing.
func (r *RetrievalResult) Empty() bool {
	return len(r.Evidence) == 0
}

// Breakdown counts evidence units per provenance, for logging.
func (r *RetrievalResult) Breakdown() map[Provenance]int {
	out := make(map[Provenance]int, 2)
	for _, ev := range r.Evidence {
		out[ev.Provenance]++
	}
	return out
}
