package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 500, p.ChunkSize)
	assert.Equal(t, 50, p.EmbedBatchSize)
	assert.Equal(t, map[int]int{1: 5, 2: 10, 3: 5}, p.TierCaps)
	assert.InDelta(t, 1.0, p.CategoryWeights[CategoryOfficial], 0.001)
	assert.InDelta(t, 0.7, p.CategoryWeights[CategoryToolVendor], 0.001)
}

func TestPolicyCategoryWeightFallback(t *testing.T) {
	p := DefaultPolicy()
	assert.InDelta(t, 0.9, p.CategoryWeight(CategoryExpert), 0.001)
	assert.InDelta(t, 0.5, p.CategoryWeight("something_else"), 0.001)
}

func TestPolicyTierCap(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 10, p.TierCap(2))

	// Unknown tiers are not polled.
	assert.Equal(t, 0, p.TierCap(9))
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "static", RouteStatic.String())
	assert.Equal(t, "live", RouteLive.String())
	assert.Equal(t, "both", RouteBoth.String())
}

func TestRetrievalResultBreakdown(t *testing.T) {
	r := RetrievalResult{Evidence: []Evidence{
		{Provenance: ProvenanceIndex},
		{Provenance: ProvenanceFeed},
		{Provenance: ProvenanceIndex},
	}}

	assert.False(t, r.Empty())
	assert.Equal(t, map[Provenance]int{ProvenanceIndex: 2, ProvenanceFeed: 1}, r.Breakdown())
	assert.True(t, (&RetrievalResult{}).Empty())
}
