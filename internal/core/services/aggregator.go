package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driving"
	"github.com/halcyon-labs/lore-cli/internal/logger"
)

// Aggregator fans out to live feed sources concurrently and merges
// the results. Each source gets its own timeout so one slow endpoint
// cannot stall the rest, and failures degrade to whatever the other
// sources returned.
type Aggregator struct {
	registry driven.FeedRegistry
	fetcher  driven.FeedFetcher
	policy   domain.Policy

	// now is swappable for tests.
	now func() time.Time

	cacheMu sync.Mutex
	cache   map[string]cacheEntry
}

type cacheEntry struct {
	items     []domain.FeedItem
	fetchedAt time.Time
}

var _ driving.AggregatorService = (*Aggregator)(nil)

// NewAggregator creates a feed aggregator.
func NewAggregator(registry driven.FeedRegistry, fetcher driven.FeedFetcher, policy domain.Policy) *Aggregator {
	return &Aggregator{
		registry: registry,
		fetcher:  fetcher,
		policy:   policy,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

// FetchAll fetches every selected source concurrently and returns a
// per-source result map. Sources are selected by tier cap in registry
// order; a source beyond its tier's cap is skipped entirely.
func (a *Aggregator) FetchAll(ctx context.Context) (map[string]domain.FeedResult, error) {
	sources, loadErrs, err := a.registry.Load()
	if err != nil {
		return nil, err
	}
	for _, lerr := range loadErrs {
		logger.Warn("feeds: skipping invalid source: %v", lerr)
	}

	selected := a.selectByTier(sources)
	logger.Info("feeds: fetching %d of %d registered sources", len(selected), len(sources))

	results := make(map[string]domain.FeedResult, len(selected))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range selected {
		src := src
		g.Go(func() error {
			result := a.fetchOne(gctx, src)
			mu.Lock()
			results[src.Name] = result
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures live in the result map.
	_ = g.Wait()

	return results, nil
}

// selectByTier applies the per-tier source caps in registry order.
func (a *Aggregator) selectByTier(sources []domain.FeedSource) []domain.FeedSource {
	used := make(map[int]int)
	var selected []domain.FeedSource
	for _, src := range sources {
		limit := a.policy.TierCap(src.Tier)
		if used[src.Tier] >= limit {
			logger.Debug("feeds: tier %d cap %d reached, skipping %s", src.Tier, limit, src.Name)
			continue
		}
		used[src.Tier]++
		selected = append(selected, src)
	}
	return selected
}

// fetchOne serves a single source from cache when fresh, otherwise
// fetches it under its own timeout. A fetch failure with stale cache
// on hand returns the stale items rather than nothing.
func (a *Aggregator) fetchOne(ctx context.Context, src domain.FeedSource) domain.FeedResult {
	if items, ok := a.cached(src.Name); ok {
		logger.Debug("feeds: %s served from cache (%d items)", src.Name, len(items))
		return domain.FeedResult{Source: src, Items: items, FromCache: true}
	}

	fctx, cancel := context.WithTimeout(ctx, a.policy.FetchTimeout)
	defer cancel()

	items, err := a.fetcher.Fetch(fctx, src)
	if err != nil {
		if stale, ok := a.cachedAny(src.Name); ok {
			logger.Warn("feeds: %s fetch failed (%v), serving stale cache", src.Name, err)
			return domain.FeedResult{Source: src, Items: stale, Err: err, FromCache: true}
		}
		logger.Warn("feeds: %s fetch failed: %v", src.Name, err)
		return domain.FeedResult{Source: src, Err: err}
	}

	items = a.annotate(src, items)
	a.storeCache(src.Name, items)
	return domain.FeedResult{Source: src, Items: items}
}

// annotate stamps each item with its source's category weight and
// topic, and caps the slice at the cache bound.
func (a *Aggregator) annotate(src domain.FeedSource, items []domain.FeedItem) []domain.FeedItem {
	weight := a.policy.CategoryWeight(src.Category)
	now := a.now().UTC()
	for i := range items {
		items[i].SourceName = src.Name
		items[i].CategoryWeight = weight
		items[i].FetchedAt = now
		items[i].Topic = classifyTopic(items[i].Title + " " + items[i].Summary)
	}
	if len(items) > a.policy.MaxCachedItems {
		items = items[:a.policy.MaxCachedItems]
	}
	return items
}

// topicKeywords drive item topic classification. Order matters:
// the first matching topic wins.
var topicKeywords = []struct {
	topic string
	terms []string
}{
	{"algorithm", []string{"algorithm", "core update", "ranking change", "rollout"}},
	{"technical", []string{"crawl", "indexing", "page speed", "mobile", "structured data", "core web vitals"}},
	{"content", []string{"e-e-a-t", "e-a-t", "content quality", "expertise", "authoritativeness", "trustworthiness"}},
	{"search_features", []string{"ai overview", "sge", "voice search", "image search", "new feature"}},
}

// classifyTopic assigns a coarse subject label to an item.
func classifyTopic(text string) string {
	lowered := strings.ToLower(text)
	for _, tk := range topicKeywords {
		for _, term := range tk.terms {
			if strings.Contains(lowered, term) {
				return tk.topic
			}
		}
	}
	return "general"
}

// cached returns items only while they are inside the TTL.
func (a *Aggregator) cached(name string) ([]domain.FeedItem, bool) {
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	entry, ok := a.cache[name]
	if !ok {
		return nil, false
	}
	if a.now().Sub(entry.fetchedAt) > a.policy.CacheTTL {
		return nil, false
	}
	return entry.items, true
}

// cachedAny returns items regardless of age, for stale fallback.
func (a *Aggregator) cachedAny(name string) ([]domain.FeedItem, bool) {
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	entry, ok := a.cache[name]
	if !ok {
		return nil, false
	}
	return entry.items, true
}

func (a *Aggregator) storeCache(name string, items []domain.FeedItem) {
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	a.cache[name] = cacheEntry{items: items, fetchedAt: a.now()}
}
