package feeds

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
)

var _ driven.FeedFetcher = (*RSSFetcher)(nil)

// DefaultRequestsPerSecond bounds outbound feed requests so a full
// aggregation cycle stays polite to publishers.
const DefaultRequestsPerSecond = 10

// userAgent identifies the client to feed publishers.
const userAgent = "lore-cli/1.0 (+https://github.com/halcyon-labs/lore-cli)"

// maxItemsPerFeed caps how many entries one fetch returns.
const maxItemsPerFeed = 20

// RSSFetcher retrieves entries from RSS and Atom feeds.
type RSSFetcher struct {
	parser  *gofeed.Parser
	limiter *rate.Limiter
}

// NewRSSFetcher creates an RSS/Atom fetcher.
func NewRSSFetcher() *RSSFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &RSSFetcher{
		parser:  parser,
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 2),
	}
}

// Fetch returns the source's current entries, newest first. The
// caller's ctx carries the per-source timeout.
func (f *RSSFetcher) Fetch(ctx context.Context, source domain.FeedSource) ([]domain.FeedItem, error) {
	if source.Method != "rss" {
		return nil, fmt.Errorf("%w: unsupported fetch method %q for %s",
			domain.ErrInvalidFeedSource, source.Method, source.Name)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	feed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}

	items := make([]domain.FeedItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil || entry.Title == "" {
			continue
		}
		items = append(items, domain.FeedItem{
			SourceName: source.Name,
			Title:      strings.TrimSpace(entry.Title),
			Summary:    summarise(entry),
			Link:       entry.Link,
			Published:  publishedTime(entry),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
	if len(items) > maxItemsPerFeed {
		items = items[:maxItemsPerFeed]
	}
	return items, nil
}

// summarise prefers the entry description, falling back to truncated
// content.
func summarise(entry *gofeed.Item) string {
	text := strings.TrimSpace(entry.Description)
	if text == "" {
		text = strings.TrimSpace(entry.Content)
	}
	const maxSummary = 500
	if len(text) > maxSummary {
		text = text[:maxSummary]
	}
	return text
}

// publishedTime picks the best available timestamp for an entry.
func publishedTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}
	return time.Time{}
}
