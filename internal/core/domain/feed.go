package domain

import (
	"fmt"
	"strings"
	"time"
)

// FeedCategory classifies a feed source by the kind of publisher.
type FeedCategory string

const (
	// CategoryOfficial marks search-engine operator channels.
	CategoryOfficial FeedCategory = "official"

	// CategoryExpert marks individual practitioner blogs.
	CategoryExpert FeedCategory = "expert"

	// CategoryMedia marks industry news outlets.
	CategoryMedia FeedCategory = "media"

	// CategoryToolVendor marks commercial tool vendor blogs.
	CategoryToolVendor FeedCategory = "tool_vendor"
)

// ParseFeedCategory validates a category string from the registry file.
func ParseFeedCategory(s string) (FeedCategory, error) {
	switch c := FeedCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryOfficial, CategoryExpert, CategoryMedia, CategoryToolVendor:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown feed category %q", ErrInvalidFeedSource, s)
	}
}

// FeedSource is one declarative row of the feed registry.
// Sources are loaded once at startup and read-only thereafter.
type FeedSource struct {
	// Name is the human-readable site name.
	Name string

	// URL is the feed endpoint.
	URL string

	// Method is the fetch method (currently only "rss").
	Method string

	// Tier is the polling priority, 1 (official) to 3 (vendor).
	Tier int

	// Category classifies the publisher for fusion weighting.
	Category FeedCategory

	// Language is the feed's primary language code.
	Language string

	// Description is free-form operator documentation.
	Description string

	// Constraint records any usage restriction noted in the registry.
	Constraint string
}

// Validate checks the required registry fields.
func (s *FeedSource) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidFeedSource)
	}
	if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
		return fmt.Errorf("%w: %s has no usable URL", ErrInvalidFeedSource, s.Name)
	}
	if s.Tier < 1 || s.Tier > 3 {
		return fmt.Errorf("%w: %s has tier %d, want 1-3", ErrInvalidFeedSource, s.Name, s.Tier)
	}
	if s.Language == "" {
		return fmt.Errorf("%w: %s has no language", ErrInvalidFeedSource, s.Name)
	}
	if _, err := ParseFeedCategory(string(s.Category)); err != nil {
		return err
	}
	return nil
}

// FeedItem is one fetched feed entry. Items are transient: they live in
// the aggregator cache for a freshness window and are superseded by
// later fetches of the same source.
type FeedItem struct {
	// SourceName references the FeedSource that produced this item.
	SourceName string

	// Title is the entry title.
	Title string

	// Summary is the entry body or summary text.
	Summary string

	// Link is the entry URL.
	Link string

	// Published is the publication time reported by the feed.
	// Zero when the feed omits it.
	Published time.Time

	// FetchedAt is when the aggregator retrieved the item.
	FetchedAt time.Time

	// CategoryWeight is the fusion weight of the source's category,
	// attached at fetch time for use during ranking only.
	CategoryWeight float64

	// Topic is the auto-classified subject of the entry
	// (algorithm, technical, content, search_features, general).
	Topic string
}

// FeedResult is the per-source outcome of one aggregation cycle.
// A failed source carries its error here; it never aborts the cycle.
type FeedResult struct {
	// Source is the fetched source.
	Source FeedSource

	// Items are the entries retrieved, empty on failure.
	Items []FeedItem

	// Err records the fetch failure, nil on success.
	Err error

	// FromCache reports whether the items were served from the
	// freshness cache without a network call.
	FromCache bool
}
