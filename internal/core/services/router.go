package services

import (
	"strings"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/logger"
)

// LexicalRouter classifies queries into retrieval routes using
// keyword heuristics. It is total: every query string maps to exactly
// one route, defaulting to the static index.
type LexicalRouter struct{}

// NewLexicalRouter creates a router.
func NewLexicalRouter() *LexicalRouter {
	return &LexicalRouter{}
}

// highPriorityTerms always pull in both layers regardless of other
// signals: these topics move too fast for the index alone and are too
// foundational for feeds alone.
var highPriorityTerms = []string{
	"algorithm update",
	"core update",
	"ranking change",
	"search console",
	"ai overviews",
	"spam update",
	"helpful content update",
}

// recencyTerms signal the user wants current information.
var recencyTerms = []string{
	"latest", "recent", "news", "update", "today", "this week",
	"this month", "current", "now", "2025", "2026", "announcement",
	"just released", "breaking",
}

// topicalTerms are subject-matter words that pair with a recency
// signal to mean "current developments in the domain", which needs
// the index for grounding as well as the feeds.
var topicalTerms = []string{
	"seo", "serp", "ranking", "google", "crawl", "index",
	"backlink", "keyword", "algorithm", "traffic", "organic",
}

// domainTerms gate whether a query belongs to the knowledge domain at
// all. A query matching none of these is off topic.
var domainTerms = []string{
	"seo", "serp", "search", "ranking", "rank", "google", "bing",
	"crawl", "crawler", "index", "indexing", "sitemap", "robots",
	"backlink", "link building", "keyword", "meta", "title tag",
	"canonical", "schema", "structured data", "core web vitals",
	"page speed", "organic", "traffic", "content", "e-e-a-t",
	"algorithm", "penalty", "redirect", "hreflang", "anchor text",
	"domain authority", "featured snippet", "local seo",
}

// Classify maps a query to a route.
func (r *LexicalRouter) Classify(text string) domain.Route {
	lowered := strings.ToLower(text)

	for _, term := range highPriorityTerms {
		if strings.Contains(lowered, term) {
			logger.Debug("router: %q matched high-priority term %q", text, term)
			return domain.RouteBoth
		}
	}

	recency := containsAny(lowered, recencyTerms)
	topical := containsAny(lowered, topicalTerms)
	switch {
	case recency && topical:
		return domain.RouteBoth
	case recency:
		return domain.RouteLive
	default:
		return domain.RouteStatic
	}
}

// OnTopic reports whether the query belongs to the knowledge domain.
func (r *LexicalRouter) OnTopic(text string) bool {
	return containsAny(strings.ToLower(text), domainTerms)
}

// Route builds the full classified query in one call.
func (r *LexicalRouter) Route(text string) domain.Query {
	return domain.Query{
		Text:    text,
		Route:   r.Classify(text),
		OnTopic: r.OnTopic(text),
	}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
