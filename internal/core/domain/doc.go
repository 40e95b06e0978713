// Package domain defines the core business entities for Lore.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A corpus document scheduled for indexing
//   - Chunk: An embeddable unit within a document
//   - FeedSource / FeedItem: Live feed configuration and fetched entries
//   - Route: The evidence-sourcing decision for a query
//   - Evidence / RetrievalResult: Ranked output of hybrid retrieval
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
