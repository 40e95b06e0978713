// Package services contains the core application logic: the
// persistent index lifecycle, the ingestion pipeline, the feed
// aggregator, the domain router and the retrieval fusion ranker.
//
// Services depend only on domain types and on the port interfaces in
// internal/core/ports; all I/O happens behind driven ports.
package services
