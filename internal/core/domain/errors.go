package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrConfigMissing indicates a required startup value is absent.
	// Fatal at startup, surfaced to the operator.
	ErrConfigMissing = errors.New("required configuration missing")

	// ErrCorpusUnreadable indicates the corpus directory cannot be read.
	ErrCorpusUnreadable = errors.New("corpus directory unreadable")

	// ErrBuildFailed indicates an index build attempt failed.
	// Recoverable by retrying the whole build; no partial index is
	// ever committed.
	ErrBuildFailed = errors.New("index build failed")

	// ErrIndexUnavailable indicates a query arrived before a build
	// has completed. Recoverable by the caller.
	ErrIndexUnavailable = errors.New("index not ready")

	// ErrInvalidFeedSource indicates a malformed feed registry row.
	// Local to that row; loading continues.
	ErrInvalidFeedSource = errors.New("invalid feed source")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the completion service is not
	// configured. Answer synthesis is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
