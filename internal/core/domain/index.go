package domain

import "time"

// IndexVersion is the persisted marker proving a complete index
// exists. Exactly one marker is active per deployment. It is written
// only after a build completes, so a crash mid-build leaves it absent
// rather than pointing at half-written data.
type IndexVersion struct {
	// Token identifies the index layout generation. A token mismatch
	// against CurrentIndexToken forces a rebuild.
	Token string

	// CreatedAt is when the build completed.
	CreatedAt time.Time

	// Documents and Chunks record the build counts for verification.
	Documents int
	Chunks    int
}

// CurrentIndexToken is the index layout generation written by this
// release. Bump it when the chunking policy changes incompatibly.
const CurrentIndexToken = "2.0"

// NewIndexVersion stamps a freshly completed build with the current
// token.
func NewIndexVersion(documents, chunks int) IndexVersion {
	return IndexVersion{
		Token:     CurrentIndexToken,
		CreatedAt: time.Now().UTC(),
		Documents: documents,
		Chunks:    chunks,
	}
}
