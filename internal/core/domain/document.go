package domain

import "fmt"

// Document represents one corpus source file prepared for indexing.
// It is the canonical representation after text extraction.
// Documents are immutable once ingested and replaced wholesale on rebuild.
type Document struct {
	// ID is the unique identifier, derived from the source path.
	ID string

	// Path is the original location within the corpus directory.
	Path string

	// Segments are the plain-text segments produced by the extraction
	// collaborator, in document order.
	Segments []string
}

// Content joins all segments into the full document text.
func (d *Document) Content() string {
	switch len(d.Segments) {
	case 0:
		return ""
	case 1:
		return d.Segments[0]
	}
	var total int
	for _, s := range d.Segments {
		total += len(s)
	}
	buf := make([]byte, 0, total+2*len(d.Segments))
	for i, s := range d.Segments {
		if i > 0 {
			buf = append(buf, '\n', '\n')
		}
		buf = append(buf, s...)
	}
	return string(buf)
}

// Chunk represents an embeddable unit within a document.
// Chunks are created only during ingestion and never mutated.
// A chunk never spans a document boundary.
type Chunk struct {
	// ID is the deterministic identifier "<documentID>#<position>".
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic search.
	// Nil until the ingestion pipeline has embedded the chunk.
	Embedding []float32
}

// ChunkID builds the deterministic chunk identifier for a document
// position. Identical input corpora therefore produce identical chunk
// IDs across rebuilds.
func ChunkID(documentID string, position int) string {
	return fmt.Sprintf("%s#%d", documentID, position)
}

// BuildReport summarises one ingestion run for operator verification.
// An all-zero report for a non-empty corpus is a failure signal, never
// a silent success.
type BuildReport struct {
	// DocumentCount is the number of documents ingested.
	DocumentCount int

	// CharCount is the total character count across all documents.
	CharCount int

	// ChunkCount is the number of chunks written to the index.
	ChunkCount int
}

// Empty reports whether the build produced nothing.
func (r BuildReport) Empty() bool {
	return r.DocumentCount == 0 && r.CharCount == 0 && r.ChunkCount == 0
}
