// Package fs loads the static document corpus from a local directory
// and watches it for changes.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/lore-cli/internal/logger"
)

var _ driven.CorpusLoader = (*Loader)(nil)

// corpusExtensions are the file types treated as corpus documents.
var corpusExtensions = map[string]bool{
	".md":  true,
	".txt": true,
}

// Loader reads plain-text documents from a directory tree.
type Loader struct {
	dir string
}

// NewLoader creates a corpus loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load walks the corpus directory and returns every readable
// document, sorted by ID. A missing directory is an error; an empty
// one returns zero documents.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		return nil, fmt.Errorf("corpus directory %s: %w", l.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus path %s is not a directory", l.dir)
	}

	var docs []domain.Document
	err = filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// Skip hidden directories like .git.
			if strings.HasPrefix(d.Name(), ".") && path != l.dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !corpusExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("corpus: skipping unreadable file %s: %v", path, err)
			return nil
		}

		rel, err := filepath.Rel(l.dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}

		text := strings.TrimSpace(string(content))
		if text == "" {
			logger.Debug("corpus: skipping empty file %s", rel)
			return nil
		}

		docs = append(docs, domain.Document{
			ID:       filepath.ToSlash(rel),
			Path:     path,
			Segments: splitSegments(text),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// splitSegments breaks a document into paragraph segments on blank
// lines.
func splitSegments(text string) []string {
	raw := strings.Split(text, "\n\n")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
