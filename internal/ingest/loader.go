// Package ingest loads corpus documents and splits them into chunks.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/fileid"
	"github.com/hyperjump/kotae/internal/models"
)

// Loader reads a corpus directory and extracts one Document per selected file.
type Loader struct {
	extractor  *extract.Extractor
	extensions []string
	logger     *zap.Logger // optional; when set, logs skipped files
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for extraction warnings and debug output.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader creates a loader selecting files by the given extensions
// (case-insensitive, leading dot).
func NewLoader(extractor *extract.Extractor, extensions []string, opts ...LoaderOption) *Loader {
	ld := &Loader{extractor: extractor, extensions: extensions}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load walks dir (non-recursive) and extracts text from every file whose
// extension is selected. A single file's extraction failure is logged and
// skipped; it never aborts the rest of the corpus. If dir does not exist it
// is created empty and zero documents are returned.
func (ld *Loader) Load(dir string) ([]*models.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read corpus directory: %w", err)
		}
		if ld.logger != nil {
			ld.logger.Info("corpus directory missing, creating it", zap.String("dir", dir))
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create corpus directory: %w", err)
		}
		return nil, nil
	}

	var docs []*models.Document
	for _, entry := range entries {
		if entry.IsDir() || !ld.selected(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}

		content, err := ld.extractor.Extract(absPath)
		if err != nil {
			if ld.logger != nil {
				ld.logger.Warn("skipping file, extraction failed",
					zap.String("file", entry.Name()), zap.Error(err))
			}
			continue
		}
		content = Normalize(content)
		if content == "" {
			if ld.logger != nil {
				ld.logger.Debug("skipping file, no extractable text", zap.String("file", entry.Name()))
			}
			continue
		}

		docs = append(docs, &models.Document{
			ID:      fileid.DocID(absPath),
			Source:  entry.Name(),
			Path:    absPath,
			Content: content,
		})
		if ld.logger != nil {
			ld.logger.Debug("loaded document",
				zap.String("file", entry.Name()), zap.Int("chars", len(content)))
		}
	}
	return docs, nil
}

func (ld *Loader) selected(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range ld.extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
