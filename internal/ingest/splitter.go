package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// separators are tried in order: paragraph, line, sentence, word, and finally
// a hard character cut. The largest unit that fits within the chunk size wins.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits document text into overlapping character-bounded chunks.
// Splitting is deterministic: the same text always yields the same chunk texts.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter creates a splitter with the given size and overlap (in characters).
// Overlap is clamped below chunkSize so a chunk can never consist only of
// repeated trailing context.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split chunks every document, carrying provenance metadata onto each chunk.
// A document shorter than the chunk size yields exactly one chunk. Chunk IDs
// are the document ID plus the chunk sequence number, so rebuilding an
// unchanged corpus reproduces the same IDs.
func (s *Splitter) Split(docs []*models.Document) []*models.Chunk {
	var chunks []*models.Chunk
	now := time.Now().UTC()
	for _, doc := range docs {
		for i, text := range s.SplitText(doc.Content) {
			chunks = append(chunks, &models.Chunk{
				ID:         fmt.Sprintf("%s_%d", doc.ID, i),
				DocumentID: doc.ID,
				Source:     doc.Source,
				SourcePath: doc.Path,
				ChunkIndex: i,
				Content:    text,
				CreatedAt:  now,
			})
		}
	}
	return chunks
}

// SplitText splits text into chunks of at most chunkSize characters, with up
// to chunkOverlap characters of trailing context repeated at the start of the
// next chunk. Returns nil for empty or whitespace-only text.
func (s *Splitter) SplitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, separators)
}

// split recursively breaks text by the first separator present, recursing with
// finer separators for any piece still larger than the chunk size, and merges
// adjacent small pieces back together with overlap.
func (s *Splitter) split(text string, seps []string) []string {
	sep, rest := pickSeparator(text, seps)
	var parts []string
	if sep == "" {
		parts = hardSplit(text, s.chunkSize)
	} else {
		parts = splitKeepSeparator(text, sep)
	}

	var out []string
	var good []string
	for _, p := range parts {
		if len(p) <= s.chunkSize {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, hardSplit(p, s.chunkSize)...)
		} else {
			out = append(out, s.split(p, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good)...)
	}
	return out
}

// merge joins consecutive pieces into chunks no larger than chunkSize,
// carrying at most chunkOverlap trailing characters into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0
	for _, piece := range pieces {
		if total+len(piece) > s.chunkSize && len(window) > 0 {
			if c := strings.TrimSpace(strings.Join(window, "")); c != "" {
				chunks = append(chunks, c)
			}
			for total > s.chunkOverlap || (total+len(piece) > s.chunkSize && total > 0) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += len(piece)
	}
	if c := strings.TrimSpace(strings.Join(window, "")); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

// pickSeparator returns the first separator present in text and the finer
// separators remaining after it. The empty separator always matches.
func pickSeparator(text string, seps []string) (string, []string) {
	for i, sep := range seps {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, seps[i+1:]
		}
	}
	return "", nil
}

// splitKeepSeparator splits text by sep, keeping the separator attached to the
// preceding piece so concatenating pieces recovers the original text.
func splitKeepSeparator(text, sep string) []string {
	raw := strings.SplitAfter(text, sep)
	parts := raw[:0]
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// hardSplit cuts text into pieces of at most limit bytes at rune boundaries.
// Only reached when a single unbroken token exceeds the chunk size.
func hardSplit(text string, limit int) []string {
	var parts []string
	runes := []rune(text)
	start := 0
	size := 0
	for i, r := range runes {
		rl := len(string(r))
		if size+rl > limit && size > 0 {
			parts = append(parts, string(runes[start:i]))
			start = i
			size = 0
		}
		size += rl
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}
