// Package vector provides an in-memory vector index with file persistence.
package vector

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrNotFound reports that no persisted index exists at the given path.
var ErrNotFound = errors.New("no persisted index found")

// DimensionMismatchError reports that a persisted index was built with a
// different embedding dimension than the one configured now. The caller is
// expected to rebuild rather than mix vector spaces.
type DimensionMismatchError struct {
	Got  int
	Want int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("index dimension mismatch: file has %d, configured embedder produces %d", e.Got, e.Want)
}

// Result is one search hit: a chunk ID with its similarity score.
type Result struct {
	ID    string
	Score float64
}

// Index is a brute-force inner-product index. Vectors are expected to be
// L2-normalized, which makes inner product equal to cosine similarity.
// Brute force is exact and comfortably fast for corpus sizes in the tens of
// thousands of chunks.
type Index struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	return &Index{dimensions: dimensions}, nil
}

// Add appends vectors with the given IDs. Every vector must match the index
// dimension.
func (x *Index) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != x.dimensions {
			return &DimensionMismatchError{Got: len(vectors[i]), Want: x.dimensions}
		}
		vec := make([]float32, x.dimensions)
		copy(vec, vectors[i])
		x.ids = append(x.ids, id)
		x.vectors = append(x.vectors, vec)
	}
	return nil
}

// Search returns up to k results ordered by descending similarity.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != x.dimensions {
		return nil, &DimensionMismatchError{Got: len(query), Want: x.dimensions}
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if k <= 0 || len(x.ids) == 0 {
		return nil, nil
	}

	scores := make([]Result, len(x.ids))
	for i, vec := range x.vectors {
		var dot float64
		for j := 0; j < x.dimensions; j++ {
			dot += float64(query[j] * vec[j])
		}
		scores[i] = Result{ID: x.ids[i], Score: dot}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k], nil
}

// Reset discards all vectors, keeping the configured dimension.
func (x *Index) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = nil
	x.vectors = nil
}

// Size returns the number of vectors in the index.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Dimensions returns the vector dimension the index was built with.
func (x *Index) Dimensions() int {
	return x.dimensions
}

// Save persists the index to path, creating parent directories as needed.
// Format: dimensions (uint32), count (uint32), then per vector: idLen
// (uint32), id bytes, vector (dimensions*4 bytes). All little-endian.
func (x *Index) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(x.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(x.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range x.ids {
		idBytes := []byte(id)
		if err := binary.Write(f, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := f.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := f.Write(float32SliceToBytes(x.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads a persisted index from path, replacing the in-memory contents.
// Returns ErrNotFound if the file does not exist and *DimensionMismatchError
// if it was written with a different dimension.
func (x *Index) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != x.dimensions {
		return &DimensionMismatchError{Got: int(dim), Want: x.dimensions}
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}

	ids := make([]string, 0, n)
	vectors := make([][]float32, 0, n)
	buf := make([]byte, x.dimensions*4)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(f, binary.LittleEndian, &idLen); err != nil {
			return fmt.Errorf("read id len: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(f, idBytes); err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		ids = append(ids, string(idBytes))
		vectors = append(vectors, bytesToFloat32Slice(buf))
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = ids
	x.vectors = vectors
	return nil
}

func float32SliceToBytes(s []float32) []byte {
	out := make([]byte, len(s)*4)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*4:(i+1)*4], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : (i+1)*4]))
	}
	return out
}
