// Copyright 2026 Lectern AI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package vectorstore holds dense chunk embeddings in memory alongside
// positionally aligned metadata and answers inner-product similarity
// queries over them. Both halves persist to disk and reload together so
// that position i in the vector table always describes metadata entry i.
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/lectern-ai/lectern/ai"
	"github.com/lectern-ai/lectern/core"
)

// Metadata describes one stored embedding. Position holds the entry's
// index in the vector table; the two are kept aligned at all times.
type Metadata struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	CourseID     int64  `json:"course_id"`
	FileID       string `json:"file_id"`
	ChapterTitle string `json:"chapter_title"`
	ChunkIndex   int    `json:"chunk_index"`
	PageNumber   int    `json:"page_number"`
	Position     int    `json:"faiss_index"`
	ChunkID      int64  `json:"chunk_id,omitempty"`
	Deleted      bool   `json:"deleted,omitempty"`
}

// Store is an in-memory vector index with JSON-persisted metadata.
// All exported methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	dim      int
	vectors  [][]float32
	metadata []*Metadata

	embedder  ai.Embedder
	indexPath string
	metaPath  string
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithPersistence sets the index and metadata file paths. When both are
// set the store loads existing state at construction and saves after
// every mutation.
func WithPersistence(indexPath, metaPath string) Option {
	return func(s *Store) error {
		s.indexPath = indexPath
		s.metaPath = metaPath
		return nil
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// New creates a Store backed by the given embedder. The index dimension
// is taken from the embedder.
func New(embedder ai.Embedder, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	s := &Store{
		dim:      embedder.Dimension(),
		embedder: embedder,
		logger:   slog.Default().With("component", "vectorstore"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.indexPath != "" && s.metaPath != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dimension returns the index dimension.
func (s *Store) Dimension() int { return s.dim }

// Count returns the number of stored entries, deleted ones included.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// fitVector adapts a raw embedding to the index dimension and L2
// normalizes it, so inner product equals cosine similarity. Short
// vectors are zero-padded, long ones truncated.
func (s *Store) fitVector(raw []float32) []float32 {
	v := make([]float32, s.dim)
	copy(v, raw)

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range v {
			v[i] *= inv
		}
	}
	return v
}

// StoreEmbedding embeds a single text and appends it with the given
// metadata. The returned identifier is the entry's position formatted as
// "chunk_N". Fields ID and Position of meta are assigned by the store.
func (s *Store) StoreEmbedding(ctx context.Context, text string, meta Metadata) (string, error) {
	raw, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embedding text: %w", err)
	}
	if len(raw) == 0 {
		return "", ErrDimensionMismatch
	}

	s.mu.Lock()
	pos := len(s.vectors)
	meta.Position = pos
	meta.ID = fmt.Sprintf("chunk_%d", pos)
	s.vectors = append(s.vectors, s.fitVector(raw))
	m := meta
	s.metadata = append(s.metadata, &m)
	s.mu.Unlock()

	if err := s.Save(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// AddBatch embeds all chunks and appends them in order. A zero-length
// embedding anywhere in the batch aborts the whole batch before any
// entry is stored. Returns the identifiers assigned to the new entries.
func (s *Store) AddBatch(ctx context.Context, chunks []core.ContentUnit) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	raws, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding batch: %w", err)
	}
	if len(raws) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			ErrDimensionMismatch, len(raws), len(texts))
	}
	fitted := make([][]float32, len(raws))
	for i, raw := range raws {
		if len(raw) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at batch position %d",
				ErrDimensionMismatch, i)
		}
		fitted[i] = s.fitVector(raw)
	}

	s.mu.Lock()
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		pos := len(s.vectors)
		id := fmt.Sprintf("chunk_%d", pos)
		s.vectors = append(s.vectors, fitted[i])
		s.metadata = append(s.metadata, &Metadata{
			ID:           id,
			Content:      c.Content,
			CourseID:     c.CourseID,
			FileID:       c.FileID,
			ChapterTitle: c.ChapterTitle,
			ChunkIndex:   c.ChunkIndex,
			PageNumber:   c.PageNumber,
			Position:     pos,
			ChunkID:      int64(c.Id),
		})
		ids[i] = id
	}
	s.mu.Unlock()

	if err := s.Save(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Search returns up to k entries most similar to the query vector,
// restricted to the given courses when courseIDs is non-empty. Deleted
// entries never match. Fewer than k results is not an error.
func (s *Store) Search(queryVector []float32, courseIDs []int64, k int) []core.RetrievalResult {
	if k <= 0 {
		return nil
	}
	q := s.fitVector(queryVector)

	courseSet := make(map[int64]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		courseSet[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		pos   int
		score float32
	}
	// Over-fetch so that course filtering and deletions still leave
	// enough candidates.
	fetch := 2 * k
	candidates := make([]scored, 0, len(s.vectors))
	for pos, v := range s.vectors {
		candidates = append(candidates, scored{pos: pos, score: dot(q, v)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	results := make([]core.RetrievalResult, 0, k)
	seen := 0
	for _, c := range candidates {
		if seen >= fetch {
			break
		}
		seen++
		m := s.metadata[c.pos]
		if m.Deleted {
			continue
		}
		if len(courseSet) > 0 {
			if _, ok := courseSet[m.CourseID]; !ok {
				continue
			}
		}
		results = append(results, core.RetrievalResult{
			ID:           m.ID,
			Content:      m.Content,
			CourseID:     m.CourseID,
			FileID:       m.FileID,
			ChapterTitle: m.ChapterTitle,
			ChunkIndex:   m.ChunkIndex,
			PageNumber:   m.PageNumber,
			Score:        c.score,
		})
		if len(results) >= k {
			break
		}
	}
	return results
}

// SearchText embeds the query and searches with the resulting vector.
func (s *Store) SearchText(ctx context.Context, query string, courseIDs []int64, k int) ([]core.RetrievalResult, error) {
	vec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return s.Search(vec, courseIDs, k), nil
}

// ChunksByChapter returns all live entries of a chapter within a course,
// ordered by chunk index.
func (s *Store) ChunksByChapter(courseID int64, chapterTitle string) []core.RetrievalResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []core.RetrievalResult
	for _, m := range s.metadata {
		if m.Deleted || m.CourseID != courseID || m.ChapterTitle != chapterTitle {
			continue
		}
		results = append(results, core.RetrievalResult{
			ID:           m.ID,
			Content:      m.Content,
			CourseID:     m.CourseID,
			FileID:       m.FileID,
			ChapterTitle: m.ChapterTitle,
			ChunkIndex:   m.ChunkIndex,
			PageNumber:   m.PageNumber,
			Score:        1,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ChunkIndex < results[j].ChunkIndex
	})
	return results
}

// DeleteByCourse soft-deletes all entries of a course. Positions are
// retained so the vector table stays aligned with the metadata.
// Returns the number of entries flagged.
func (s *Store) DeleteByCourse(courseID int64) (int, error) {
	s.mu.Lock()
	flagged := 0
	for _, m := range s.metadata {
		if m.CourseID == courseID && !m.Deleted {
			m.Deleted = true
			flagged++
		}
	}
	s.mu.Unlock()

	if flagged > 0 {
		if err := s.Save(); err != nil {
			return flagged, err
		}
	}
	s.logger.Info("deleted course entries", "course_id", courseID, "flagged", flagged)
	return flagged, nil
}

// Reset discards all vectors and metadata. Used before a full reindex.
func (s *Store) Reset() error {
	s.mu.Lock()
	s.vectors = nil
	s.metadata = nil
	s.mu.Unlock()
	return s.Save()
}

// Statistics summarizes the contents of the store.
type Statistics struct {
	TotalVectors int           `json:"total_vectors"`
	LiveVectors  int           `json:"live_vectors"`
	Deleted      int           `json:"deleted"`
	Dimension    int           `json:"dimension"`
	Courses      map[int64]int `json:"courses"`
}

// Stats returns counts of live and deleted entries per course.
func (s *Store) Stats() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{
		TotalVectors: len(s.vectors),
		Dimension:    s.dim,
		Courses:      make(map[int64]int),
	}
	for _, m := range s.metadata {
		if m.Deleted {
			stats.Deleted++
			continue
		}
		stats.LiveVectors++
		stats.Courses[m.CourseID]++
	}
	return stats
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
