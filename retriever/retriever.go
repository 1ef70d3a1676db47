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


// Package retriever turns natural-language queries into ranked chunk
// results. It combines dense similarity from the vector store with a
// lightweight lexical rerank, and can fan a query out into multiple
// variants for better recall.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/lectern-ai/lectern/ai"
	"github.com/lectern-ai/lectern/core"
)

// ErrEmptyQuery is returned when a query is blank.
var ErrEmptyQuery = errors.New("empty query")

// SearchStore is the vector store surface the retriever needs.
type SearchStore interface {
	Search(queryVector []float32, courseIDs []int64, k int) []core.RetrievalResult
	ChunksByChapter(courseID int64, chapterTitle string) []core.RetrievalResult
}

// Rerank blend weights. Dense similarity dominates; lexical overlap and
// exact phrase presence nudge borderline chunks.
const (
	vectorWeight  = 0.6
	keywordWeight = 0.3
	phraseWeight  = 0.1
)

const defaultPoolSize = 4

// Retriever executes retrieval strategies against a vector store.
type Retriever struct {
	store    SearchStore
	embedder ai.Embedder
	pool     *ants.Pool
	rerank   bool
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithPoolSize sets the worker pool size used for multi-query fan-out.
func WithPoolSize(size int) Option {
	return func(r *Retriever) error {
		if size <= 0 {
			return fmt.Errorf("pool size must be positive, got %d", size)
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return fmt.Errorf("creating worker pool: %w", err)
		}
		if r.pool != nil {
			r.pool.Release()
		}
		r.pool = pool
		return nil
	}
}

// WithoutRerank disables the lexical rerank pass, results keep raw
// vector similarity order.
func WithoutRerank() Option {
	return func(r *Retriever) error {
		r.rerank = false
		return nil
	}
}

// WithLogger sets the logger used by the retriever.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

// New creates a Retriever over the given store and embedder.
func New(store SearchStore, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if store == nil {
		return nil, errors.New("store required")
	}
	if embedder == nil {
		return nil, errors.New("embedder required")
	}
	r := &Retriever{
		store:    store,
		embedder: embedder,
		rerank:   true,
		logger:   slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			if r.pool != nil {
				r.pool.Release()
			}
			return nil, err
		}
	}
	if r.pool == nil {
		pool, err := ants.NewPool(defaultPoolSize)
		if err != nil {
			return nil, fmt.Errorf("creating worker pool: %w", err)
		}
		r.pool = pool
	}
	return r, nil
}

// Release frees the retriever's worker pool.
func (r *Retriever) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// RetrieveForQuery embeds the query and returns up to limit reranked
// results, restricted to courseIDs when non-empty.
func (r *Retriever) RetrieveForQuery(ctx context.Context, query string, courseIDs []int64, limit int) ([]core.RetrievalResult, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		return nil, nil
	}

	vec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	// Fetch extra candidates so the rerank has room to promote.
	results := r.store.Search(vec, courseIDs, 2*limit)
	if r.rerank {
		results = r.rerankResults(query, results)
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// rerankResults blends vector similarity with lexical signals and
// re-sorts. The input order breaks ties, keeping the pass stable.
func (r *Retriever) rerankResults(query string, results []core.RetrievalResult) []core.RetrievalResult {
	terms := queryTerms(query)
	for i := range results {
		blended := vectorWeight*results[i].Score +
			keywordWeight*keywordOverlap(terms, results[i].Content) +
			phraseWeight*phraseBonus(query, results[i].Content)
		results[i].Score = blended
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// RetrieveMultiQuery runs each query concurrently, keeps at most
// perQueryLimit results per query, deduplicates by chunk identifier and
// truncates to totalLimit. When the same chunk matches several queries
// the occurrence from the earliest query in the list wins, so output
// order does not depend on goroutine scheduling.
func (r *Retriever) RetrieveMultiQuery(ctx context.Context, queries []string, courseIDs []int64, perQueryLimit, totalLimit int) ([]core.RetrievalResult, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	perQuery := make([][]core.RetrievalResult, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		i, query := i, query
		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			perQuery[i], errs[i] = r.RetrieveForQuery(ctx, query, courseIDs, perQueryLimit)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submitting query %d: %w", i, submitErr)
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var merged []core.RetrievalResult
	for _, results := range perQuery {
		for _, res := range results {
			if _, dup := seen[res.ID]; dup {
				continue
			}
			seen[res.ID] = struct{}{}
			merged = append(merged, res)
		}
	}
	if totalLimit > 0 && len(merged) > totalLimit {
		merged = merged[:totalLimit]
	}
	return merged, nil
}

// HybridSearch runs the query alongside a keyword-only variant built
// from its most frequent terms. The variant is skipped when the query
// yields fewer than two keywords, a single term adds nothing over the
// original.
func (r *Retriever) HybridSearch(ctx context.Context, query string, courseIDs []int64, limit int) ([]core.RetrievalResult, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	queries := []string{query}
	keywords := ExtractKeywords(query, 5)
	if len(keywords) >= 2 {
		variant := strings.Join(keywords, " ")
		if variant != query {
			queries = append(queries, variant)
		}
	}
	return r.RetrieveMultiQuery(ctx, queries, courseIDs, limit, limit)
}

// RetrieveByChapter returns chunks of a chapter in document order. No
// embedding is involved, this is a pure metadata scan. A limit <= 0
// returns all chunks.
func (r *Retriever) RetrieveByChapter(courseID int64, chapterTitle string, limit int) []core.RetrievalResult {
	results := r.store.ChunksByChapter(courseID, chapterTitle)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
