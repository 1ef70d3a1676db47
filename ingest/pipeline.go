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


// Package ingest runs the upload path end to end: save the file, chunk
// it, persist the chunks, index their embeddings and summarize each
// chunk. Embedding work is offloaded to a worker pool so ingestion does
// not stall concurrent retrieval.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/lectern-ai/lectern/ai"
	"github.com/lectern-ai/lectern/chunker"
	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/storage"
	"github.com/lectern-ai/lectern/vectorstore"
)

// ErrEmptyFile is returned when an upload carries no content.
var ErrEmptyFile = errors.New("empty file")

// Status identifies a stage of ingestion reported through StatusFunc.
type Status string

const (
	StatusSaving      Status = "saving"
	StatusChunking    Status = "chunking"
	StatusPersisting  Status = "persisting"
	StatusEmbedding   Status = "embedding"
	StatusSummarizing Status = "summarizing"
	StatusDone        Status = "done"
)

// StatusFunc receives progress callbacks during ingestion.
type StatusFunc func(status Status, detail string)

// Result summarizes one completed ingestion.
type Result struct {
	FileID        string             `json:"file_id"`
	Filename      string             `json:"filename"`
	FileSize      int                `json:"file_size"`
	ChunksCreated int                `json:"chunks_created"`
	Statistics    chunker.Statistics `json:"statistics"`
	Summaries     int                `json:"summaries"`
}

const defaultEmbedBatchSize = 32

// Pipeline ingests uploaded files into storage and the vector index.
type Pipeline struct {
	chunker     *chunker.Chunker
	store       *vectorstore.Store
	chunks      storage.ChunkRepository
	summaries   storage.SummaryRepository
	summarizer  ai.Summarizer
	pool        *ants.Pool
	uploadsDir  string
	batchSize   int
	statusFunc  StatusFunc
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithSummarizer enables per-chunk summaries during ingestion.
func WithSummarizer(summarizer ai.Summarizer, repo storage.SummaryRepository) Option {
	return func(p *Pipeline) error {
		p.summarizer = summarizer
		p.summaries = repo
		return nil
	}
}

// WithStatusFunc installs a progress callback.
func WithStatusFunc(fn StatusFunc) Option {
	return func(p *Pipeline) error {
		p.statusFunc = fn
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per batch.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) error {
		if n <= 0 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		p.batchSize = n
		return nil
	}
}

// WithPool sets the worker pool used for embedding offload. The
// pipeline does not release a pool it was given.
func WithPool(pool *ants.Pool) Option {
	return func(p *Pipeline) error {
		p.pool = pool
		return nil
	}
}

// WithLogger sets the logger used by the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// New creates an ingestion Pipeline. Uploads are stored under
// uploadsDir with uuid names so concurrent uploads never collide.
func New(ck *chunker.Chunker, store *vectorstore.Store, chunkRepo storage.ChunkRepository, uploadsDir string, opts ...Option) (*Pipeline, error) {
	if ck == nil {
		return nil, errors.New("chunker required")
	}
	if store == nil {
		return nil, errors.New("vector store required")
	}
	if chunkRepo == nil {
		return nil, errors.New("chunk repository required")
	}
	p := &Pipeline{
		chunker:    ck,
		store:      store,
		chunks:     chunkRepo,
		uploadsDir: uploadsDir,
		batchSize:  defaultEmbedBatchSize,
		logger:     slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Pipeline) report(status Status, detail string) {
	if p.statusFunc != nil {
		p.statusFunc(status, detail)
	}
}

// ProcessFile ingests one uploaded file for a course. The file is saved
// under a fresh uuid, chunked, persisted, embedded and summarized.
// Summarization failures degrade to missing summaries; every other
// stage failure aborts the ingestion.
func (p *Pipeline) ProcessFile(ctx context.Context, courseID int64, fileBytes []byte, filename string) (*Result, error) {
	if len(fileBytes) == 0 {
		return nil, ErrEmptyFile
	}

	fileID := uuid.NewString()
	savedPath, err := p.saveUpload(fileID, filename, fileBytes)
	if err != nil {
		return nil, err
	}

	p.report(StatusChunking, filename)
	units, err := p.chunker.ProcessFile(savedPath, courseID, fileID)
	if err != nil && !errors.Is(err, chunker.ErrExtractionFailed) {
		return nil, fmt.Errorf("chunking %s: %w", filename, err)
	}
	if err != nil {
		p.logger.Warn("extraction degraded, ingesting placeholder content",
			"file", filename, "error", err)
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: no chunks produced from %s", ErrEmptyFile, filename)
	}

	p.report(StatusPersisting, fmt.Sprintf("%d chunks", len(units)))
	refs := make([]*core.ContentUnit, len(units))
	for i := range units {
		refs[i] = &units[i]
	}
	if _, err := p.chunks.AddChunks(ctx, refs...); err != nil {
		return nil, fmt.Errorf("persisting chunks: %w", err)
	}

	p.report(StatusEmbedding, fmt.Sprintf("%d chunks", len(units)))
	if err := p.embedAll(ctx, units); err != nil {
		return nil, fmt.Errorf("indexing chunks: %w", err)
	}

	summaryCount := 0
	if p.summarizer != nil {
		p.report(StatusSummarizing, filename)
		summaryCount = p.summarizeAll(ctx, units)
	}

	p.report(StatusDone, filename)
	return &Result{
		FileID:        fileID,
		Filename:      filename,
		FileSize:      len(fileBytes),
		ChunksCreated: len(units),
		Statistics:    chunker.Stats(units),
		Summaries:     summaryCount,
	}, nil
}

// saveUpload writes the raw upload under a uuid-based name, preserving
// the original extension so the extractor can dispatch on it.
func (p *Pipeline) saveUpload(fileID, filename string, fileBytes []byte) (string, error) {
	p.report(StatusSaving, filename)
	if err := os.MkdirAll(p.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads dir: %w", err)
	}
	saved := filepath.Join(p.uploadsDir, fileID+filepath.Ext(filename))
	if err := os.WriteFile(saved, fileBytes, 0o644); err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return saved, nil
}

// embedAll indexes chunks batch by batch. Batches run on the worker
// pool when one is configured; appends stay ordered because each batch
// is submitted and awaited before the next, the pool only moves the
// CPU-bound work off the caller's goroutine.
func (p *Pipeline) embedAll(ctx context.Context, units []core.ContentUnit) error {
	for start := 0; start < len(units); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + p.batchSize
		if end > len(units) {
			end = len(units)
		}
		batch := units[start:end]

		if p.pool == nil {
			if _, err := p.store.AddBatch(ctx, batch); err != nil {
				return err
			}
			continue
		}

		var (
			wg       sync.WaitGroup
			batchErr error
		)
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			_, batchErr = p.store.AddBatch(ctx, batch)
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("submitting embed batch: %w", err)
		}
		wg.Wait()
		if batchErr != nil {
			return batchErr
		}
	}
	return nil
}

// summarizeAll summarizes each chunk and persists the results. Failed
// summaries are skipped, ingestion still succeeds without them.
func (p *Pipeline) summarizeAll(ctx context.Context, units []core.ContentUnit) int {
	var summaries []*core.Summary
	for _, unit := range units {
		if ctx.Err() != nil {
			break
		}
		text, err := p.summarizer.SummarizeText(ctx, unit.Content)
		if err != nil {
			p.logger.Warn("chunk summary failed", "chunk_index", unit.ChunkIndex, "error", err)
			continue
		}
		if text == "" {
			continue
		}
		summaries = append(summaries, &core.Summary{
			CourseID:   unit.CourseID,
			FileID:     unit.FileID,
			ChunkIndex: unit.ChunkIndex,
			Content:    text,
		})
	}
	if len(summaries) == 0 || p.summaries == nil {
		return 0
	}
	if _, err := p.summaries.AddSummaries(ctx, summaries...); err != nil {
		p.logger.Warn("persisting summaries failed", "error", err)
		return 0
	}
	return len(summaries)
}
