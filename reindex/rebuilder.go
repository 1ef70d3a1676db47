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


// Package reindex rebuilds the vector index from persisted chunks. It is
// used after switching embedding models or recovering from a corrupt or
// discarded index file: the chunk repository remains the source of truth,
// the index is derived state.
package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/storage"
	"github.com/lectern-ai/lectern/vectorstore"
)

// Config holds configuration for a rebuild operation.
type Config struct {
	// BatchSize is the number of chunks embedded per batch.
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks).
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding batch.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Rebuilder re-embeds all chunks of the given courses into a fresh index.
type Rebuilder struct {
	chunks   storage.ChunkRepository
	store    *vectorstore.Store
	config   *Config
	progress io.Writer
}

// NewRebuilder creates a rebuilder. A nil config uses DefaultConfig.
// progress: where to write progress output (typically os.Stderr)
func NewRebuilder(chunks storage.ChunkRepository, store *vectorstore.Store, config *Config, progress io.Writer) *Rebuilder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Rebuilder{
		chunks:   chunks,
		store:    store,
		config:   config,
		progress: progress,
	}
}

// Run discards the current index and re-embeds every chunk of the given
// courses. The chunk repository is read-only during the rebuild, so a
// failed run can simply be repeated.
func (r *Rebuilder) Run(ctx context.Context, courseIDs ...int64) error {
	if len(courseIDs) == 0 {
		return ErrNoCourses
	}

	var all []core.ContentUnit
	for _, courseID := range courseIDs {
		chunks, err := r.chunks.GetChunksByCourse(ctx, courseID)
		if err != nil {
			return fmt.Errorf("failed to query chunks for course %d: %w", courseID, err)
		}
		for _, chunk := range chunks {
			all = append(all, *chunk)
		}
	}

	if len(all) == 0 {
		fmt.Fprintf(r.progress, "No chunks found in storage (0 chunks)\n")
		return nil
	}

	if err := r.store.Reset(); err != nil {
		return fmt.Errorf("failed to reset index: %w", err)
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d chunks (batch size: %d)\n",
		len(all), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, len(all), r.config.ReportInterval)
	tracker.Start()

	processed := 0
	for start := 0; start < len(all); start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > len(all) {
			end = len(all)
		}
		batch := all[start:end]

		err := RetryWithBackoff(ctx, func() error {
			_, err := r.store.AddBatch(ctx, batch)
			return err
		}, r.config.MaxRetries, r.config.RetryDelay)
		if err != nil {
			return fmt.Errorf("failed to embed batch after %d attempts: %w", r.config.MaxRetries, err)
		}

		processed += len(batch)
		tracker.Update(processed)
	}

	if err := r.store.Save(); err != nil {
		return fmt.Errorf("failed to persist index: %w", err)
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		len(all), elapsed.Round(time.Second), float64(len(all))/elapsed.Seconds())

	return nil
}
