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


package lectern

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/lectern-ai/lectern/ai"
	"github.com/lectern-ai/lectern/ai/openai"
	"github.com/lectern-ai/lectern/answer"
	"github.com/lectern-ai/lectern/chunker"
	"github.com/lectern-ai/lectern/ingest"
	"github.com/lectern-ai/lectern/notegen"
	"github.com/lectern-ai/lectern/reindex"
	"github.com/lectern-ai/lectern/retriever"
	badgerstore "github.com/lectern-ai/lectern/storage/badger"
	"github.com/lectern-ai/lectern/vectorstore"
)

// Engine wires storage, the vector index and the AI provider into one
// handle. Everything lives under a single data directory: the badger
// database, the index files and saved uploads.
type Engine struct {
	dataDir  string
	backend  *badgerstore.Backend
	repos    *badgerstore.Repositories
	store    *vectorstore.Store
	provider ai.Provider
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the configuration used to construct the OpenAI
// compatible provider. Ignored when WithProvider is also given.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built provider instead of constructing one
// from config. The engine takes ownership and closes it.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory uses in-memory storage and a non-persistent index.
// Intended for tests and throwaway sessions.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// NewEngine opens or creates an engine rooted at dataDir.
func NewEngine(dataDir string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badgerstore.OpenBackend(filepath.Join(dataDir, "db"), options.inMemory)
	if err != nil {
		return nil, err
	}

	repos, err := badgerstore.NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			backend.Close()
			return nil, err
		}
	}

	storeOpts := []vectorstore.Option{}
	if !options.inMemory {
		storeOpts = append(storeOpts, vectorstore.WithPersistence(
			filepath.Join(dataDir, "index.bin"),
			filepath.Join(dataDir, "index_meta.json"),
		))
	}
	store, err := vectorstore.New(provider.Embedder(), storeOpts...)
	if err != nil {
		provider.Close()
		repos.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		dataDir:  dataDir,
		backend:  backend,
		repos:    repos,
		store:    store,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the provider, repositories and backend. The vector
// index is saved after every mutation, so nothing is flushed here.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.repos.Close(); err != nil {
		e.logger.Error("error closing repositories", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Repositories exposes the storage layer.
func (e *Engine) Repositories() *badgerstore.Repositories {
	return e.repos
}

// VectorStore exposes the vector index.
func (e *Engine) VectorStore() *vectorstore.Store {
	return e.store
}

// Provider exposes the AI provider.
func (e *Engine) Provider() ai.Provider {
	return e.provider
}

// NewIngestionPipeline builds an ingestion pipeline writing into this
// engine's storage and index. A nil chunker uses the defaults.
// Summaries are enabled by default; callers can still override any
// option.
func (e *Engine) NewIngestionPipeline(ck *chunker.Chunker, opts ...ingest.Option) (*ingest.Pipeline, error) {
	if ck == nil {
		ck = chunker.New()
	}
	defaults := []ingest.Option{
		ingest.WithSummarizer(e.provider.Summarizer(), e.repos.Summaries),
	}
	return ingest.New(
		ck,
		e.store,
		e.repos.Chunks,
		filepath.Join(e.dataDir, "uploads"),
		append(defaults, opts...)...,
	)
}

// NewRetriever builds a retriever over this engine's index. The caller
// owns the returned retriever and must Release it.
func (e *Engine) NewRetriever(opts ...retriever.Option) (*retriever.Retriever, error) {
	return retriever.New(e.store, e.provider.Embedder(), opts...)
}

// NewAnswerService builds an answering service over the given retriever.
func (e *Engine) NewAnswerService(r *retriever.Retriever, opts ...answer.Option) (*answer.Service, error) {
	return answer.New(r, e.provider.Completer(), opts...)
}

// NewNotePipeline builds a note-generation pipeline using this engine's
// provider.
func (e *Engine) NewNotePipeline(opts ...notegen.Option) (*notegen.Pipeline, error) {
	return notegen.New(e.provider.Completer(), e.provider.Summarizer(), opts...)
}

// NewRebuilder builds an index rebuilder over this engine's chunks and
// index. A nil config uses reindex defaults.
func (e *Engine) NewRebuilder(config *reindex.Config, progress io.Writer) *reindex.Rebuilder {
	return reindex.NewRebuilder(e.repos.Chunks, e.store, config, progress)
}
