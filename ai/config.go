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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// CompletionHost is the base URL for the chat completion service API.
	CompletionHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small"
	EmbeddingModel string

	// CompletionModel is the model identifier for chat completions.
	// Example: "gpt-4o-mini", "qwen2.5:3b"
	CompletionModel string

	// APIKey authenticates against the backends. "none" works for local
	// OpenAI-compatible services that don't require authentication.
	APIKey string

	// EmbeddingDimension is the vector length the embedding model produces.
	// The vector store is constructed with this dimension.
	EmbeddingDimension int

	// RequestTimeout bounds every embedding and completion call. The
	// backends are the only sources of unbounded latency in the system, so
	// every call site gets this explicit cancellation boundary.
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithCompletionHost sets the completion service host URL.
func WithCompletionHost(host string) ConfigOption {
	return func(c *Config) {
		c.CompletionHost = host
	}
}

// WithHost sets both embedding and completion hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.CompletionHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithCompletionModel sets the completion model identifier.
func WithCompletionModel(model string) ConfigOption {
	return func(c *Config) {
		c.CompletionModel = model
	}
}

// WithAPIKey sets the API key for both backends.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingDimension sets the embedding vector dimension.
func WithEmbeddingDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDimension = dim
	}
}

// WithRequestTimeout sets the per-call timeout for backend requests.
func WithRequestTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services. By default both services use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:      defaultHost,
		CompletionHost:     defaultHost,
		EmbeddingModel:     "text-embedding-3-small",
		CompletionModel:    "gpt-4o-mini",
		APIKey:             "none",
		EmbeddingDimension: 1536,
		RequestTimeout:     2 * time.Minute,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// Validation errors for Config.
var (
	ErrEmbeddingHostRequired   = errors.New("embedding host is required")
	ErrCompletionHostRequired  = errors.New("completion host is required")
	ErrEmbeddingModelRequired  = errors.New("embedding model is required")
	ErrCompletionModelRequired = errors.New("completion model is required")
	ErrInvalidDimension        = errors.New("embedding dimension must be positive")
)

// Validate checks the configuration and normalizes host URLs.
func (c *Config) Validate() error {
	c.EmbeddingHost = strings.TrimRight(strings.TrimSpace(c.EmbeddingHost), "/")
	c.CompletionHost = strings.TrimRight(strings.TrimSpace(c.CompletionHost), "/")

	if c.EmbeddingHost == "" {
		return ErrEmbeddingHostRequired
	}
	if c.CompletionHost == "" {
		return ErrCompletionHostRequired
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return ErrEmbeddingModelRequired
	}
	if strings.TrimSpace(c.CompletionModel) == "" {
		return ErrCompletionModelRequired
	}
	if c.EmbeddingDimension <= 0 {
		return ErrInvalidDimension
	}
	if c.APIKey == "" {
		c.APIKey = "none"
	}
	return nil
}
