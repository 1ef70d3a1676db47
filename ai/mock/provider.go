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


package mock

import (
	"context"
	"strings"

	"github.com/lectern-ai/lectern/ai"
)

// Summarizer is a test double for ai.Summarizer. By default it returns the
// first sentence of the input, which is deterministic and cheap.
type Summarizer struct {
	// SummarizeFunc is called by SummarizeText if set.
	SummarizeFunc func(ctx context.Context, text string) (string, error)
}

// SummarizeText returns a deterministic summary of the text.
func (m *Summarizer) SummarizeText(ctx context.Context, text string) (string, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text)
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil
	}
	if idx := strings.IndexAny(trimmed, ".!?"); idx >= 0 {
		return trimmed[:idx+1], nil
	}
	return trimmed, nil
}

// Provider is a test double for ai.Provider. It aggregates mock embedder,
// completer and summarizer instances.
type Provider struct {
	embedder   *Embedder
	completer  *Completer
	summarizer *Summarizer
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider creates a provider with default deterministic mocks.
func NewProvider() *Provider {
	return &Provider{
		embedder:   NewEmbedder(),
		completer:  NewCompleter(),
		summarizer: &Summarizer{},
	}
}

// Embedder returns the mock embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the mock completion service.
func (p *Provider) Completer() ai.Completer {
	return p.completer
}

// Summarizer returns the mock summarization service.
func (p *Provider) Summarizer() ai.Summarizer {
	return p.summarizer
}

// MockEmbedder returns the concrete mock for test assertions.
func (p *Provider) MockEmbedder() *Embedder {
	return p.embedder
}

// MockCompleter returns the concrete mock for scripting responses.
func (p *Provider) MockCompleter() *Completer {
	return p.completer
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}
