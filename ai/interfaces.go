package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the configured embedding dimension. Every vector
	// this embedder produces is expected to have exactly this length.
	Dimension() int
}

// Message is a single chat message in a completion request.
type Message struct {
	Role    string // "system" or "user"
	Content string
}

// CompletionRequest is the fixed request contract for the completion backend.
type CompletionRequest struct {
	Messages    []Message
	Temperature float64
	TopP        float64
	MaxTokens   int
	JSONMode    bool
}

// Completer produces free-form text from a chat completion backend.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete sends the request and returns the generated text of the
	// first choice. A response without at least one choice is a hard error.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Summarizer condenses text into a short summary.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// SummarizeText returns a summary of the given text, or an empty
	// string when there is nothing to summarize.
	SummarizeText(ctx context.Context, text string) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder, Completer and
// Summarizer instances, ensuring they share configuration appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Completer returns the chat completion service.
	Completer() Completer

	// Summarizer returns the summarization service.
	Summarizer() Summarizer

	// Close releases resources held by the provider and its services.
	Close() error
}
