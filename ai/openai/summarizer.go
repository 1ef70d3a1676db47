package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lectern-ai/lectern/ai"
)

const summarizerSystemPrompt = `You are an expert educational content summarizer. Your task is to create clear, concise summaries of educational materials that highlight key learning points.

Guidelines:
- Focus on the most important concepts and ideas
- Use clear, academic language
- Organize information logically
- Include key definitions and examples
- Keep summaries concise but comprehensive
- Highlight main takeaways for students`

// maxSummaryInputChars bounds the text sent to the summarization model so a
// single oversized chunk cannot blow the context window.
const maxSummaryInputChars = 6000

// Summarizer implements ai.Summarizer on top of the chat completion backend.
// It is an explicit service object constructed once and passed by reference;
// there is no hidden global instance.
type Summarizer struct {
	completer ai.Completer
	logger    *slog.Logger
}

// newSummarizer is an internal constructor that returns the concrete type.
func newSummarizer(completer ai.Completer) *Summarizer {
	return &Summarizer{
		completer: completer,
		logger:    slog.Default().With("component", "openai-summarizer"),
	}
}

// NewSummarizer creates a summarizer that condenses text through the given
// completion backend.
func NewSummarizer(completer ai.Completer) ai.Summarizer {
	return newSummarizer(completer)
}

// SummarizeText returns a short summary of the given text. Empty or
// whitespace-only input yields an empty summary without a backend call.
func (s *Summarizer) SummarizeText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if len(text) > maxSummaryInputChars {
		text = text[:maxSummaryInputChars]
	}

	s.logger.Debug("summarizing text", "length", len(text))

	summary, err := s.completer.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: summarizerSystemPrompt},
			{Role: "user", Content: "Please create a comprehensive summary of the following educational content. Focus on the key learning points and main concepts:\n\n" + text},
		},
		Temperature: 0.3,
		MaxTokens:   512,
	})
	if err != nil {
		s.logger.Error("failed to summarize text", "err", err)
		return "", err
	}

	return strings.TrimSpace(summary), nil
}
