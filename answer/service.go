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


// Package answer is the retrieval-augmented answering service. It pulls
// context through the retriever, prompts the completion backend and
// parses the structured reply, degrading to a plain-text answer when the
// model ignores the JSON contract.
package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/lectern-ai/lectern/ai"
	"github.com/lectern-ai/lectern/core"
)

// ErrSourceParseFailed marks an answer whose source annotation could not
// be parsed. The answer itself is still delivered.
var ErrSourceParseFailed = errors.New("answer sources did not parse")

// ContextRetriever is the retrieval surface the service depends on.
type ContextRetriever interface {
	RetrieveForQuery(ctx context.Context, query string, courseIDs []int64, limit int) ([]core.RetrievalResult, error)
	HybridSearch(ctx context.Context, query string, courseIDs []int64, limit int) ([]core.RetrievalResult, error)
}

// Source is the public shape of an answer citation.
type Source struct {
	Course string `json:"course"`
	File   string `json:"file"`
	Page   int    `json:"page"`
}

// Answer is the result of a Generate call.
type Answer struct {
	Query       string   `json:"query"`
	Answer      string   `json:"answer"`
	Sources     []Source `json:"sources"`
	SourceCount int      `json:"source_count"`
}

// CitedAnswer is the result of AnswerWithCitations. Sources carry the
// citation numbers referenced inline by the answer text.
type CitedAnswer struct {
	Query   string                 `json:"query"`
	Answer  string                 `json:"answer"`
	Sources []core.RetrievalResult `json:"sources"`
}

const (
	defaultTemperature  = 0.7
	citationTemperature = 0.3
	defaultMaxTokens    = 1024
	defaultTokenBudget  = 6000
	citationChunkLimit  = 8
)

// Service answers questions over ingested course material.
type Service struct {
	retriever   ContextRetriever
	completer   ai.Completer
	temperature float64
	maxTokens   int
	tokenBudget int
	countTokens func(string) int
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithTemperature sets the sampling temperature for Generate.
func WithTemperature(t float64) Option {
	return func(s *Service) error {
		s.temperature = t
		return nil
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(s *Service) error {
		if n <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", n)
		}
		s.maxTokens = n
		return nil
	}
}

// WithTokenBudget caps the token size of the rendered context. Chunks
// past the budget are dropped rather than truncated mid-sentence.
func WithTokenBudget(n int) Option {
	return func(s *Service) error {
		if n <= 0 {
			return fmt.Errorf("token budget must be positive, got %d", n)
		}
		s.tokenBudget = n
		return nil
	}
}

// WithTokenCounter overrides the token counting function.
func WithTokenCounter(fn func(string) int) Option {
	return func(s *Service) error {
		if fn != nil {
			s.countTokens = fn
		}
		return nil
	}
}

// WithLogger sets the logger used by the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// New creates an answering Service.
func New(retriever ContextRetriever, completer ai.Completer, opts ...Option) (*Service, error) {
	if retriever == nil {
		return nil, errors.New("retriever required")
	}
	if completer == nil {
		return nil, errors.New("completer required")
	}
	s := &Service{
		retriever:   retriever,
		completer:   completer,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		tokenBudget: defaultTokenBudget,
		logger:      slog.Default().With("component", "answer"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.countTokens == nil {
		s.countTokens = newTokenCounter(s.logger)
	}
	return s, nil
}

// newTokenCounter returns a cl100k_base counter, or a whitespace
// approximation when the encoding is unavailable.
func newTokenCounter(logger *slog.Logger) func(string) int {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("tokenizer unavailable, using word-count approximation", "error", err)
		return func(text string) int {
			// Rough 4/3 tokens-per-word heuristic.
			return len(strings.Fields(text)) * 4 / 3
		}
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}
}

// answerEnvelope is the JSON contract Generate asks the model for.
type answerEnvelope struct {
	Answer  string       `json:"answer"`
	Sources []wireSource `json:"sources"`
}

type wireSource struct {
	SourceCourse string      `json:"source_course"`
	SourceFile   string      `json:"source_file"`
	SourcePage   json.Number `json:"source_page"`
}

// Generate answers a query from retrieved context. The model is asked
// for a JSON envelope with the answer and its sources; when the reply
// does not parse, the raw text becomes the answer and sources stay
// empty. Answer delivery never hard-fails on annotation problems.
func (s *Service) Generate(ctx context.Context, query string, courseIDs []int64, contextChunks int, hybrid bool) (*Answer, error) {
	if contextChunks <= 0 {
		contextChunks = 5
	}

	var (
		chunks []core.RetrievalResult
		err    error
	)
	if hybrid {
		chunks, err = s.retriever.HybridSearch(ctx, query, courseIDs, contextChunks)
	} else {
		chunks, err = s.retriever.RetrieveForQuery(ctx, query, courseIDs, contextChunks)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	contextText := s.formatContext(chunks)
	prompt := buildAnswerPrompt(query, contextText)

	raw, err := s.completer.Complete(ctx, ai.CompletionRequest{
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	result := &Answer{Query: query, Sources: []Source{}}
	var envelope answerEnvelope
	payload := ai.ExtractJSONBlock(raw)
	if jsonErr := json.Unmarshal([]byte(payload), &envelope); jsonErr != nil || envelope.Answer == "" {
		s.logger.Debug("answer envelope did not parse, using raw text",
			"error", fmt.Errorf("%w: %v", ErrSourceParseFailed, jsonErr))
		result.Answer = strings.TrimSpace(raw)
		return result, nil
	}

	result.Answer = envelope.Answer
	result.Sources = cleanSources(envelope.Sources)
	result.SourceCount = len(result.Sources)
	return result, nil
}

// cleanSources drops incomplete or placeholder entries, deduplicates by
// the (course, file, page) triple and maps to the public field names.
func cleanSources(raw []wireSource) []Source {
	type key struct {
		course string
		file   string
		page   int
	}
	seen := make(map[key]struct{})
	out := []Source{}
	for _, src := range raw {
		course := strings.TrimSpace(src.SourceCourse)
		file := strings.TrimSpace(src.SourceFile)
		if course == "" || file == "" || course == "Unknown" || file == "Unknown" {
			continue
		}
		pageStr := src.SourcePage.String()
		if pageStr == "" || pageStr == "Unknown" {
			continue
		}
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			continue
		}
		k := key{course: course, file: file, page: page}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, Source{Course: course, File: file, Page: page})
	}
	return out
}

// formatContext renders retrieved chunks for the prompt, dropping whole
// chunks from the tail once the token budget is exceeded.
func (s *Service) formatContext(chunks []core.RetrievalResult) string {
	var parts []string
	used := 0
	for i, chunk := range chunks {
		part := fmt.Sprintf("[Document %d] [Course: %d] [File: %s]\n%s",
			i+1, chunk.CourseID, chunk.FileID, strings.TrimSpace(chunk.Content))
		cost := s.countTokens(part)
		if used+cost > s.tokenBudget && len(parts) > 0 {
			s.logger.Debug("context token budget reached",
				"kept", len(parts), "dropped", len(chunks)-i)
			break
		}
		parts = append(parts, part)
		used += cost
	}
	return strings.Join(parts, "\n\n")
}

func buildAnswerPrompt(query, contextText string) string {
	if contextText == "" {
		return fmt.Sprintf(
			"Answer the following question based on your knowledge.\n\nQuestion: %s\n\nAnswer:",
			query)
	}
	return fmt.Sprintf(
		"Answer the following question based only on the provided context. "+
			"If the context doesn't contain the information needed, say so - don't make up information.\n"+
			"Return ONLY a JSON object of the form "+
			`{"answer": "...", "sources": [{"source_course": "...", "source_file": "...", "source_page": 1}]}`+
			" where each source names the course, file and page the statement came from.\n\n"+
			"Context:\n%s\n\nQuestion: %s\n\nAnswer JSON:",
		contextText, query)
}

// AnswerWithCitations answers with numbered context entries and asks the
// model to cite them inline as [1], [2] and so on. The reply is free
// text, no JSON contract applies here.
func (s *Service) AnswerWithCitations(ctx context.Context, query string, courseIDs []int64) (*CitedAnswer, error) {
	chunks, err := s.retriever.HybridSearch(ctx, query, courseIDs, citationChunkLimit)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	var parts []string
	for i := range chunks {
		chunks[i].CitationID = i + 1
		parts = append(parts, fmt.Sprintf("[%d] Chapter: %s\n%s",
			chunks[i].CitationID, chunks[i].ChapterTitle, strings.TrimSpace(chunks[i].Content)))
	}

	prompt := fmt.Sprintf(
		"Answer the following question based on the provided context. "+
			"Include citations to your sources using the format [1], [2], etc. "+
			"If multiple sources support a statement, include all relevant citations like [1,2]. "+
			"If the context doesn't contain the information needed, say so - don't make up information.\n\n"+
			"Context:\n%s\n\nQuestion: %s\n\nAnswer (with citations):",
		strings.Join(parts, "\n\n"), query)

	text, err := s.completer.Complete(ctx, ai.CompletionRequest{
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		Temperature: citationTemperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generating cited answer: %w", err)
	}

	return &CitedAnswer{
		Query:   query,
		Answer:  strings.TrimSpace(text),
		Sources: chunks,
	}, nil
}

var (
	jsonArrayPattern = regexp.MustCompile(`(?s)\[(.*)\]`)
	listItemPattern  = regexp.MustCompile(`(?m)^\s*(?:\d+\.|-)\s*(.+)$`)
)

// GenerateFollowUpQuestions asks the model for n follow-up questions.
// Parsing degrades through a JSON array, numbered or bulleted lines and
// bare lines; when everything fails one generic question is returned so
// the list is never empty.
func (s *Service) GenerateFollowUpQuestions(ctx context.Context, query, answerText string, courseIDs []int64, n int) []string {
	if n <= 0 {
		n = 3
	}
	fallback := []string{fmt.Sprintf("What else can you tell me about %s?", query)}

	prompt := fmt.Sprintf(
		"Based on the following question and answer about a course topic, "+
			"generate %d interesting follow-up questions that would help "+
			"the student deepen their understanding of the subject.\n\n"+
			"Original Question: %s\n\nAnswer: %s\n\n"+
			"Follow-up Questions (return as a JSON array of strings):",
		n, query, answerText)

	raw, err := s.completer.Complete(ctx, ai.CompletionRequest{
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		Temperature: defaultTemperature,
		MaxTokens:   256,
	})
	if err != nil {
		s.logger.Warn("follow-up generation failed", "error", err)
		return fallback
	}
	raw = strings.TrimSpace(raw)

	if match := jsonArrayPattern.FindString(raw); match != "" {
		var questions []string
		if err := json.Unmarshal([]byte(match), &questions); err == nil && len(questions) > 0 {
			return capStrings(questions, n)
		}
	}

	if items := listItemPattern.FindAllStringSubmatch(raw, -1); len(items) > 0 {
		questions := make([]string, 0, len(items))
		for _, item := range items {
			questions = append(questions, strings.TrimSpace(item[1]))
		}
		return capStrings(questions, n)
	}

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		return capStrings(lines, n)
	}
	return fallback
}

func capStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
