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


// Package notegen turns ingested chunks into structured study notes.
// The pipeline groups chunks by normalized chapter title, asks the
// model for a topic structure, selects supporting snippets per topic
// and generates all of a chapter's notes in one batched call. Model
// replies are treated as hostile input: JSON is dug out of fences,
// repaired when slightly broken, and every failure path lands in the
// audit log with a deterministic fallback behind it.
package notegen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lectern-ai/lectern/ai"
	"github.com/lectern-ai/lectern/core"
)

// Topic is one extracted study topic of a chapter.
type Topic struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Chapter groups extracted topics under a chapter title.
type Chapter struct {
	Title  string  `json:"title"`
	Topics []Topic `json:"topics"`
}

// StructuredNote is one finished {topic, notes} pair bound to a chapter.
type StructuredNote struct {
	ChapterTitle     string `json:"chapter_title"`
	TopicTitle       string `json:"topic_title"`
	TopicDescription string `json:"topic_description"`
	Notes            string `json:"notes_content"`
}

const (
	maxTopicsPerChapter = 6
	defaultCharBudget   = 4000
	defaultSnippetTopN  = 3

	extractionTemperature = 0.3
	extractionMaxTokens   = 1000
	notesTemperature      = 0.4
	notesMaxTokens        = 1500
)

// Pipeline generates structured notes from course chunks.
type Pipeline struct {
	completer  ai.Completer
	summarizer ai.Summarizer
	audit      *AuditLog

	heuristicFallback bool
	charBudget        int
	snippetTopN       int
	logger            *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithHeuristicFallback makes topic-extraction failures degrade to the
// rule-based structure instead of failing the run. The failure is still
// audited either way.
func WithHeuristicFallback() Option {
	return func(p *Pipeline) error {
		p.heuristicFallback = true
		return nil
	}
}

// WithAuditLog attaches an audit log recording every model call.
func WithAuditLog(audit *AuditLog) Option {
	return func(p *Pipeline) error {
		p.audit = audit
		return nil
	}
}

// WithCharBudget caps the characters of chapter text sent to the model.
func WithCharBudget(n int) Option {
	return func(p *Pipeline) error {
		if n <= 0 {
			return fmt.Errorf("char budget must be positive, got %d", n)
		}
		p.charBudget = n
		return nil
	}
}

// WithSnippetCount sets how many chunks back each topic in the notes
// prompt.
func WithSnippetCount(n int) Option {
	return func(p *Pipeline) error {
		if n <= 0 {
			return fmt.Errorf("snippet count must be positive, got %d", n)
		}
		p.snippetTopN = n
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

// New creates a note-generation Pipeline. The summarizer may be nil,
// chapter summaries are then omitted from the notes prompt.
func New(completer ai.Completer, summarizer ai.Summarizer, opts ...Option) (*Pipeline, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer required")
	}
	p := &Pipeline{
		completer:   completer,
		summarizer:  summarizer,
		charBudget:  defaultCharBudget,
		snippetTopN: defaultSnippetTopN,
		logger:      slog.Default().With("component", "notegen"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// chapterGroup is one unit of pipeline work.
type chapterGroup struct {
	title  string
	chunks []core.ContentUnit
}

// groupByChapter buckets chunks under their normalized chapter title,
// preserving first-seen group order and in-group chunk order.
func groupByChapter(chunks []core.ContentUnit) []chapterGroup {
	index := make(map[string]int)
	var groups []chapterGroup
	for _, chunk := range chunks {
		title := NormalizeChapterTitle(chunk.ChapterTitle)
		i, ok := index[title]
		if !ok {
			i = len(groups)
			index[title] = i
			groups = append(groups, chapterGroup{title: title})
		}
		groups[i].chunks = append(groups[i].chunks, chunk)
	}
	for i := range groups {
		sort.SliceStable(groups[i].chunks, func(a, b int) bool {
			return groups[i].chunks[a].ChunkIndex < groups[i].chunks[b].ChunkIndex
		})
	}
	return groups
}

type extractionEnvelope struct {
	Chapters *[]Chapter `json:"chapters"`
}

// ExtractTopics asks the model for the chapter/topic structure of the
// given text. The reply must parse as JSON with a chapters key;
// anything else is audited and returned as ErrTopicExtractionFailed.
// Topics are capped at six per chapter.
func (p *Pipeline) ExtractTopics(ctx context.Context, text string) ([]Chapter, error) {
	prompt := topicExtractionPrompt(TruncateAtSentence(text, p.charBudget))

	raw, err := p.completer.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: "You are an expert at analyzing educational content and extracting structured information."},
			{Role: "user", Content: prompt},
		},
		Temperature: extractionTemperature,
		MaxTokens:   extractionMaxTokens,
	})
	if err != nil {
		p.audit.RecordError("topic_extraction", prompt, err)
		return nil, fmt.Errorf("topic extraction call: %w", err)
	}

	extracted := ai.ExtractJSONBlock(raw)
	p.audit.Record("topic_extraction", prompt, raw, extracted)

	var envelope extractionEnvelope
	if err := json.Unmarshal([]byte(extracted), &envelope); err != nil {
		repaired := ai.RepairJSON(extracted)
		if err2 := json.Unmarshal([]byte(repaired), &envelope); err2 != nil {
			p.audit.RecordError("topic_extraction_parse", prompt, err)
			return nil, fmt.Errorf("%w: %v", ErrTopicExtractionFailed, err)
		}
	}
	if envelope.Chapters == nil {
		p.audit.RecordError("topic_extraction_parse", prompt,
			fmt.Errorf("reply has no chapters key"))
		return nil, fmt.Errorf("%w: missing chapters key", ErrTopicExtractionFailed)
	}

	chapters := *envelope.Chapters
	for i := range chapters {
		if len(chapters[i].Topics) > maxTopicsPerChapter {
			chapters[i].Topics = chapters[i].Topics[:maxTopicsPerChapter]
		}
	}
	return chapters, nil
}

// noteEntry is one element of the batched notes reply. Notes is loosely
// typed, models answer with strings, lists or objects.
type noteEntry struct {
	Title string `json:"title"`
	Notes any    `json:"notes"`
}

// GenerateNotesBatch produces notes for all topics of one chapter in a
// single model call. A reply that is not a parseable JSON array is
// recovered per-topic by the extractive fallback over each topic's
// snippets, so the result is never empty when topics exist.
func (p *Pipeline) GenerateNotesBatch(ctx context.Context, chapterTitle string, topics []Topic, chapterSummary string, snippets map[string]string) ([]StructuredNote, error) {
	if len(topics) == 0 {
		return nil, nil
	}
	if len(topics) > maxTopicsPerChapter {
		topics = topics[:maxTopicsPerChapter]
	}

	prompt := batchNotesPrompt(chapterTitle, topics, chapterSummary, snippets)
	raw, err := p.completer.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: "You are an expert educator who creates clear, concise study notes."},
			{Role: "user", Content: prompt},
		},
		Temperature: notesTemperature,
		MaxTokens:   notesMaxTokens,
	})
	if err != nil {
		p.audit.RecordError("batch_notes", prompt, err)
		return nil, fmt.Errorf("notes generation call: %w", err)
	}

	extracted := ai.ExtractJSONBlock(raw)
	p.audit.Record("batch_notes", prompt, raw, extracted)

	var entries []noteEntry
	if err := json.Unmarshal([]byte(extracted), &entries); err != nil {
		p.audit.RecordError("batch_notes_parse", prompt,
			fmt.Errorf("%w: %v", ErrNotesGenerationFailed, err))
		p.logger.Warn("notes reply did not parse, using extractive fallback",
			"chapter", chapterTitle, "error", err)
		return p.fallbackNotes(chapterTitle, topics, snippets), nil
	}

	descriptions := make(map[string]string, len(topics))
	for _, t := range topics {
		descriptions[t.Title] = t.Description
	}

	var notes []StructuredNote
	for _, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		content := NormalizeNoteContent(entry.Notes)
		if content == "" {
			content = notesPlaceholder
		}
		notes = append(notes, StructuredNote{
			ChapterTitle:     chapterTitle,
			TopicTitle:       title,
			TopicDescription: descriptions[title],
			Notes:            content,
		})
	}
	if len(notes) == 0 {
		// Parsed as an array but nothing usable inside.
		return p.fallbackNotes(chapterTitle, topics, snippets), nil
	}
	return notes, nil
}

// fallbackNotes builds extractive notes per topic from its snippets.
func (p *Pipeline) fallbackNotes(chapterTitle string, topics []Topic, snippets map[string]string) []StructuredNote {
	notes := make([]StructuredNote, 0, len(topics))
	for _, topic := range topics {
		notes = append(notes, StructuredNote{
			ChapterTitle:     chapterTitle,
			TopicTitle:       topic.Title,
			TopicDescription: topic.Description,
			Notes:            extractiveNotes(snippets[topic.Title]),
		})
	}
	return notes
}

// ProcessCourseContent runs the whole pipeline over a course's chunks
// and returns structured notes per topic. Extraction failures abort the
// run unless the heuristic fallback was opted into. The context is
// checked between chapter groups so cancellation does not start new
// model calls; the audit trail of completed calls survives either way.
func (p *Pipeline) ProcessCourseContent(ctx context.Context, chunks []core.ContentUnit) ([]StructuredNote, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	groups := groupByChapter(chunks)
	var allNotes []StructuredNote

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content := joinSnippets(group.chunks)

		summary := ""
		if p.summarizer != nil {
			s, err := p.summarizer.SummarizeText(ctx, TruncateAtSentence(content, p.charBudget))
			if err != nil {
				p.logger.Warn("chapter summary failed, continuing without",
					"chapter", group.title, "error", err)
			} else {
				summary = s
			}
		}

		chapters, err := p.ExtractTopics(ctx, content)
		if err != nil {
			if !p.heuristicFallback {
				return nil, fmt.Errorf("chapter %q: %w", group.title, err)
			}
			p.logger.Warn("topic extraction failed, using heuristic structure",
				"chapter", group.title, "error", err)
			chapters = FallbackStructure(content)
		}

		topics := collectTopics(chapters)
		if len(topics) == 0 {
			continue
		}

		snippets := make(map[string]string, len(topics))
		for _, topic := range topics {
			snippets[topic.Title] = joinSnippets(selectSnippets(topic, group.chunks, p.snippetTopN))
		}

		notes, err := p.GenerateNotesBatch(ctx, group.title, topics, summary, snippets)
		if err != nil {
			return nil, fmt.Errorf("chapter %q: %w", group.title, err)
		}
		allNotes = append(allNotes, notes...)
	}
	return allNotes, nil
}

// collectTopics flattens an extraction reply into one topic list,
// capped at the per-chapter maximum.
func collectTopics(chapters []Chapter) []Topic {
	var topics []Topic
	for _, chapter := range chapters {
		topics = append(topics, chapter.Topics...)
	}
	if len(topics) > maxTopicsPerChapter {
		topics = topics[:maxTopicsPerChapter]
	}
	return topics
}

// BuildRecords maps structured notes onto persistent Topic and Note
// records for a course. Duplicate topic titles stay separate records,
// each gets its own note.
func BuildRecords(notes []StructuredNote, courseID int64) ([]core.Topic, []core.Note) {
	now := time.Now()
	topics := make([]core.Topic, 0, len(notes))
	records := make([]core.Note, 0, len(notes))
	for i, note := range notes {
		topicID := core.IDFromContent(fmt.Sprintf("(%d,%s,%s,%d)",
			courseID, note.ChapterTitle, note.TopicTitle, i))
		topics = append(topics, core.Topic{
			Id:           topicID,
			Title:        note.TopicTitle,
			Description:  note.TopicDescription,
			ChapterTitle: note.ChapterTitle,
			CourseID:     courseID,
			InsertedAt:   now,
			UpdatedAt:    now,
		})
		records = append(records, core.Note{
			Id:        core.IDFromContent(fmt.Sprintf("note:(%d,%d)", courseID, topicID)),
			TopicID:   topicID,
			CourseID:  courseID,
			Content:   note.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return topics, records
}
