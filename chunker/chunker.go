package chunker

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lectern-ai/lectern/core"
)

const (
	defaultTargetWords      = 1000
	defaultOverlapSentences = 3
)

// Chunker converts raw document text into ordered content units.
type Chunker struct {
	targetWords      int
	overlapSentences int
	logger           *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithTargetWords sets the word budget per chunk. A single sentence longer
// than the budget is still kept whole.
func WithTargetWords(words int) Option {
	return func(c *Chunker) {
		if words > 0 {
			c.targetWords = words
		}
	}
}

// WithOverlapSentences sets how many trailing sentences of a chunk seed the
// next chunk.
func WithOverlapSentences(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapSentences = n
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// New creates a Chunker with the default word budget and sentence overlap.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		targetWords:      defaultTargetWords,
		overlapSentences: defaultOverlapSentences,
		logger:           slog.Default().With("component", "chunker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChunkText tokenizes text into sentences and greedily accumulates them
// into units until the running word count would exceed the target. On
// overflow the current unit is closed and the next unit is seeded with the
// last overlapSentences sentences of the prior unit. Empty input yields no
// units.
func (c *Chunker) ChunkText(text, chapterTitle string) []core.ContentUnit {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var units []core.ContentUnit
	var current []sentence
	currentWords := 0
	index := 0

	closeChunk := func() {
		parts := make([]string, len(current))
		for i, s := range current {
			parts[i] = s.Text
		}
		content := strings.Join(parts, " ")
		units = append(units, core.ContentUnit{
			Content:      content,
			ChunkIndex:   index,
			ChapterTitle: chapterTitle,
			PageNumber:   current[0].Page,
			WordCount:    core.CountWords(content),
		})
		index++
	}

	for _, s := range sentences {
		words := core.CountWords(s.Text)

		if currentWords+words > c.targetWords && len(current) > 0 {
			closeChunk()

			overlap := c.overlapSentences
			if overlap > len(current) {
				overlap = len(current)
			}
			current = append(append([]sentence(nil), current[len(current)-overlap:]...), s)
			currentWords = 0
			for _, o := range current {
				currentWords += core.CountWords(o.Text)
			}
		} else {
			current = append(current, s)
			currentWords += words
		}
	}

	if len(current) > 0 {
		closeChunk()
	}

	return units
}

// Chapter is a detected section of a document.
type Chapter struct {
	Title   string
	Content string
}

// syntheticChapterTitle names the single chapter used when no headers are
// detected in a document.
const syntheticChapterTitle = "Main Content"

var chapterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Chapter\s+\d+[:.\s]*(.*)$`),
	regexp.MustCompile(`^\d+[.)]\s+(.+)$`),
	regexp.MustCompile(`^[A-Z][A-Z0-9 &\-]{3,}$`),
}

// DetectChapters classifies lines as chapter headers and groups the content
// between headers. When no header is detected the whole document becomes
// one synthetic chapter.
func (c *Chunker) DetectChapters(text string) []Chapter {
	var chapters []Chapter
	var currentTitle string
	var currentLines []string

	flush := func() {
		if currentTitle != "" && len(currentLines) > 0 {
			chapters = append(chapters, Chapter{
				Title:   currentTitle,
				Content: strings.Join(currentLines, "\n"),
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if pageMarker.MatchString(line) {
			currentLines = append(currentLines, line)
			continue
		}

		title, isHeader := matchChapterHeader(line)
		if isHeader {
			flush()
			currentTitle = title
			currentLines = []string{line}
		} else {
			currentLines = append(currentLines, line)
		}
	}
	flush()

	if len(chapters) == 0 {
		return []Chapter{{Title: syntheticChapterTitle, Content: text}}
	}
	return chapters
}

func matchChapterHeader(line string) (string, bool) {
	for _, pattern := range chapterPatterns {
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		title := line
		if len(match) > 1 && strings.TrimSpace(match[1]) != "" {
			title = strings.TrimSpace(match[1])
		}
		return title, true
	}
	return "", false
}

// ProcessFile extracts a document, detects chapters, and chunks each
// chapter, returning units with dense zero-based chunk indices across the
// whole document. Extraction failures degrade to placeholder content and
// are reported via the returned error while still producing units.
func (c *Chunker) ProcessFile(path string, courseID int64, fileID string) ([]core.ContentUnit, error) {
	text, err := c.ExtractText(path)
	if err != nil && !errors.Is(err, ErrExtractionFailed) {
		return nil, err
	}
	if err != nil {
		c.logger.Warn("extraction degraded to placeholder text", "path", path, "err", err)
	}

	units := c.ChunkDocument(text, courseID, fileID)
	c.logger.Info("processed file", "path", path, "chunks", len(units))
	return units, err
}

// ChunkDocument runs chapter detection and chunking over already-extracted
// text, stamping course and file identity onto every unit. Unit IDs are
// derived from (course, file, index) so re-chunking the same upload
// yields the same IDs.
func (c *Chunker) ChunkDocument(text string, courseID int64, fileID string) []core.ContentUnit {
	var units []core.ContentUnit
	index := 0

	for _, chapter := range c.DetectChapters(text) {
		for _, unit := range c.ChunkText(chapter.Content, chapter.Title) {
			unit.ChunkIndex = index
			unit.CourseID = courseID
			unit.FileID = fileID
			unit.Id = core.IDFromContent(fmt.Sprintf("(%d,%s,%d)", courseID, fileID, index))
			units = append(units, unit)
			index++
		}
	}

	return units
}
