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


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/lectern-ai/lectern"
	"github.com/lectern-ai/lectern/ai"
	"github.com/lectern-ai/lectern/chunker"
	"github.com/lectern-ai/lectern/config"
	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/ingest"
	"github.com/lectern-ai/lectern/notegen"
	"github.com/lectern-ai/lectern/reindex"
)

func main() {
	app := &cli.App{
		Name:  "lectern",
		Usage: "Study notes and question answering over course material",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest course files into storage and the vector index",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "course",
						Usage:    "Course identifier the files belong to",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "no-summaries",
						Usage: "Skip per-chunk summarization",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search course content",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.Int64SliceFlag{
						Name:  "course",
						Usage: "Restrict results to these courses",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question over course content",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.Int64SliceFlag{
						Name:  "course",
						Usage: "Restrict context to these courses",
					},
					&cli.IntFlag{
						Name:  "chunks",
						Usage: "Number of context chunks to retrieve",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "citations",
						Usage: "Answer with inline citation markers",
					},
					&cli.IntFlag{
						Name:  "followups",
						Usage: "Number of follow-up questions to suggest",
					},
				},
			},
			{
				Name:   "notes",
				Usage:  "Generate structured study notes for a course",
				Action: notesCommand,
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "course",
						Usage:    "Course to generate notes for",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "heuristic-fallback",
						Usage: "Fall back to heuristic structure when topic extraction fails",
					},
					&cli.StringFlag{
						Name:  "audit-dir",
						Usage: "Directory for note generation audit logs",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the vector index from stored chunks",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.Int64SliceFlag{
						Name:     "course",
						Usage:    "Courses to reindex",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding batches",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show vector index statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openEngine loads the configuration and opens the engine under its
// data directory.
func openEngine(c *cli.Context) (*lectern.Engine, *config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	aiConfig := ai.NewConfig(cfg.AIOptions()...)
	if err := aiConfig.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	engine, err := lectern.NewEngine(cfg.DataDir, lectern.WithAIConfig(aiConfig))
	if err != nil {
		return nil, nil, fmt.Errorf("opening engine: %w", err)
	}
	return engine, cfg, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	engine, cfg, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ck := chunker.New(
		chunker.WithTargetWords(cfg.Chunker.TargetWords),
		chunker.WithOverlapSentences(cfg.Chunker.OverlapSentences),
	)

	opts := []ingest.Option{
		ingest.WithStatusFunc(func(status ingest.Status, detail string) {
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", status, detail)
		}),
	}
	if c.Bool("no-summaries") {
		opts = append(opts, ingest.WithSummarizer(nil, nil))
	}

	pipeline, err := engine.NewIngestionPipeline(ck, opts...)
	if err != nil {
		return err
	}

	courseID := c.Int64("course")
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		fmt.Fprintf(os.Stderr, "Ingesting %s\n", path)
		result, err := pipeline.ProcessFile(c.Context, courseID, data, filepath.Base(path))
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		fmt.Printf("%s: %d chunks, %d summaries (file %s)\n",
			result.Filename, result.ChunksCreated, result.Summaries, result.FileID)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	engine, _, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	r, err := engine.NewRetriever()
	if err != nil {
		return err
	}
	defer r.Release()

	results, err := r.HybridSearch(c.Context, query, c.Int64Slice("course"), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, res := range results {
		printResult(i+1, res)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a question is required")
	}

	engine, _, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	r, err := engine.NewRetriever()
	if err != nil {
		return err
	}
	defer r.Release()

	svc, err := engine.NewAnswerService(r)
	if err != nil {
		return err
	}

	courses := c.Int64Slice("course")
	var answerText string

	if c.Bool("citations") {
		cited, err := svc.AnswerWithCitations(c.Context, query, courses)
		if err != nil {
			return fmt.Errorf("answering failed: %w", err)
		}
		answerText = cited.Answer
		fmt.Println(cited.Answer)
		if len(cited.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range cited.Sources {
				fmt.Printf("  [%d] %s\n", src.CitationID, src.ChapterTitle)
			}
		}
	} else {
		ans, err := svc.Generate(c.Context, query, courses, c.Int("chunks"), true)
		if err != nil {
			return fmt.Errorf("answering failed: %w", err)
		}
		answerText = ans.Answer
		fmt.Println(ans.Answer)
		if len(ans.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range ans.Sources {
				if src.Page > 0 {
					fmt.Printf("  %s, p. %d\n", src.File, src.Page)
				} else {
					fmt.Printf("  %s\n", src.File)
				}
			}
		}
	}

	if n := c.Int("followups"); n > 0 {
		questions := svc.GenerateFollowUpQuestions(c.Context, query, answerText, courses, n)
		if len(questions) > 0 {
			fmt.Println("\nFollow-up questions:")
			for _, q := range questions {
				fmt.Printf("  - %s\n", q)
			}
		}
	}
	return nil
}

func notesCommand(c *cli.Context) error {
	engine, cfg, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	courseID := c.Int64("course")
	chunks, err := engine.Repositories().Chunks.GetChunksByCourse(c.Context, courseID)
	if err != nil {
		return fmt.Errorf("loading chunks: %w", err)
	}

	units := make([]core.ContentUnit, len(chunks))
	for i, chunk := range chunks {
		units[i] = *chunk
	}

	opts := []notegen.Option{
		notegen.WithCharBudget(cfg.Notes.CharBudget),
		notegen.WithSnippetCount(cfg.Notes.SnippetCount),
	}
	if c.Bool("heuristic-fallback") || cfg.Notes.HeuristicFallback {
		opts = append(opts, notegen.WithHeuristicFallback())
	}
	if dir := c.String("audit-dir"); dir != "" {
		audit, err := notegen.NewAuditLog(dir)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer audit.Close()
		opts = append(opts, notegen.WithAuditLog(audit))
		fmt.Fprintf(os.Stderr, "Audit log: %s\n", audit.Path())
	}

	pipeline, err := engine.NewNotePipeline(opts...)
	if err != nil {
		return err
	}

	notes, err := pipeline.ProcessCourseContent(c.Context, units)
	if err != nil {
		return fmt.Errorf("note generation failed: %w", err)
	}

	topics, noteRecords := notegen.BuildRecords(notes, courseID)
	topicRefs := make([]*core.Topic, len(topics))
	for i := range topics {
		topicRefs[i] = &topics[i]
	}
	noteRefs := make([]*core.Note, len(noteRecords))
	for i := range noteRecords {
		noteRefs[i] = &noteRecords[i]
	}

	if _, err := engine.Repositories().Topics.AddTopics(c.Context, topicRefs...); err != nil {
		return fmt.Errorf("persisting topics: %w", err)
	}
	if _, err := engine.Repositories().Notes.AddNotes(c.Context, noteRefs...); err != nil {
		return fmt.Errorf("persisting notes: %w", err)
	}

	for _, note := range notes {
		fmt.Printf("## %s / %s\n%s\n\n", note.ChapterTitle, note.TopicTitle, note.Notes)
	}
	fmt.Fprintf(os.Stderr, "Generated %d notes across %d topics\n", len(noteRecords), len(topics))
	return nil
}

func reindexCommand(c *cli.Context) error {
	engine, _, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	rebuilder := engine.NewRebuilder(reindexConfig, os.Stderr)
	if err := rebuilder.Run(c.Context, c.Int64Slice("course")...); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	engine, _, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats := engine.VectorStore().Stats()
	fmt.Printf("Vectors: %d live, %d deleted (dimension %d)\n",
		stats.LiveVectors, stats.Deleted, stats.Dimension)
	for courseID, count := range stats.Courses {
		fmt.Printf("  course %d: %d chunks\n", courseID, count)
	}
	return nil
}

func printResult(rank int, res core.RetrievalResult) {
	header := fmt.Sprintf("%d. [%.3f]", rank, res.Score)
	if res.ChapterTitle != "" {
		header += " " + res.ChapterTitle
	}
	fmt.Println(header)

	content := res.Content
	if len(content) > 300 {
		content = content[:300] + "..."
	}
	fmt.Printf("   %s\n", content)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
