package main

import (
	"flag"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/lectern-ai/lectern/core"
)

func newLogLevelContext(t *testing.T, level string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("log-level", "", "")
	require.NoError(t, set.Set("log-level", level))
	return cli.NewContext(&cli.App{}, set, nil)
}

func TestSetupLogger(t *testing.T) {
	t.Cleanup(func() { slog.SetDefault(slog.Default()) })

	t.Run("accepts valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			assert.NoError(t, setupLogger(newLogLevelContext(t, level)), level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := setupLogger(newLogLevelContext(t, "verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestCommandFlags(t *testing.T) {
	t.Run("ingest requires a course", func(t *testing.T) {
		app := &cli.App{
			Commands: []*cli.Command{
				{
					Name:   "ingest",
					Action: func(*cli.Context) error { return nil },
					Flags: []cli.Flag{
						&cli.Int64Flag{Name: "course", Required: true},
					},
				},
			},
		}
		err := app.Run([]string{"lectern", "ingest", "notes.pdf"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "course")
	})
}

func TestPrintResultTruncation(t *testing.T) {
	// Exercises both formatting paths; output goes to stdout.
	printResult(1, core.RetrievalResult{
		Content:      strings.Repeat("long content ", 50),
		ChapterTitle: "Processes",
		Score:        0.91,
	})
	printResult(2, core.RetrievalResult{Content: "short"})
}
