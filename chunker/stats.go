package chunker

import (
	"math"

	"github.com/lectern-ai/lectern/core"
)

// Statistics summarizes a chunking run.
type Statistics struct {
	TotalChunks      int      `json:"total_chunks"`
	TotalWords       int      `json:"total_words"`
	AverageChunkSize float64  `json:"average_chunk_size"`
	UniqueChapters   int      `json:"unique_chapters"`
	Chapters         []string `json:"chapters"`
}

// Stats computes aggregate statistics over the produced units.
func Stats(units []core.ContentUnit) Statistics {
	if len(units) == 0 {
		return Statistics{}
	}

	totalWords := 0
	seen := make(map[string]bool)
	var chapters []string

	for _, unit := range units {
		totalWords += unit.WordCount
		if unit.ChapterTitle != "" && !seen[unit.ChapterTitle] {
			seen[unit.ChapterTitle] = true
			chapters = append(chapters, unit.ChapterTitle)
		}
	}

	avg := float64(totalWords) / float64(len(units))
	return Statistics{
		TotalChunks:      len(units),
		TotalWords:       totalWords,
		AverageChunkSize: math.Round(avg*100) / 100,
		UniqueChapters:   len(chapters),
		Chapters:         chapters,
	}
}
