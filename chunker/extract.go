package chunker

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText extracts text from a file based on its extension.
//
// Extraction failures are degraded, not fatal: the returned text is a
// human-readable placeholder describing the failure and the error wraps
// ErrExtractionFailed so callers can decide whether to continue.
func (c *Chunker) ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return c.extractPlainText(path)
	case ".pdf":
		return c.extractPDF(path)
	case ".md", ".markdown":
		return c.extractMarkdown(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(path))
	}
}

func (c *Chunker) extractPlainText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		c.logger.Error("failed to read text file", "path", path, "err", err)
		return extractionPlaceholder("TXT", err), fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return string(content), nil
}

// extractPDF extracts text page by page, emitting a "--- Page N ---"
// marker before each page so downstream chunking can track page numbers.
func (c *Chunker) extractPDF(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		c.logger.Error("failed to read pdf file", "path", path, "err", err)
		return extractionPlaceholder("PDF", err), fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		c.logger.Error("failed to open pdf", "path", path, "err", err)
		return extractionPlaceholder("PDF", err), fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	var builder strings.Builder
	pages := reader.NumPage()
	extracted := 0

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			c.logger.Warn("failed to extract pdf page", "path", path, "page", i, "err", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		fmt.Fprintf(&builder, "\n--- Page %d ---\n", i)
		builder.WriteString(text)
		builder.WriteString("\n")
		extracted++
	}

	if extracted == 0 {
		err := fmt.Errorf("no extractable text in %d pages", pages)
		return extractionPlaceholder("PDF", err), fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	return builder.String(), nil
}

// extractMarkdown reads rich text and joins paragraph lines so soft wraps
// don't end up as sentence boundaries.
func (c *Chunker) extractMarkdown(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		c.logger.Error("failed to read markdown file", "path", path, "err", err)
		return extractionPlaceholder("document", err), fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	var paragraphs []string
	for _, block := range strings.Split(string(content), "\n\n") {
		lines := strings.Split(block, "\n")
		joined := make([]string, 0, len(lines))
		for _, line := range lines {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				joined = append(joined, trimmed)
			}
		}
		if len(joined) > 0 {
			paragraphs = append(paragraphs, strings.Join(joined, " "))
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}

func extractionPlaceholder(kind string, err error) string {
	return fmt.Sprintf("%s content could not be extracted. Error: %v", kind, err)
}
