package chunker

import (
	"regexp"
	"strconv"
	"strings"
)

// sentence is a tokenized sentence with the page it was extracted from.
// Page is zero when the source carries no page markers.
type sentence struct {
	Text string
	Page int
}

var (
	sentenceSplitter = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	pageMarker       = regexp.MustCompile(`(?m)^--- Page (\d+) ---$`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// splitSentences tokenizes text into sentences, tracking the current page
// from "--- Page N ---" marker lines. Marker lines update the page counter
// and are not emitted as content.
func splitSentences(text string) []sentence {
	var out []sentence
	page := 0
	cursor := 0

	markers := pageMarker.FindAllStringSubmatchIndex(text, -1)
	for _, m := range markers {
		segment := text[cursor:m[0]]
		out = append(out, tokenizeSegment(segment, page)...)
		page, _ = strconv.Atoi(text[m[2]:m[3]])
		cursor = m[1]
	}
	out = append(out, tokenizeSegment(text[cursor:], page)...)

	return out
}

// tokenizeSegment splits a marker-free span of text into sentences. Text
// after the last terminal punctuation mark is kept as a final sentence so
// no input is silently dropped.
func tokenizeSegment(segment string, page int) []sentence {
	var out []sentence

	locs := sentenceSplitter.FindAllStringIndex(segment, -1)
	end := 0
	for _, loc := range locs {
		s := strings.TrimSpace(segment[loc[0]:loc[1]])
		if s != "" {
			out = append(out, sentence{Text: s, Page: page})
		}
		end = loc[1]
	}

	if tail := strings.TrimSpace(segment[end:]); tail != "" {
		out = append(out, sentence{Text: tail, Page: page})
	}

	return out
}

// CleanText normalizes whitespace, quotes and dashes and strips characters
// outside the usual prose set.
func CleanText(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")

	text = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune(" .,!?;:-()_'\"", r):
			return r
		case r == '“' || r == '”':
			return '"'
		case r == '–' || r == '—':
			return '-'
		default:
			return -1
		}
	}, text)

	return strings.TrimSpace(text)
}
