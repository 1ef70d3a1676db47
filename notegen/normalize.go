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


package notegen

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	bracketedCode  = regexp.MustCompile(`\[[^\]]*\]|\([A-Z]{2,}[0-9 ]*\)`)
	leadingNumber  = regexp.MustCompile(`(?i)^\s*(?:chapter\s+)?\d+[.):\-]?\s*`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// NormalizeChapterTitle collapses near-duplicate chapter headers into
// one canonical form: bracketed course codes and leading numbering are
// stripped and whitespace runs squeezed. "1. Intro [CS101]" and
// "Intro" group together.
func NormalizeChapterTitle(title string) string {
	t := bracketedCode.ReplaceAllString(title, " ")
	if loc := leadingNumber.FindStringIndex(t); loc != nil && loc[0] == 0 {
		t = t[loc[1]:]
	}
	t = whitespaceRuns.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)
	if t == "" {
		return "Main Content"
	}
	return t
}

var sentenceEnd = regexp.MustCompile(`[.!?]\s`)

// TruncateAtSentence cuts text to at most budget characters, ending on
// the last full sentence inside the budget. Text that fits is returned
// unchanged. When no sentence boundary falls inside the budget the text
// is cut at the last whitespace instead, never mid-word.
func TruncateAtSentence(text string, budget int) string {
	if budget <= 0 || len(text) <= budget {
		return text
	}
	window := text[:budget]
	ends := sentenceEnd.FindAllStringIndex(window, -1)
	if len(ends) > 0 {
		last := ends[len(ends)-1]
		return strings.TrimSpace(window[:last[0]+1])
	}
	if idx := strings.LastIndexAny(window, " \t\n"); idx > 0 {
		return strings.TrimSpace(window[:idx])
	}
	return strings.TrimSpace(window)
}

// NormalizeNoteContent flattens the loosely-typed notes value of a model
// reply into bullet text. Lists become one "- " line per item, objects
// become pretty-printed JSON, nil becomes empty, and a string that
// already carries bullet markers passes through unchanged; any other
// string gets each non-empty line bullet-prefixed.
func NormalizeNoteContent(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []any:
		var lines []string
		for _, item := range v {
			text := strings.TrimSpace(stringify(item))
			if text == "" {
				continue
			}
			if strings.HasPrefix(text, "- ") {
				lines = append(lines, text)
			} else {
				lines = append(lines, "- "+text)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(pretty)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return ""
		}
		if hasBulletMarkers(trimmed) {
			return trimmed
		}
		var lines []string
		for _, line := range strings.Split(trimmed, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, "- "+line)
			}
		}
		return strings.Join(lines, "\n")
	default:
		return NormalizeNoteContent(stringify(v))
	}
}

func hasBulletMarkers(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "• ") {
			return true
		}
	}
	return false
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
