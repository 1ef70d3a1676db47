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
	"regexp"
	"strings"
)

var numberedHeading = regexp.MustCompile(`^\d+\.`)

// FallbackStructure synthesizes a chapters structure from heading-like
// lines when model extraction is unavailable. Lines starting with
// "Chapter", a number and period, or written all-caps open a new
// section; everything else is body text. A document with no headings
// yields a single generic chapter.
func FallbackStructure(text string) []Chapter {
	var (
		chapters     []Chapter
		currentTitle string
		hasBody      bool
	)
	flush := func() {
		if currentTitle != "" && hasBody {
			chapters = append(chapters, Chapter{
				Title: currentTitle,
				Topics: []Topic{{
					Title:       "Main Content",
					Description: "Core content of this chapter",
				}},
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		isHeading := strings.HasPrefix(line, "Chapter") ||
			numberedHeading.MatchString(line) ||
			(line == strings.ToUpper(line) && len(line) > 3 && strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
		if isHeading {
			flush()
			currentTitle = line
			hasBody = false
			continue
		}
		hasBody = true
	}
	flush()

	if len(chapters) == 0 {
		chapters = append(chapters, Chapter{
			Title: "Main Content",
			Topics: []Topic{{
				Title:       "General Content",
				Description: "Overall content of the document",
			}},
		})
	}
	return chapters
}

// notesPlaceholder is emitted when even the extractive fallback finds
// nothing usable. A note is never empty.
const notesPlaceholder = "- Could not generate notes for this topic from the available material."

const fallbackSentenceLimit = 8

var (
	pageMarkerLine   = regexp.MustCompile(`^---\s*Page\s+\d+\s*---$`)
	fallbackSentence = regexp.MustCompile(`(?U)[^.!?]+[.!?]`)
)

// extractiveNotes builds bullet notes straight from snippet text: the
// first eight non-trivial sentences, skipping page markers and
// formatting artifacts. Returns the placeholder when nothing qualifies.
func extractiveNotes(snippetText string) string {
	var lines []string
	for _, line := range strings.Split(snippetText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || pageMarkerLine.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}

	var bullets []string
	for _, sentence := range fallbackSentence.FindAllString(strings.Join(lines, " "), -1) {
		sentence = strings.TrimSpace(sentence)
		// Fragments under a few words carry no standalone meaning.
		if len(strings.Fields(sentence)) < 4 {
			continue
		}
		bullets = append(bullets, "- "+sentence)
		if len(bullets) >= fallbackSentenceLimit {
			break
		}
	}
	if len(bullets) == 0 {
		return notesPlaceholder
	}
	return strings.Join(bullets, "\n")
}
