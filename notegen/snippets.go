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
	"sort"
	"strings"
	"unicode"

	"github.com/lectern-ai/lectern/core"
)

// Snippet scoring weights. Title words signal the topic far more
// strongly than description words.
const (
	titleWordWeight       = 3
	descriptionWordWeight = 1
	minPositiveSnippets   = 2
)

// selectSnippets picks the topN chunks of a chapter group most relevant
// to the topic, scored by keyword overlap with the topic title and
// description. When fewer than two chunks score above zero, the leading
// chunks of the group pad the selection so no topic goes to the model
// without context.
func selectSnippets(topic Topic, chunks []core.ContentUnit, topN int) []core.ContentUnit {
	if len(chunks) == 0 || topN <= 0 {
		return nil
	}

	titleWords := contentWords(topic.Title)
	descWords := contentWords(topic.Description)

	type scored struct {
		idx   int
		score int
	}
	scores := make([]scored, len(chunks))
	positive := 0
	for i, chunk := range chunks {
		words := wordSet(chunk.Content)
		score := 0
		for _, w := range titleWords {
			if _, ok := words[w]; ok {
				score += titleWordWeight
			}
		}
		for _, w := range descWords {
			if _, ok := words[w]; ok {
				score += descriptionWordWeight
			}
		}
		scores[i] = scored{idx: i, score: score}
		if score > 0 {
			positive++
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	var picked []core.ContentUnit
	if positive >= minPositiveSnippets {
		for _, s := range scores {
			if s.score <= 0 || len(picked) >= topN {
				break
			}
			picked = append(picked, chunks[s.idx])
		}
		return picked
	}

	// Too few relevant chunks. Keep the positive ones and pad with the
	// leading chunks of the group.
	taken := make(map[int]struct{})
	for _, s := range scores {
		if s.score <= 0 || len(picked) >= topN {
			break
		}
		picked = append(picked, chunks[s.idx])
		taken[s.idx] = struct{}{}
	}
	for i := range chunks {
		if len(picked) >= topN {
			break
		}
		if _, dup := taken[i]; dup {
			continue
		}
		picked = append(picked, chunks[i])
	}
	return picked
}

func joinSnippets(chunks []core.ContentUnit) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, strings.TrimSpace(chunk.Content))
	}
	return strings.Join(parts, "\n")
}

func contentWords(text string) []string {
	var words []string
	for _, w := range splitWords(text) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range splitWords(text) {
		set[w] = struct{}{}
	}
	return set
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
