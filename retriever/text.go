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


package retriever

import (
	"sort"
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "have": {}, "this": {},
	"that": {}, "with": {}, "from": {}, "they": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "their": {}, "will": {}, "would": {},
	"there": {}, "about": {}, "into": {}, "more": {}, "some": {},
	"than": {}, "then": {}, "them": {}, "these": {}, "over": {},
	"such": {}, "only": {}, "also": {}, "very": {}, "does": {},
	"how": {}, "why": {}, "who": {}, "its": {},
}

// tokenize lowercases text and splits it into alphanumeric terms.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// queryTerms returns the meaningful terms of a query: longer than two
// characters and not a stopword.
func queryTerms(query string) []string {
	var terms []string
	for _, tok := range tokenize(query) {
		if len(tok) <= 2 {
			continue
		}
		if _, skip := stopwords[tok]; skip {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

// ExtractKeywords returns up to max keywords of the text ranked by
// frequency. Ties keep first-occurrence order, so the result is
// deterministic for a given input.
func ExtractKeywords(text string, max int) []string {
	if max <= 0 {
		return nil
	}
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for i, term := range queryTerms(text) {
		if _, seen := counts[term]; !seen {
			firstSeen[term] = i
			order = append(order, term)
		}
		counts[term]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})
	if len(order) > max {
		order = order[:max]
	}
	return order
}

// keywordOverlap returns the fraction of query terms present in the
// content.
func keywordOverlap(terms []string, content string) float32 {
	if len(terms) == 0 {
		return 0
	}
	contentTerms := make(map[string]struct{})
	for _, tok := range tokenize(content) {
		contentTerms[tok] = struct{}{}
	}
	matched := 0
	for _, term := range terms {
		if _, ok := contentTerms[term]; ok {
			matched++
		}
	}
	return float32(matched) / float32(len(terms))
}

// phraseBonus rewards content containing the whole query verbatim.
// Very short queries are too easy to match by accident.
func phraseBonus(query, content string) float32 {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) <= 5 {
		return 0
	}
	if strings.Contains(strings.ToLower(content), q) {
		return 0.5
	}
	return 0
}
