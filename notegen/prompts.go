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
	"fmt"
	"strings"
)

func topicExtractionPrompt(text string) string {
	return "You are an AI study assistant.\n" +
		"Your task is to analyze the following texts from a source (lecture note/transcripts) and extract the main topics and subtopics.\n" +
		"Guidelines:\n" +
		"- Consolidate similar or duplicate lines into a single, broader topic.\n" +
		"- Use concise canonical titles (no question formatting, no 'Illustration:' prefixes) and Title Case.\n" +
		"- Return at most 6 topics per chapter (prefer 3-5 high-level topics). Each topic should be a high-level summary of a specific aspect of the chapter content.\n" +
		"- The description contains the main points and key details of the topic based on the provided text and your understanding, packaged in an easy-to-learn format for students.\n" +
		"- Merge related small items (examples, illustrations, short history) under one broader topic and combine descriptions.\n" +
		"- Return ONLY valid JSON with a single top-level object that has a 'chapters' array.\n" +
		"Format:\n" +
		"- Each chapter must be an object with 'title' (string) and 'topics' (array).\n" +
		"- Each topic in the 'topics' array must be an object with 'title' (string) and 'description' (string).\n" +
		"- Do not include any extra explanation or text outside the JSON.\n\n" +
		"Example output:\n" +
		`{"chapters":[{"title":"Introduction to Operating Systems","topics":[{"title":"Introduction to Operating Systems","description":"..."},{"title":"Processes & Scheduling","description":"..."}]}]}` + "\n\n" +
		"Text:\n" + text
}

func batchNotesPrompt(chapterTitle string, topics []Topic, chapterSummary string, snippets map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"You are an AI study assistant. Your task is to generate concise, student-friendly study notes for each topic in this chapter.\n"+
			"For the chapter: '%s' produce a JSON array where each element is an object with 'title' and 'notes' (notes should be newline-separated bullet points).\n"+
			"Guidelines: If the provided topic list contains duplicates or near-duplicates, MERGE them into a single object and combine/concatenate supportive notes. "+
			"Keep each topic's notes specific to that topic, do not reuse the same content across topics. "+
			"Return at most 6 topic objects. Return ONLY valid JSON.\n\n",
		chapterTitle)

	b.WriteString("Chapter summary:\n")
	b.WriteString(chapterSummary)
	b.WriteString("\n\n")

	b.WriteString("Topics and context:\n")
	for _, topic := range topics {
		title := topic.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "- Topic: %s\n  Description: %s\n", title, topic.Description)
		if snippet, ok := snippets[title]; ok && snippet != "" {
			fmt.Fprintf(&b, "  Context snippets:\n%s\n", snippet)
		}
	}

	b.WriteString("\nProduce the JSON array now. Do not include any extra explanation or text outside the JSON.")
	return b.String()
}
