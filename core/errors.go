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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidContentUnit indicates a ContentUnit failed validation.
	ErrInvalidContentUnit = errors.New("invalid content unit")

	// ErrInvalidTopic indicates a Topic failed validation.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrInvalidNote indicates a Note failed validation.
	ErrInvalidNote = errors.New("invalid note")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrNegativeChunkIndex indicates a chunk index below zero.
	ErrNegativeChunkIndex = errors.New("chunk index cannot be negative")

	// ErrWordCountMismatch indicates WordCount disagrees with the content.
	ErrWordCountMismatch = errors.New("word count does not match content")

	// ErrEmptyTopicTitle indicates the topic Title field is empty.
	ErrEmptyTopicTitle = errors.New("topic title cannot be empty")

	// ErrMissingCourse indicates a record without a course binding.
	ErrMissingCourse = errors.New("course id is required")
)
