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

import "errors"

var (
	// ErrTopicExtractionFailed means the model's topic extraction reply
	// did not parse as the required chapters structure. The failure is
	// audited and surfaced; callers opting into the heuristic fallback
	// never see it.
	ErrTopicExtractionFailed = errors.New("topic extraction did not produce valid chapters JSON")

	// ErrNotesGenerationFailed means a batched notes reply was not a
	// parseable JSON array. Recovered internally by the extractive
	// fallback, exported for audit log readers and tests.
	ErrNotesGenerationFailed = errors.New("notes generation did not produce a valid JSON array")

	// ErrNoChunks is returned when the pipeline is given nothing to work on.
	ErrNoChunks = errors.New("no chunks to process")
)
