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


package vectorstore

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrDimensionMismatch indicates an embedding of wrong or zero length
	// was produced for a batch. The whole batch is aborted rather than
	// storing a corrupt vector.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexDimensionMismatch indicates the persisted index dimension
	// does not match the configured model dimension. Recovery is
	// destructive: both files are discarded and the store starts empty.
	ErrIndexDimensionMismatch = errors.New("persisted index dimension mismatch")

	// ErrCorruptIndex indicates the persisted index file could not be read.
	ErrCorruptIndex = errors.New("corrupt index file")
)
