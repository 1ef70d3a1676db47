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


package lectern

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/ai/mock"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(t.TempDir(), WithProvider(mock.NewProvider()), WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Run("creates components", func(t *testing.T) {
		engine := newTestEngine(t)
		assert.NotNil(t, engine.Repositories())
		assert.NotNil(t, engine.VectorStore())
		assert.NotNil(t, engine.Provider())
	})

	t.Run("persistent engine on disk", func(t *testing.T) {
		dir := t.TempDir()
		engine, err := NewEngine(dir, WithProvider(mock.NewProvider()))
		require.NoError(t, err)
		require.NoError(t, engine.Close())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries, "database directory was created")
	})
}

func TestEngineFactoryMethods(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("ingestion pipeline", func(t *testing.T) {
		pipeline, err := engine.NewIngestionPipeline(nil)
		require.NoError(t, err)
		require.NotNil(t, pipeline)
	})

	t.Run("retriever and answer service", func(t *testing.T) {
		r, err := engine.NewRetriever()
		require.NoError(t, err)
		defer r.Release()

		svc, err := engine.NewAnswerService(r)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("note pipeline", func(t *testing.T) {
		pipeline, err := engine.NewNotePipeline()
		require.NoError(t, err)
		assert.NotNil(t, pipeline)
	})

	t.Run("rebuilder", func(t *testing.T) {
		rebuilder := engine.NewRebuilder(nil, os.Stderr)
		assert.NotNil(t, rebuilder)
	})
}

func TestEngineEndToEnd(t *testing.T) {
	engine := newTestEngine(t)

	pipeline, err := engine.NewIngestionPipeline(nil)
	require.NoError(t, err)

	doc := `Chapter 1: Processes

A process is a program in execution. Each process has its own address
space, registers and program counter. The operating system multiplexes
the processor between runnable processes.`

	result, err := pipeline.ProcessFile(context.Background(), 1, []byte(doc), "os.txt")
	require.NoError(t, err)
	require.Greater(t, result.ChunksCreated, 0)
	assert.Equal(t, result.ChunksCreated, engine.VectorStore().Count())

	r, err := engine.NewRetriever()
	require.NoError(t, err)
	defer r.Release()

	results, err := r.RetrieveForQuery(context.Background(), "what is a process", []int64{1}, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}
