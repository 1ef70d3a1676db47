package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/ai/mock"
	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/vectorstore"
)

func seededStore(t *testing.T, embedder *mock.Embedder, contents ...string) *vectorstore.Store {
	t.Helper()
	store, err := vectorstore.New(embedder)
	require.NoError(t, err)

	chunks := make([]core.ContentUnit, len(contents))
	for i, content := range contents {
		chunks[i] = core.ContentUnit{
			Id:           core.IDFromContent(content),
			Content:      content,
			ChunkIndex:   i,
			ChapterTitle: "Main Content",
			PageNumber:   1,
			WordCount:    core.CountWords(content),
			CourseID:     1,
			FileID:       "file-1",
		}
	}
	_, err = store.AddBatch(context.Background(), chunks)
	require.NoError(t, err)
	return store
}

func TestRetrieveForQuery(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := seededStore(t, embedder,
		"mitochondria are the powerhouse of the cell",
		"glycolysis splits glucose into pyruvate",
		"the treaty of westphalia ended the thirty years war",
	)
	r, err := New(store, embedder)
	require.NoError(t, err)
	defer r.Release()

	results, err := r.RetrieveForQuery(context.Background(),
		"mitochondria are the powerhouse of the cell", nil, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "mitochondria are the powerhouse of the cell", results[0].Content)
}

func TestRetrieveForQueryEmptyQuery(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := seededStore(t, embedder, "some content")
	r, err := New(store, embedder)
	require.NoError(t, err)
	defer r.Release()

	_, err = r.RetrieveForQuery(context.Background(), "", nil, 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRerankPromotesLexicalMatch(t *testing.T) {
	r := &Retriever{}
	results := []core.RetrievalResult{
		{ID: "chunk_0", Content: "entirely unrelated prose about weather patterns", Score: 0.80},
		{ID: "chunk_1", Content: "the krebs cycle oxidizes acetyl groups", Score: 0.78},
	}
	reranked := r.rerankResults("krebs cycle", results)
	// Lexical overlap plus the exact phrase pushes chunk_1 past the
	// slightly higher raw similarity of chunk_0.
	assert.Equal(t, "chunk_1", reranked[0].ID)
}

func TestRerankStableOnTies(t *testing.T) {
	r := &Retriever{}
	results := []core.RetrievalResult{
		{ID: "chunk_0", Content: "same lexical profile", Score: 0.5},
		{ID: "chunk_1", Content: "same lexical profile", Score: 0.5},
	}
	reranked := r.rerankResults("unmatched query terms", results)
	assert.Equal(t, "chunk_0", reranked[0].ID)
	assert.Equal(t, "chunk_1", reranked[1].ID)
}

func TestRetrieveMultiQueryDedup(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := seededStore(t, embedder,
		"photosynthesis converts light into chemical energy",
		"chlorophyll absorbs red and blue light",
		"stomata regulate gas exchange in leaves",
	)
	r, err := New(store, embedder, WithoutRerank())
	require.NoError(t, err)
	defer r.Release()

	queries := []string{
		"photosynthesis converts light into chemical energy",
		"photosynthesis converts light into chemical energy",
	}
	results, err := r.RetrieveMultiQuery(context.Background(), queries, nil, 3, 10)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, res := range results {
		assert.False(t, seen[res.ID], "duplicate id %s", res.ID)
		seen[res.ID] = true
	}
	// Identical queries fully overlap, dedup leaves one set.
	assert.Len(t, results, 3)
}

func TestRetrieveMultiQueryDeterministicOrder(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := seededStore(t, embedder,
		"alpha particle scattering experiment",
		"beta decay emits an electron",
		"gamma rays are high energy photons",
	)
	r, err := New(store, embedder, WithoutRerank())
	require.NoError(t, err)
	defer r.Release()

	queries := []string{
		"alpha particle scattering experiment",
		"gamma rays are high energy photons",
	}
	var first []core.RetrievalResult
	for run := 0; run < 5; run++ {
		results, err := r.RetrieveMultiQuery(context.Background(), queries, nil, 2, 10)
		require.NoError(t, err)
		if run == 0 {
			first = results
			continue
		}
		require.Equal(t, len(first), len(results))
		for i := range first {
			assert.Equal(t, first[i].ID, results[i].ID, "run %d position %d", run, i)
		}
	}
}

func TestRetrieveMultiQueryTotalLimit(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := seededStore(t, embedder, "one", "two", "three", "four")
	r, err := New(store, embedder, WithoutRerank())
	require.NoError(t, err)
	defer r.Release()

	results, err := r.RetrieveMultiQuery(context.Background(),
		[]string{"one", "four"}, nil, 3, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestHybridSearch(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := seededStore(t, embedder,
		"enzymes lower activation energy of reactions",
		"substrate binding induces a conformational change",
	)
	r, err := New(store, embedder)
	require.NoError(t, err)
	defer r.Release()

	results, err := r.HybridSearch(context.Background(),
		"how do enzymes change activation energy", nil, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 2)
}

func TestRetrieveByChapter(t *testing.T) {
	embedder := mock.NewEmbedder()
	store := seededStore(t, embedder, "first section", "second section")
	r, err := New(store, embedder)
	require.NoError(t, err)
	defer r.Release()

	results := r.RetrieveByChapter(1, "Main Content", 0)
	require.Len(t, results, 2)
	assert.Equal(t, "first section", results[0].Content)

	limited := r.RetrieveByChapter(1, "Main Content", 1)
	require.Len(t, limited, 1)
	assert.Equal(t, "first section", limited[0].Content)
}

func TestExtractKeywords(t *testing.T) {
	t.Run("ranks by frequency", func(t *testing.T) {
		kws := ExtractKeywords("osmosis osmosis osmosis diffusion diffusion membrane", 2)
		assert.Equal(t, []string{"osmosis", "diffusion"}, kws)
	})

	t.Run("ties keep first occurrence order", func(t *testing.T) {
		kws := ExtractKeywords("zebra apple zebra apple", 2)
		assert.Equal(t, []string{"zebra", "apple"}, kws)
	})

	t.Run("drops stopwords and short tokens", func(t *testing.T) {
		kws := ExtractKeywords("what is the role of dna in a cell", 5)
		assert.NotContains(t, kws, "the")
		assert.NotContains(t, kws, "what")
		assert.NotContains(t, kws, "is")
		assert.Contains(t, kws, "dna")
	})

	t.Run("zero max", func(t *testing.T) {
		assert.Nil(t, ExtractKeywords("anything at all", 0))
	})
}

func TestKeywordOverlap(t *testing.T) {
	terms := queryTerms("krebs cycle energy")
	assert.InDelta(t, 1.0, keywordOverlap(terms, "the krebs cycle produces energy"), 1e-6)
	assert.InDelta(t, 0.0, keywordOverlap(terms, "unrelated content entirely"), 1e-6)
	assert.Zero(t, keywordOverlap(nil, "anything"))
}

func TestPhraseBonus(t *testing.T) {
	assert.Equal(t, float32(0.5), phraseBonus("krebs cycle", "The Krebs Cycle is central"))
	assert.Zero(t, phraseBonus("krebs cycle", "no match here"))
	// Five characters or fewer never earns the bonus.
	assert.Zero(t, phraseBonus("dna", "dna is genetic material"))
}
