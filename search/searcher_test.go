package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/wordhoard/ai/mock"
	"github.com/poiesic/wordhoard/core"
	"github.com/poiesic/wordhoard/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedVectors maps words onto a tiny 2-d space so similarities are easy to reason about.
var fixedVectors = map[string][]float32{
	"바다": {1, 0},
	"해양": {0.8, 0.6},
	"파도": {0.6, 0.8},
	"산":  {0, 1},
}

func newFixedEmbedder() *mock.MockEmbedder {
	m := mock.NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := fixedVectors[text]; ok {
			return v, nil
		}
		return []float32{0.7071, 0.7071}, nil
	}
	return m
}

func seedRepo(t *testing.T, partition string) *badger.EntryRepository {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	for form, vec := range fixedVectors {
		_, err := repo.AddEntries(context.Background(), &core.Entry{
			Partition:         partition,
			Form:              form,
			Definition:        form + " 뜻",
			EnglishDefinition: "gloss of " + form,
			Usages:            []string{form + " 용례"},
			Vector:            vec,
		})
		require.NoError(t, err)
	}
	return repo
}

func TestNewSearcher(t *testing.T) {
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(repo, embedder)
		require.NoError(t, err)
		assert.Equal(t, core.DefaultPartition, searcher.Partition())
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(repo, embedder, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(repo, embedder, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with partition", func(t *testing.T) {
		searcher, err := NewSearcher(repo, embedder, WithPartition("novel-1"))
		require.NoError(t, err)
		assert.Equal(t, "novel-1", searcher.Partition())
	})

	t.Run("invalid partition", func(t *testing.T) {
		_, err := NewSearcher(repo, embedder, WithPartition("a:b"))
		assert.ErrorIs(t, err, core.ErrInvalidPartition)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewSearcher(nil, embedder)
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(repo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestSearch_EmptyDatabase(t *testing.T) {
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	searcher, err := NewSearcher(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	matches, err := searcher.Search(context.Background(), "test query", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearch_OffsetScores(t *testing.T) {
	repo := seedRepo(t, core.DefaultPartition)
	searcher, err := NewSearcher(repo, newFixedEmbedder())
	require.NoError(t, err)

	matches, err := searcher.Search(context.Background(), "바다", 10)
	require.NoError(t, err)
	require.Len(t, matches, 4)

	assert.Equal(t, "바다", matches[0].Text)
	assert.InDelta(t, 2.0, matches[0].Score, 1e-5)
	assert.Equal(t, "해양", matches[1].Text)
	assert.InDelta(t, 1.8, matches[1].Score, 1e-5)
	assert.Equal(t, "파도", matches[2].Text)
	assert.Equal(t, "산", matches[3].Text)
	assert.InDelta(t, 1.0, matches[3].Score, 1e-5)

	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Score, float32(0))
		assert.LessOrEqual(t, m.Score, float32(2.00001))
	}
}

func TestSearch_RespectsK(t *testing.T) {
	repo := seedRepo(t, core.DefaultPartition)
	searcher, err := NewSearcher(repo, newFixedEmbedder())
	require.NoError(t, err)

	matches, err := searcher.Search(context.Background(), "바다", 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	_, err = searcher.Search(context.Background(), "바다", 0)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestSearch_PartitionIsolation(t *testing.T) {
	repo := seedRepo(t, "novel-1")
	searcher, err := NewSearcher(repo, newFixedEmbedder())
	require.NoError(t, err)

	matches, err := searcher.Search(context.Background(), "바다", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearch_EmbeddingError(t *testing.T) {
	repo := seedRepo(t, core.DefaultPartition)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	searcher, err := NewSearcher(repo, embedder)
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "바다", 5)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestFindRelated(t *testing.T) {
	repo := seedRepo(t, core.DefaultPartition)
	searcher, err := NewSearcher(repo, newFixedEmbedder())
	require.NoError(t, err)

	related, err := searcher.FindRelated(context.Background(), "산", 2)
	require.NoError(t, err)
	require.Len(t, related, 2)

	assert.Equal(t, "산", related[0].Form)
	assert.Equal(t, "산 뜻", related[0].Definition)
	assert.Equal(t, "gloss of 산", related[0].EnglishDefinition)
	assert.Equal(t, []string{"산 용례"}, related[0].Usages)
	assert.InDelta(t, 1.0, related[0].Score, 1e-5)
	assert.Equal(t, "파도", related[1].Form)
}

func TestFindRelated_Validation(t *testing.T) {
	repo := seedRepo(t, core.DefaultPartition)
	searcher, err := NewSearcher(repo, newFixedEmbedder())
	require.NoError(t, err)

	tests := []struct {
		name  string
		word  string
		limit int
	}{
		{"empty word", "  ", 5},
		{"zero limit", "바다", 0},
		{"limit too large", "바다", MaxRelated + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := searcher.FindRelated(context.Background(), tt.word, tt.limit)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}

	_, err = searcher.FindRelated(context.Background(), "바다", MaxRelated)
	assert.NoError(t, err)
}

func TestLookup(t *testing.T) {
	repo := seedRepo(t, core.DefaultPartition)
	embedder := newFixedEmbedder()
	searcher, err := NewSearcher(repo, embedder)
	require.NoError(t, err)

	entries, err := searcher.Lookup(context.Background(), " 파도 ")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "파도 뜻", entries[0].Definition)
	assert.Zero(t, embedder.CallCount())

	missing, err := searcher.Lookup(context.Background(), "구름")
	require.NoError(t, err)
	assert.Empty(t, missing)

	_, err = searcher.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

type recordingMonitor struct {
	started    string
	dimensions int
	hits       int
	finished   bool
}

func (m *recordingMonitor) Start(query string)            { m.started = query }
func (m *recordingMonitor) AfterEmbedding(dims int)       { m.dimensions = dims }
func (m *recordingMonitor) Finish(_ []*core.SearchResult) { m.finished = true }
func (m *recordingMonitor) AfterSimilaritySearch(results []*core.SearchResult) {
	m.hits = len(results)
}

func TestSearchWithMonitor(t *testing.T) {
	repo := seedRepo(t, core.DefaultPartition)
	searcher, err := NewSearcher(repo, newFixedEmbedder())
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = searcher.SearchWithMonitor(context.Background(), "바다", 3, monitor)
	require.NoError(t, err)

	assert.Equal(t, "바다", monitor.started)
	assert.Equal(t, 2, monitor.dimensions)
	assert.Equal(t, 3, monitor.hits)
	assert.True(t, monitor.finished)
}
