package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wordhoard/ai/mock"
	"github.com/poiesic/wordhoard/core"
	"github.com/poiesic/wordhoard/search"
	"github.com/poiesic/wordhoard/storage/badger"
)

func TestDiscover_WithSearcherAndGenerator(t *testing.T) {
	vectors := map[string][]float32{
		"바다": {1, 0},
		"해양": {0.8, 0.6},
		"파도": {0.5, 0.866},
		"산":  {0, 1},
	}

	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	for form, vec := range vectors {
		_, err := repo.AddEntries(ctx, &core.Entry{
			Partition:  core.DefaultPartition,
			Form:       form,
			Definition: form + " 뜻",
			Vector:     vec,
		})
		require.NoError(t, err)
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		return vectors[text], nil
	}
	searcher, err := search.NewSearcher(repo, embedder)
	require.NoError(t, err)

	web := &fakeWeb{SearchFunc: returnWords("물결")}
	gen := mock.NewMockWordGenerator()

	o := newTestOrchestrator(t, searcher, web, gen)
	resp, err := o.Discover(ctx, Request{Query: "바다", TargetWordCount: 3})
	require.NoError(t, err)

	// 해양 clears the 0.6 threshold; 파도 and 산 fall below it.
	assert.Equal(t, []string{"해양", "물결", "바다-gen-1"}, resp.FinalWords)
	assert.Equal(t, 1, gen.CallCount())
	assert.Equal(t, 1, gen.LastCount())
}
