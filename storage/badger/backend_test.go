package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/wordhoard/core"
	"github.com/poiesic/wordhoard/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir+"/db", false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	_, err = backend.FindSimilar(context.Background(), "default", []float32{1}, 0, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestFindSimilar_NoEntries(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	results, err := backend.FindSimilar(context.Background(), "default", []float32{0.1, 0.2, 0.3}, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_InvalidQuery(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	_, err = backend.FindSimilar(ctx, "default", []float32{1}, 0, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = backend.FindSimilar(ctx, "default", nil, 0, 5)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = backend.FindSimilar(ctx, "bad:partition", []float32{1}, 0, 5)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestFindSimilar_RanksByCosine(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	_, err = repo.AddEntries(ctx,
		&core.Entry{Partition: "default", Form: "바다", Vector: []float32{1, 0}},
		&core.Entry{Partition: "default", Form: "해양", Vector: []float32{0.8, 0.6}},
		&core.Entry{Partition: "default", Form: "산", Vector: []float32{0, 1}},
		&core.Entry{Partition: "default", Form: "빈칸"},
		&core.Entry{Partition: "other", Form: "바다", Vector: []float32{1, 0}},
	)
	require.NoError(t, err)

	// Unnormalized query vector: cosine ignores magnitude
	results, err := repo.FindSimilar(ctx, "default", []float32{2, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "바다", results[0].Entry.Form)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "해양", results[1].Entry.Form)
	assert.InDelta(t, 0.8, results[1].Score, 1e-6)

	limited, err := repo.FindSimilar(ctx, "default", []float32{1, 0}, -1, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "바다", limited[0].Entry.Form)
}

func TestFindSimilar_KeepsBestWithinLimit(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	_, err = repo.AddEntries(ctx,
		&core.Entry{Partition: "default", Form: "가", Vector: []float32{0, 1}},
		&core.Entry{Partition: "default", Form: "나", Vector: []float32{0.6, 0.8}},
		&core.Entry{Partition: "default", Form: "다", Vector: []float32{1, 0}},
		&core.Entry{Partition: "default", Form: "라", Vector: []float32{0.8, 0.6}},
		&core.Entry{Partition: "default", Form: "마", Vector: []float32{-1, 0}},
	)
	require.NoError(t, err)

	results, err := repo.FindSimilar(ctx, "default", []float32{1, 0}, -1, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var forms []string
	for _, r := range results {
		forms = append(forms, r.Entry.Form)
	}
	assert.Equal(t, []string{"다", "라", "나"}, forms)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestFindSimilar_SkipsOtherDimensions(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	_, err = repo.AddEntries(ctx,
		&core.Entry{Partition: "default", Form: "바다", Vector: []float32{1, 0}},
		&core.Entry{Partition: "default", Form: "물결", Vector: []float32{1, 0, 0}},
	)
	require.NoError(t, err)

	results, err := repo.FindSimilar(ctx, "default", []float32{1, 0}, 0, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "바다", results[0].Entry.Form)
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenBackend(path, false)
	assert.Error(t, err)
}

func TestFindSimilar_CancelledContext(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.AddEntries(context.Background(), &core.Entry{Partition: "default", Form: "바다", Vector: []float32{1}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repo.FindSimilar(ctx, "default", []float32{1}, 0, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"scaled", []float32{3, 4}, []float32{6, 8}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}
