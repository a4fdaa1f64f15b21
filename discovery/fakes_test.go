package discovery

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/wordhoard/core"
)

type fakeStore struct {
	SearchFunc func(ctx context.Context, query string, k int) ([]core.Match, error)
	calls      atomic.Int64
	lastK      atomic.Int64
}

func (f *fakeStore) Search(ctx context.Context, query string, k int) ([]core.Match, error) {
	f.calls.Add(1)
	f.lastK.Store(int64(k))
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, query, k)
	}
	return nil, nil
}

type fakeWeb struct {
	SearchFunc func(ctx context.Context, query string, count int) ([]string, error)
	calls      atomic.Int64
	lastCount  atomic.Int64
}

func (f *fakeWeb) Search(ctx context.Context, query string, count int) ([]string, error) {
	f.calls.Add(1)
	f.lastCount.Store(int64(count))
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, query, count)
	}
	return nil, nil
}

type fakeGenerator struct {
	GenerateFunc func(ctx context.Context, query string, count int) ([]string, error)
	calls        atomic.Int64
	lastCount    atomic.Int64
}

func (f *fakeGenerator) GenerateWords(ctx context.Context, query string, count int) ([]string, error) {
	f.calls.Add(1)
	f.lastCount.Store(int64(count))
	if f.GenerateFunc != nil {
		return f.GenerateFunc(ctx, query, count)
	}
	return nil, nil
}

// matches builds store results with cosine similarity sim (before the offset).
func matches(sim float32, texts ...string) []core.Match {
	out := make([]core.Match, 0, len(texts))
	for _, t := range texts {
		out = append(out, core.Match{Text: t, Score: sim + BaselineOffset})
	}
	return out
}

func returnMatches(m []core.Match) func(context.Context, string, int) ([]core.Match, error) {
	return func(context.Context, string, int) ([]core.Match, error) { return m, nil }
}

func returnWords(words ...string) func(context.Context, string, int) ([]string, error) {
	return func(context.Context, string, int) ([]string, error) { return words, nil }
}

func returnErr(err error) func(context.Context, string, int) ([]string, error) {
	return func(context.Context, string, int) ([]string, error) { return nil, err }
}
