package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wordhoard/core"
)

type recordingMonitor struct {
	mu       sync.Mutex
	started  []string
	entered  []Stage
	failed   map[Stage]error
	finished int
	lastResp *Response
	lastErr  error
}

func newRecordingMonitor() *recordingMonitor {
	return &recordingMonitor{failed: map[Stage]error{}}
}

func (m *recordingMonitor) Start(runID string, _ Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, runID)
}

func (m *recordingMonitor) EnterStage(_ string, stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entered = append(m.entered, stage)
}

func (m *recordingMonitor) StageFailed(_ string, stage Stage, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[stage] = err
}

func (m *recordingMonitor) Finish(_ string, resp *Response, err error, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished++
	m.lastResp = resp
	m.lastErr = err
}

func newTestOrchestrator(t *testing.T, store SimilarityStore, web WebSearcher, gen TextGenerator, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(store, web, gen, opts...)
	require.NoError(t, err)
	return o
}

func TestNewOrchestrator_Options(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, nil)
	assert.Equal(t, DefaultSimilarityThreshold, o.threshold)
	assert.Equal(t, DefaultOverFetch, o.overFetch)
	assert.Zero(t, o.stageTimeout)

	o = newTestOrchestrator(t, nil, nil, nil,
		WithSimilarityThreshold(0.25),
		WithOverFetch(3),
		WithStageTimeout(time.Second),
		WithMonitor(nil),
		WithLogger(nil))
	assert.Equal(t, float32(0.25), o.threshold)
	assert.Equal(t, 3, o.overFetch)
	assert.Equal(t, time.Second, o.stageTimeout)
	assert.IsType(t, noopMonitor{}, o.monitor)

	_, err := NewOrchestrator(nil, nil, nil, WithSimilarityThreshold(1.5))
	assert.Error(t, err)
	_, err = NewOrchestrator(nil, nil, nil, WithOverFetch(0))
	assert.Error(t, err)
	_, err = NewOrchestrator(nil, nil, nil, WithStageTimeout(-time.Second))
	assert.Error(t, err)
}

func TestDiscover_InvalidRequest(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(t, store, &fakeWeb{}, &fakeGenerator{})

	_, err := o.Discover(context.Background(), Request{Query: " ", TargetWordCount: 3})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = o.Discover(context.Background(), Request{Query: "q", TargetWordCount: MaxTargetWordCount + 1})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.False(t, IsStageFailure(err))

	assert.Zero(t, store.calls.Load())
}

// RAG alone satisfies the target: no web or LLM call is made.
func TestDiscover_RetrievalSufficient(t *testing.T) {
	store := &fakeStore{SearchFunc: returnMatches(matches(0.9, "ocean", "wave", "tide", "sea"))}
	web := &fakeWeb{}
	gen := &fakeGenerator{}
	mon := newRecordingMonitor()
	o := newTestOrchestrator(t, store, web, gen, WithMonitor(mon))

	resp, err := o.Discover(context.Background(), Request{Query: "sea", TargetWordCount: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"ocean", "wave", "tide"}, resp.FinalWords)
	assert.Equal(t, 3, resp.SourceCounts[SourceRAG])
	assert.Equal(t, 0, resp.SourceCounts[SourceWeb])
	assert.Equal(t, 0, resp.SourceCounts[SourceLLM])
	assert.Zero(t, web.calls.Load())
	assert.Zero(t, gen.calls.Load())
	assert.EqualValues(t, DefaultOverFetch, store.lastK.Load())

	assert.Equal(t, []Stage{StageRetrieval, StageMerge}, mon.entered)
	assert.Len(t, mon.started, 1)
	assert.Equal(t, 1, mon.finished)
	assert.NoError(t, mon.lastErr)
	assert.Empty(t, mon.failed)
}

// One retrieved word leaves a shortfall of three: one from the web, two from the LLM.
func TestDiscover_SplitsShortfall(t *testing.T) {
	store := &fakeStore{SearchFunc: returnMatches(append(matches(0.8, "해양"), matches(0.3, "산")...))}
	web := &fakeWeb{SearchFunc: returnWords("물결", "바닷가")}
	gen := &fakeGenerator{GenerateFunc: returnWords("파도", "조류", "해류")}
	mon := newRecordingMonitor()
	o := newTestOrchestrator(t, store, web, gen, WithMonitor(mon))

	resp, err := o.Discover(context.Background(), Request{Query: "바다", TargetWordCount: 4})
	require.NoError(t, err)

	assert.Equal(t, []string{"해양", "물결", "파도", "조류"}, resp.FinalWords)
	assert.EqualValues(t, 1, web.lastCount.Load())
	assert.EqualValues(t, 2, gen.lastCount.Load())
	assert.Equal(t, map[string]int{"rag": 1, "web": 1, "llm": 2}, resp.SourceCounts)
	assert.Equal(t, []Stage{StageRetrieval, StageWebSearch, StageGeneration, StageMerge}, mon.entered)
}

// A shortfall of one goes entirely to the LLM and web search is skipped.
func TestDiscover_SkipsWebWhenQuotaZero(t *testing.T) {
	store := &fakeStore{SearchFunc: returnMatches(matches(0.9, "a", "b"))}
	web := &fakeWeb{}
	gen := &fakeGenerator{GenerateFunc: returnWords("c")}
	o := newTestOrchestrator(t, store, web, gen)

	resp, err := o.Discover(context.Background(), Request{Query: "q", TargetWordCount: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, resp.FinalWords)
	assert.Zero(t, web.calls.Load())
	assert.EqualValues(t, 1, gen.lastCount.Load())
}

func TestDiscover_RetrievalFiltering(t *testing.T) {
	var ms []core.Match
	ms = append(ms, matches(0.95, "Sea", "ocean", "ocean", "", "  ")...)
	ms = append(ms, matches(0.6, "at-threshold")...)
	ms = append(ms, matches(0.61, "above")...)
	ms = append(ms, matches(-0.5, "far")...)
	store := &fakeStore{SearchFunc: returnMatches(ms)}
	o := newTestOrchestrator(t, store, &fakeWeb{}, &fakeGenerator{})

	st, err := o.Run(context.Background(), Request{Query: "sea", TargetWordCount: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"ocean", "above"}, st.RetrievedWords)
	assert.Zero(t, st.MissingWeb)
	assert.Zero(t, st.MissingLLM)
}

func TestDiscover_CustomThreshold(t *testing.T) {
	store := &fakeStore{SearchFunc: returnMatches(matches(0.3, "low"))}
	o := newTestOrchestrator(t, store, &fakeWeb{}, &fakeGenerator{}, WithSimilarityThreshold(0.2))

	resp, err := o.Discover(context.Background(), Request{Query: "q", TargetWordCount: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"low"}, resp.FinalWords)
}

// Retrieval failure routes straight to merge with nothing to return.
func TestDiscover_RetrievalFailure(t *testing.T) {
	store := &fakeStore{SearchFunc: func(context.Context, string, int) ([]core.Match, error) {
		return nil, errors.New("connection refused")
	}}
	web := &fakeWeb{}
	gen := &fakeGenerator{}
	mon := newRecordingMonitor()
	o := newTestOrchestrator(t, store, web, gen, WithMonitor(mon))

	resp, err := o.Discover(context.Background(), Request{Query: "q", TargetWordCount: 3})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPipelineFailed)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.True(t, IsStageFailure(err))

	assert.Zero(t, web.calls.Load())
	assert.Zero(t, gen.calls.Load())
	assert.Contains(t, mon.failed, StageRetrieval)
	assert.ErrorIs(t, mon.lastErr, ErrPipelineFailed)

	st, err := o.Run(context.Background(), Request{Query: "q", TargetWordCount: 3})
	require.NoError(t, err)
	assert.ErrorIs(t, st.Err, ErrBackendUnavailable)
	assert.Nil(t, st.RetrievedWords)
	assert.Zero(t, st.MissingWeb)
	assert.Zero(t, st.MissingLLM)
}

// Web failure after a partial retrieval still returns the retrieved words.
func TestDiscover_WebFailureReturnsPartial(t *testing.T) {
	store := &fakeStore{SearchFunc: returnMatches(matches(0.9, "a"))}
	web := &fakeWeb{SearchFunc: returnErr(errors.New("rate limited"))}
	gen := &fakeGenerator{}
	mon := newRecordingMonitor()
	o := newTestOrchestrator(t, store, web, gen, WithMonitor(mon))

	resp, err := o.Discover(context.Background(), Request{Query: "q", TargetWordCount: 5})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, resp.FinalWords)
	assert.Zero(t, gen.calls.Load(), "generation must not run after a web failure")
	assert.ErrorIs(t, mon.failed[StageWebSearch], ErrBackendUnavailable)
	assert.Equal(t, []Stage{StageRetrieval, StageWebSearch, StageMerge}, mon.entered)
}

// The LLM quota is not topped up when the web returns fewer words than asked.
func TestDiscover_WebShortfallNotRebalanced(t *testing.T) {
	store := &fakeStore{}
	web := &fakeWeb{SearchFunc: returnWords("w1")}
	gen := &fakeGenerator{GenerateFunc: func(_ context.Context, q string, n int) ([]string, error) {
		out := make([]string, 0, n+5)
		for i := 0; i < n+5; i++ {
			out = append(out, fmt.Sprintf("g%d", i))
		}
		return out, nil
	}}
	o := newTestOrchestrator(t, store, web, gen)

	st, err := o.Run(context.Background(), Request{Query: "q", TargetWordCount: 6})
	require.NoError(t, err)
	assert.NoError(t, st.Err)
	assert.Equal(t, 3, st.MissingWeb)
	assert.Equal(t, 3, st.MissingLLM)
	assert.Equal(t, []string{"w1"}, st.WebWords)
	assert.Equal(t, []string{"g0", "g1", "g2"}, st.GeneratedWords)

	resp := Merge(st)
	assert.Len(t, resp.FinalWords, 4)
}

func TestDiscover_WebResultsTruncated(t *testing.T) {
	web := &fakeWeb{SearchFunc: returnWords("w1", "w2", "w3", "w4")}
	gen := &fakeGenerator{GenerateFunc: returnWords("g1", "g2")}
	o := newTestOrchestrator(t, &fakeStore{}, web, gen)

	st, err := o.Run(context.Background(), Request{Query: "q", TargetWordCount: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2"}, st.WebWords)
	assert.Equal(t, []string{"g1", "g2"}, st.GeneratedWords)
}

func TestDiscover_GenerationFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  func(context.Context, string, int) ([]string, error)
	}{
		{"error", returnErr(errors.New("model offline"))},
		{"empty", returnWords()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{SearchFunc: returnMatches(matches(0.9, "a"))}
			web := &fakeWeb{SearchFunc: returnWords("b")}
			o := newTestOrchestrator(t, store, web, &fakeGenerator{GenerateFunc: tt.gen})

			st, err := o.Run(context.Background(), Request{Query: "q", TargetWordCount: 4})
			require.NoError(t, err)
			assert.ErrorIs(t, st.Err, ErrGenerationFailed)

			resp, err := o.Discover(context.Background(), Request{Query: "q", TargetWordCount: 4})
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, resp.FinalWords)
		})
	}
}

func TestDiscover_GenerationFailureWithNothingElse(t *testing.T) {
	gen := &fakeGenerator{GenerateFunc: returnErr(errors.New("model offline"))}
	o := newTestOrchestrator(t, &fakeStore{}, &fakeWeb{}, gen)

	resp, err := o.Discover(context.Background(), Request{Query: "q", TargetWordCount: 1})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPipelineFailed)
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestDiscover_MissingCollaborators(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		o := newTestOrchestrator(t, nil, &fakeWeb{}, &fakeGenerator{})
		_, err := o.Discover(context.Background(), Request{Query: "q", TargetWordCount: 2})
		assert.ErrorIs(t, err, ErrConfigurationMissing)
		assert.ErrorIs(t, err, ErrPipelineFailed)
	})

	t.Run("web", func(t *testing.T) {
		store := &fakeStore{SearchFunc: returnMatches(matches(0.9, "a"))}
		gen := &fakeGenerator{}
		o := newTestOrchestrator(t, store, nil, gen)

		st, err := o.Run(context.Background(), Request{Query: "q", TargetWordCount: 3})
		require.NoError(t, err)
		assert.ErrorIs(t, st.Err, ErrConfigurationMissing)
		assert.Equal(t, []string{"a"}, Merge(st).FinalWords)
		assert.Zero(t, gen.calls.Load())
	})

	t.Run("generator", func(t *testing.T) {
		store := &fakeStore{SearchFunc: returnMatches(matches(0.9, "a"))}
		o := newTestOrchestrator(t, store, &fakeWeb{}, nil)

		st, err := o.Run(context.Background(), Request{Query: "q", TargetWordCount: 2})
		require.NoError(t, err)
		assert.ErrorIs(t, st.Err, ErrConfigurationMissing)
		assert.True(t, IsStageFailure(st.Err))
	})
}

func TestDiscover_CancelledContext(t *testing.T) {
	store := &fakeStore{SearchFunc: returnMatches(matches(0.9, "a"))}
	o := newTestOrchestrator(t, store, &fakeWeb{}, &fakeGenerator{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Discover(ctx, Request{Query: "q", TargetWordCount: 2})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.calls.Load())
}

func TestDiscover_StageTimeout(t *testing.T) {
	store := &fakeStore{SearchFunc: returnMatches(matches(0.9, "a"))}
	web := &fakeWeb{SearchFunc: func(ctx context.Context, _ string, _ int) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	o := newTestOrchestrator(t, store, web, &fakeGenerator{}, WithStageTimeout(20*time.Millisecond))

	st, err := o.Run(context.Background(), Request{Query: "q", TargetWordCount: 3})
	require.NoError(t, err)
	assert.ErrorIs(t, st.Err, ErrBackendUnavailable)
	assert.ErrorIs(t, st.Err, context.DeadlineExceeded)
	assert.Equal(t, []string{"a"}, Merge(st).FinalWords)
}

func TestRun_StageRevisited(t *testing.T) {
	o := newTestOrchestrator(t, &fakeStore{}, &fakeWeb{}, &fakeGenerator{})
	// A broken transition table that loops on retrieval.
	o.next = func(Stage, *State) Stage { return StageRetrieval }

	_, err := o.Run(context.Background(), Request{Query: "q", TargetWordCount: 1})
	assert.ErrorIs(t, err, ErrStageRevisited)
}

func TestRun_AssignsRunID(t *testing.T) {
	o := newTestOrchestrator(t, &fakeStore{SearchFunc: returnMatches(matches(0.9, "a"))}, nil, nil)

	st1, err := o.Run(context.Background(), Request{Query: "q", TargetWordCount: 1})
	require.NoError(t, err)
	st2, err := o.Run(context.Background(), Request{Query: "q", TargetWordCount: 1})
	require.NoError(t, err)

	assert.NotEmpty(t, st1.RunID)
	assert.NotEqual(t, st1.RunID, st2.RunID)
}

func TestDiscover_Properties(t *testing.T) {
	pool := []string{"Sea", "ocean", "OCEAN", "wave", "Wave", "", "tide", "sea", "surf", "brine", "deep", "shore"}

	for target := 1; target <= 10; target++ {
		for offset := 0; offset < len(pool); offset += 3 {
			ragTexts := pool[offset%len(pool):]
			store := &fakeStore{SearchFunc: returnMatches(matches(0.9, ragTexts...))}
			web := &fakeWeb{SearchFunc: returnWords(pool...)}
			gen := &fakeGenerator{GenerateFunc: returnWords(pool[:offset]...)}
			o := newTestOrchestrator(t, store, web, gen)

			resp, err := o.Discover(context.Background(), Request{Query: "sea", TargetWordCount: target})
			if err != nil {
				assert.ErrorIs(t, err, ErrPipelineFailed)
				continue
			}

			assert.LessOrEqual(t, len(resp.FinalWords), target)
			seen := map[string]bool{}
			for _, w := range resp.FinalWords {
				lower := strings.ToLower(w)
				assert.NotEqual(t, "sea", lower)
				assert.False(t, seen[lower], "duplicate %q in %v", w, resp.FinalWords)
				seen[lower] = true
			}
		}
	}
}

func TestDiscover_ConcurrentRuns(t *testing.T) {
	store := &fakeStore{SearchFunc: returnMatches(matches(0.9, "a"))}
	web := &fakeWeb{SearchFunc: returnWords("b")}
	gen := &fakeGenerator{GenerateFunc: returnWords("c", "d")}
	o := newTestOrchestrator(t, store, web, gen)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := o.Discover(context.Background(), Request{Query: "q", TargetWordCount: 4})
			assert.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c", "d"}, resp.FinalWords)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 16, store.calls.Load())
}
