package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// BaselineOffset is the constant the similarity store adds to cosine
	// similarity; it is subtracted again before thresholding.
	BaselineOffset float32 = 1.0

	DefaultSimilarityThreshold float32 = 0.6
	DefaultOverFetch                   = 10
)

// Orchestrator runs the discovery state machine. It holds no per-run state
// and is safe for concurrent use when its collaborators are.
type Orchestrator struct {
	store     SimilarityStore
	web       WebSearcher
	generator TextGenerator

	threshold    float32
	overFetch    int
	stageTimeout time.Duration
	monitor      Monitor
	logger       *slog.Logger

	// next is the transition function; replaced only in tests.
	next func(Stage, *State) Stage
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithSimilarityThreshold sets the cosine similarity a retrieved match must
// exceed. Default is 0.6.
func WithSimilarityThreshold(threshold float32) Option {
	return func(o *Orchestrator) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("similarity threshold must be between -1 and 1, got %v", threshold)
		}
		o.threshold = threshold
		return nil
	}
}

// WithOverFetch sets how many matches retrieval asks the store for.
// Default is 10.
func WithOverFetch(n int) Option {
	return func(o *Orchestrator) error {
		if n < 1 {
			return fmt.Errorf("over-fetch must be positive, got %d", n)
		}
		o.overFetch = n
		return nil
	}
}

// WithStageTimeout bounds each external call. Zero disables the bound.
func WithStageTimeout(d time.Duration) Option {
	return func(o *Orchestrator) error {
		if d < 0 {
			return fmt.Errorf("stage timeout must not be negative, got %v", d)
		}
		o.stageTimeout = d
		return nil
	}
}

// WithMonitor sets a run monitor. A nil monitor disables monitoring.
func WithMonitor(m Monitor) Option {
	return func(o *Orchestrator) error {
		if m == nil {
			m = noopMonitor{}
		}
		o.monitor = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an orchestrator. Any collaborator may be nil; a
// stage whose collaborator is missing fails with ErrConfigurationMissing
// when the run reaches it.
func NewOrchestrator(store SimilarityStore, web WebSearcher, generator TextGenerator, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		store:     store,
		web:       web,
		generator: generator,
		threshold: DefaultSimilarityThreshold,
		overFetch: DefaultOverFetch,
		monitor:   noopMonitor{},
		logger:    slog.Default(),
		next:      Next,
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "discovery")

	return o, nil
}

// Discover runs the pipeline and returns the merged response. Stage failures
// degrade the result; only a failure that leaves nothing to return is
// reported, as ErrPipelineFailed wrapping the stage error.
func (o *Orchestrator) Discover(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	st, err := o.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := Merge(st)
	logger := o.logger.With("run_id", st.RunID)

	switch {
	case st.Err != nil && len(resp.FinalWords) == 0:
		err = fmt.Errorf("%w: %w", ErrPipelineFailed, st.Err)
		logger.Error("discovery failed", "query", st.Query, "err", st.Err)
		o.monitor.Finish(st.RunID, resp, err, time.Since(start))
		return nil, err
	case st.Err != nil:
		logger.Warn("discovery returned partial result",
			"query", st.Query,
			"words", len(resp.FinalWords),
			"target", st.TargetWordCount,
			"err", st.Err)
	default:
		logger.Info("discovery finished",
			"query", st.Query,
			"words", len(resp.FinalWords),
			"target", st.TargetWordCount,
			"sources", resp.SourceCounts)
	}

	o.monitor.Finish(st.RunID, resp, nil, time.Since(start))
	return resp, nil
}

// Run validates req and drives the state machine from Start to End. The
// returned State holds every stage's contribution and any stage error;
// Merge projects it into a Response.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*State, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	st := newState(uuid.NewString(), req)
	o.monitor.Start(st.RunID, req)
	logger := o.logger.With("run_id", st.RunID)

	visited := make(map[Stage]bool, int(StageEnd))
	for stage := o.next(StageStart, st); stage != StageEnd; stage = o.next(stage, st) {
		if visited[stage] {
			return st, fmt.Errorf("%w: %s", ErrStageRevisited, stage)
		}
		visited[stage] = true

		o.monitor.EnterStage(st.RunID, stage)
		logger.Debug("entering stage", "stage", stage.String())

		hadErr := st.Err != nil
		switch stage {
		case StageRetrieval:
			o.retrieve(ctx, st)
		case StageWebSearch:
			o.searchWeb(ctx, st)
		case StageGeneration:
			o.generate(ctx, st)
		case StageMerge:
			// Merge is pure; Discover projects the final state.
		}

		if !hadErr && st.Err != nil {
			logger.Warn("stage failed", "stage", stage.String(), "err", st.Err)
			o.monitor.StageFailed(st.RunID, stage, st.Err)
		}
	}

	return st, nil
}

// stageContext applies the per-call timeout, if any.
func (o *Orchestrator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.stageTimeout > 0 {
		return context.WithTimeout(ctx, o.stageTimeout)
	}
	return context.WithCancel(ctx)
}

// retrieve keeps store matches above the threshold and splits the shortfall.
func (o *Orchestrator) retrieve(ctx context.Context, st *State) {
	failed := func(err error) {
		st.fail(err)
		st.RetrievedWords = nil
		st.MissingWeb, st.MissingLLM = 0, 0
	}

	if o.store == nil {
		failed(fmt.Errorf("%w: similarity store", ErrConfigurationMissing))
		return
	}

	ctx, cancel := o.stageContext(ctx)
	defer cancel()

	if err := ctx.Err(); err != nil {
		failed(fmt.Errorf("%w: retrieval: %w", ErrBackendUnavailable, err))
		return
	}

	matches, err := o.store.Search(ctx, st.Query, o.overFetch)
	if err != nil {
		failed(fmt.Errorf("%w: retrieval: %w", ErrBackendUnavailable, err))
		return
	}

	query := strings.ToLower(st.Query)
	seen := make(map[string]struct{}, len(matches))
	retrieved := make([]string, 0, st.TargetWordCount)
	for _, m := range matches {
		if m.Score-BaselineOffset <= o.threshold {
			continue
		}
		if strings.TrimSpace(m.Text) == "" || strings.ToLower(m.Text) == query {
			continue
		}
		if _, ok := seen[m.Text]; ok {
			continue
		}
		seen[m.Text] = struct{}{}
		retrieved = append(retrieved, m.Text)
	}
	if len(retrieved) > st.TargetWordCount {
		retrieved = retrieved[:st.TargetWordCount]
	}

	st.RetrievedWords = retrieved
	st.MissingWeb, st.MissingLLM = splitQuota(st.TargetWordCount - len(retrieved))

	o.logger.Debug("retrieval finished",
		"run_id", st.RunID,
		"matches", len(matches),
		"retrieved", len(retrieved),
		"missing_web", st.MissingWeb,
		"missing_llm", st.MissingLLM)
}

// searchWeb fills the web quota. MissingLLM stays as retrieval computed it
// even when the web returns fewer words than asked for.
func (o *Orchestrator) searchWeb(ctx context.Context, st *State) {
	if o.web == nil {
		st.fail(fmt.Errorf("%w: web searcher", ErrConfigurationMissing))
		return
	}

	ctx, cancel := o.stageContext(ctx)
	defer cancel()

	if err := ctx.Err(); err != nil {
		st.fail(fmt.Errorf("%w: web search: %w", ErrBackendUnavailable, err))
		return
	}

	words, err := o.web.Search(ctx, st.Query, st.MissingWeb)
	if err != nil {
		st.fail(fmt.Errorf("%w: web search: %w", ErrBackendUnavailable, err))
		return
	}

	st.WebWords = append(st.WebWords, truncate(words, st.MissingWeb)...)
}

// generate asks the generator for exactly the LLM quota.
func (o *Orchestrator) generate(ctx context.Context, st *State) {
	if o.generator == nil {
		st.fail(fmt.Errorf("%w: text generator", ErrConfigurationMissing))
		return
	}

	ctx, cancel := o.stageContext(ctx)
	defer cancel()

	if err := ctx.Err(); err != nil {
		st.fail(fmt.Errorf("%w: %w", ErrGenerationFailed, err))
		return
	}

	words, err := o.generator.GenerateWords(ctx, st.Query, st.MissingLLM)
	if err != nil {
		st.fail(fmt.Errorf("%w: %w", ErrGenerationFailed, err))
		return
	}
	if len(words) == 0 {
		st.fail(fmt.Errorf("%w: generator returned no words", ErrGenerationFailed))
		return
	}

	st.GeneratedWords = append(st.GeneratedWords, truncate(words, st.MissingLLM)...)
}

func truncate(words []string, n int) []string {
	if len(words) > n {
		return words[:n]
	}
	return words
}

// IsStageFailure reports whether err came from a stage rather than from
// request validation.
func IsStageFailure(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) ||
		errors.Is(err, ErrGenerationFailed) ||
		errors.Is(err, ErrConfigurationMissing)
}
