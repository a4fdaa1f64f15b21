package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/wordhoard/ai"
	"github.com/poiesic/wordhoard/core"
	"github.com/poiesic/wordhoard/storage"
)

const (
	DefaultBatchSize     = 32
	DefaultMaxAttempts   = 3
	DefaultRetryDelay    = 500 * time.Millisecond
	DefaultProgressEvery = 100

	// maxLineSize bounds a single JSONL row.
	maxLineSize = 4 * 1024 * 1024
)

// Stats summarizes one Ingest call.
type Stats struct {
	Rows    int           `json:"rows"`
	Skipped int           `json:"skipped"`
	Stored  int           `json:"stored"`
	Failed  int           `json:"failed"`
	Elapsed time.Duration `json:"elapsed"`
}

// Pipeline seeds dictionary entries from a JSONL source.
// Embedding and storage run in batches on a worker pool.
type Pipeline struct {
	repository    storage.EntryRepository
	embedder      ai.Embedder
	pool          *ants.Pool
	batchSize     int
	maxAttempts   int
	retryDelay    time.Duration
	progress      io.Writer
	progressEvery int
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent batches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many entries are embedded per call.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry sets the attempts per embedding call and the base backoff delay.
// Default is 3 attempts starting at 500ms.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		if baseDelay < 0 {
			return fmt.Errorf("retry delay must not be negative, got %v", baseDelay)
		}
		p.maxAttempts = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithProgress writes a progress line to w every `every` entries.
// Default is no progress output.
func WithProgress(w io.Writer, every int) Option {
	return func(p *Pipeline) error {
		p.progress = w
		if every > 0 {
			p.progressEvery = every
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a seeding pipeline.
func NewPipeline(repository storage.EntryRepository, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository:    repository,
		embedder:      embedder,
		pool:          pool,
		batchSize:     DefaultBatchSize,
		maxAttempts:   DefaultMaxAttempts,
		retryDelay:    DefaultRetryDelay,
		progressEvery: DefaultProgressEvery,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// Ingest reads dictionary rows from source and stores them in partition.
// Bad rows are skipped and failed batches are counted; neither aborts the
// run. The returned error is reserved for an unreadable source, an invalid
// partition or a cancelled context, in which case Stats covers the work
// done so far.
func (p *Pipeline) Ingest(ctx context.Context, partition string, source io.Reader) (*Stats, error) {
	if err := core.ValidatePartition(partition); err != nil {
		return nil, err
	}

	started := time.Now()
	stats := &Stats{}

	entries, err := p.readEntries(partition, source, stats)
	if err != nil {
		return nil, err
	}
	p.logger.Info("read dictionary rows",
		"partition", partition,
		"rows", stats.Rows,
		"entries", len(entries),
		"skipped", stats.Skipped)

	tracker := NewProgressTracker(p.progress, len(entries), p.progressEvery)
	tracker.Start()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	record := func(batch []*core.Entry, stored int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			stats.Failed += len(batch)
			p.logger.Error("error storing batch",
				"first_form", batch[0].Form,
				"size", len(batch),
				"err", err)
			return
		}
		stats.Stored += stored
	}

	for start := 0; start < len(entries); start += p.batchSize {
		if ctx.Err() != nil {
			break
		}
		batch := entries[start:min(start+p.batchSize, len(entries))]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			stored, err := p.storeBatch(ctx, batch)
			record(batch, stored, err)
			tracker.Add(len(batch))
		})
		if submitErr != nil {
			wg.Done()
			record(batch, 0, submitErr)
		}
	}

	wg.Wait()
	tracker.Finish()
	stats.Elapsed = time.Since(started)

	if err := ctx.Err(); err != nil {
		p.logger.Warn("seeding interrupted", "stored", stats.Stored, "err", err)
		return stats, err
	}

	p.logger.Info("seeding finished",
		"partition", partition,
		"stored", stats.Stored,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"elapsed", stats.Elapsed)
	return stats, nil
}

// readEntries decodes every row of source into entries for partition.
func (p *Pipeline) readEntries(partition string, source io.Reader, stats *Stats) ([]*core.Entry, error) {
	scanner := bufio.NewScanner(source)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var entries []*core.Entry
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(bytes.TrimSpace(text)) == 0 {
			continue
		}
		stats.Rows++

		row, err := ParseRow(text)
		if err != nil {
			stats.Skipped++
			p.logger.Warn("skipping malformed row", "line", line, "err", err)
			continue
		}
		if row.Form == "" {
			stats.Skipped++
			p.logger.Debug("skipping row without form", "line", line)
			continue
		}
		if row.UsagesErr != nil {
			p.logger.Warn("could not parse usages, storing verbatim",
				"line", line,
				"form", row.Form,
				"err", row.UsagesErr)
		}

		entries = append(entries, &core.Entry{
			Partition:         partition,
			Form:              row.Form,
			Definition:        row.Definition,
			EnglishDefinition: row.EnglishDefinition,
			Usages:            row.Usages,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading source at line %d: %w", line+1, err)
	}

	return entries, nil
}

// storeBatch embeds the forms of batch and stores the entries.
func (p *Pipeline) storeBatch(ctx context.Context, batch []*core.Entry) (int, error) {
	texts := make([]string, len(batch))
	for i, e := range batch {
		texts[i] = e.Form
	}

	var vectors [][]float32
	err := retryWithBackoff(ctx, p.logger, p.maxAttempts, p.retryDelay, func(ctx context.Context) error {
		var err error
		vectors, err = p.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("embedding after %d attempts: %w", p.maxAttempts, err)
	}
	if len(vectors) != len(batch) {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(batch), len(vectors))
	}

	for i, e := range batch {
		e.Vector = normalizeVector(vectors[i])
	}

	added, err := p.repository.AddEntries(ctx, batch...)
	if err != nil {
		return 0, err
	}
	return len(added), nil
}

// Release frees the worker pool. The pipeline must not be used afterwards.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
