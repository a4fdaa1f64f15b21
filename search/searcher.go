package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/wordhoard/ai"
	"github.com/poiesic/wordhoard/core"
	"github.com/poiesic/wordhoard/storage"
)

const (
	// ScoreOffset is added to every cosine similarity reported by Search so
	// scores fall in [0, 2]. Callers subtract it before thresholding.
	ScoreOffset float32 = 1.0

	// MaxRelated is the largest limit FindRelated accepts.
	MaxRelated = 50

	// noSimilarityFloor admits every stored vector; thresholding is left to callers.
	noSimilarityFloor float32 = -1
)

// RelatedWord is a dictionary entry returned by a nearest-neighbour lookup.
type RelatedWord struct {
	Form              string   `json:"form"`
	Definition        string   `json:"definition,omitempty"`
	EnglishDefinition string   `json:"english_definition,omitempty"`
	Usages            []string `json:"usages,omitempty"`
	Score             float32  `json:"score"`
}

// Searcher performs vector similarity search over one partition of the dictionary.
type Searcher struct {
	repository storage.EntryRepository
	embedder   ai.Embedder
	partition  string
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPartition binds the searcher to a partition.
// Default is core.DefaultPartition.
func WithPartition(partition string) Option {
	return func(s *Searcher) error {
		if err := core.ValidatePartition(partition); err != nil {
			return err
		}
		s.partition = partition
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repository storage.EntryRepository, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		repository: repository,
		embedder:   embedder,
		partition:  core.DefaultPartition,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher", "partition", s.partition)

	return s, nil
}

// Partition returns the partition the searcher reads from.
func (s *Searcher) Partition() string {
	return s.partition
}

// Search returns up to k entry forms ranked by similarity to query.
// Each score is cosine similarity plus ScoreOffset.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]core.Match, error) {
	return s.SearchWithMonitor(ctx, query, k, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, k int, monitor SearchMonitor) ([]core.Match, error) {
	results, err := s.nearest(ctx, query, k, monitor)
	if err != nil {
		return nil, err
	}

	matches := make([]core.Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, core.Match{
			Text:  r.Entry.Form,
			Score: r.Score + ScoreOffset,
		})
	}
	return matches, nil
}

// FindRelated returns the limit nearest dictionary entries to word with
// their definitions and usages. Scores are raw cosine similarity.
func (s *Searcher) FindRelated(ctx context.Context, word string, limit int) ([]RelatedWord, error) {
	if strings.TrimSpace(word) == "" {
		return nil, fmt.Errorf("%w: word is empty", ErrInvalidQuery)
	}
	if limit < 1 || limit > MaxRelated {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidQuery, MaxRelated)
	}

	results, err := s.nearest(ctx, word, limit, nil)
	if err != nil {
		return nil, err
	}

	related := make([]RelatedWord, 0, len(results))
	for _, r := range results {
		related = append(related, RelatedWord{
			Form:              r.Entry.Form,
			Definition:        r.Entry.Definition,
			EnglishDefinition: r.Entry.EnglishDefinition,
			Usages:            r.Entry.Usages,
			Score:             r.Score,
		})
	}
	if len(related) == 0 {
		s.logger.Info("no related words found", "word", word)
	}
	return related, nil
}

// Lookup returns every homonym stored under form, without embedding it.
func (s *Searcher) Lookup(ctx context.Context, form string) ([]*core.Entry, error) {
	form = strings.TrimSpace(form)
	if form == "" {
		return nil, fmt.Errorf("%w: word is empty", ErrInvalidQuery)
	}
	return s.repository.FindEntriesByForm(ctx, s.partition, form)
}

func (s *Searcher) nearest(ctx context.Context, query string, k int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", ErrInvalidQuery)
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrEmbeddingFailed)
	}
	monitor.AfterEmbedding(len(embedding))

	results, err := s.repository.FindSimilar(ctx, s.partition, embedding, noSimilarityFloor, k)
	if err != nil {
		s.logger.Error("error querying for similar entries", "err", err)
		return nil, err
	}
	monitor.AfterSimilaritySearch(results)

	s.logger.Debug("similarity search finished", "query", query, "k", k, "hits", len(results))
	monitor.Finish(results)

	return results, nil
}
