package discovery

import (
	"context"

	"github.com/poiesic/wordhoard/core"
)

// SimilarityStore returns up to k stored items ranked by similarity to query.
// Scores are cosine similarity shifted by BaselineOffset.
type SimilarityStore interface {
	Search(ctx context.Context, query string, k int) ([]core.Match, error)
}

// WebSearcher returns up to count candidate words for query from the web.
type WebSearcher interface {
	Search(ctx context.Context, query string, count int) ([]string, error)
}

// TextGenerator returns up to count synthetic candidate words for query.
type TextGenerator interface {
	GenerateWords(ctx context.Context, query string, count int) ([]string, error)
}
