package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// WordGenerator produces candidate words related to a query using a language model.
// Implementations must be thread-safe for concurrent use.
type WordGenerator interface {
	// GenerateWords asks the model for up to count words related to query.
	// Blank and duplicate words are removed; the result may be shorter than count.
	GenerateWords(ctx context.Context, query string, count int) ([]string, error)
}

// ExampleWriter writes and critiques example sentences for a dictionary word.
// Implementations must be thread-safe for concurrent use.
type ExampleWriter interface {
	// WriteExamples returns example sentences using word, one per element.
	WriteExamples(ctx context.Context, word string) ([]string, error)

	// EvaluateExample returns short feedback on how well sentence uses word.
	EvaluateExample(ctx context.Context, word, sentence string) (string, error)
}

// AIProvider aggregates all AI services needed by wordhoard.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// WordGenerator returns the candidate word generator.
	WordGenerator() WordGenerator

	// ExampleWriter returns the example sentence service.
	ExampleWriter() ExampleWriter

	// Close releases resources held by the provider and its services.
	Close() error
}
