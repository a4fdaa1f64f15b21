package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/wordhoard/ai"
	"github.com/tmc/langchaingo/llms"
)

const (
	examplesTemperature = 0.7
	examplesMaxTokens   = 150
	evaluateTemperature = 0.5
	evaluateMaxTokens   = 200
	defaultExampleCount = 2
)

// ExampleWriter implements ai.ExampleWriter using OpenAI-compatible chat APIs.
type ExampleWriter struct {
	client llms.Model
	logger *slog.Logger
}

// newExampleWriter is an internal constructor that returns the concrete type.
func newExampleWriter(config *ai.Config) (*ExampleWriter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newChatClient(config)
	if err != nil {
		return nil, err
	}

	return newExampleWriterWithModel(client), nil
}

func newExampleWriterWithModel(client llms.Model) *ExampleWriter {
	return &ExampleWriter{
		client: client,
		logger: slog.Default().With("component", "openai-writer"),
	}
}

// NewExampleWriter creates a new example writer using the provided configuration.
func NewExampleWriter(config *ai.Config) (ai.ExampleWriter, error) {
	return newExampleWriter(config)
}

// WriteExamples asks the model for two example sentences, one per line.
func (w *ExampleWriter) WriteExamples(ctx context.Context, word string) ([]string, error) {
	text, err := w.complete(ctx, buildExamplesPrompt(word), examplesTemperature, examplesMaxTokens)
	if err != nil {
		return nil, err
	}

	sentences := splitLines(text)
	if len(sentences) == 0 {
		return nil, ai.ErrEmptyOutput
	}
	if len(sentences) > defaultExampleCount {
		w.logger.Debug("model returned extra lines", "word", word, "lines", len(sentences))
	}
	return sentences, nil
}

// EvaluateExample asks the model to critique sentence and flattens the answer.
func (w *ExampleWriter) EvaluateExample(ctx context.Context, word, sentence string) (string, error) {
	text, err := w.complete(ctx, buildEvaluatePrompt(word, sentence), evaluateTemperature, evaluateMaxTokens)
	if err != nil {
		return "", err
	}

	feedback := cleanEvaluation(text)
	if feedback == "" {
		return "", ai.ErrEmptyOutput
	}
	return feedback, nil
}

func (w *ExampleWriter) complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := w.client.GenerateContent(ctx, content,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens))
	if err != nil {
		w.logger.Error("failed to generate content", "err", err)
		return "", fmt.Errorf("%w: %w", ai.ErrGenerationFailed, err)
	}
	if len(response.Choices) < 1 {
		return "", fmt.Errorf("%w: no choices returned", ai.ErrEmptyOutput)
	}
	return response.Choices[0].Content, nil
}
