package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/wordhoard/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const maxParseAttempts = 3

// WordGenerator implements ai.WordGenerator using OpenAI-compatible chat APIs.
type WordGenerator struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// wordList is the wrapper structure for the model's JSON response.
type wordList struct {
	Words []string `json:"words"`
}

// newChatClient creates a chat completion client for the generator host.
func newChatClient(config *ai.Config) (llms.Model, error) {
	return openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.GeneratorModel),
	)
}

// newWordGenerator is an internal constructor that returns the concrete type.
func newWordGenerator(config *ai.Config) (*WordGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newChatClient(config)
	if err != nil {
		return nil, err
	}

	return newWordGeneratorWithModel(client, config.Temperature), nil
}

func newWordGeneratorWithModel(client llms.Model, temperature float64) *WordGenerator {
	return &WordGenerator{
		client:      client,
		temperature: temperature,
		logger:      slog.Default().With("component", "openai-generator"),
	}
}

// NewWordGenerator creates a new word generator using the provided configuration.
func NewWordGenerator(config *ai.Config) (ai.WordGenerator, error) {
	return newWordGenerator(config)
}

// GenerateWords asks the model for count words related to query.
// Malformed JSON responses are retried up to three times.
func (g *WordGenerator) GenerateWords(ctx context.Context, query string, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildWordsPrompt(count)),
		llms.TextParts(llms.ChatMessageTypeHuman, scrubString(query)),
	}

	var result wordList
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(g.temperature), llms.WithJSONMode())
		if err != nil {
			g.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, fmt.Errorf("%w: %w", ai.ErrGenerationFailed, err)
		}

		if len(response.Choices) < 1 {
			return nil, fmt.Errorf("%w: no choices returned", ai.ErrEmptyOutput)
		}

		responseText := repairJSON(stripCodeFence(response.Choices[0].Content))
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			g.logger.Warn("error parsing generator response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		g.logger.Error("failed to parse generator response after retries", "err", lastErr)
		return nil, fmt.Errorf("%w: %w", ai.ErrGenerationFailed, lastErr)
	}

	words := cleanWords(result.Words, count)
	g.logger.Debug("generated words", "query", query, "requested", count, "returned", len(words))
	return words, nil
}
