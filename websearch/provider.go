package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/duckduckgo"
	"github.com/tmc/langchaingo/tools/serpapi"
)

const (
	defaultMinTokenLength = 2
	defaultUserAgent      = "wordhoard/1.0"
)

// Provider returns candidate words for a query from a web search tool.
// It is safe for concurrent use if the wrapped tool is.
type Provider struct {
	tool           tools.Tool
	minTokenLength int
	logger         *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMinTokenLength drops candidate words shorter than n runes.
// Default is 2.
func WithMinTokenLength(n int) Option {
	return func(p *Provider) error {
		if n < 1 {
			return fmt.Errorf("min token length must be positive, got %d", n)
		}
		p.minTokenLength = n
		return nil
	}
}

// NewProvider wraps a search tool.
func NewProvider(tool tools.Tool, opts ...Option) (*Provider, error) {
	if tool == nil {
		return nil, ErrToolRequired
	}

	p := &Provider{
		tool:           tool,
		minTokenLength: defaultMinTokenLength,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "websearch", "tool", tool.Name())

	return p, nil
}

// NewDuckDuckGo creates a provider backed by DuckDuckGo's HTML search.
// An empty userAgent uses a default.
func NewDuckDuckGo(maxResults int, userAgent string, opts ...Option) (*Provider, error) {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	tool, err := duckduckgo.New(maxResults, userAgent)
	if err != nil {
		return nil, err
	}
	return NewProvider(tool, opts...)
}

// NewSerpAPI creates a provider backed by SerpAPI. An empty apiKey falls
// back to the SERPAPI_API_KEY environment variable.
func NewSerpAPI(apiKey string, opts ...Option) (*Provider, error) {
	var toolOpts []serpapi.Option
	if apiKey != "" {
		toolOpts = append(toolOpts, serpapi.WithAPIKey(apiKey))
	}
	tool, err := serpapi.New(toolOpts...)
	if err != nil {
		return nil, err
	}
	return NewProvider(tool, opts...)
}

// Search runs query through the tool and returns up to count candidate words,
// most frequent first. Words of the query itself are never returned.
func (p *Provider) Search(ctx context.Context, query string, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}

	answer, err := p.tool.Call(ctx, query)
	if err != nil {
		p.logger.Warn("search tool failed", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	exclude := map[string]bool{strings.ToLower(strings.TrimSpace(query)): true}
	for _, tok := range tokenizeAndFilter(query, 1) {
		exclude[tok] = true
	}

	tokens := tokenizeAndFilter(resultText(answer), p.minTokenLength)
	candidates := rankCandidates(tokens, exclude)
	if len(candidates) > count {
		candidates = candidates[:count]
	}

	p.logger.Debug("web candidates", "query", query, "requested", count, "returned", len(candidates))
	return candidates, nil
}
