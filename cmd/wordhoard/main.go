// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/wordhoard/ai"
	"github.com/poiesic/wordhoard/core"
	"github.com/poiesic/wordhoard/discovery"
	"github.com/poiesic/wordhoard/ingestion"
	"github.com/poiesic/wordhoard/search"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "wordhoard:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to a process exit status.
// Bad input exits 2, everything else 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errMissingArgument),
		errors.Is(err, discovery.ErrInvalidRequest),
		errors.Is(err, search.ErrInvalidQuery),
		errors.Is(err, core.ErrInvalidPartition):
		return 2
	default:
		return 1
	}
}

func newApp() *cli.App {
	defaults := ai.DefaultConfig()

	return &cli.App{
		Name:  "wordhoard",
		Usage: "Word discovery over a personal dictionary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"WORDHOARD_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./wordhoard_db",
				EnvVars: []string{"WORDHOARD_DB"},
			},
			&cli.StringFlag{
				Name:    "partition",
				Aliases: []string{"p"},
				Usage:   "Dictionary partition to read or seed",
				Value:   core.DefaultPartition,
				EnvVars: []string{"WORDHOARD_PARTITION"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				Value:   defaults.EmbeddingHost,
				EnvVars: []string{"WORDHOARD_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   defaults.EmbeddingModel,
				EnvVars: []string{"WORDHOARD_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "generator-host",
				Usage:   "Text generation service host URL",
				Value:   defaults.GeneratorHost,
				EnvVars: []string{"WORDHOARD_GENERATOR_HOST"},
			},
			&cli.StringFlag{
				Name:    "generator-model",
				Usage:   "Text generation model name",
				Value:   defaults.GeneratorModel,
				EnvVars: []string{"WORDHOARD_GENERATOR_MODEL"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the OpenAI-compatible services",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.Float64Flag{
				Name:    "temperature",
				Usage:   "Sampling temperature for word generation (0-2)",
				Value:   defaults.Temperature,
				EnvVars: []string{"WORDHOARD_TEMPERATURE"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "discover",
				Usage:     "Find words related to a query from the dictionary, the web and a language model",
				ArgsUsage: "<query>",
				Action:    discoverCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   fmt.Sprintf("Number of words to return (1-%d)", discovery.MaxTargetWordCount),
						Value:   10,
					},
					&cli.StringFlag{
						Name:    "web",
						Usage:   "Web search backend (duckduckgo, serpapi, none)",
						Value:   "duckduckgo",
						EnvVars: []string{"WORDHOARD_WEB_SEARCH"},
					},
					&cli.StringFlag{
						Name:    "serpapi-key",
						Usage:   "SerpAPI key, required with --web serpapi",
						EnvVars: []string{"SERPAPI_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "web-results",
						Usage: "Search results fetched per web query",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "user-agent",
						Usage: "User agent for web search requests",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum cosine similarity for dictionary matches",
						Value: float64(discovery.DefaultSimilarityThreshold),
					},
					&cli.IntFlag{
						Name:  "over-fetch",
						Usage: "Dictionary matches fetched before filtering",
						Value: discovery.DefaultOverFetch,
					},
					&cli.DurationFlag{
						Name:  "stage-timeout",
						Usage: "Timeout for each external call (0 disables)",
						Value: 30 * time.Second,
					},
					&cli.StringFlag{
						Name:  "metrics-file",
						Usage: "Write run metrics in Prometheus text format to this file",
					},
				},
			},
			{
				Name:      "related",
				Usage:     "List dictionary entries nearest to a word",
				ArgsUsage: "<word>",
				Action:    relatedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"k"},
						Usage:   "Number of entries to return",
						Value:   10,
					},
				},
			},
			{
				Name:      "lookup",
				Usage:     "Show the dictionary entries stored under a word",
				ArgsUsage: "<word>",
				Action:    lookupCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:  "id",
						Usage: "Look up a single entry by id instead",
					},
				},
			},
			{
				Name:      "seed",
				Usage:     "Load dictionary entries from a JSONL file ('-' for stdin)",
				ArgsUsage: "<file>",
				Action:    seedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to embed per request",
						Value: ingestion.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent embedding batches (0 uses half the CPUs)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: ingestion.DefaultProgressEvery,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per embedding request",
						Value: ingestion.DefaultMaxAttempts,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: ingestion.DefaultRetryDelay,
					},
				},
			},
			{
				Name:      "examples",
				Usage:     "Write example sentences for a word",
				ArgsUsage: "<word>",
				Action:    examplesCommand,
			},
			{
				Name:      "evaluate",
				Usage:     "Get feedback on an example sentence",
				ArgsUsage: "<word> <sentence>",
				Action:    evaluateCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
