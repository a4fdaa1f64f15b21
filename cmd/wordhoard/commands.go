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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/wordhoard"
	"github.com/poiesic/wordhoard/ai"
	"github.com/poiesic/wordhoard/core"
	"github.com/poiesic/wordhoard/discovery"
	"github.com/poiesic/wordhoard/ingestion"
	"github.com/poiesic/wordhoard/search"
	"github.com/poiesic/wordhoard/websearch"
)

var errMissingArgument = errors.New("missing argument")

// openDatabase opens the database named by the global flags. Tests replace it.
var openDatabase = func(c *cli.Context, opts ...wordhoard.DatabaseOption) (*wordhoard.Database, error) {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorHost(c.String("generator-host")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithTemperature(c.Float64("temperature")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts = append([]wordhoard.DatabaseOption{
		wordhoard.WithAIConfig(config),
		wordhoard.WithLogger(slog.Default()),
	}, opts...)

	db, err := wordhoard.NewDatabase(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func discoverCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: query", errMissingArgument)
	}

	var dbOpts []wordhoard.DatabaseOption
	web, err := newWebSearcher(c)
	if err != nil {
		return err
	}
	if web != nil {
		dbOpts = append(dbOpts, wordhoard.WithWebSearcher(web))
	}

	db, err := openDatabase(c, dbOpts...)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []discovery.Option{
		discovery.WithSimilarityThreshold(float32(c.Float64("threshold"))),
		discovery.WithOverFetch(c.Int("over-fetch")),
		discovery.WithStageTimeout(c.Duration("stage-timeout")),
	}

	var registry *prometheus.Registry
	metricsFile := c.String("metrics-file")
	if metricsFile != "" {
		registry = prometheus.NewRegistry()
		monitor, err := discovery.NewMetricsMonitor(registry)
		if err != nil {
			return err
		}
		opts = append(opts, discovery.WithMonitor(monitor))
	}

	orchestrator, err := db.NewDiscoverer(c.String("partition"), opts...)
	if err != nil {
		return err
	}

	resp, runErr := orchestrator.Discover(c.Context, discovery.Request{
		Query:           query,
		TargetWordCount: c.Int("count"),
	})

	if registry != nil {
		if err := writeMetrics(registry, metricsFile); err != nil {
			slog.Error("error writing metrics", "path", metricsFile, "err", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	return writeJSON(c.App.Writer, resp)
}

// newWebSearcher returns nil when web search is disabled.
func newWebSearcher(c *cli.Context) (discovery.WebSearcher, error) {
	opts := []websearch.Option{websearch.WithLogger(slog.Default())}

	switch backend := strings.ToLower(c.String("web")); backend {
	case "", "none":
		return nil, nil
	case "duckduckgo", "ddg":
		p, err := websearch.NewDuckDuckGo(c.Int("web-results"), c.String("user-agent"), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create web searcher: %w", err)
		}
		return p, nil
	case "serpapi":
		key := c.String("serpapi-key")
		if key == "" {
			return nil, fmt.Errorf("--serpapi-key or SERPAPI_API_KEY is required with --web serpapi")
		}
		p, err := websearch.NewSerpAPI(key, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create web searcher: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown web search backend %q: must be one of duckduckgo, serpapi, none", backend)
	}
}

func relatedCommand(c *cli.Context) error {
	word := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if word == "" {
		return fmt.Errorf("%w: word", errMissingArgument)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(search.WithPartition(c.String("partition")))
	if err != nil {
		return err
	}

	related, err := searcher.FindRelated(c.Context, word, c.Int("limit"))
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, related)
}

// entryView is the JSON shape of a stored dictionary entry.
type entryView struct {
	ID                uint64   `json:"id"`
	Form              string   `json:"form"`
	Definition        string   `json:"definition,omitempty"`
	EnglishDefinition string   `json:"english_definition,omitempty"`
	Usages            []string `json:"usages,omitempty"`
}

func newEntryViews(entries []*core.Entry) []entryView {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{
			ID:                uint64(e.Id),
			Form:              e.Form,
			Definition:        e.Definition,
			EnglishDefinition: e.EnglishDefinition,
			Usages:            e.Usages,
		})
	}
	return views
}

func lookupCommand(c *cli.Context) error {
	form := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if form == "" && !c.IsSet("id") {
		return fmt.Errorf("%w: word or --id", errMissingArgument)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if c.IsSet("id") {
		entry, err := db.EntryRepository().GetEntry(c.Context, core.ID(c.Uint64("id")))
		if err != nil {
			return err
		}
		return writeJSON(c.App.Writer, newEntryViews([]*core.Entry{entry}))
	}

	searcher, err := db.NewSearcher(search.WithPartition(c.String("partition")))
	if err != nil {
		return err
	}
	entries, err := searcher.Lookup(c.Context, form)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, newEntryViews(entries))
}

func seedCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("%w: file", errMissingArgument)
	}

	var source io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open source: %w", err)
		}
		defer f.Close()
		source = f
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []ingestion.Option{
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingestion.WithProgress(c.App.ErrWriter, c.Int("report-interval")),
	}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingestion.WithPoolSize(size))
	}

	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", c.String("db"))
	fmt.Fprintf(c.App.ErrWriter, "Partition: %s\n", c.String("partition"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(c.App.ErrWriter)

	stats, err := pipeline.Ingest(c.Context, c.String("partition"), source)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	total, err := db.EntryRepository().CountEntries(c.Context, c.String("partition"))
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, struct {
		*ingestion.Stats
		PartitionEntries int `json:"partition_entries"`
	}{stats, total})
}

func examplesCommand(c *cli.Context) error {
	word := strings.TrimSpace(c.Args().First())
	if word == "" {
		return fmt.Errorf("%w: word", errMissingArgument)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	examples, err := db.ExampleWriter().WriteExamples(c.Context, word)
	if err != nil {
		return err
	}
	for _, e := range examples {
		fmt.Fprintln(c.App.Writer, e)
	}
	return nil
}

func evaluateCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("%w: word and sentence", errMissingArgument)
	}
	word := strings.TrimSpace(c.Args().First())
	sentence := strings.TrimSpace(strings.Join(c.Args().Tail(), " "))

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	feedback, err := db.ExampleWriter().EvaluateExample(c.Context, word, sentence)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, feedback)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeMetrics dumps every family in g to path in the text exposition format,
// suitable for a node_exporter textfile collector.
func writeMetrics(g prometheus.Gatherer, path string) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
