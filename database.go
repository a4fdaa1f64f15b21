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


package wordhoard

import (
	"log/slog"

	"github.com/poiesic/wordhoard/ai"
	"github.com/poiesic/wordhoard/ai/openai"
	"github.com/poiesic/wordhoard/core"
	"github.com/poiesic/wordhoard/discovery"
	"github.com/poiesic/wordhoard/ingestion"
	"github.com/poiesic/wordhoard/search"
	"github.com/poiesic/wordhoard/storage"
	"github.com/poiesic/wordhoard/storage/badger"
)

// Database wires the dictionary store, the AI provider and an optional web
// searcher into the components built on top of them.
type Database struct {
	backend   *badger.Backend
	entryRepo storage.EntryRepository
	provider  ai.AIProvider
	web       discovery.WebSearcher
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	web      discovery.WebSearcher
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the configuration for the OpenAI-compatible provider.
// Ignored when WithAIProvider is also given.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAIProvider supplies a ready-made AI provider. The Database takes
// ownership and closes it.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithWebSearcher enables the web search stage of discovery.
func WithWebSearcher(web discovery.WebSearcher) DatabaseOption {
	return func(o *databaseOptions) {
		o.web = web
	}
}

// WithInMemory keeps the store in memory; the file path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens the dictionary at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	entryRepo, err := badger.NewEntryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			entryRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:   backend,
		entryRepo: entryRepo,
		provider:  provider,
		web:       options.web,
		logger:    options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.entryRepo.Close(); err != nil {
		db.logger.Error("error closing entry repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) EntryRepository() storage.EntryRepository {
	return db.entryRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) ExampleWriter() ai.ExampleWriter {
	return db.provider.ExampleWriter()
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.entryRepo, db.provider.Embedder(), opts...)
}

// NewDiscoverer builds a discovery orchestrator over partition, or over
// core.DefaultPartition when partition is empty. Without a web searcher the
// web stage reports ErrConfigurationMissing when a run reaches it.
func (db *Database) NewDiscoverer(partition string, opts ...discovery.Option) (*discovery.Orchestrator, error) {
	if partition == "" {
		partition = core.DefaultPartition
	}

	searcher, err := db.NewSearcher(search.WithPartition(partition), search.WithLogger(db.logger))
	if err != nil {
		return nil, err
	}

	opts = append([]discovery.Option{discovery.WithLogger(db.logger)}, opts...)
	return discovery.NewOrchestrator(searcher, db.web, db.provider.WordGenerator(), opts...)
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewPipeline(db.entryRepo, db.provider.Embedder(), opts...)
}
