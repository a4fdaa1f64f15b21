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


// Package ai provides abstractions for AI services used in wordhoard.
//
// This package defines interfaces for text embeddings, candidate word
// generation and example sentence writing. Business logic depends on these
// abstractions rather than on concrete model clients.
//
// # Design Principles
//
//   - Embedder: Generates vector embeddings from text
//   - WordGenerator: Produces candidate words related to a query
//   - ExampleWriter: Writes and evaluates example sentences
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// interface types. Mock constructors return concrete types so tests can
// inject behavior and inspect call counts:
//
//	mockGen := mock.NewMockWordGenerator()
//	mockGen.WithGenerateWordsFunc(...)
//	count := mockGen.CallCount()
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	words, err := provider.WordGenerator().GenerateWords(ctx, "바다", 5)
package ai
