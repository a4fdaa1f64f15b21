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


package mock

import "github.com/poiesic/wordhoard/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder, generator and writer instances.
type MockProvider struct {
	embedder  *MockEmbedder
	generator *MockWordGenerator
	writer    *MockExampleWriter
	closed    bool
}

// NewMockProvider creates a new mock provider with default mock services.
// Use GetMockEmbedder()/GetMockGenerator()/GetMockWriter() to access concrete
// types for test assertions.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		generator: NewMockWordGenerator(),
		writer:    NewMockExampleWriter(),
	}
}

var _ ai.AIProvider = (*MockProvider)(nil)

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// WordGenerator returns the mock word generator.
func (p *MockProvider) WordGenerator() ai.WordGenerator {
	return p.generator
}

// ExampleWriter returns the mock example writer.
func (p *MockProvider) ExampleWriter() ai.ExampleWriter {
	return p.writer
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockWordGenerator {
	return p.generator
}

// GetMockWriter returns the underlying mock example writer for test assertions.
func (p *MockProvider) GetMockWriter() *MockExampleWriter {
	return p.writer
}
