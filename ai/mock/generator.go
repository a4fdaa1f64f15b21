package mock

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockWordGenerator is a test double for ai.WordGenerator.
type MockWordGenerator struct {
	// GenerateWordsFunc is called by GenerateWords if set.
	// If nil, returns "<query>-gen-<n>" for n in 1..count.
	GenerateWordsFunc func(ctx context.Context, query string, count int) ([]string, error)

	callCount atomic.Int64
	lastCount atomic.Int64
}

// NewMockWordGenerator creates a mock generator with default behavior.
func NewMockWordGenerator() *MockWordGenerator {
	return &MockWordGenerator{}
}

// GenerateWords returns synthetic words or delegates to GenerateWordsFunc.
func (m *MockWordGenerator) GenerateWords(ctx context.Context, query string, count int) ([]string, error) {
	m.callCount.Add(1)
	m.lastCount.Store(int64(count))

	if m.GenerateWordsFunc != nil {
		return m.GenerateWordsFunc(ctx, query, count)
	}

	words := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		words = append(words, fmt.Sprintf("%s-gen-%d", query, i))
	}
	return words, nil
}

// CallCount returns the number of times GenerateWords was called.
func (m *MockWordGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// LastCount returns the count argument of the most recent call.
func (m *MockWordGenerator) LastCount() int {
	return int(m.lastCount.Load())
}

// Reset clears the call counters and custom functions.
func (m *MockWordGenerator) Reset() {
	m.callCount.Store(0)
	m.lastCount.Store(0)
	m.GenerateWordsFunc = nil
}
