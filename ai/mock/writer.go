package mock

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockExampleWriter is a test double for ai.ExampleWriter.
type MockExampleWriter struct {
	// WriteExamplesFunc is called by WriteExamples if set.
	WriteExamplesFunc func(ctx context.Context, word string) ([]string, error)

	// EvaluateExampleFunc is called by EvaluateExample if set.
	EvaluateExampleFunc func(ctx context.Context, word, sentence string) (string, error)

	callCount atomic.Int64
}

// NewMockExampleWriter creates a mock example writer with default behavior.
func NewMockExampleWriter() *MockExampleWriter {
	return &MockExampleWriter{}
}

// WriteExamples returns two canned sentences containing word.
func (m *MockExampleWriter) WriteExamples(ctx context.Context, word string) ([]string, error) {
	m.callCount.Add(1)

	if m.WriteExamplesFunc != nil {
		return m.WriteExamplesFunc(ctx, word)
	}

	return []string{
		fmt.Sprintf("%s is the first example.", word),
		fmt.Sprintf("%s is the second example.", word),
	}, nil
}

// EvaluateExample returns canned feedback.
func (m *MockExampleWriter) EvaluateExample(ctx context.Context, word, sentence string) (string, error) {
	m.callCount.Add(1)

	if m.EvaluateExampleFunc != nil {
		return m.EvaluateExampleFunc(ctx, word, sentence)
	}

	return fmt.Sprintf("The sentence uses %s naturally.", word), nil
}

// CallCount returns the number of times any method was called.
func (m *MockExampleWriter) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockExampleWriter) Reset() {
	m.callCount.Store(0)
	m.WriteExamplesFunc = nil
	m.EvaluateExampleFunc = nil
}
