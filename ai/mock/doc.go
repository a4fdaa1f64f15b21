// Package mock provides test double implementations of AI service interfaces.
//
// The mocks let tests run without external AI services and give controlled,
// deterministic behavior. All mocks are safe for concurrent use as long as
// the function fields are set before the mock is shared.
//
// # Usage in Tests
//
//	mockProvider := mock.NewMockProvider()
//	words, err := mockProvider.WordGenerator().GenerateWords(ctx, "sea", 3)
//
//	gen := mock.NewMockWordGenerator()
//	gen.GenerateWordsFunc = func(ctx context.Context, q string, n int) ([]string, error) {
//	    return nil, errors.New("model offline")
//	}
//	count := gen.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns unit vectors derived from the text hash
//   - MockWordGenerator: Returns "<query>-gen-<n>" for n in 1..count
//   - MockExampleWriter: Returns two canned sentences and canned feedback
package mock
