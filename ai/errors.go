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


package ai

import "errors"

var (
	// ErrGenerationFailed indicates the language model call failed or returned
	// output that could not be used.
	ErrGenerationFailed = errors.New("text generation failed")

	// ErrEmptyOutput indicates the model answered but produced nothing usable.
	ErrEmptyOutput = errors.New("model returned no usable output")

	// ErrEmbeddingFailed indicates the embedding service call failed or
	// returned a different number of vectors than texts.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrInvalidConfig indicates an invalid AI configuration.
	ErrInvalidConfig = errors.New("invalid ai config")
)
