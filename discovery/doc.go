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


// Package discovery implements the word-discovery pipeline.
//
// A discovery run merges three candidate sources into one deduplicated list
// of related words:
//
//   - Retrieval: nearest neighbours from a SimilarityStore, kept only above a
//     similarity threshold
//   - WebSearch: words harvested from a WebSearcher when retrieval falls short
//   - Generation: words produced by a TextGenerator for the remaining shortfall
//
// The stages are driven by an explicit state machine. Next is the pure
// transition function; the Orchestrator executes each stage at most once and
// always finishes with Merge. Stage failures are recorded in State.Err and
// never abort the run. Discover reports ErrPipelineFailed only when a stage
// failed and nothing could be merged.
//
// # Usage
//
//	orch, err := discovery.NewOrchestrator(searcher, webProvider, generator,
//	    discovery.WithSimilarityThreshold(0.6),
//	    discovery.WithStageTimeout(10*time.Second),
//	)
//	resp, err := orch.Discover(ctx, discovery.Request{Query: "바다", TargetWordCount: 5})
package discovery
