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


package discovery

import "errors"

var (
	// ErrBackendUnavailable indicates the similarity store or web search
	// backend could not be reached or failed.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrGenerationFailed indicates the text generator failed or returned no
	// usable output.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrConfigurationMissing indicates a collaborator was never configured.
	// The pipeline routes it exactly like ErrBackendUnavailable.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrInvalidRequest is returned before the pipeline starts for an empty
	// query or an out-of-range word count.
	ErrInvalidRequest = errors.New("invalid discovery request")

	// ErrPipelineFailed is returned by Discover when a stage failed and the
	// merged result is empty.
	ErrPipelineFailed = errors.New("discovery pipeline failed")

	// ErrStageRevisited indicates the state machine tried to run a stage twice.
	ErrStageRevisited = errors.New("stage revisited")
)
