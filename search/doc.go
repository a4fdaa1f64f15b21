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


// Package search provides vector similarity search over the dictionary.
//
// A Searcher is bound to one partition. Search returns bare candidate forms
// with scores offset by ScoreOffset, which is what the discovery pipeline
// consumes; FindRelated returns full entries for nearest-neighbour lookups.
// A SearchMonitor can observe each stage of a query.
package search
