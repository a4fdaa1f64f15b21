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


// Package websearch turns web search results into candidate dictionary words.
//
// A Provider wraps any langchaingo tools.Tool that answers a text query with
// text (DuckDuckGo and SerpAPI constructors are included), tokenizes the
// answer, drops stop words and the query itself, and ranks the remaining
// words by how often they appear.
package websearch
