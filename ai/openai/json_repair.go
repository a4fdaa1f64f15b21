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


package openai

import "regexp"

var trailingComma = regexp.MustCompile(`,\s*([\]}])`)

// repairJSON attempts to fix common JSON formatting issues from LLM responses:
// keys missing their opening quote and trailing commas before a closing
// bracket or brace.
func repairJSON(s string) string {
	return trailingComma.ReplaceAllString(quoteKeys(s), "$1")
}

// quoteKeys restores a missing opening quote before object keys.
// Example: `{words": [...]}` -> `{"words": [...]}`
func quoteKeys(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+8)

	for i := 0; i < len(in); {
		ch := in[i]
		out = append(out, ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(in) && isSpace(in[i]) {
			out = append(out, in[i])
			i++
		}
		if i >= len(in) || !isLetter(in[i]) {
			continue
		}

		end := i
		for end < len(in) && (isLetter(in[end]) || in[end] == '_') {
			end++
		}
		if end+1 < len(in) && in[end] == '"' && in[end+1] == ':' {
			out = append(out, '"')
		}
		out = append(out, in[i:end]...)
		i = end
	}

	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
