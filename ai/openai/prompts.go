package openai

import "fmt"

const wordsResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "words": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": ["words"],
  "additionalProperties": false
}`

const wordsPromptTemplate = `You help writers build a personal dictionary. Suggest words that are
semantically related to the word the user gives you: synonyms, near-synonyms, words from the same
domain and common collocates. Answer in the same language as the user's word.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble or
explanation. Start your response directly with the opening brace { and end with the closing brace }.

%s

Rules:
- Return exactly %d words.
- Each item is a single dictionary headword, not a phrase or sentence.
- Never repeat the user's word and never repeat an item.

Example:
Input: "바다"
Output:
{"words": ["해양", "파도", "해변"]}`

const examplesPromptTemplate = `Write 2 example sentences that use the word '%s'.
Write each sentence on its own line. Do not number the sentences.`

const evaluatePromptTemplate = `The following sentence was written using the word '%s':
"%s"
Evaluate whether the sentence is natural and makes sense. Consider grammar, expression and how
clearly it conveys meaning, and briefly suggest improvements if any are needed. Be concise.`

// buildWordsPrompt creates the system prompt for candidate word generation.
func buildWordsPrompt(count int) string {
	return fmt.Sprintf(wordsPromptTemplate, wordsResponseSchema, count)
}

func buildExamplesPrompt(word string) string {
	return fmt.Sprintf(examplesPromptTemplate, word)
}

func buildEvaluatePrompt(word, sentence string) string {
	return fmt.Sprintf(evaluatePromptTemplate, word, sentence)
}
