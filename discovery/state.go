package discovery

import (
	"fmt"
	"strings"
)

const (
	// MaxTargetWordCount is the largest number of words a request may ask for.
	MaxTargetWordCount = 20

	SourceRAG = "rag"
	SourceWeb = "web"
	SourceLLM = "llm"
)

// Request asks for TargetWordCount words related to Query.
type Request struct {
	Query           string `json:"query"`
	TargetWordCount int    `json:"target_word_count"`
}

// Validate checks the request before any stage runs.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("%w: query is empty", ErrInvalidRequest)
	}
	if r.TargetWordCount < 1 || r.TargetWordCount > MaxTargetWordCount {
		return fmt.Errorf("%w: target word count must be between 1 and %d, got %d",
			ErrInvalidRequest, MaxTargetWordCount, r.TargetWordCount)
	}
	return nil
}

// State is threaded through one discovery run. Stages only append to it.
// Once Err is set no further stage calls out; the run goes straight to Merge.
type State struct {
	RunID           string
	Query           string
	TargetWordCount int

	RetrievedWords []string
	WebWords       []string
	GeneratedWords []string

	MissingWeb int
	MissingLLM int

	Err error
}

func newState(runID string, req Request) *State {
	return &State{
		RunID:           runID,
		Query:           req.Query,
		TargetWordCount: req.TargetWordCount,
	}
}

// fail records err as the run's error unless one is already recorded.
func (st *State) fail(err error) {
	if st.Err == nil {
		st.Err = err
	}
}

// Response is the caller-facing projection of a finished State.
type Response struct {
	Query           string         `json:"query"`
	FinalWords      []string       `json:"final_words"`
	TargetWordCount int            `json:"target_word_count"`
	SourceCounts    map[string]int `json:"source_counts"`
}

// Merge concatenates retrieved, web and generated words in that order,
// drops blanks, the query and case-insensitive repeats, and truncates to the
// target. SourceCounts are the raw list lengths before deduplication.
func Merge(st *State) *Response {
	total := len(st.RetrievedWords) + len(st.WebWords) + len(st.GeneratedWords)
	seen := make(map[string]struct{}, total+1)
	seen[strings.ToLower(st.Query)] = struct{}{}

	final := make([]string, 0, min(total, max(st.TargetWordCount, 0)))
	for _, list := range [][]string{st.RetrievedWords, st.WebWords, st.GeneratedWords} {
		for _, word := range list {
			if len(final) >= st.TargetWordCount {
				break
			}
			if strings.TrimSpace(word) == "" {
				continue
			}
			key := strings.ToLower(word)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			final = append(final, word)
		}
	}

	return &Response{
		Query:           st.Query,
		FinalWords:      final,
		TargetWordCount: st.TargetWordCount,
		SourceCounts: map[string]int{
			SourceRAG: len(st.RetrievedWords),
			SourceWeb: len(st.WebWords),
			SourceLLM: len(st.GeneratedWords),
		},
	}
}
