package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DefaultPartition is the partition used when none is specified.
const DefaultPartition = "default"

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Entry is a single dictionary headword stored in the similarity index.
// Homonyms are separate entries sharing a Form but differing in Definition.
type Entry struct {
	Id                ID
	Partition         string    // Tenant or work scope the entry belongs to
	Form              string    // The headword itself
	Definition        string    // Definition in the dictionary's own language
	EnglishDefinition string    // Optional English gloss
	Usages            []string  // Usage examples or collocations
	Vector            []float32 // Embedding of Form (populated during ingestion)
	InsertedAt        time.Time
	UpdatedAt         time.Time
}

// ContentKey returns the string hashed to produce the entry's ID.
func (e *Entry) ContentKey() string {
	return e.Partition + "\x00" + e.Form + "\x00" + e.Definition
}

// Match is a candidate string returned from a similarity lookup.
// Score is whatever the store reports; see search.ScoreOffset.
type Match struct {
	Text  string
	Score float32
}

// SearchResult represents a search result with the full entry and relevance score.
type SearchResult struct {
	Entry *Entry
	Score float32
}
