package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field names accepted for each column. Exports use either snake_case keys
// or the dataset's original title-case headers.
var (
	formKeys              = []string{"form", "Form"}
	definitionKeys        = []string{"definition", "korean_definition", "Korean Definition"}
	englishDefinitionKeys = []string{"english_definition", "English Definition"}
	usagesKeys            = []string{"usages", "Usages"}
)

// Row is one decoded dictionary line.
type Row struct {
	Form              string
	Definition        string
	EnglishDefinition string
	Usages            []string

	// UsagesErr is set when a bracketed usages string could not be parsed
	// and was kept verbatim as a single usage.
	UsagesErr error
}

// ParseRow decodes one JSONL line. Missing or null columns decode as empty.
func ParseRow(line []byte) (*Row, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedRow)
	}

	row := &Row{
		Form:              strings.TrimSpace(stringField(fields, formKeys)),
		Definition:        stringField(fields, definitionKeys),
		EnglishDefinition: stringField(fields, englishDefinitionKeys),
	}
	row.Usages, row.UsagesErr = normalizeUsages(rawField(fields, usagesKeys))

	return row, nil
}

func rawField(fields map[string]json.RawMessage, keys []string) json.RawMessage {
	for _, k := range keys {
		if raw, ok := fields[k]; ok && !isNull(raw) {
			return raw
		}
	}
	return nil
}

// stringField returns the first non-empty string among keys. Non-string
// scalars are kept as their JSON text.
func stringField(fields map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok || isNull(raw) {
			continue
		}
		if s := scalarText(raw); s != "" {
			return s
		}
	}
	return ""
}

func scalarText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
