package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errBadLiteral = errors.New("unparsable list literal")

// normalizeUsages flattens the usages column into a list of strings.
//
// The column arrives as a JSON list, a list of lists, a string holding a
// list literal such as "['a', ('b', 'c')]", or a plain string. One level of
// nesting is flattened; deeper values keep their textual form. A bracketed
// string that does not parse is kept verbatim and reported through err.
func normalizeUsages(raw json.RawMessage) (usages []string, err error) {
	if isNull(raw) {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: usages: %w", ErrMalformedRow, err)
		}
		for _, item := range items {
			var nested []json.RawMessage
			if json.Unmarshal(item, &nested) == nil {
				for _, sub := range nested {
					usages = append(usages, scalarText(sub))
				}
				continue
			}
			usages = append(usages, scalarText(item))
		}
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("%w: usages: %w", ErrMalformedRow, err)
		}
		s = strings.TrimSpace(s)
		switch {
		case s == "":
		case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
			items, perr := parseListLiteral(s)
			if perr != nil {
				usages = append(usages, s)
				err = perr
				break
			}
			for _, item := range items {
				if sub, ok := item.([]any); ok {
					for _, v := range sub {
						usages = append(usages, literalText(v))
					}
					continue
				}
				usages = append(usages, literalText(item))
			}
		default:
			usages = append(usages, s)
		}
	default:
		usages = append(usages, string(trimmed))
	}

	if len(usages) == 0 {
		return nil, err
	}
	return usages, err
}

func literalText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = literalText(p)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(t)
	}
}

// parseListLiteral parses a bracketed list literal. Elements are quoted
// strings (single or double quotes, backslash escapes), nested lists or
// tuples, or bare tokens which are kept as text.
func parseListLiteral(s string) ([]any, error) {
	p := &literalParser{src: s}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%w: trailing input at %d", errBadLiteral, p.pos)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: not a list", errBadLiteral)
	}
	return list, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *literalParser) value() (any, error) {
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("%w: unexpected end", errBadLiteral)
	}
	switch c := p.src[p.pos]; c {
	case '[':
		return p.sequence(']')
	case '(':
		return p.sequence(')')
	case '\'', '"':
		return p.quoted(c)
	default:
		return p.bare()
	}
}

func (p *literalParser) sequence(closer byte) (any, error) {
	p.pos++ // opening bracket
	items := []any{}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("%w: unterminated sequence", errBadLiteral)
		}
		if p.src[p.pos] == closer {
			p.pos++
			return items, nil
		}

		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("%w: unterminated sequence", errBadLiteral)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case closer:
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", errBadLiteral, p.src[p.pos], p.pos)
		}
	}
}

func (p *literalParser) quoted(quote byte) (any, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\' && p.pos+1 < len(p.src):
			p.pos++
			switch e := p.src[p.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
		p.pos++
	}
	return nil, fmt.Errorf("%w: unterminated string", errBadLiteral)
}

func (p *literalParser) bare() (any, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ',' || c == ']' || c == ')' || isSpace(c) {
			break
		}
		if c == '[' || c == '(' || c == '\'' || c == '"' {
			return nil, fmt.Errorf("%w: unexpected %q at %d", errBadLiteral, c, p.pos)
		}
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("%w: empty element at %d", errBadLiteral, start)
	}
	return p.src[start:p.pos], nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
