/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package labels

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedLabelList is returned when a multi-label cell is neither a
// JSON array of strings nor a printable list literal.
var ErrMalformedLabelList = errors.New("malformed label list")

// ParseLabelList parses a multi-label cell.
//
// The canonical format is a JSON array of strings. Printable list literals
// with single-quoted strings, e.g. ['a', "b"], are also accepted.
func ParseLabelList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("%w: %q is not a bracketed list", ErrMalformedLabelList, s)
	}

	var out []string
	if err := json.Unmarshal([]byte(s), &out); err == nil {
		if out == nil {
			out = []string{}
		}
		return out, nil
	}
	return parseListLiteral(s)
}

// FormatLabelList renders names as a JSON array.
func FormatLabelList(names []string) string {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		// []string always marshals
		panic(err)
	}
	return string(b)
}

func parseListLiteral(s string) ([]string, error) {
	body := s[1 : len(s)-1]
	out := []string{}

	i := 0
	skipSpace := func() {
		for i < len(body) && isSpace(body[i]) {
			i++
		}
	}

	for {
		skipSpace()
		if i == len(body) {
			return out, nil
		}

		q := body[i]
		if q != '\'' && q != '"' {
			return nil, fmt.Errorf("%w: expected quoted string at offset %d in %q", ErrMalformedLabelList, i+1, s)
		}
		i++

		var sb strings.Builder
		closed := false
		for i < len(body) {
			c := body[i]
			if c == '\\' && i+1 < len(body) {
				sb.WriteByte(unescape(body[i+1]))
				i += 2
				continue
			}
			i++
			if c == q {
				closed = true
				break
			}
			sb.WriteByte(c)
		}
		if !closed {
			return nil, fmt.Errorf("%w: unterminated string in %q", ErrMalformedLabelList, s)
		}
		out = append(out, sb.String())

		skipSpace()
		if i == len(body) {
			return out, nil
		}
		if body[i] != ',' {
			return nil, fmt.Errorf("%w: expected ',' at offset %d in %q", ErrMalformedLabelList, i+1, s)
		}
		i++
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
