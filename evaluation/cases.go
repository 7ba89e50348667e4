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


package evaluation

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidList   = errors.New("invalid list literal")
)

// Case is one labelled query.
type Case struct {
	Query    string
	Relevant []string
}

// LoadCases reads a CSV with "query" and "relevant_assessments" columns.
// The relevant column holds a JSON array or a Python-style list literal
// such as ['A', "B's"].
func LoadCases(r io.Reader) ([]Case, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	queryCol, relevantCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case "query":
			queryCol = i
		case "relevant_assessments":
			relevantCol = i
		}
	}
	if queryCol < 0 {
		return nil, fmt.Errorf("%w: query", ErrMissingColumn)
	}
	if relevantCol < 0 {
		return nil, fmt.Errorf("%w: relevant_assessments", ErrMissingColumn)
	}

	var cases []Case
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if queryCol >= len(row) || strings.TrimSpace(row[queryCol]) == "" {
			continue
		}
		var relevant []string
		if relevantCol < len(row) {
			relevant, err = ParseList(row[relevantCol])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		cases = append(cases, Case{Query: strings.TrimSpace(row[queryCol]), Relevant: relevant})
	}
	return cases, nil
}

// ParseList parses a JSON array of strings or a Python list literal of
// quoted strings. A blank input is an empty list.
func ParseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		if items, err = parsePythonList(s); err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func parsePythonList(s string) ([]string, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidList, s)
	}
	body := []rune(s[1 : len(s)-1])
	var items []string
	for i := 0; i < len(body); {
		switch c := body[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == ',':
			i++
		case c == '\'' || c == '"':
			item, next, err := readQuoted(body, i)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrInvalidList, s, err)
			}
			items = append(items, item)
			i = next
		default:
			return nil, fmt.Errorf("%w: %q: unexpected %q", ErrInvalidList, s, c)
		}
	}
	return items, nil
}

// readQuoted reads the quoted string starting at body[start] and returns it
// with the index just past the closing quote.
func readQuoted(body []rune, start int) (string, int, error) {
	quote := body[start]
	var b strings.Builder
	for i := start + 1; i < len(body); i++ {
		switch c := body[i]; {
		case c == '\\' && i+1 < len(body):
			i++
			b.WriteRune(body[i])
		case c == quote:
			return b.String(), i + 1, nil
		default:
			b.WriteRune(c)
		}
	}
	return "", 0, errors.New("unterminated string")
}
