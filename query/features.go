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


package query

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/assessor/core"
)

var durationPattern = regexp.MustCompile(`(\d+)\s*(?:min|minutes|mins)`)

// Vocabulary lists the terms the extractor looks for. Matching is a
// case-insensitive substring test.
type Vocabulary struct {
	Skills    []string
	TestTypes []string // in priority order, the first match wins
}

// DefaultVocabulary returns the built-in skill and test type terms.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Skills:    []string{"python", "java", "javascript", "sql", "problem solving", "communication", "teamwork"},
		TestTypes: []string{"coding", "cognitive", "personality", "communication", "aptitude"},
	}
}

// Features is everything the extractor found in a query.
type Features struct {
	Skills          []string
	TestType        string
	DurationMinutes *int // first duration mention, qualified or not
	Constraints     core.QueryConstraints
	SearchString    string
}

// Extractor derives features and search strings from query text.
// An Extractor is immutable and safe for concurrent use.
type Extractor struct {
	vocab Vocabulary
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithVocabulary replaces the default vocabulary.
func WithVocabulary(v Vocabulary) ExtractorOption {
	return func(e *Extractor) {
		e.vocab = Vocabulary{
			Skills:    lowerAll(v.Skills),
			TestTypes: lowerAll(v.TestTypes),
		}
	}
}

// WithAdditionalTerms appends skills and test types to the current vocabulary.
func WithAdditionalTerms(skills, testTypes []string) ExtractorOption {
	return func(e *Extractor) {
		e.vocab.Skills = append(slices.Clone(e.vocab.Skills), lowerAll(skills)...)
		e.vocab.TestTypes = append(slices.Clone(e.vocab.TestTypes), lowerAll(testTypes)...)
	}
}

// NewExtractor creates an extractor over the default vocabulary.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{vocab: DefaultVocabulary()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Vocabulary returns a copy of the extractor's vocabulary.
func (e *Extractor) Vocabulary() Vocabulary {
	return Vocabulary{
		Skills:    slices.Clone(e.vocab.Skills),
		TestTypes: slices.Clone(e.vocab.TestTypes),
	}
}

// Extract finds skills, the test type, the first duration mention and the
// hard constraints in text, and renders the search string.
func (e *Extractor) Extract(text string) Features {
	lower := strings.ToLower(text)

	var f Features
	for _, skill := range e.vocab.Skills {
		if strings.Contains(lower, skill) {
			f.Skills = append(f.Skills, skill)
		}
	}
	for _, testType := range e.vocab.TestTypes {
		if strings.Contains(lower, testType) {
			f.TestType = testType
			break
		}
	}
	if m := durationPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			f.DurationMinutes = &n
		}
	}
	f.Constraints = ExtractConstraints(text)
	f.SearchString = f.render()
	return f
}

// BuildSearchString returns the space-joined search terms for text: matched
// skills, the test type, "N minutes", "remote testing" and "adaptive", in
// that order. An empty result means nothing was recognized and callers
// should search with the text itself.
func (e *Extractor) BuildSearchString(text string) string {
	return e.Extract(text).SearchString
}

func (f *Features) render() string {
	terms := slices.Clone(f.Skills)
	if f.TestType != "" {
		terms = append(terms, f.TestType)
	}
	if f.DurationMinutes != nil && *f.DurationMinutes > 0 {
		terms = append(terms, strconv.Itoa(*f.DurationMinutes)+" minutes")
	}
	if f.Constraints.RequireRemote {
		terms = append(terms, "remote testing")
	}
	if f.Constraints.RequireAdaptive {
		terms = append(terms, "adaptive")
	}
	return strings.Join(terms, " ")
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
