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


package core

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier used to key cached embeddings.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// AssessmentRecord is one row of the assessment catalog.
type AssessmentRecord struct {
	Name              string    `json:"name"`
	URL               string    `json:"url"`
	DurationMinutes   *int      `json:"duration_minutes,omitempty"` // nil when the catalog does not specify a duration
	RemoteSupported   bool      `json:"remote_supported"`
	AdaptiveSupported bool      `json:"adaptive_supported"`
	TestTypes         []string  `json:"test_types"`
	Skills            string    `json:"skills"`
	Description       string    `json:"description"`
	Vector            []float32 `json:"-"` // unit-normalized embedding of CompositeText (populated at load)
}

// CompositeText returns the text blob that is embedded for the record.
// Fields are space-joined in a fixed order: name, duration, remote flag,
// adaptive flag, test types, skills, description.
func (r *AssessmentRecord) CompositeText() string {
	duration := ""
	if r.DurationMinutes != nil {
		duration = strconv.Itoa(*r.DurationMinutes)
	}
	parts := []string{
		r.Name,
		duration,
		YesNo(r.RemoteSupported),
		YesNo(r.AdaptiveSupported),
		strings.Join(r.TestTypes, " "),
		r.Skills,
		r.Description,
	}
	return strings.Join(parts, " ")
}

// PrimaryTestType returns the first test type label or "" if none is set.
func (r *AssessmentRecord) PrimaryTestType() string {
	if len(r.TestTypes) == 0 {
		return ""
	}
	return r.TestTypes[0]
}

// QueryConstraints are the hard filters extracted from a query.
type QueryConstraints struct {
	MaxDurationMinutes *int `json:"max_duration_minutes,omitempty"`
	RequireRemote      bool `json:"require_remote"`
	RequireAdaptive    bool `json:"require_adaptive"`
}

// Active reports whether any constraint is set.
func (c QueryConstraints) Active() bool {
	return c.MaxDurationMinutes != nil || c.RequireRemote || c.RequireAdaptive
}

// RankedResult pairs a catalog record with its similarity to a query.
type RankedResult struct {
	Record AssessmentRecord `json:"record"`
	Index  int              `json:"index"` // position of the record in the catalog
	Score  float32          `json:"score"` // cosine similarity in [-1, 1]
}

// RoundScore rounds a score to 4 decimal places for presentation.
func RoundScore(score float32) float64 {
	return math.Round(float64(score)*10000) / 10000
}

// YesNo renders a flag the way the catalog stores it.
func YesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// ParseYesNo reports whether s is a case-insensitive "yes".
func ParseYesNo(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
