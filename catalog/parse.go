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


package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/assessor/core"
)

// Catalog artifact column names.
const (
	ColName        = "Assessment Name"
	ColURL         = "Relative URL"
	ColDuration    = "Duration in mins"
	ColLength      = "Assessment Length"
	ColRemote      = "Remote Testing"
	ColAdaptive    = "Adaptive/IRT"
	ColTestType    = "Test Type"
	ColSkills      = "Skills"
	ColDescription = "Description"
)

// skillsByTestType backfills the Skills column from the primary test type.
var skillsByTestType = map[string]string{
	"Knowledge & Skills": "Technical Skills",
	"Simulations":        "Practical Skills",
	"Cognitive":          "Problem Solving",
	"Personality":        "Soft Skills",
}

var firstInteger = regexp.MustCompile(`(\d+)`)

type columns map[string]int

func (c columns) has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Parse reads catalog records from a CSV artifact with a header row.
//
// Missing optional columns are backfilled: the duration from the first
// integer of "Assessment Length", skills from the test type and a
// description generated from the other fields. Rows without a name are
// skipped and duplicate names keep their first occurrence.
func Parse(r io.Reader) ([]core.AssessmentRecord, error) {
	logger := slog.Default().With("component", "catalog")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty catalog", core.ErrCatalogLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", core.ErrCatalogLoad, err)
	}

	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	if !cols.has(ColName) {
		return nil, fmt.Errorf("%w: missing %q column", core.ErrCatalogLoad, ColName)
	}

	backfillDuration := !cols.has(ColDuration) && cols.has(ColLength)
	backfillSkills := !cols.has(ColSkills)
	backfillDescription := !cols.has(ColDescription)

	var (
		records []core.AssessmentRecord
		seen    = make(map[string]struct{})
		line    = 1
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", core.ErrCatalogLoad, line, err)
		}

		name := cols.get(row, ColName)
		if name == "" {
			logger.Debug("skipping row without name", "line", line)
			continue
		}
		if _, dup := seen[name]; dup {
			logger.Debug("skipping duplicate assessment", "line", line, "name", name)
			continue
		}
		seen[name] = struct{}{}

		record := core.AssessmentRecord{
			Name:              name,
			URL:               cols.get(row, ColURL),
			RemoteSupported:   core.ParseYesNo(cols.get(row, ColRemote)),
			AdaptiveSupported: core.ParseYesNo(cols.get(row, ColAdaptive)),
			TestTypes:         splitTestTypes(cols.get(row, ColTestType)),
			Skills:            cols.get(row, ColSkills),
			Description:       cols.get(row, ColDescription),
		}
		if backfillDuration {
			record.DurationMinutes = durationFromLength(cols.get(row, ColLength))
		} else {
			record.DurationMinutes = ParseDuration(cols.get(row, ColDuration))
		}
		if backfillSkills {
			record.Skills = skillsByTestType[record.PrimaryTestType()]
		}
		if backfillDescription {
			record.Description = describe(&record)
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no usable rows", core.ErrCatalogLoad)
	}
	logger.Debug("parsed catalog", "records", len(records), "lines", line)
	return records, nil
}

// ParseDuration parses a duration cell. Integers and decimals ("30",
// "30.0") are accepted and rounded to whole minutes; anything else,
// including negative values, is reported as absent.
func ParseDuration(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return nil
		}
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	n := int(math.Round(f))
	return &n
}

func durationFromLength(length string) *int {
	m := firstInteger.FindString(length)
	if m == "" {
		return nil
	}
	return ParseDuration(m)
}

// splitTestTypes splits a test type cell on commas, semicolons and pipes.
func splitTestTypes(s string) []string {
	var types []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	}) {
		if part = strings.TrimSpace(part); part != "" {
			types = append(types, part)
		}
	}
	return types
}

func describe(r *core.AssessmentRecord) string {
	kind := strings.Join(r.TestTypes, ", ")
	if kind == "" {
		kind = "General"
	}
	duration := "not specified"
	if r.DurationMinutes != nil {
		duration = strconv.Itoa(*r.DurationMinutes) + " mins"
	}
	return fmt.Sprintf("The '%s' is a %s assessment. Duration is %s. It supports remote testing: %s and adaptive format: %s. Primary skills assessed: %s.",
		r.Name, kind, duration, core.YesNo(r.RemoteSupported), core.YesNo(r.AdaptiveSupported), r.Skills)
}
