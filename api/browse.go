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


package api

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/assessor/core"
)

// BrowseQuery filters and orders the catalog listing.
type BrowseQuery struct {
	TestTypes    []string
	RemoteOnly   bool
	AdaptiveOnly bool
	MaxDuration  *int
	SortBy       string // name, test_type or duration
	Descending   bool
}

// parseBrowseQuery reads the listing parameters. Unknown sort keys and
// malformed numbers are rejected.
func parseBrowseQuery(get func(string) string, testTypes []string) (BrowseQuery, error) {
	q := BrowseQuery{SortBy: "name"}
	for _, t := range testTypes {
		if t = strings.TrimSpace(t); t != "" {
			q.TestTypes = append(q.TestTypes, t)
		}
	}

	var err error
	if q.RemoteOnly, err = parseFlag(get("remote")); err != nil {
		return q, fmt.Errorf("remote: %w", err)
	}
	if q.AdaptiveOnly, err = parseFlag(get("adaptive")); err != nil {
		return q, fmt.Errorf("adaptive: %w", err)
	}
	if v := get("max_duration"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, fmt.Errorf("max_duration: %q is not a non-negative integer", v)
		}
		q.MaxDuration = &n
	}
	if v := strings.ToLower(get("sort_by")); v != "" {
		switch v {
		case "name", "test_type", "duration":
			q.SortBy = v
		default:
			return q, fmt.Errorf("sort_by: %q is not one of name, test_type, duration", v)
		}
	}
	switch strings.ToLower(get("order")) {
	case "", "asc":
	case "desc":
		q.Descending = true
	default:
		return q, fmt.Errorf("order: %q is not one of asc, desc", get("order"))
	}
	return q, nil
}

func parseFlag(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "no", "0":
		return false, nil
	case "true", "yes", "1":
		return true, nil
	}
	return false, fmt.Errorf("%q is not a boolean", v)
}

// Browse returns the records matching q in the requested order. Records
// without a duration pass any duration ceiling and sort last.
func Browse(records []core.AssessmentRecord, q BrowseQuery) []core.AssessmentRecord {
	out := make([]core.AssessmentRecord, 0, len(records))
	for _, rec := range records {
		if len(q.TestTypes) > 0 && !hasTestType(rec, q.TestTypes) {
			continue
		}
		if q.RemoteOnly && !rec.RemoteSupported {
			continue
		}
		if q.AdaptiveOnly && !rec.AdaptiveSupported {
			continue
		}
		if q.MaxDuration != nil && rec.DurationMinutes != nil && *rec.DurationMinutes > *q.MaxDuration {
			continue
		}
		out = append(out, rec)
	}

	slices.SortStableFunc(out, func(a, b core.AssessmentRecord) int {
		if q.SortBy == "duration" {
			switch {
			case a.DurationMinutes == nil && b.DurationMinutes == nil:
				return 0
			case a.DurationMinutes == nil:
				return 1
			case b.DurationMinutes == nil:
				return -1
			}
		}
		c := compareBy(q.SortBy, a, b)
		if q.Descending {
			c = -c
		}
		return c
	})
	return out
}

func compareBy(key string, a, b core.AssessmentRecord) int {
	switch key {
	case "test_type":
		return strings.Compare(strings.ToLower(a.PrimaryTestType()), strings.ToLower(b.PrimaryTestType()))
	case "duration":
		return cmp.Compare(*a.DurationMinutes, *b.DurationMinutes)
	default:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

func hasTestType(rec core.AssessmentRecord, wanted []string) bool {
	for _, t := range rec.TestTypes {
		for _, w := range wanted {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}
