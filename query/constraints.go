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
	"strconv"
	"strings"

	"github.com/poiesic/assessor/core"
)

var ceilingPattern = regexp.MustCompile(`(?:under|less than|within|max)\s*(\d+)\s*(?:min|minutes|mins)`)

// ExtractConstraints derives hard filters from text, case-insensitively.
//
// A duration ceiling needs a qualifier ("under 30 minutes", "max 45 mins");
// a bare "40 minutes" only shapes the search string. A ceiling of zero is
// ignored. Any mention of "remote" or "adaptive" sets the matching flag.
func ExtractConstraints(text string) core.QueryConstraints {
	lower := strings.ToLower(text)

	var c core.QueryConstraints
	if m := ceilingPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			c.MaxDurationMinutes = &n
		}
	}
	c.RequireRemote = strings.Contains(lower, "remote")
	c.RequireAdaptive = strings.Contains(lower, "adaptive")
	return c
}
