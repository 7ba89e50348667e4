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

// Package query turns a raw recommendation request into retrieval inputs:
// an optional page URL to enrich from, hard constraints for the filter and a
// compact search string for the embedder.
//
// Everything here is deterministic for identical input except Fetcher,
// which is the only component that performs I/O.
package query

import "regexp"

var urlPattern = regexp.MustCompile(`https?://[^\s,]+`)

// ExtractURL returns the first http(s) URL in text, or "" if there is none.
// A URL ends at whitespace or a comma.
func ExtractURL(text string) string {
	return urlPattern.FindString(text)
}
