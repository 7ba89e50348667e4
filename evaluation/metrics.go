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

// Package evaluation scores recommendations against labelled queries with
// Recall@K and MAP@K.
package evaluation

import "slices"

// RecallAtK is the fraction of relevant items found in the first k
// recommendations. It is 0 when relevant is empty.
func RecallAtK(relevant, recommended []string, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	hits := 0
	for _, item := range topK(recommended, k) {
		if slices.Contains(relevant, item) {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// MAPAtK is the average precision over the first k recommendations: the sum
// of the precision at each hit, divided by the number of relevant items.
// It is 0 when relevant is empty.
func MAPAtK(relevant, recommended []string, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	var (
		hits int
		sum  float64
	)
	for i, item := range topK(recommended, k) {
		if slices.Contains(relevant, item) {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	return sum / float64(len(relevant))
}

func topK(items []string, k int) []string {
	if k < 0 {
		k = 0
	}
	return items[:min(k, len(items))]
}
