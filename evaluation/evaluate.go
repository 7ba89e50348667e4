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
	"context"
	"fmt"

	"github.com/poiesic/assessor/recommend"
)

// DefaultK is the cut-off used by the original benchmark.
const DefaultK = 3

// Recommender is the part of the pipeline evaluation needs.
// *recommend.Recommender satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, query string, limit int) (*recommend.Recommendation, error)
}

// CaseResult holds the scores for one case.
type CaseResult struct {
	Query       string   `json:"query"`
	Relevant    []string `json:"relevant"`
	Recommended []string `json:"recommended"`
	Recall      float64  `json:"recall"`
	AP          float64  `json:"average_precision"`
}

// Report summarizes an evaluation run.
type Report struct {
	K          int          `json:"k"`
	MeanRecall float64      `json:"mean_recall"`
	MeanAP     float64      `json:"mean_map"`
	Cases      []CaseResult `json:"cases"`
}

// Evaluate runs every case through r and scores the first k results.
// A non-positive k uses DefaultK.
func Evaluate(ctx context.Context, r Recommender, cases []Case, k int) (*Report, error) {
	if k <= 0 {
		k = DefaultK
	}
	report := &Report{K: k, Cases: make([]CaseResult, 0, len(cases))}
	for i, c := range cases {
		rec, err := r.Recommend(ctx, c.Query, k)
		if err != nil {
			return nil, fmt.Errorf("case %d (%q): %w", i+1, c.Query, err)
		}
		names := make([]string, len(rec.Results))
		for j, res := range rec.Results {
			names[j] = res.Record.Name
		}
		result := CaseResult{
			Query:       c.Query,
			Relevant:    c.Relevant,
			Recommended: names,
			Recall:      RecallAtK(c.Relevant, names, k),
			AP:          MAPAtK(c.Relevant, names, k),
		}
		report.MeanRecall += result.Recall
		report.MeanAP += result.AP
		report.Cases = append(report.Cases, result)
	}
	if n := len(report.Cases); n > 0 {
		report.MeanRecall /= float64(n)
		report.MeanAP /= float64(n)
	}
	return report, nil
}
