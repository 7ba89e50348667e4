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
	"github.com/poiesic/assessor/core"
)

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Query string `json:"query"`
}

// AssessmentResponse is one item of the /recommend response.
type AssessmentResponse struct {
	Name            string   `json:"name"`
	URL             string   `json:"url"`
	AdaptiveSupport string   `json:"adaptive_support"`
	Description     string   `json:"description"`
	Duration        int      `json:"duration"`
	RemoteSupport   string   `json:"remote_support"`
	TestType        []string `json:"test_type"`
	Score           float64  `json:"score"`
}

// RecommendResponse is the body returned by POST /recommend.
type RecommendResponse struct {
	RecommendedAssessments []AssessmentResponse `json:"recommended_assessments"`
}

// RecommendationsRequest is the body of POST /recommendations/.
type RecommendationsRequest struct {
	Query      string `json:"query"`
	NumResults *int   `json:"num_results"`
}

// CatalogRow renders a record with the catalog's column names.
type CatalogRow struct {
	Name        string   `json:"Assessment Name"`
	URL         string   `json:"URL"`
	Duration    *int     `json:"Duration in mins"`
	Remote      string   `json:"Remote Testing"`
	Adaptive    string   `json:"Adaptive/IRT"`
	TestType    string   `json:"Test Type"`
	Skills      string   `json:"Skills"`
	Description string   `json:"Description"`
	Score       *float64 `json:"Score,omitempty"`
}

// RecommendationsResponse is the body returned by POST /recommendations/.
type RecommendationsResponse struct {
	Recommendations []CatalogRow `json:"recommendations"`
	Message         string       `json:"message"`
}

// BrowseResponse is the body returned by GET /assessments.
type BrowseResponse struct {
	Total       int          `json:"total"`
	Assessments []CatalogRow `json:"assessments"`
}

func assessmentResponse(r core.RankedResult) AssessmentResponse {
	rec := r.Record
	duration := 0
	if rec.DurationMinutes != nil {
		duration = *rec.DurationMinutes
	}
	testTypes := rec.TestTypes
	if testTypes == nil {
		testTypes = []string{}
	}
	return AssessmentResponse{
		Name:            rec.Name,
		URL:             core.AbsoluteURL(rec.URL, rec.Name),
		AdaptiveSupport: core.YesNo(rec.AdaptiveSupported),
		Description:     rec.Description,
		Duration:        duration,
		RemoteSupport:   core.YesNo(rec.RemoteSupported),
		TestType:        testTypes,
		Score:           core.RoundScore(r.Score),
	}
}

func catalogRow(rec core.AssessmentRecord) CatalogRow {
	return CatalogRow{
		Name:        rec.Name,
		URL:         core.AbsoluteURL(rec.URL, rec.Name),
		Duration:    rec.DurationMinutes,
		Remote:      core.YesNo(rec.RemoteSupported),
		Adaptive:    core.YesNo(rec.AdaptiveSupported),
		TestType:    rec.PrimaryTestType(),
		Skills:      rec.Skills,
		Description: rec.Description,
	}
}

func scoredRow(r core.RankedResult) CatalogRow {
	row := catalogRow(r.Record)
	score := core.RoundScore(r.Score)
	row.Score = &score
	return row
}
