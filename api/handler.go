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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/recommend"
)

const (
	// AssessmentLimit caps POST /recommend.
	AssessmentLimit = 10
	// DefaultNumResults is used by POST /recommendations/ when num_results is absent.
	DefaultNumResults = 5
)

// Recommender is the pipeline behind both adapters.
// *recommend.Recommender satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, query string, limit int) (*recommend.Recommendation, error)
}

// Catalog lists the catalog for browsing.
// *catalog.Store satisfies it.
type Catalog interface {
	Records() []core.AssessmentRecord
}

// Handler wires the HTTP transport to the pipeline.
type Handler struct {
	recommender Recommender
	catalog     Catalog
	logger      *slog.Logger
}

// NewHandler constructs the HTTP handler. A nil logger uses slog.Default().
func NewHandler(recommender Recommender, catalog Catalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		recommender: recommender,
		catalog:     catalog,
		logger:      logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "Service is running"})
}

// Recommend handles the assessment API endpoint.
func (h *Handler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", err.Error(), err))
		return
	}

	rec, err := h.recommender.Recommend(c.Request.Context(), req.Query, AssessmentLimit)
	if err != nil {
		abortWithError(c, pipelineError(err))
		return
	}
	if len(rec.Results) == 0 {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "no_match", "No assessments found matching the criteria", nil))
		return
	}

	resp := RecommendResponse{RecommendedAssessments: make([]AssessmentResponse, 0, len(rec.Results))}
	for _, r := range rec.Results {
		resp.RecommendedAssessments = append(resp.RecommendedAssessments, assessmentResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// Recommendations handles the recommendation API endpoint.
func (h *Handler) Recommendations(c *gin.Context) {
	var req RecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", err.Error(), err))
		return
	}
	limit := DefaultNumResults
	if req.NumResults != nil {
		if *req.NumResults < 1 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "num_results must be positive", nil))
			return
		}
		limit = *req.NumResults
	}

	rec, err := h.recommender.Recommend(c.Request.Context(), req.Query, limit)
	if err != nil {
		abortWithError(c, pipelineError(err))
		return
	}

	resp := RecommendationsResponse{Recommendations: make([]CatalogRow, 0, len(rec.Results))}
	for _, r := range rec.Results {
		resp.Recommendations = append(resp.Recommendations, scoredRow(r))
	}
	if len(resp.Recommendations) == 0 {
		resp.Message = "No matching assessments found"
	} else {
		resp.Message = fmt.Sprintf("Found %d matching assessments", len(resp.Recommendations))
	}
	c.JSON(http.StatusOK, resp)
}

// Assessments lists the catalog.
func (h *Handler) Assessments(c *gin.Context) {
	q, err := parseBrowseQuery(c.Query, c.QueryArray("test_type"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", err.Error(), err))
		return
	}

	records := Browse(h.catalog.Records(), q)
	resp := BrowseResponse{Total: len(records), Assessments: make([]CatalogRow, 0, len(records))}
	for _, rec := range records {
		resp.Assessments = append(resp.Assessments, catalogRow(rec))
	}
	c.JSON(http.StatusOK, resp)
}

// pipelineError maps pipeline failures without exposing internals.
func pipelineError(err error) *HTTPError {
	switch {
	case errors.Is(err, core.ErrEmptyQuery):
		return NewHTTPError(http.StatusBadRequest, "empty_query", "query must not be empty", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewHTTPError(http.StatusServiceUnavailable, "request_cancelled", "request was cancelled", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "recommendation_failed", "could not compute recommendations", err)
	}
}
