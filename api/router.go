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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/assessor/config"
)

// NewRouter wires up the HTTP handlers.
func NewRouter(handler *Handler, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		requestID(),
		recovery(logger),
		requestLogger(logger),
		errorHandlingMiddleware(logger),
	)

	router.GET("/health", handler.Health)
	router.POST("/recommend", handler.Recommend)
	router.POST("/recommendations/", handler.Recommendations)
	router.GET("/assessments", handler.Assessments)

	return router
}

// NewServer wraps router in an http.Server configured from cfg.
func NewServer(cfg config.HTTPConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:           cfg.Address,
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
