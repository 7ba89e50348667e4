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

// Package api exposes the recommendation pipeline over HTTP.
//
// Two thin adapters share one Recommender: POST /recommend returns the
// assessment API response shape and answers 404 when nothing matches,
// while POST /recommendations/ returns catalog-shaped rows with a message
// and treats an empty list as a normal 200. GET /assessments browses the
// catalog with filters and sorting.
package api
