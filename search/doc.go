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

// Package search provides exact top-k semantic retrieval over the catalog.
//
// The Retriever embeds a search string once, scores it against every
// catalog embedding with cosine similarity and keeps the k best candidates.
// Scoring walks the catalog in fixed-size batches. Each batch is folded
// into a k-bounded min-heap on a worker pool and the partial heaps are then
// merged, so memory stays at O(k) per batch no matter how large the catalog
// grows. Results are ordered by descending score with ties broken by
// ascending catalog index, which makes retrieval fully deterministic.
package search
