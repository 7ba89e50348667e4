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


package search

import (
	"container/heap"
	"slices"
)

// candidate is a scored catalog position.
type candidate struct {
	index int
	score float32
}

// ranksAbove reports whether a outranks b: higher score first, then lower
// catalog index.
func ranksAbove(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.index < b.index
}

// minHeap keeps the weakest kept candidate at the root.
type minHeap []candidate

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return ranksAbove(h[j], h[i]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// topK retains the k best candidates offered to it.
type topK struct {
	k int
	h minHeap
}

func newTopK(k int) *topK {
	return &topK{k: k, h: make(minHeap, 0, k)}
}

func (t *topK) offer(c candidate) {
	if t.k <= 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, c)
		return
	}
	if ranksAbove(c, t.h[0]) {
		t.h[0] = c
		heap.Fix(&t.h, 0)
	}
}

// merge folds every candidate of other into t.
func (t *topK) merge(other *topK) {
	for _, c := range other.h {
		t.offer(c)
	}
}

// ranked returns the kept candidates best first.
func (t *topK) ranked() []candidate {
	out := slices.Clone([]candidate(t.h))
	slices.SortFunc(out, func(a, b candidate) int {
		switch {
		case ranksAbove(a, b):
			return -1
		case ranksAbove(b, a):
			return 1
		}
		return 0
	})
	return out
}
