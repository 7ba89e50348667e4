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


package ai

import (
	"context"
	"strings"
)

// TruncateWords keeps the first max whitespace-separated words of text,
// joined by single spaces. A max of zero or less returns text unchanged.
func TruncateWords(text string, max int) string {
	if max <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ")
}

type truncatingEmbedder struct {
	next     Embedder
	maxWords int
}

// Truncating wraps next so that every input is cut to maxWords words before
// it is embedded. Catalog texts and queries go through the same wrapper.
func Truncating(next Embedder, maxWords int) Embedder {
	if maxWords <= 0 {
		return next
	}
	return &truncatingEmbedder{next: next, maxWords: maxWords}
}

func (t *truncatingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return t.next.EmbedText(ctx, TruncateWords(text, t.maxWords))
}

func (t *truncatingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	cut := make([]string, len(texts))
	for i, text := range texts {
		cut[i] = TruncateWords(text, t.maxWords)
	}
	return t.next.EmbedTexts(ctx, cut)
}
