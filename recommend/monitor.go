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


package recommend

import (
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/filter"
	"github.com/poiesic/assessor/query"
)

// Monitor provides hooks to observe the pipeline.
// Implement this interface to trace intermediate steps of a recommendation.
type Monitor interface {
	Start(query string)
	AfterFeatures(features query.Features, enriched bool)
	AfterRetrieval(candidates []core.RankedResult)
	AfterFilter(outcome filter.Outcome)
	Finish(rec *Recommendation)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                         {}
func (n *noopMonitor) AfterFeatures(_ query.Features, _ bool) {}
func (n *noopMonitor) AfterRetrieval(_ []core.RankedResult)   {}
func (n *noopMonitor) AfterFilter(_ filter.Outcome)           {}
func (n *noopMonitor) Finish(_ *Recommendation)               {}

// TextMonitor writes a human-readable trace of each pipeline stage.
type TextMonitor struct {
	w io.Writer
}

var _ Monitor = (*TextMonitor)(nil)

// NewTextMonitor creates a monitor that writes to w.
func NewTextMonitor(w io.Writer) *TextMonitor {
	return &TextMonitor{w: w}
}

func (m *TextMonitor) Start(q string) {
	fmt.Fprintf(m.w, "query: %q\n", q)
}

func (m *TextMonitor) AfterFeatures(f query.Features, enriched bool) {
	fmt.Fprintf(m.w, "enriched from url: %t\n", enriched)
	fmt.Fprintf(m.w, "skills: [%s] test type: %q\n", strings.Join(f.Skills, ", "), f.TestType)
	c := f.Constraints
	ceiling := "none"
	if c.MaxDurationMinutes != nil {
		ceiling = fmt.Sprintf("%d min", *c.MaxDurationMinutes)
	}
	fmt.Fprintf(m.w, "constraints: max duration %s, remote %t, adaptive %t\n", ceiling, c.RequireRemote, c.RequireAdaptive)
	fmt.Fprintf(m.w, "search string: %q\n", f.SearchString)
}

func (m *TextMonitor) AfterRetrieval(candidates []core.RankedResult) {
	fmt.Fprintf(m.w, "retrieved %d candidates\n", len(candidates))
	for i, c := range candidates {
		fmt.Fprintf(m.w, "  %2d. %-50s %.4f\n", i+1, c.Record.Name, core.RoundScore(c.Score))
	}
}

func (m *TextMonitor) AfterFilter(o filter.Outcome) {
	for _, s := range o.Steps {
		fmt.Fprintf(m.w, "filter %s: %d -> %d (dropped %d)\n", s.Name, s.Initial, s.Left, s.Dropped)
	}
	if o.FellBack {
		fmt.Fprintln(m.w, "no candidate satisfied every constraint, kept the best match")
	}
}

func (m *TextMonitor) Finish(rec *Recommendation) {
	fmt.Fprintf(m.w, "returning %d results\n", len(rec.Results))
}
