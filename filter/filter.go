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


package filter

import (
	"log/slog"

	"github.com/poiesic/assessor/core"
)

// Step reports what a single constraint step did to the candidate list.
type Step struct {
	Name    string
	Initial int
	Dropped int
	Left    int
}

// Outcome is the result of applying all active steps.
type Outcome struct {
	Results  []core.RankedResult
	Steps    []Step
	FellBack bool
}

// rule is one hard constraint. active reports whether the constraint set
// turns it on; keep reports whether a record survives it.
type rule struct {
	name   string
	active func(c core.QueryConstraints) bool
	keep   func(c core.QueryConstraints, r *core.AssessmentRecord) bool
}

var rules = []rule{
	{
		name:   "max_duration",
		active: func(c core.QueryConstraints) bool { return c.MaxDurationMinutes != nil },
		keep: func(c core.QueryConstraints, r *core.AssessmentRecord) bool {
			// Unknown duration is not a violation.
			return r.DurationMinutes == nil || *r.DurationMinutes <= *c.MaxDurationMinutes
		},
	},
	{
		name:   "remote",
		active: func(c core.QueryConstraints) bool { return c.RequireRemote },
		keep:   func(_ core.QueryConstraints, r *core.AssessmentRecord) bool { return r.RemoteSupported },
	},
	{
		name:   "adaptive",
		active: func(c core.QueryConstraints) bool { return c.RequireAdaptive },
		keep:   func(_ core.QueryConstraints, r *core.AssessmentRecord) bool { return r.AdaptiveSupported },
	},
}

// Filter applies constraint steps and logs per-step statistics.
// A Filter holds no per-request state and is safe for concurrent use.
type Filter struct {
	logger *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
	}
}

// New creates a Filter.
func New(opts ...Option) *Filter {
	f := &Filter{logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "filter")
	return f
}

// Apply runs every active step over candidates. The input slice is never
// modified. If candidates is non-empty and no candidate survives, the
// outcome holds only the highest-scored candidate and FellBack is set.
// Candidates need not be sorted.
func (f *Filter) Apply(candidates []core.RankedResult, constraints core.QueryConstraints) Outcome {
	survivors := make([]core.RankedResult, len(candidates))
	copy(survivors, candidates)

	var steps []Step
	for _, r := range rules {
		if !r.active(constraints) {
			continue
		}
		initial := len(survivors)
		kept := survivors[:0]
		for i := range survivors {
			if r.keep(constraints, &survivors[i].Record) {
				kept = append(kept, survivors[i])
			}
		}
		survivors = kept

		step := Step{Name: r.name, Initial: initial, Dropped: initial - len(survivors), Left: len(survivors)}
		steps = append(steps, step)
		f.logger.Debug("filter step applied",
			"step", step.Name,
			"initial", step.Initial,
			"dropped", step.Dropped,
			"left", step.Left,
		)
	}

	if len(survivors) == 0 && len(candidates) > 0 {
		top := best(candidates)
		f.logger.Debug("all candidates filtered out, falling back to best match",
			"name", top.Record.Name)
		return Outcome{Results: []core.RankedResult{top}, Steps: steps, FellBack: true}
	}
	return Outcome{Results: survivors, Steps: steps}
}

// best returns the highest-scored candidate. Ties go to the lower catalog
// index, then to the earlier position.
func best(candidates []core.RankedResult) core.RankedResult {
	top := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > top.Score || (c.Score == top.Score && c.Index < top.Index) {
			top = c
		}
	}
	return top
}

// Apply filters candidates with a default Filter and returns the survivors,
// or the single best candidate when nothing survives.
func Apply(candidates []core.RankedResult, constraints core.QueryConstraints) []core.RankedResult {
	return New().Apply(candidates, constraints).Results
}

// Truncate caps results at limit. A non-positive limit returns results
// unchanged.
func Truncate(results []core.RankedResult, limit int) []core.RankedResult {
	if limit <= 0 || len(results) <= limit {
		return results
	}
	return results[:limit]
}
