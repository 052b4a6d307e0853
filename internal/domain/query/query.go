// Package query evaluates filter, ranking and summary-statistics requests
// over a cohort of raw student records.
package query

import (
	"errors"
	"fmt"

	"github.com/Waqar080206/usar-ranklist/internal/domain/aggregate"
	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
	"github.com/Waqar080206/usar-ranklist/internal/domain/rank"
)

// Filter restricts a cohort by exact equality on its attributes.
// Empty fields match everything.
type Filter struct {
	Branch   string // short label, e.g. "AIDS"
	Semester string
	Batch    string
}

// Matches reports whether a record satisfies every non-empty predicate.
func (f Filter) Matches(rec model.StudentRecord) bool {
	if f.Branch != "" && model.BranchFromRoll(rec.RollNo).Short != f.Branch {
		return false
	}
	if f.Semester != "" && rec.Semester != f.Semester {
		return false
	}
	if f.Batch != "" && rec.Batch != f.Batch {
		return false
	}
	return true
}

// Result is the outcome of one query: a transient ranked view over the
// filtered cohort. It is built fresh per request and never cached.
type Result struct {
	Ranked        []rank.Ranked
	Count         int
	AverageMetric float64
	TopPerformer  *rank.Ranked

	// Excluded lists roll numbers dropped by the missing-metric policy.
	// Skipped lists roll numbers that failed aggregation in non-strict mode.
	Excluded []string
	Skipped  []string
}

// Engine runs queries. Aggregation errors abort the query in strict mode;
// otherwise the offending records are skipped and reported on the result.
type Engine struct {
	ranker *rank.Ranker
	strict bool
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRanker sets the ranker used for the sorting pass.
func WithRanker(r *rank.Ranker) Option {
	return func(e *Engine) {
		if r != nil {
			e.ranker = r
		}
	}
}

// WithStrict makes one invalid record fail the whole query instead of being
// skipped and reported.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// New creates an Engine. Defaults: non-strict, ranker with MissingError.
func New(opts ...Option) *Engine {
	e := &Engine{ranker: rank.New()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query filters the cohort, aggregates each surviving record, ranks the
// derived records by metric/order and summarizes the result. Ranks are
// always relative to the filtered subset. An empty filtered set is a valid
// outcome, not an error.
func (e *Engine) Query(records []model.StudentRecord, f Filter, metric rank.Metric, order rank.Order) (Result, error) {
	derived := make([]model.DerivedRecord, 0, len(records))
	var skipped []string
	for _, rec := range records {
		if !f.Matches(rec) {
			continue
		}
		d, err := aggregate.Aggregate(rec, rec.MaxMarks)
		if err != nil {
			if e.strict {
				return Result{}, fmt.Errorf("aggregate %s: %w", rec.RollNo, err)
			}
			skipped = append(skipped, rec.RollNo)
			continue
		}
		derived = append(derived, d)
	}

	ranked, excluded, err := e.ranker.Rank(derived, metric, order)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Ranked:   ranked,
		Count:    len(ranked),
		Excluded: excluded,
		Skipped:  skipped,
	}
	if len(ranked) > 0 {
		res.TopPerformer = &ranked[0]
	}
	res.AverageMetric = average(ranked, metric)
	return res, nil
}

// average is the arithmetic mean of the metric over records where it is
// present and strictly positive. Zero-metric records stay in the ranked
// output but do not drag the mean.
func average(ranked []rank.Ranked, metric rank.Metric) float64 {
	var sum float64
	var n int
	for _, r := range ranked {
		v, ok := metric.Value(r.DerivedRecord)
		if !ok || v <= 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// IsInvalidInput reports whether err stems from a malformed record.
func IsInvalidInput(err error) bool {
	return errors.Is(err, aggregate.ErrInvalidInput) || errors.Is(err, rank.ErrInvalidInput)
}
