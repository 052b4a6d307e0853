// Package rank assigns dense competition ranks to derived student records.
//
// Ranking is "Olympic": records with equal metric values share a rank and
// the positions they occupy are used up, so a run of ties produces
// 1,1,3 rather than 1,1,2.
package rank

import (
	"fmt"
	"sort"

	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
)

// Metric selects which derived value a ranking pass orders by.
type Metric string

// Order selects the sort direction of a ranking pass.
type Order string

const (
	MetricTotalMarks Metric = "total_marks"
	MetricPercentage Metric = "percentage"
	MetricSGPA       Metric = "sgpa"

	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// MissingPolicy decides what happens when a record lacks the ranking metric.
type MissingPolicy string

const (
	// MissingError fails the whole pass with ErrMissingMetric.
	MissingError MissingPolicy = "error"
	// MissingExclude drops such records from the pass and reports their
	// roll numbers separately.
	MissingExclude MissingPolicy = "exclude"
)

// ParseMetric validates a metric name from the query layer.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricTotalMarks, MetricPercentage, MetricSGPA:
		return Metric(s), nil
	}
	return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidInput, s)
}

// ParseOrder validates a sort order from the query layer.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case OrderAsc, OrderDesc:
		return Order(s), nil
	}
	return "", fmt.Errorf("%w: unknown order %q", ErrInvalidInput, s)
}

// Value extracts the metric from a derived record. ok is false when the
// record does not carry the metric at all.
func (m Metric) Value(d model.DerivedRecord) (float64, bool) {
	switch m {
	case MetricTotalMarks:
		return d.TotalMarks, d.HasMarks
	case MetricPercentage:
		return d.Percentage, d.HasMarks
	case MetricSGPA:
		return d.SGPA, d.HasSGPA
	}
	return 0, false
}

// Ranked is a derived record with its assigned rank.
type Ranked struct {
	model.DerivedRecord
	Rank int
}

// Ranker runs ranking passes under a fixed missing-metric policy.
type Ranker struct {
	missing MissingPolicy
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithMissingPolicy sets how records lacking the ranking metric are treated.
func WithMissingPolicy(p MissingPolicy) Option {
	return func(r *Ranker) {
		if p == MissingError || p == MissingExclude {
			r.missing = p
		}
	}
}

// New creates a Ranker. The default missing-metric policy is MissingError.
func New(opts ...Option) *Ranker {
	r := &Ranker{missing: MissingError}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank sorts records by metric in the requested order and assigns dense
// ranks. Ties keep their input order (stable sort) and share a rank.
//
// The input slice is never mutated; fresh Ranked values are returned.
// excluded lists roll numbers dropped under MissingExclude. An empty input
// yields an empty, non-nil result and no error.
func (r *Ranker) Rank(records []model.DerivedRecord, metric Metric, order Order) (ranked []Ranked, excluded []string, err error) {
	seen := make(map[string]struct{}, len(records))
	pool := make([]model.DerivedRecord, 0, len(records))
	for _, d := range records {
		if _, dup := seen[d.RollNo]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate roll number %s", ErrInvalidInput, d.RollNo)
		}
		seen[d.RollNo] = struct{}{}

		if _, ok := metric.Value(d); !ok {
			if r.missing == MissingExclude {
				excluded = append(excluded, d.RollNo)
				continue
			}
			return nil, nil, fmt.Errorf("%w: record %s has no %s", ErrMissingMetric, d.RollNo, metric)
		}
		pool = append(pool, d)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		vi, _ := metric.Value(pool[i])
		vj, _ := metric.Value(pool[j])
		if order == OrderAsc {
			return vi < vj
		}
		return vi > vj
	})

	ranked = make([]Ranked, len(pool))
	for i, d := range pool {
		rk := i + 1
		if i > 0 {
			v, _ := metric.Value(d)
			prev, _ := metric.Value(pool[i-1])
			if v == prev {
				rk = ranked[i-1].Rank
			}
		}
		ranked[i] = Ranked{DerivedRecord: d, Rank: rk}
	}
	return ranked, excluded, nil
}
