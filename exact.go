package percentile

import (
	"sort"

	"golang.org/x/exp/constraints"
)

type (
	// Exact is the brute-force reference: it keeps every value and sorts on
	// demand. Tests and benchmarks use it as the ground truth; it also suits
	// small datasets where bucketing is not worth the bookkeeping.
	Exact[T any] struct {
		v []T

		less func(a, b T) bool

		sorted bool
	}
)

func NewExact[T constraints.Ordered]() *Exact[T] {
	return NewExactLess[T](func(a, b T) bool { return a < b })
}

func NewExactLess[T any](less func(a, b T) bool) *Exact[T] {
	return &Exact[T]{less: less}
}

func (s *Exact[T]) Insert(v T) {
	s.sorted = len(s.v) == 0 || s.sorted && !s.less(v, s.v[len(s.v)-1])

	s.v = append(s.v, v)
}

// Percentile returns the nearest-rank percentile for p in [1, 100], same
// definition as Tracker.Percentile.
func (s *Exact[T]) Percentile(p int) (v T, err error) {
	if len(s.v) == 0 {
		return v, ErrEmpty
	}

	if !s.sorted {
		s.sort()
	}

	return s.v[rankOf(p, len(s.v))-1], nil
}

func (s *Exact[T]) Count() int { return len(s.v) }

func (s *Exact[T]) sort() {
	sort.Slice(s.v, func(i, j int) bool { return s.less(s.v[i], s.v[j]) })
	s.sorted = true
}
