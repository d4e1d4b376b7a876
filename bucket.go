package percentile

import "sort"

type (
	// bucket is a run of values all greater than or equal to min.
	// Values stay in insertion order until a read actually needs them sorted.
	bucket[T any] struct {
		min T
		v   []T

		sorted bool
	}
)

func newBucket[T any](v T) *bucket[T] {
	return &bucket[T]{
		min:    v,
		v:      []T{v},
		sorted: true,
	}
}

func (b *bucket[T]) len() int { return len(b.v) }

func (b *bucket[T]) push(v T) {
	b.v = append(b.v, v)
	b.sorted = false
}

// at reads the i-th smallest value. Only valid after ensureSorted.
func (b *bucket[T]) at(i int) T { return b.v[i] }

func (b *bucket[T]) ensureSorted(less func(a, b T) bool) {
	if b.sorted {
		return
	}

	sort.Slice(b.v, func(i, j int) bool { return less(b.v[i], b.v[j]) })
	b.sorted = true
}

// splitAtMedian partitions b around its median and moves the upper half into
// a new bucket. Only a selection step is done, not a full sort, so both
// halves come back unsorted. The caller splices the new bucket right after b.
func (b *bucket[T]) splitAtMedian(less func(a, b T) bool) *bucket[T] {
	mid := len(b.v) / 2
	selectNth(b.v, mid, less)

	up := make([]T, len(b.v)-mid)
	copy(up, b.v[mid:])

	b.v = b.v[:mid]
	b.sorted = false

	return &bucket[T]{
		min:    up[0],
		v:      up,
		sorted: false,
	}
}

// selectNth partially orders v so that v[n] is the value sorting would put
// there, everything before it is not greater and everything after is not
// smaller. Plain quickselect with a median-of-three pivot.
func selectNth[T any](v []T, n int, less func(a, b T) bool) {
	lo, hi := 0, len(v)

	for hi-lo > 1 {
		p := partition(v, lo, hi, less)

		switch {
		case n < p:
			hi = p
		case n > p:
			lo = p + 1
		default:
			return
		}
	}
}

func partition[T any](v []T, lo, hi int, less func(a, b T) bool) int {
	mid := lo + (hi-lo)/2

	if less(v[mid], v[lo]) {
		v[lo], v[mid] = v[mid], v[lo]
	}
	if less(v[hi-1], v[mid]) {
		v[mid], v[hi-1] = v[hi-1], v[mid]

		if less(v[mid], v[lo]) {
			v[lo], v[mid] = v[mid], v[lo]
		}
	}

	pivot := v[mid]
	v[mid], v[hi-1] = v[hi-1], v[mid]

	i := lo
	for j := lo; j < hi-1; j++ {
		if less(v[j], pivot) {
			v[i], v[j] = v[j], v[i]
			i++
		}
	}

	v[i], v[hi-1] = v[hi-1], v[i]

	return i
}
