// Package rangeindex implements a static 2-D point index: build once from a
// batch of (query, target) points, then answer "which points fall in this
// rectangle" queries by binary search on query followed by a scan of that
// query band, O(log n + m) with m the points whose query coordinate is in
// range. It backs both SubOpt's blocked-cell
// lookup (internal/subopt) and HPair's compatible-HSP-pair search
// (internal/hpair), matching spec.md's "2-D RangeTree indexed by dst HSP
// cobs positions" and "(query_len, target_len) range tree" descriptions.
package rangeindex

import "sort"

// Point is one indexed (query, target) position carrying an opaque payload
// (an empty tag for SubOpt, the match state and HSP for HPair).
type Point[T any] struct {
	Query, Target int
	Payload       T
}

// Tree is a static index holding one slice sorted by query, then target:
// lookups binary-search the query range and filter that band by target;
// there is no secondary per-node structure. It does not support
// incremental insertion: SubOpt rebuilds per query/target pair, matching the
// original's "created fresh per alignment" lifetime (spec.md §5: SubOpt is
// thread-local to one alignment).
type Tree[T any] struct {
	points []Point[T] // sorted by Query, ties broken by Target
}

// Build constructs a Tree from pts. pts is not mutated; Build copies and
// sorts internally.
func Build[T any](pts []Point[T]) *Tree[T] {
	cp := make([]Point[T], len(pts))
	copy(cp, pts)
	sort.Slice(cp, func(i, j int) bool {
		if cp[i].Query != cp[j].Query {
			return cp[i].Query < cp[j].Query
		}
		return cp[i].Target < cp[j].Target
	})
	return &Tree[T]{points: cp}
}

// Len reports the number of indexed points.
func (t *Tree[T]) Len() int { return len(t.points) }

// Query returns every indexed point with qLo <= Query <= qHi and
// tLo <= Target <= tHi. The result is returned in (Query, Target) order.
func (t *Tree[T]) Query(qLo, qHi, tLo, tHi int) []Point[T] {
	lo := sort.Search(len(t.points), func(i int) bool { return t.points[i].Query >= qLo })
	hi := sort.Search(len(t.points), func(i int) bool { return t.points[i].Query > qHi })
	var out []Point[T]
	for _, p := range t.points[lo:hi] {
		if p.Target >= tLo && p.Target <= tHi {
			out = append(out, p)
		}
	}
	return out
}

// Any reports whether any indexed point satisfies pred within the rectangle;
// it short-circuits and is the workhorse behind SubOpt_find / HPair's
// entry/exit clash checks, which only need a boolean answer.
func (t *Tree[T]) Any(qLo, qHi, tLo, tHi int, pred func(Point[T]) bool) bool {
	lo := sort.Search(len(t.points), func(i int) bool { return t.points[i].Query >= qLo })
	hi := sort.Search(len(t.points), func(i int) bool { return t.points[i].Query > qHi })
	for _, p := range t.points[lo:hi] {
		if p.Target >= tLo && p.Target <= tHi && pred(p) {
			return true
		}
	}
	return false
}

// SortedByTargetThenQuery returns all indexed points ordered by (Target,
// Query), the layout SubOpt_Index needs for its row-major scan.
func (t *Tree[T]) SortedByTargetThenQuery() []Point[T] {
	out := make([]Point[T], len(t.points))
	copy(out, t.points)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}
		return out[i].Query < out[j].Query
	})
	return out
}
