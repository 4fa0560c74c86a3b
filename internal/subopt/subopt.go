// Package subopt implements the blocked-cell range index spec.md §4.A
// describes: after an alignment is emitted, every (query, target) cell it
// visited is recorded here so a later Viterbi pass never reuses it — the
// mechanism that keeps GAM's successive best-N alignments from degenerating
// into trivial overlapping variants of the same path.
package subopt

import "github.com/katalvlaran/gappedaligner/internal/rangeindex"

// cellTag is the zero-size payload rangeindex.Point carries; SubOpt only
// ever needs membership, never a value.
type cellTag struct{}

// Index accumulates blocked cells across every alignment emitted so far for
// one GAM run. It is not safe for concurrent use — matching the original's
// "thread-local to one alignment/run" lifetime.
type Index struct {
	points []rangeindex.Point[cellTag]
	tree   *rangeindex.Tree[cellTag]
	dirty  bool
}

// New returns an empty Index.
func New() *Index {
	return &Index{}
}

// AddAlignment records every (queryPos, targetPos) pair in cells as
// blocked. cells is typically the query/target trace of one emitted
// alignment's path (every state visited, not just match states, since a
// later optimal path could otherwise route a gap through an already-spent
// match cell and still be barred from reusing the real match positions).
func (x *Index) AddAlignment(cells [][2]int) {
	if len(cells) == 0 {
		return
	}
	for _, c := range cells {
		x.points = append(x.points, rangeindex.Point[cellTag]{Query: c[0], Target: c[1]})
	}
	x.dirty = true
}

// Len reports the number of blocked cells recorded so far (across every
// alignment, with duplicates).
func (x *Index) Len() int { return len(x.points) }

func (x *Index) rebuild() {
	if !x.dirty && x.tree != nil {
		return
	}
	x.tree = rangeindex.Build(x.points)
	x.dirty = false
}

// Find reports whether (queryPos, targetPos) was blocked by any
// previously added alignment.
func (x *Index) Find(queryPos, targetPos int) bool {
	if len(x.points) == 0 {
		return false
	}
	x.rebuild()
	return x.tree.Any(queryPos, queryPos, targetPos, targetPos, func(rangeindex.Point[cellTag]) bool { return true })
}

// OverlapsAlignment reports whether any blocked cell falls within the
// rectangle [qLo,qHi] x [tLo,tHi], the check HPair/heuristic use before
// accepting a candidate HSP join (spec.md §4.H's "region_check_since").
func (x *Index) OverlapsAlignment(qLo, qHi, tLo, tHi int) bool {
	if len(x.points) == 0 {
		return false
	}
	x.rebuild()
	return x.tree.Any(qLo, qHi, tLo, tHi, func(rangeindex.Point[cellTag]) bool { return true })
}

// Row returns a RowView over x, the adapter viterbi.SubOptIndex expects:
// a cheap per-row cursor the Viterbi inner loop calls once per target row
// and once per query position within that row.
func (x *Index) Row() *RowView {
	return &RowView{idx: x}
}

// RowView is the row-indexed view of an Index that satisfies
// viterbi.SubOptIndex structurally (viterbi never imports this package —
// see internal/viterbi/subopt.go).
type RowView struct {
	idx *Index
	row int
}

// SetRow advances the cursor's current target row.
func (r *RowView) SetRow(targetPos int) { r.row = targetPos }

// IsBlocked reports whether (queryPos, current row) is blocked.
func (r *RowView) IsBlocked(queryPos int) bool { return r.idx.Find(queryPos, r.row) }
