package gam

import (
	"sort"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/pqueue"
)

// bestNState is one query's bounded best-N store (spec.md §4.J): a
// min-heap by score (so the top is the worst kept entry) plus the
// tie-bookkeeping the spec's submission rule needs to decide whether a
// new worst entry displaces the existing worst tier.
type bestNState struct {
	pq       *pqueue.Queue[*c4.Alignment]
	tieScore c4.Score
	tieCount int
}

func newBestNState() *bestNState {
	return &bestNState{pq: pqueue.New[*c4.Alignment](func(a, b *c4.Alignment) bool { return a.Score < b.Score })}
}

// submit applies spec.md §4.J's best-N rule: equal to the current worst
// joins the tie tier; worse than the worst is admitted only while there is
// still room; better than the worst is always admitted, then the old worst
// tier is evicted en bloc once the heap holds at least bestN entries beyond
// it. bestN <= 0 means unbounded: every alignment is kept.
func (st *bestNState) submit(aln *c4.Alignment, bestN int) {
	if st.pq.Len() == 0 {
		st.pq.Push(aln)
		st.tieScore = aln.Score
		st.tieCount = 1
		return
	}
	switch {
	case aln.Score == st.tieScore:
		st.pq.Push(aln)
		st.tieCount++
	case aln.Score < st.tieScore:
		if bestN <= 0 || st.pq.Len() < bestN {
			st.pq.Push(aln)
			st.tieScore = aln.Score
			st.tieCount = 1
		}
	default:
		st.pq.Push(aln)
		if bestN > 0 && st.pq.Len()-st.tieCount >= bestN {
			old := st.tieScore
			for st.pq.Len() > 0 && st.pq.Peek().Value.Score == old {
				st.pq.Pop()
			}
			if st.pq.Len() > 0 {
				st.tieScore = st.pq.Peek().Value.Score
				st.tieCount = countTies(st.pq, st.tieScore)
			} else {
				st.tieCount = 0
			}
		}
	}
}

// countTies pops every node scoring exactly tieScore off pq to count them,
// then pushes them back; pqueue has no iteration API, so this is the only
// way to inspect the current worst tier without disturbing heap order.
func countTies(pq *pqueue.Queue[*c4.Alignment], tieScore c4.Score) int {
	var tied []*c4.Alignment
	for pq.Len() > 0 && pq.Peek().Value.Score == tieScore {
		tied = append(tied, pq.Pop().Value)
	}
	for _, a := range tied {
		pq.Push(a)
	}
	return len(tied)
}

// drain empties st's heap into descending-score order (spec.md §4.J's
// reporting order: "by descending score" within a query).
func (st *bestNState) drain() []*c4.Alignment {
	out := make([]*c4.Alignment, 0, st.pq.Len())
	for st.pq.Len() > 0 {
		out = append(out, st.pq.Pop().Value)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
