package sdp

import "github.com/katalvlaran/gappedaligner/internal/c4"

// SparseCache indexes span-history entries by (span_id, qpos, tpos): while
// the forward pass is inside a span's free loop it records every cell a
// path entered the span at, and when a path leaves the span the best entry
// within the span's configured (min_q..max_q, min_t..max_t) window is
// looked up, so a large genomic gap is priced by `(exit_score - entry_score)`
// without ever materialising the intervening cells (spec.md §4.F).
type SparseCache struct {
	entries map[c4.SpanID][]spanEntry
}

type spanEntry struct {
	qpos, tpos int
	score      c4.Score
	tb         TracebackID
}

// NewSparseCache returns an empty cache.
func NewSparseCache() *SparseCache {
	return &SparseCache{entries: make(map[c4.SpanID][]spanEntry)}
}

// Record adds one span-entry candidate.
func (c *SparseCache) Record(span c4.SpanID, qpos, tpos int, score c4.Score, tb TracebackID) {
	c.entries[span] = append(c.entries[span], spanEntry{qpos: qpos, tpos: tpos, score: score, tb: tb})
}

// Best returns the highest-scoring recorded entry for span reachable from
// (qpos, tpos) within sp's configured window — i.e. an entry at
// (eq, et) with qpos-sp.MaxQuery <= eq <= qpos-sp.MinQuery and the
// symmetric bound on tpos — along with whether one was found.
func (c *SparseCache) Best(span c4.SpanID, sp *c4.Span, qpos, tpos int) (spanEntry, bool) {
	best := spanEntry{}
	found := false
	for _, e := range c.entries[span] {
		qGap, tGap := qpos-e.qpos, tpos-e.tpos
		if qGap < sp.MinQuery || qGap > sp.MaxQuery || tGap < sp.MinTarget || tGap > sp.MaxTarget {
			continue
		}
		if !found || e.score > best.score {
			best, found = e, true
		}
	}
	return best, found
}

// Forget drops every recorded entry for span whose (qpos, tpos) falls
// within [qLo,qHi] x [tLo,tHi] — used after a SubOpt invalidation blocks
// those cells.
func (c *SparseCache) Forget(span c4.SpanID, qLo, qHi, tLo, tHi int) {
	kept := c.entries[span][:0]
	for _, e := range c.entries[span] {
		if e.qpos >= qLo && e.qpos <= qHi && e.tpos >= tLo && e.tpos <= tHi {
			continue
		}
		kept = append(kept, e)
	}
	c.entries[span] = kept
}
