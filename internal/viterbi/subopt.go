package viterbi

// SubOptIndex is the row-indexed blocked-cell view the inner DP loop
// consults before writing any match-state update (spec.md §4.A /
// §4.E "SubOpt integration"). internal/subopt.Index satisfies this
// interface structurally; viterbi does not import internal/subopt so the
// dependency only runs one way (subopt -> c4, viterbi used by hpair/gam,
// never subopt -> viterbi).
type SubOptIndex interface {
	// SetRow advances the index's current row to the absolute target
	// position targetPos. Callers must call this once per targetPos,
	// strictly increasing.
	SetRow(targetPos int)
	// IsBlocked reports whether (current row, queryPos) — queryPos an
	// absolute query position — was used by a previously emitted
	// alignment. May be called multiple times per queryPos (a model may
	// have multiple match states).
	IsBlocked(queryPos int) bool
}
