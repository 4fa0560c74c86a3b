// Package heuristic implements the bound matrices and SAR (sub-alignment
// region) arithmetic spec.md §4.H describes: upper bounds on what score a
// terminal, join, or span of a given (query, target) shape could possibly
// achieve, used to turn an HSP or HSP pair into a valid DP sub-region before
// HPair ever runs real Viterbi over it.
package heuristic

import (
	"errors"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/engineerr"
	"github.com/katalvlaran/gappedaligner/internal/region"
	"github.com/katalvlaran/gappedaligner/internal/viterbi"
)

// BoundMatrix is a max-region-converted 2-D upper-bound table: after
// construction, Lookup(q, t) is an upper bound on the score of ANY
// sub-alignment of shape (query-length, target-length) <= (q, t), not just
// one of that exact shape (spec.md §4.H).
type BoundMatrix struct {
	cells      [][]c4.Score
	maxQ, maxT int
}

func newBoundMatrix(maxQ, maxT int) *BoundMatrix {
	cells := make([][]c4.Score, maxQ+1)
	for q := range cells {
		cells[q] = make([]c4.Score, maxT+1)
		for t := range cells[q] {
			cells[q][t] = c4.ImpossiblyLow
		}
	}
	return &BoundMatrix{cells: cells, maxQ: maxQ, maxT: maxT}
}

func (b *BoundMatrix) set(q, t int, score c4.Score) {
	if score > b.cells[q][t] {
		b.cells[q][t] = score
	}
}

// maxRegionConvert replaces each cell in place by the maximum of itself and
// its three upper-left neighbours, the "max-region-conversion" spec.md §4.H
// specifies, so a lookup at any (q, t) bounds every smaller terminal too.
func (b *BoundMatrix) maxRegionConvert() {
	for q := 0; q <= b.maxQ; q++ {
		for t := 0; t <= b.maxT; t++ {
			best := b.cells[q][t]
			if q > 0 {
				best = c4.Max(best, b.cells[q-1][t])
			}
			if t > 0 {
				best = c4.Max(best, b.cells[q][t-1])
			}
			if q > 0 && t > 0 {
				best = c4.Max(best, b.cells[q-1][t-1])
			}
			b.cells[q][t] = best
		}
	}
}

// Lookup returns the upper bound for a sub-alignment of shape (qlen, tlen).
// Callers must size the matrix (via BuildTerminalBound/BuildJoinBound's
// maxQ/maxT) generously enough to cover every shape they will ever look up;
// a request outside the built range returns ImpossiblyHigh ("no bound
// available", never "no such path") so a caller treats it as unconstrained
// rather than silently capping it to a too-small, unsound bound.
func (b *BoundMatrix) Lookup(qlen, tlen int) c4.Score {
	if qlen < 0 || tlen < 0 {
		return c4.ImpossiblyLow
	}
	if qlen > b.maxQ || tlen > b.maxT {
		return c4.ImpossiblyHigh
	}
	return b.cells[qlen][tlen]
}

// runBoundPass runs one Viterbi score pass over [0,maxQ]x[0,maxT] against a
// derived model configured so its End state's cell fires at every reachable
// (qpos, tpos), and folds each firing into the returned matrix.
func runBoundPass(original *c4.Model, src, dst c4.StateID, preserveStartScope bool, maxQ, maxT int) (*BoundMatrix, error) {
	matrix := newBoundMatrix(maxQ, maxT)

	// The matrix's whole purpose is "a bound for any shape <= (q,t)", so
	// whichever boundary is the free/measuring side always uses
	// ScopeAnywhere regardless of the real model's configured scope — only
	// the boundary that coincides with the model's own true Start state
	// (never the true End: that bound is read off the same way, the
	// measuring side just faces the other direction) can meaningfully
	// preserve a real scope restriction.
	startScope := c4.ScopeAnywhere
	var startFn c4.StartCellFunc
	if preserveStartScope {
		startScope = original.StartScope()
		startFn = original.StartCellFuncValue()
	}
	endScope := c4.ScopeAnywhere
	capture := func(cell []c4.Score, qpos, tpos int) {
		matrix.set(qpos, tpos, cell[0])
	}

	dm, err := c4.CreateDerivedModel(original, src, dst, startScope, startFn, endScope, capture)
	if err != nil {
		return nil, err
	}

	reg := region.New(0, 0, maxQ, maxT)
	if _, err := viterbi.Calculate(dm.Derived, reg, nil, viterbi.ModeScore, viterbi.Options{}); err != nil {
		// Unreachable is expected whenever no path of any shape exists
		// (e.g. a model that never admits its End scope over this
		// rectangle at all); the matrix simply stays all-ImpossiblyLow.
		if !isUnreachable(err) {
			return nil, err
		}
	}
	matrix.maxRegionConvert()
	return matrix, nil
}

func isUnreachable(err error) bool {
	return errors.Is(err, engineerr.ErrUnreachable)
}

// BuildTerminalBound builds the Start or End terminal bound for matchState
// (spec.md §4.H). isStart selects start -> matchState (preserving the
// model's real start scope) versus matchState -> end (preserving the
// model's real end scope).
func BuildTerminalBound(original *c4.Model, matchState c4.StateID, isStart bool, maxQ, maxT int) (*BoundMatrix, error) {
	if isStart {
		return runBoundPass(original, original.StartState(), matchState, true, maxQ, maxT)
	}
	return runBoundPass(original, matchState, original.EndState(), false, maxQ, maxT)
}

// BuildJoinBound builds the Join bound for one (src_match, dst_match) pair
// of match states (spec.md §4.H): neither boundary is the model's true
// Start/End, so both are free (conceptually "corner" relative to whatever
// box the lookup eventually commits to, not to this matrix's own build
// rectangle).
func BuildJoinBound(original *c4.Model, srcMatchOut, dstMatchOut c4.StateID, maxQ, maxT int) (*BoundMatrix, error) {
	return runBoundPass(original, srcMatchOut, dstMatchOut, false, maxQ, maxT)
}

// SpanBound is the pair of 2-D bound matrices this port uses in place of
// spec.md §4.H's single 3-D (qpos, tpos, cell-slot) integration matrix: one
// matrix for src_match -> span_state, one for span_state -> dst_match. See
// DESIGN.md for why the cell-slot dimension is folded away here — HPair's
// confirm step always re-verifies the committed region with exact Viterbi,
// so this bound only needs to stay sound, not exact.
type SpanBound struct {
	ToSpan   *BoundMatrix
	FromSpan *BoundMatrix
	Span     *c4.Span
}

// BuildSpanBound builds both halves of a Span's bound for one (src_match,
// dst_match) pair of match states that flank it.
func BuildSpanBound(original *c4.Model, sp *c4.Span, srcMatch, dstMatch c4.StateID, maxQ, maxT int) (*SpanBound, error) {
	toSpan, err := runBoundPass(original, srcMatch, sp.SpanState, false, maxQ, maxT)
	if err != nil {
		return nil, err
	}
	fromSpan, err := runBoundPass(original, sp.SpanState, dstMatch, false, maxQ, maxT)
	if err != nil {
		return nil, err
	}
	return &SpanBound{ToSpan: toSpan, FromSpan: fromSpan, Span: sp}, nil
}

// GapBound upper-bounds the score contribution of the span's free middle
// portion covering a gap of (qGap, tGap) residues, using each loop
// transition's Calc.MaxScore (the per-step upper bound the c4 builder
// already records) times the number of steps that loop must take. Returns
// ImpossiblyLow if the gap falls outside the span's configured
// [MinQuery,MaxQuery] x [MinTarget,MaxTarget] shape.
func GapBound(m *c4.Model, sp *c4.Span, qGap, tGap int) c4.Score {
	if qGap < sp.MinQuery || qGap > sp.MaxQuery || tGap < sp.MinTarget || tGap > sp.MaxTarget {
		return c4.ImpossiblyLow
	}
	var total c4.Score
	if sp.QueryLoop != c4.NoID && qGap > 0 {
		t := m.Transition(sp.QueryLoop)
		steps := stepsFor(qGap, t.AdvanceQuery)
		total = c4.Add(total, stepScore(m, t, steps))
	}
	if sp.TargetLoop != c4.NoID && tGap > 0 {
		t := m.Transition(sp.TargetLoop)
		steps := stepsFor(tGap, t.AdvanceTarget)
		total = c4.Add(total, stepScore(m, t, steps))
	}
	return total
}

func stepsFor(gap, advance int) int {
	if advance <= 0 {
		return 0
	}
	steps := gap / advance
	if gap%advance != 0 {
		steps++
	}
	return steps
}

func stepScore(m *c4.Model, t *c4.Transition, steps int) c4.Score {
	if t.Calc == c4.NoID || steps <= 0 {
		return 0
	}
	return c4.Score(steps) * m.Calc(t.Calc).MaxScore
}
