package viterbi

import "github.com/katalvlaran/gappedaligner/internal/c4"

// window stores DP cells for a rectangle of (queryPos, targetPos, state).
// When full is false it only keeps capRows target rows (a rolling buffer
// sized maxTargetAdvance+1, spec.md §4.E's "rolling window"), which is
// enough because no transition ever looks further back in target than
// maxTargetAdvance. When full is true every row is kept, which is what
// traceback mode needs to walk the whole path back to Start.
type window struct {
	queryStart, targetStart int
	qlen, numStates         int
	shadowCount             int
	capRows                 int
	full                    bool
	rows                    [][]Cell
	back                    [][]c4.TransitionID // nil unless trackBack
	trackBack               bool
}

func newWindow(queryStart, targetStart, qlen, tlen, numStates, shadowCount, maxTargetAdvance int, full, trackBack bool) *window {
	capRows := maxTargetAdvance + 1
	if full {
		capRows = tlen + 1
	}
	w := &window{
		queryStart: queryStart, targetStart: targetStart,
		qlen: qlen, numStates: numStates, shadowCount: shadowCount,
		capRows: capRows, full: full, trackBack: trackBack,
	}
	w.rows = make([][]Cell, capRows)
	if trackBack {
		w.back = make([][]c4.TransitionID, capRows)
	}
	rowLen := (qlen + 1) * numStates
	for i := range w.rows {
		row := make([]Cell, rowLen)
		for j := range row {
			row[j] = blankCell(shadowCount)
		}
		w.rows[i] = row
		if trackBack {
			br := make([]c4.TransitionID, rowLen)
			for j := range br {
				br[j] = c4.NoID
			}
			w.back[i] = br
		}
	}
	return w
}

func (w *window) rowIndex(targetPos int) int {
	rel := targetPos - w.targetStart
	if w.full {
		return rel
	}
	m := rel % w.capRows
	if m < 0 {
		m += w.capRows
	}
	return m
}

func (w *window) cellIndex(queryPos, state int) int {
	return (queryPos-w.queryStart)*w.numStates + state
}

// allocRow (re)initialises the row for targetPos to all-blank, releasing it
// for reuse in the rolling-window case.
func (w *window) allocRow(targetPos int) {
	ri := w.rowIndex(targetPos)
	row := w.rows[ri]
	for i := range row {
		row[i] = blankCell(w.shadowCount)
	}
	if w.trackBack {
		br := w.back[ri]
		for i := range br {
			br[i] = c4.NoID
		}
	}
}

func (w *window) get(queryPos, targetPos, state int) *Cell {
	return &w.rows[w.rowIndex(targetPos)][w.cellIndex(queryPos, state)]
}

func (w *window) setBack(queryPos, targetPos, state int, t c4.TransitionID) {
	if !w.trackBack {
		return
	}
	w.back[w.rowIndex(targetPos)][w.cellIndex(queryPos, state)] = t
}

func (w *window) getBack(queryPos, targetPos, state int) c4.TransitionID {
	if !w.trackBack {
		return c4.NoID
	}
	return w.back[w.rowIndex(targetPos)][w.cellIndex(queryPos, state)]
}
