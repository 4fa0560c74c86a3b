package viterbi

import (
	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/region"
)

// Snapshot captures the trailing maxTargetAdvance+1 target rows of a
// forward pass at TargetPos, enough to seed a later forward pass as if it
// had been running continuously from the start of the region — the
// "checkpoint" unit spec.md §4.E's reduced-space mode threads across
// section boundaries.
type Snapshot struct {
	TargetPos  int
	QueryStart int
	NumStates  int
	Rows       [][]Cell // Rows[len-1] is the row at TargetPos, earlier rows are TargetPos-1, TargetPos-2, ...
}

func snapshotFrom(w *window, targetPos int) Snapshot {
	n := w.capRows
	rows := make([][]Cell, n)
	for i := 0; i < n; i++ {
		tp := targetPos - (n - 1 - i)
		if tp < w.targetStart {
			rows[i] = nil
			continue
		}
		src := w.rows[w.rowIndex(tp)]
		cp := make([]Cell, len(src))
		for j, c := range src {
			cp[j] = Cell{Score: c.Score, Shadows: c.cloneShadows()}
		}
		rows[i] = cp
	}
	return Snapshot{TargetPos: targetPos, QueryStart: w.queryStart, NumStates: w.numStates, Rows: rows}
}

func seedWindowFromSnapshot(w *window, snap Snapshot) {
	n := len(snap.Rows)
	for i := 0; i < n; i++ {
		if snap.Rows[i] == nil {
			continue
		}
		tp := snap.TargetPos - (n - 1 - i)
		if tp < w.targetStart-w.capRows {
			continue
		}
		ri := w.rowIndex(tp)
		copy(w.rows[ri], snap.Rows[i])
	}
}

// forwardConfig bundles everything one forward pass over a model/region
// needs.
type forwardConfig struct {
	model           *c4.Model
	region          region.Region
	subopt          SubOptIndex
	seed            *Snapshot // nil => start fresh at region start
	trackBack       bool
	checkpointEvery int // 0 disables checkpointing
}

type forwardResult struct {
	w           *window
	checkpoints []Snapshot
	finalCell   Cell
	finalQuery  int
	finalTarget int
	endReached  bool
}

// runForward fills the DP window across cfg.region (or, when cfg.seed is
// set, across the portion of cfg.region strictly after cfg.seed.TargetPos)
// and reports the best cell observed through the End state's end scope.
func runForward(cfg forwardConfig) (*forwardResult, error) {
	m := cfg.model
	reg := cfg.region
	k := m.TotalShadowDesignations()

	full := cfg.trackBack
	windowTargetStart := reg.TargetStart
	windowTargetLen := reg.TargetLength
	if cfg.seed != nil {
		windowTargetStart = cfg.seed.TargetPos - m.MaxTargetAdvance()
		windowTargetLen = reg.TargetEnd() - windowTargetStart
	}
	w := newWindow(reg.QueryStart, windowTargetStart, reg.QueryLength, windowTargetLen, len(m.States()), k, m.MaxTargetAdvance(), full, cfg.trackBack)

	startTarget := reg.TargetStart
	if cfg.seed != nil {
		seedWindowFromSnapshot(w, *cfg.seed)
		startTarget = cfg.seed.TargetPos + 1
	}

	order := m.ProcessOrder()
	start := m.StartState()
	end := m.EndState()

	res := &forwardResult{w: w, finalCell: Cell{Score: c4.ImpossiblyLow}}
	var checkpoints []Snapshot

	qStart, qEnd := reg.QueryStart, reg.QueryEnd()
	tEnd := reg.TargetEnd()

	for tpos := startTarget; tpos <= tEnd; tpos++ {
		if !full {
			w.allocRow(tpos)
		}
		if cfg.subopt != nil {
			cfg.subopt.SetRow(tpos)
		}
		for qpos := qStart; qpos <= qEnd; qpos++ {
			for _, sid := range order {
				fillCell(m, w, sid, start, end, qpos, tpos, reg, cfg.subopt, res)
			}
		}
		if cfg.checkpointEvery > 0 && tpos > reg.TargetStart && tpos < tEnd && (tpos-reg.TargetStart)%cfg.checkpointEvery == 0 {
			checkpoints = append(checkpoints, snapshotFrom(w, tpos))
		}
	}

	res.checkpoints = checkpoints
	return res, nil
}

func fillCell(m *c4.Model, w *window, sid, start, end c4.StateID, qpos, tpos int, reg region.Region, subopt SubOptIndex, res *forwardResult) {
	cell := w.get(qpos, tpos, int(sid))

	if sid == start {
		atQ := qpos == reg.QueryStart
		atT := tpos == reg.TargetStart
		if m.StartScope().Admits(atQ, atT) {
			if fn := m.StartCellFuncValue(); fn != nil {
				vec := fn(qpos, tpos)
				cell.Score = vec[0]
				if len(vec) > 1 {
					if cell.Shadows == nil {
						cell.Shadows = make([]c4.Score, len(vec)-1)
					}
					copy(cell.Shadows, vec[1:])
				}
			} else {
				cell.Score = 0
			}
		} else {
			cell.Score = c4.ImpossiblyLow
		}
	} else {
		best := c4.ImpossiblyLow
		var bestShadows []c4.Score
		bestTransition := c4.NoID
		for _, tid := range m.State(sid).InputTransitions {
			t := m.Transition(tid)
			srcQ, srcT := qpos-t.AdvanceQuery, tpos-t.AdvanceTarget
			if srcQ < reg.QueryStart || srcT < reg.TargetStart {
				continue
			}
			src := w.get(srcQ, srcT, int(t.Input))
			if src.Score == c4.ImpossiblyLow {
				continue
			}
			if subopt != nil && t4IsMatch(m, tid) && subopt.IsBlocked(qpos) {
				continue
			}
			var delta c4.Score
			if t.Calc != c4.NoID {
				delta = m.Calc(t.Calc).Score(qpos, tpos)
			}
			cand := c4.Add(src.Score, delta)
			if cand > best {
				best = cand
				bestShadows = src.cloneShadows()
				bestTransition = tid
			}
		}
		cell.Score = best
		cell.Shadows = bestShadows
		w.setBack(qpos, tpos, int(sid), bestTransition)

		if best != c4.ImpossiblyLow && bestTransition != c4.NoID {
			applyDstShadows(m, cell, bestTransition, qpos, tpos)
		}
	}

	if cell.Score != c4.ImpossiblyLow {
		applySrcShadows(m, cell, sid, qpos, tpos)
	}

	if sid == end {
		atQ := qpos == reg.QueryEnd()
		atT := tpos == reg.TargetEnd()
		if m.EndScope().Admits(atQ, atT) && cell.Score != c4.ImpossiblyLow {
			if fn := m.EndCellFuncValue(); fn != nil {
				full := append([]c4.Score{cell.Score}, cell.Shadows...)
				fn(full, qpos, tpos)
			}
			if cell.Score > res.finalCell.Score {
				res.finalCell = Cell{Score: cell.Score, Shadows: cell.cloneShadows()}
				res.finalQuery = qpos
				res.finalTarget = tpos
				res.endReached = true
			}
		}
	}
}

func t4IsMatch(m *c4.Model, tid c4.TransitionID) bool {
	if tid == c4.NoID {
		return false
	}
	return m.Transition(tid).IsMatch()
}

func applyDstShadows(m *c4.Model, cell *Cell, tid c4.TransitionID, qpos, tpos int) {
	t := m.Transition(tid)
	for _, sid := range t.DstShadowList {
		sh := m.Shadow(sid)
		if cell.Shadows == nil {
			continue
		}
		cell.Shadows[sh.Designation] = sh.EndFunc(cell.Shadows[sh.Designation], qpos, tpos)
	}
}

func applySrcShadows(m *c4.Model, cell *Cell, sid c4.StateID, qpos, tpos int) {
	st := m.State(sid)
	for _, shid := range st.ShadowsStartingHere {
		sh := m.Shadow(shid)
		if sh.StartFunc == nil {
			continue
		}
		if cell.Shadows == nil {
			continue
		}
		cell.Shadows[sh.Designation] = sh.StartFunc(qpos, tpos)
	}
}
