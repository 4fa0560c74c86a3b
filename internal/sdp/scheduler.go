package sdp

import (
	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/region"
	"github.com/katalvlaran/gappedaligner/internal/subopt"
)

// Direction selects which end of a model a Scheduler propagates from: a
// forward scheduler plants seeds at HSP start positions and propagates to
// ends; a reverse scheduler does the symmetric thing for traceback
// (spec.md §4.F).
type Direction int

const (
	Forward Direction = iota
	Reverse
)

// Seed anchors one scheduler run at a match state's cell, tagged with a
// SeedID the Boundary uses to track whose frontier a touched cell belongs
// to.
type Seed struct {
	SeedID    int
	State     c4.StateID
	QueryPos  int
	TargetPos int
	Score     c4.Score
}

// Config bounds one scheduler run.
type Config struct {
	Region    region.Region
	Direction Direction
	// Dropoff prunes any cell scoring more than Dropoff below the best
	// score seen so far in the run; zero disables pruning.
	Dropoff c4.Score
}

type cellState struct {
	score  c4.Score
	tb     TracebackID
	seedID int
	valid  bool
}

// row is one tpos's sliding DP window over qpos (spec.md's "Scheduler
// row"): a Lookahead over per-qpos state vectors, bounded to
// model.MaxQueryAdvance()+1 live qpos slots regardless of region width.
type row struct {
	tpos int
	win  *Lookahead[[]cellState]
}

func newRow(tpos, maxQueryAdvance int) *row {
	return &row{tpos: tpos, win: NewLookahead[[]cellState](maxQueryAdvance)}
}

// Scheduler runs one direction's seeded DP pass over a c4.Model, using
// Lookahead/Boundary/STraceback/SparseCache instead of a full DP grid
// (spec.md §4.F).
type Scheduler struct {
	Model  *c4.Model
	Cfg    Config
	TB     *STraceback
	Spans  *SparseCache
	Bound  *Boundary
	SubOpt *subopt.Index

	best c4.Score
}

// NewScheduler returns a Scheduler over model restricted to cfg.Region.
// subOpt may be nil.
func NewScheduler(model *c4.Model, cfg Config, subOpt *subopt.Index) *Scheduler {
	if subOpt == nil {
		subOpt = subopt.New()
	}
	return &Scheduler{
		Model: model, Cfg: cfg, TB: NewSTraceback(), Spans: NewSparseCache(),
		Bound: NewBoundary(), SubOpt: subOpt, best: c4.ImpossiblyLow,
	}
}

// RunResult is one scheduler pass's output.
type RunResult struct {
	Score      c4.Score
	SeedID     int
	EndQuery   int
	EndTarget  int
	Operations []c4.Operation
	Reached    bool
}

// Run propagates every seed forward (or backward, per cfg.Direction) one
// tpos at a time, pruning any cell more than cfg.Dropoff below the best
// score seen so far, and returns the best-scoring chain that reaches the
// model's End state (Start state, for Reverse) within cfg.Region.
func (s *Scheduler) Run(seeds []Seed) RunResult {
	reg := s.Cfg.Region
	numStates := s.Model.States()
	maxQ := s.Model.MaxQueryAdvance()
	maxT := s.Model.MaxTargetAdvance()
	forward := s.Cfg.Direction == Forward

	// qAt/tAt map a monotonically increasing step index (0, 1, 2, ...) back
	// to raw coordinates in the traversal direction; vOf/uOf are their
	// inverses. Every Lookahead window below is keyed by step index, not raw
	// position, so both Forward and Reverse passes slide their windows
	// forward (Move always sees a non-decreasing position) regardless of
	// which way the raw coordinates run (spec.md §4.F "Lookahead").
	qAt := func(u int) int {
		if forward {
			return reg.QueryStart + u
		}
		return reg.QueryEnd() - 1 - u
	}
	tAt := func(v int) int {
		if forward {
			return reg.TargetStart + v
		}
		return reg.TargetEnd() - 1 - v
	}
	uOf := func(rawQ int) int {
		if forward {
			return rawQ - reg.QueryStart
		}
		return reg.QueryEnd() - 1 - rawQ
	}
	vOf := func(rawT int) int {
		if forward {
			return rawT - reg.TargetStart
		}
		return reg.TargetEnd() - 1 - rawT
	}

	// curU tracks the query-axis step the sweep currently sits at. Every
	// row resident in `rows` has its own win (query-axis Lookahead) kept
	// synchronized to curU (see the Occupied() sync below), so a row
	// created ahead of its own turn — e.g. by a transition that crosses
	// into a neighboring tpos — starts already positioned at the frontier
	// its sibling rows share, instead of at a stale base 0.
	curU := 0
	rows := NewLookahead[*row](maxT)
	syncRows := func(u int) {
		curU = u
		for _, rr := range rows.Occupied() {
			rr.win.Move(u)
		}
	}
	get := func(rawT int) *row {
		v := vOf(rawT)
		r, ok := rows.Get(v)
		if !ok {
			r = newRow(rawT, maxQ)
			r.win.Move(curU)
			rows.Set(v, r)
		}
		return r
	}

	// Seeds can land at any v within the region, far beyond the window's
	// initial reach, so they are grouped by v and planted only once the
	// sweep's Move brings that row into the live window — never injected
	// ahead of time.
	seedsByV := make(map[int][]Seed, len(seeds))
	for _, sd := range seeds {
		v := vOf(sd.TargetPos)
		seedsByV[v] = append(seedsByV[v], sd)
		if sd.Score > s.best {
			s.best = sd.Score
		}
	}

	var result RunResult
	targetState := s.Model.EndState()
	if s.Cfg.Direction == Reverse {
		targetState = s.Model.StartState()
	}

	for v := 0; v < reg.TargetLength; v++ {
		rows.Move(v)
		syncRows(0)
		tpos := tAt(v)
		pending := seedsByV[v]
		if len(pending) > 0 {
			delete(seedsByV, v)
			r := get(tpos)
			for _, sd := range pending {
				u := uOf(sd.QueryPos)
				cells, ok := r.win.Get(u)
				if !ok {
					cells = make([]cellState, len(numStates))
					r.win.Set(u, cells)
				}
				cells[sd.State] = cellState{score: sd.Score, tb: s.TB.Root(), seedID: sd.SeedID, valid: true}
				s.Bound.Insert(Interval{Lo: sd.QueryPos, Hi: sd.QueryPos, SeedID: sd.SeedID})
			}
		}
		r, ok := rows.Get(v)
		if !ok {
			continue
		}
		for u := 0; u < reg.QueryLength; u++ {
			syncRows(u)
			qpos := qAt(u)
			cells, ok := r.win.Get(u)
			if !ok {
				continue
			}
			if s.SubOpt.Find(qpos, tpos) {
				continue
			}
			touchedSeed, touched := 0, false
			for st := range cells {
				c := cells[st]
				if !c.valid {
					continue
				}
				if s.Cfg.Dropoff > 0 && c.score < s.best-s.Cfg.Dropoff {
					continue
				}
				touchedSeed, touched = c.seedID, true
				if c4.StateID(st) == targetState {
					if c.score > result.Score || !result.Reached {
						result = RunResult{Score: c.score, SeedID: c.seedID, EndQuery: qpos, EndTarget: tpos, Reached: true}
						result.Operations = s.TB.Linearize(c.tb)
					}
					continue
				}
				s.propagate(c4.StateID(st), c, qpos, tpos, get, uOf, numStates)
			}
			// A zero-advance transition (e.g. the model's "leave" into End)
			// writes into this very cell's own state vector, at an index
			// the range above may already have passed — re-check targetState
			// directly so such same-cell arrivals are never missed.
			if end := cells[targetState]; end.valid && (end.score > result.Score || !result.Reached) {
				result = RunResult{Score: end.score, SeedID: end.seedID, EndQuery: qpos, EndTarget: tpos, Reached: true}
				result.Operations = s.TB.Linearize(end.tb)
			}
			if touched {
				s.Bound.Insert(Interval{Lo: qpos, Hi: qpos, SeedID: touchedSeed})
			}
		}
	}
	return result
}

func (s *Scheduler) propagate(st c4.StateID, c cellState, qpos, tpos int, get func(int) *row, uOf func(int) int, numStates []c4.State) {
	state := s.Model.State(st)
	outs := state.OutputTransitions
	if s.Cfg.Direction == Reverse {
		outs = state.InputTransitions
	}
	for _, tid := range outs {
		t := s.Model.Transition(tid)
		if t.IsSpan() {
			continue // degenerate calc-less self-loop; nothing to propagate
		}
		dq, dt := t.AdvanceQuery, t.AdvanceTarget
		if s.Cfg.Direction == Reverse {
			dq, dt = -dq, -dt
		}
		nq, nt := qpos+dq, tpos+dt
		dst := t.Output
		if s.Cfg.Direction == Reverse {
			dst = t.Input
		}
		delta := c4.Score(0)
		if t.Calc != c4.NoID {
			delta = s.Model.Calc(t.Calc).Score(qpos, tpos)
		}
		cand := c4.Add(c.score, delta)
		if cand > s.best {
			s.best = cand
		}
		s.relax(dst, cand, tid, c.tb, c.seedID, nq, nt, get, uOf, numStates)
	}
	// Span entry/exit: if this state is a span's SpanState, also consult
	// SparseCache to jump directly across the free middle portion instead
	// of stepping through every intervening cell (spec.md's span history).
	spans := s.Model.Spans()
	for i := range spans {
		sp := &spans[i]
		if sp.SpanState != st {
			continue
		}
		s.Spans.Record(sp.ID(), qpos, tpos, c.score, c.tb)
		if best, found := s.Spans.Best(sp.ID(), sp, qpos, tpos); found {
			gap := gapScore(s.Model, sp, qpos-best.qpos, tpos-best.tpos)
			cand := c4.Add(best.score, gap)
			if cand > c.score {
				s.relax(st, cand, c4.NoID, best.tb, c.seedID, qpos, tpos, get, uOf, numStates)
			}
		}
	}
}

func (s *Scheduler) relax(dst c4.StateID, score c4.Score, tid c4.TransitionID, prevTB TracebackID, seedID, nq, nt int, get func(int) *row, uOf func(int) int, numStates []c4.State) {
	if nq < s.Cfg.Region.QueryStart || nq >= s.Cfg.Region.QueryEnd() {
		return
	}
	if nt < s.Cfg.Region.TargetStart || nt >= s.Cfg.Region.TargetEnd() {
		return
	}
	r := get(nt)
	u := uOf(nq)
	cells, ok := r.win.Get(u)
	if !ok {
		cells = make([]cellState, len(numStates))
		r.win.Set(u, cells)
	}
	if cells[dst].valid && cells[dst].score >= score {
		return
	}
	tb := prevTB
	if tid != c4.NoID {
		tb = s.TB.Extend(prevTB, tid)
	}
	cells[dst] = cellState{score: score, tb: tb, seedID: seedID, valid: true}
}

// gapScore upper-bounds (and, absent a better model, prices) a span's free
// middle portion of shape (qGap, tGap) using each loop transition's per-
// step Calc score at the gap's own positions — the same MaxScore-based
// closed form internal/heuristic.GapBound uses for pruning, kept local here
// so sdp stays independently compilable from hpair/heuristic (spec.md's
// "independently compiled" scheduler note).
func gapScore(m *c4.Model, sp *c4.Span, qGap, tGap int) c4.Score {
	if qGap < sp.MinQuery || qGap > sp.MaxQuery || tGap < sp.MinTarget || tGap > sp.MaxTarget {
		return c4.ImpossiblyLow
	}
	var total c4.Score
	if sp.QueryLoop != c4.NoID && qGap > 0 {
		t := m.Transition(sp.QueryLoop)
		total = c4.Add(total, c4.Score(qGap)*m.Calc(t.Calc).MaxScore)
	}
	if sp.TargetLoop != c4.NoID && tGap > 0 {
		t := m.Transition(sp.TargetLoop)
		total = c4.Add(total, c4.Score(tGap)*m.Calc(t.Calc).MaxScore)
	}
	return total
}

// Invalidate implements spec.md's SubOpt-enumeration integration: after an
// alignment is emitted, drop every boundary run and span-history entry
// overlapping the newly blocked region so a later Run call does not reuse
// stale reachability.
func (s *Scheduler) Invalidate(qLo, qHi, tLo, tHi int) {
	s.Bound.Invalidate(qLo, qHi)
	spans := s.Model.Spans()
	for i := range spans {
		s.Spans.Forget(spans[i].ID(), qLo, qHi, tLo, tHi)
	}
}
