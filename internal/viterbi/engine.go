// Package viterbi implements the Viterbi dynamic-programming engine over a
// closed c4.Model: best score, best path, bounding region, and a
// reduced-space checkpointed traceback for regions too large to hold a full
// backpointer grid in memory (spec.md §4.E).
package viterbi

import (
	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/engineerr"
	"github.com/katalvlaran/gappedaligner/internal/region"
)

// Mode selects what Calculate computes.
type Mode int

const (
	// ModeScore computes only the best score reaching the End state's end
	// scope; no backpointers are kept, so memory is O(maxTargetAdvance *
	// queryLength) regardless of region size.
	ModeScore Mode = iota
	// ModePath computes the score and the full best-scoring path.
	ModePath
	// ModeRegion computes the tight bounding rectangle of the best path,
	// useful for handing a caller (SDP, HPair) a pre-trim before a more
	// expensive full pass.
	ModeRegion
	// ModeCheckpoints computes the full path via reduced-space sectioning:
	// a rolling forward pass periodically snapshots the trailing window,
	// then each section is re-traced independently within bounded memory.
	ModeCheckpoints
)

// PathStep is one visited cell of a traced alignment path, in
// start-to-end order.
type PathStep struct {
	State      c4.StateID
	Transition c4.TransitionID // NoID for the first step (Start)
	QueryPos   int
	TargetPos  int
}

// Result is Calculate's output; which fields are populated depends on Mode.
type Result struct {
	Score      c4.Score
	Reached    bool
	EndQuery   int
	EndTarget  int
	Path       []PathStep     // ModePath, ModeCheckpoints
	Bounds     region.Region  // ModeRegion
	Shadows    []c4.Score
}

// Options configures reduced-space behaviour. The zero value disables
// sectioning: ModeCheckpoints then degrades to a single full-memory pass.
type Options struct {
	// MemoryLimit bounds the backpointer grid's byte footprint; Calculate
	// derives a target-dimension section length from it following
	// spec.md §4.E's "traceback_memory_limit / (2*cell_size*states*qlen)".
	MemoryLimit int
}

// Calculate runs the Viterbi engine over model restricted to reg.
func Calculate(model *c4.Model, reg region.Region, subopt SubOptIndex, mode Mode, opts Options) (Result, error) {
	if model.IsOpen() {
		return Result{}, engineerr.New("Viterbi.Calculate", engineerr.KindModelInvariantViolated)
	}
	if !reg.IsValid() {
		return Result{}, engineerr.New("Viterbi.Calculate", engineerr.KindInvalidArgument)
	}

	var out Result
	var err error
	switch mode {
	case ModeScore:
		var res *forwardResult
		res, err = runForward(forwardConfig{model: model, region: reg, subopt: subopt})
		if err != nil {
			return Result{}, err
		}
		out = resultFromForward(res)

	case ModePath:
		var res *forwardResult
		res, err = runForward(forwardConfig{model: model, region: reg, subopt: subopt, trackBack: true})
		if err != nil {
			return Result{}, err
		}
		out = resultFromForward(res)
		if res.endReached {
			out.Path = traceback(model, res.w, reg.TargetStart, res.finalQuery, res.finalTarget, model.EndState())
		}

	case ModeRegion:
		var res *forwardResult
		res, err = runForward(forwardConfig{model: model, region: reg, subopt: subopt, trackBack: true})
		if err != nil {
			return Result{}, err
		}
		out = resultFromForward(res)
		if res.endReached {
			path := traceback(model, res.w, reg.TargetStart, res.finalQuery, res.finalTarget, model.EndState())
			out.Bounds = boundingRegion(path, reg)
		}

	case ModeCheckpoints:
		out, err = calculateCheckpointed(model, reg, subopt, opts)
		if err != nil {
			return Result{}, err
		}

	default:
		return Result{}, engineerr.New("Viterbi.Calculate", engineerr.KindInvalidArgument)
	}

	if !out.Reached {
		return out, engineerr.New("Viterbi.Calculate", engineerr.KindUnreachable)
	}
	return out, nil
}

func resultFromForward(res *forwardResult) Result {
	return Result{
		Score:     res.finalCell.Score,
		Reached:   res.endReached,
		EndQuery:  res.finalQuery,
		EndTarget: res.finalTarget,
		Shadows:   res.finalCell.cloneShadows(),
	}
}

func boundingRegion(path []PathStep, fallback region.Region) region.Region {
	if len(path) == 0 {
		return fallback
	}
	minQ, maxQ := path[0].QueryPos, path[0].QueryPos
	minT, maxT := path[0].TargetPos, path[0].TargetPos
	for _, s := range path {
		if s.QueryPos < minQ {
			minQ = s.QueryPos
		}
		if s.QueryPos > maxQ {
			maxQ = s.QueryPos
		}
		if s.TargetPos < minT {
			minT = s.TargetPos
		}
		if s.TargetPos > maxT {
			maxT = s.TargetPos
		}
	}
	return region.New(minQ, minT, maxQ-minQ, maxT-minT)
}

// traceback walks backpointers in w from (state, qpos, tpos) to the Start
// state (or to seedBoundaryTarget, when w was seeded from a checkpoint and
// an earlier section already covers everything before that row),
// returning steps in start-to-end order.
func traceback(m *c4.Model, w *window, seedBoundaryTarget, qpos, tpos int, state c4.StateID) []PathStep {
	var rev []PathStep
	cur, q, t := state, qpos, tpos
	for {
		rev = append(rev, PathStep{State: cur, QueryPos: q, TargetPos: t})
		if cur == m.StartState() {
			break
		}
		tid := w.getBack(q, t, int(cur))
		if tid == c4.NoID {
			break
		}
		if t <= seedBoundaryTarget && cur != m.StartState() {
			// Reached the seeded boundary row without hitting Start: the
			// remainder of the path lives in an earlier section's trace.
			rev[len(rev)-1].Transition = tid
			break
		}
		tr := m.Transition(tid)
		rev[len(rev)-1].Transition = tid
		cur = tr.Input
		q, t = q-tr.AdvanceQuery, t-tr.AdvanceTarget
	}
	out := make([]PathStep, len(rev))
	for i, s := range rev {
		out[len(rev)-1-i] = s
	}
	return out
}

func sectionLength(m *c4.Model, reg region.Region, opts Options) int {
	if opts.MemoryLimit <= 0 {
		return reg.TargetLength
	}
	cellSize := 8 + 8*m.TotalShadowDesignations() // one Score plus one Score per shadow slot
	denom := 2 * cellSize * len(m.States()) * (reg.QueryLength + 1)
	if denom <= 0 {
		return reg.TargetLength
	}
	sl := opts.MemoryLimit / denom
	if min := m.MaxTargetAdvance() + 1; sl < min {
		sl = min
	}
	if sl > reg.TargetLength {
		sl = reg.TargetLength
	}
	return sl
}

// calculateCheckpointed implements ModeCheckpoints: a single rolling
// forward pass collects a Snapshot every sectionLength target rows, then
// each section is re-traced independently (seeded from the previous
// section's snapshot) so no single backpointer grid exceeds opts.MemoryLimit.
func calculateCheckpointed(model *c4.Model, reg region.Region, subopt SubOptIndex, opts Options) (Result, error) {
	sl := sectionLength(model, reg, opts)
	if sl >= reg.TargetLength {
		res, err := runForward(forwardConfig{model: model, region: reg, subopt: subopt, trackBack: true})
		if err != nil {
			return Result{}, err
		}
		out := resultFromForward(res)
		if res.endReached {
			out.Path = traceback(model, res.w, reg.TargetStart, res.finalQuery, res.finalTarget, model.EndState())
		}
		return out, nil
	}

	scan, err := runForward(forwardConfig{model: model, region: reg, subopt: subopt, checkpointEvery: sl})
	if err != nil {
		return Result{}, err
	}
	out := resultFromForward(scan)
	if !scan.endReached {
		return out, nil
	}

	checkpoints := scan.checkpoints
	endQ, endT, endState := scan.finalQuery, scan.finalTarget, model.EndState()

	var full []PathStep
	curEndQ, curEndT, curState := endQ, endT, endState
	for i := len(checkpoints); i >= 0; i-- {
		var seed *Snapshot
		var seedBoundary int
		sectionReg := reg
		if i > 0 {
			cp := checkpoints[i-1]
			seed = &cp
			seedBoundary = cp.TargetPos
			sectionReg = region.New(reg.QueryStart, cp.TargetPos+1, reg.QueryLength, curEndT-(cp.TargetPos+1)+1)
		} else {
			seedBoundary = reg.TargetStart - 1
			sectionReg = region.New(reg.QueryStart, reg.TargetStart, reg.QueryLength, curEndT-reg.TargetStart+1)
		}
		if curEndT < sectionReg.TargetStart {
			continue
		}
		sub, err := runForward(forwardConfig{model: model, region: sectionReg, subopt: subopt, seed: seed, trackBack: true})
		if err != nil {
			return Result{}, err
		}
		steps := traceback(model, sub.w, seedBoundary, curEndQ, curEndT, curState)
		full = append(steps, full...)
		if len(steps) == 0 {
			break
		}
		first := steps[0]
		curState, curEndQ, curEndT = first.State, first.QueryPos, first.TargetPos
		if curState == model.StartState() {
			break
		}
	}
	out.Path = full
	return out, nil
}
