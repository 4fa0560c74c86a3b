package gam

import (
	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/hpair"
	"github.com/katalvlaran/gappedaligner/internal/region"
	"github.com/katalvlaran/gappedaligner/internal/scoring"
	"github.com/katalvlaran/gappedaligner/internal/sdp"
	"github.com/katalvlaran/gappedaligner/internal/viterbi"
)

// opsFromPath collapses a Viterbi path's per-cell steps into run-length
// Operations, mirroring hpair.HPair.stitch's inline collapsing.
func opsFromPath(path []viterbi.PathStep) []c4.Operation {
	var ops []c4.Operation
	for _, step := range path {
		if step.Transition == c4.NoID {
			continue
		}
		if n := len(ops); n > 0 && ops[n-1].Transition == step.Transition {
			ops[n-1].Length++
			continue
		}
		ops = append(ops, c4.Operation{Transition: step.Transition, Length: 1})
	}
	return ops
}

// boundingRegionFromPath returns the tight rectangle spanning path.
func boundingRegionFromPath(path []viterbi.PathStep) region.Region {
	if len(path) == 0 {
		return region.Region{}
	}
	qLo, qHi := path[0].QueryPos, path[0].QueryPos
	tLo, tHi := path[0].TargetPos, path[0].TargetPos
	for _, step := range path[1:] {
		qLo, qHi = min(qLo, step.QueryPos), max(qHi, step.QueryPos)
		tLo, tHi = min(tLo, step.TargetPos), max(tHi, step.TargetPos)
	}
	return region.New(qLo, tLo, qHi-qLo, tHi-tLo)
}

// cellsFromPath extracts the (query, target) cell list a path visited, for
// feeding to a subopt.Index.
func cellsFromPath(path []viterbi.PathStep) [][2]int {
	cells := make([][2]int, len(path))
	for i, step := range path {
		cells[i] = [2]int{step.QueryPos, step.TargetPos}
	}
	return cells
}

// cellsFromOperations replays an sdp.RunResult's Operations forward from
// (startQ, startT) to reconstruct the cell list the chain touched.
func cellsFromOperations(m *c4.Model, startQ, startT int, ops []c4.Operation) [][2]int {
	cells := [][2]int{{startQ, startT}}
	q, t := startQ, startT
	for _, op := range ops {
		tr := m.Transition(op.Transition)
		for i := int64(0); i < op.Length; i++ {
			q += tr.AdvanceQuery
			t += tr.AdvanceTarget
			cells = append(cells, [2]int{q, t})
		}
	}
	return cells
}

// selfScoreSum sums a sequence's score against itself, residue by residue,
// using whichever substitution matrix matches the sequence (spec.md §4.J
// percent-of-self threshold).
func selfScoreSum(ctx *scoring.Context, seq *scoring.Sequence) c4.Score {
	submat := ctx.DNASubmat
	if submat == nil {
		submat = ctx.ProteinSubmat
	}
	if submat == nil {
		return 0
	}
	var total c4.Score
	for i := 0; i < seq.Len(); i++ {
		sym := seq.At(i)
		total = c4.Add(total, c4.Score(submat.Score(sym, sym)))
	}
	return total
}

// uniqueMatchStates dedupes the match states referenced across hsps, for
// building hpair.Config's Matches list.
func uniqueMatchStates(hsps []hpair.HSPSet) []hpair.MatchState {
	seen := make(map[c4.StateID]bool, len(hsps))
	out := make([]hpair.MatchState, 0, len(hsps))
	for _, set := range hsps {
		if seen[set.Match.State] {
			continue
		}
		seen[set.Match.State] = true
		out = append(out, set.Match)
	}
	return out
}

// seedsFromHSPSets turns every HSP across hsps into one sdp.Seed, tagged
// with a unique SeedID so a winning chain's starting HSP can be recovered
// from sdp.RunResult.SeedID.
func seedsFromHSPSets(hsps []hpair.HSPSet) []sdp.Seed {
	var seeds []sdp.Seed
	id := 0
	for _, set := range hsps {
		for _, h := range set.HSPs {
			seeds = append(seeds, sdp.Seed{
				SeedID:    id,
				State:     set.Match.State,
				QueryPos:  h.QueryStart,
				TargetPos: h.TargetStart,
				Score:     h.Score,
			})
			id++
		}
	}
	return seeds
}

func seedByID(seeds []sdp.Seed, id int) (sdp.Seed, bool) {
	for _, s := range seeds {
		if s.SeedID == id {
			return s, true
		}
	}
	return sdp.Seed{}, false
}
