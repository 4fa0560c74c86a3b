package heuristic

import (
	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/region"
)

// HSP is one high-scoring segment pair: a diagonal run of match steps, each
// advancing (QueryAdvance, TargetAdvance) residues (1,1 for a simple match,
// 3,1 for a codon-aware match). Cobs ("core of best score") marks, in step
// units from QueryStart/TargetStart, the boundary SAR treats as this HSP's
// believable core — SAR may trim into either side of it but the trimmed
// region's score (Component) is always subtracted back out of any bound or
// DP score computed over a region that includes it, to avoid double-
// counting (spec.md §4.H).
type HSP struct {
	QueryStart, TargetStart     int
	QueryAdvance, TargetAdvance int
	Length                      int // total match steps
	Cobs                        int // 0 <= Cobs <= Length
	Score                       c4.Score

	// MatchScore(step) is the actual per-step score already realised by
	// this HSP (mismatch penalties included); SelfScore(step) is the
	// best-possible per-step score (e.g. a perfect match), the same
	// function a model's Match.SelfScore supplies.
	MatchScore func(step int) c4.Score
	SelfScore  func(step int) c4.Score
}

// stepPos returns the (queryPos, targetPos) reached after step diagonal
// steps from the HSP's start.
func (h *HSP) stepPos(step int) (int, int) {
	return h.QueryStart + step*h.QueryAdvance, h.TargetStart + step*h.TargetAdvance
}

// QueryEnd/TargetEnd are the residue positions one past the HSP's last step.
func (h *HSP) QueryEnd() int  { q, _ := h.stepPos(h.Length); return q }
func (h *HSP) TargetEnd() int { _, t := h.stepPos(h.Length); return t }

// CobsQuery/CobsTarget are the residue position of the HSP's cobs boundary.
func (h *HSP) CobsQuery() int  { q, _ := h.stepPos(h.Cobs); return q }
func (h *HSP) CobsTarget() int { _, t := h.stepPos(h.Cobs); return t }

// quality reports whether the leftover stretch of length steps starting at
// step start clears the hspQuality percentage threshold (spec.md §4.H:
// "half/max >= hsp_quality", half = sum of actual per-step scores, max =
// sum of best-possible per-step scores over the same stretch). A stretch
// with zero achievable self-score (max == 0) trivially passes — there is
// nothing to be better than.
func (h *HSP) quality(start, length int, hspQuality float64) bool {
	if length <= 0 || hspQuality <= 0 {
		return true
	}
	var half, max c4.Score
	for i := 0; i < length; i++ {
		half = c4.Add(half, h.MatchScore(start+i))
		max = c4.Add(max, h.SelfScore(start+i))
	}
	if max == 0 {
		return true
	}
	return (float64(half)/float64(max))*100.0 >= hspQuality
}

// Box is an inclusive-bounds (query, target) rectangle, the representation
// SAR's cobs-to-corner outer/inner box arithmetic is built on.
type Box struct {
	QLo, QHi, TLo, THi int
}

// IsValid reports whether the box has non-negative extent in both axes.
func (b Box) IsValid() bool { return b.QHi >= b.QLo && b.THi >= b.TLo }

// Intersect returns the overlap of b and o.
func (b Box) Intersect(o Box) Box {
	return Box{
		QLo: max(b.QLo, o.QLo), QHi: min(b.QHi, o.QHi),
		TLo: max(b.TLo, o.TLo), THi: min(b.THi, o.THi),
	}
}

// roundDownToMultiple rounds a non-negative growth amount down to the
// nearest multiple of advance, so growing from a point already on an HSP
// word boundary leaves the result on a word boundary too. advance <= 1 is
// the simple-match case and needs no rounding.
func roundDownToMultiple(n, advance int) int {
	if advance <= 1 {
		return n
	}
	return n - n%advance
}

// Grow expands b by (q, t) in every direction, rounding q and t down to the
// nearest multiple of queryAdvance/targetAdvance first. original_source's
// SAR_Terminal_calculate_start_region/SAR_Terminal_calculate_end_region snap
// their growth the same way before trimming to the outer box, and assert
// the result lands on an HSP word boundary (sar.c's
// SAR_region_valid_hsp_entry/exit).
func (b Box) Grow(q, t, queryAdvance, targetAdvance int) Box {
	q = roundDownToMultiple(q, queryAdvance)
	t = roundDownToMultiple(t, targetAdvance)
	return Box{QLo: b.QLo - q, QHi: b.QHi + q, TLo: b.TLo - t, THi: b.THi + t}
}

// Region converts an inclusive Box to a region.Region.
func (b Box) Region() region.Region {
	return region.New(b.QLo, b.TLo, b.QHi-b.QLo+1, b.THi-b.TLo+1)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Terminal is a SAR start/end region: a region.Region to run Viterbi (or
// read a Terminal BoundMatrix) over, plus the Component already scored by
// the flanking HSP over the part of it this region overlaps.
type Terminal struct {
	Region    region.Region
	Component c4.Score
}

// ComputeStartTerminal builds the SAR region for an HSP's start terminal:
// the outer box runs from the sequence origin to the HSP's cobs point; the
// inner box is grown from that cobs point by internal residues into the
// HSP and external residues beyond the true origin, then trimmed to the
// outer box and to [0,maxQ]x[0,maxT]. Component is the HSP's own score
// already realised over the overlapping prefix, computed from MatchScore so
// callers never double-count it.
func ComputeStartTerminal(hsp *HSP, internalQ, externalQ, internalT, externalT int, maxQ, maxT int, hspQuality float64) (Terminal, bool) {
	outer := Box{QLo: 0, QHi: hsp.CobsQuery(), TLo: 0, THi: hsp.CobsTarget()}
	inner := Box{QLo: hsp.CobsQuery(), QHi: hsp.CobsQuery(), TLo: hsp.CobsTarget(), THi: hsp.CobsTarget()}
	grown := inner.Grow(max(internalQ, externalQ), max(internalT, externalT), hsp.QueryAdvance, hsp.TargetAdvance)
	bounds := Box{QLo: 0, QHi: maxQ, TLo: 0, THi: maxT}
	box := grown.Intersect(outer).Intersect(bounds)
	if !box.IsValid() {
		return Terminal{}, false
	}

	// The prefix absorbed into this region's component is however many
	// leading HSP steps fall strictly before box's query/target start.
	prefix := 0
	for prefix < hsp.Cobs {
		q, t := hsp.stepPos(prefix)
		if q >= box.QLo && t >= box.TLo {
			break
		}
		prefix++
	}
	var component c4.Score
	for i := 0; i < prefix; i++ {
		component = c4.Add(component, hsp.MatchScore(i))
	}
	if !hsp.quality(prefix, hsp.Cobs-prefix, hspQuality) {
		return Terminal{}, false
	}
	return Terminal{Region: box.Region(), Component: component}, true
}

// ComputeEndTerminal is the symmetric computation for an HSP's end
// terminal: the outer box runs from the HSP's cobs point to (maxQ, maxT).
func ComputeEndTerminal(hsp *HSP, internalQ, externalQ, internalT, externalT int, maxQ, maxT int, hspQuality float64) (Terminal, bool) {
	outer := Box{QLo: hsp.CobsQuery(), QHi: maxQ, TLo: hsp.CobsTarget(), THi: maxT}
	inner := Box{QLo: hsp.CobsQuery(), QHi: hsp.CobsQuery(), TLo: hsp.CobsTarget(), THi: hsp.CobsTarget()}
	grown := inner.Grow(max(internalQ, externalQ), max(internalT, externalT), hsp.QueryAdvance, hsp.TargetAdvance)
	bounds := Box{QLo: 0, QHi: maxQ, TLo: 0, THi: maxT}
	box := grown.Intersect(outer).Intersect(bounds)
	if !box.IsValid() {
		return Terminal{}, false
	}

	suffix := 0
	for suffix < hsp.Length-hsp.Cobs {
		q, t := hsp.stepPos(hsp.Length - suffix)
		if q <= box.QHi && t <= box.THi {
			break
		}
		suffix++
	}
	var component c4.Score
	for i := 0; i < suffix; i++ {
		component = c4.Add(component, hsp.MatchScore(hsp.Length-1-i))
	}
	if !hsp.quality(hsp.Cobs, hsp.Length-hsp.Cobs-suffix, hspQuality) {
		return Terminal{}, false
	}
	return Terminal{Region: box.Region(), Component: component}, true
}

// Join is a SAR join region spanning the gap between a src HSP's cobs point
// and a dst HSP's cobs point.
type Join struct {
	Region                     region.Region
	SrcComponent, DstComponent c4.Score
}

// ComputeJoin finds the mid-overlap split point between src and dst (the
// (qpos, tpos) pair maximising src's realised score up to that point plus
// dst's realised score from that point on, spec.md §4.H's "classical
// mid-point trick"), builds the join region between the two cobs points
// grown by internal/external ranges, and returns the components already
// scored by each HSP's half so a later bound/DP lookup over Region can
// subtract them back out.
func ComputeJoin(src, dst *HSP, internalQ, externalQ, internalT, externalT int, maxQ, maxT int, hspQuality float64) (Join, bool) {
	qlo, qhi := src.CobsQuery(), dst.CobsQuery()
	tlo, thi := src.CobsTarget(), dst.CobsTarget()
	if qhi < qlo || thi < tlo {
		return Join{}, false
	}

	// Overlap, if any, is the trailing part of src and leading part of dst
	// that both cover the same stretch; search it for the best split.
	overlapSteps := 0
	if src.Cobs < src.Length && dst.Cobs > 0 {
		overlapSteps = min(src.Length-src.Cobs, dst.Cobs)
	}
	srcTrim, dstTrim := 0, 0 // steps trimmed off src's tail / dst's head
	if overlapSteps > 0 {
		best := c4.ImpossiblyLow
		var srcPrefix c4.Score
		for k := 0; k <= overlapSteps; k++ {
			var dstSuffix c4.Score
			for j := k; j < overlapSteps; j++ {
				dstSuffix = c4.Add(dstSuffix, dst.MatchScore(j))
			}
			cand := c4.Add(srcPrefix, dstSuffix)
			if cand > best {
				best = cand
				srcTrim = overlapSteps - k
				dstTrim = k
			}
			srcPrefix = c4.Add(srcPrefix, src.MatchScore(src.Cobs+k))
		}
	}

	outer := Box{QLo: qlo, QHi: qhi, TLo: tlo, THi: thi}
	// src and dst share the same step grid in every model this package
	// serves (spec.md §4.H's join only pairs HSPs from the same alphabet
	// pairing), so src's advances round both axes.
	grown := outer.Grow(max(internalQ, externalQ), max(internalT, externalT), src.QueryAdvance, src.TargetAdvance)
	bounds := Box{QLo: 0, QHi: maxQ, TLo: 0, THi: maxT}
	box := grown.Intersect(bounds)
	if !box.IsValid() {
		return Join{}, false
	}

	var srcComponent, dstComponent c4.Score
	for i := 0; i < srcTrim; i++ {
		srcComponent = c4.Add(srcComponent, src.MatchScore(src.Length-1-i))
	}
	for i := 0; i < dstTrim; i++ {
		dstComponent = c4.Add(dstComponent, dst.MatchScore(i))
	}
	if !src.quality(src.Cobs, src.Length-src.Cobs-srcTrim, hspQuality) ||
		!dst.quality(dstTrim, dst.Cobs-dstTrim, hspQuality) {
		return Join{}, false
	}
	return Join{Region: box.Region(), SrcComponent: srcComponent, DstComponent: dstComponent}, true
}
