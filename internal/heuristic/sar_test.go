package heuristic

import "testing"

import "github.com/katalvlaran/gappedaligner/internal/c4"

func simpleHSP(qStart, tStart, length, cobs int, perStep c4.Score) *HSP {
	return &HSP{
		QueryStart: qStart, TargetStart: tStart,
		QueryAdvance: 1, TargetAdvance: 1,
		Length: length, Cobs: cobs,
		Score:      c4.Score(length) * perStep,
		MatchScore: func(int) c4.Score { return perStep },
		SelfScore:  func(int) c4.Score { return perStep },
	}
}

func TestComputeStartTerminalProducesValidRegion(t *testing.T) {
	hsp := simpleHSP(5, 5, 10, 4, 2)
	term, ok := ComputeStartTerminal(hsp, 2, 2, 2, 2, 20, 20, 0)
	if !ok {
		t.Fatal("expected a valid start terminal region")
	}
	if term.Region.QueryEnd() > hsp.CobsQuery() || term.Region.TargetEnd() > hsp.CobsTarget() {
		t.Fatalf("start terminal must not extend past the HSP's cobs point: %+v vs cobs (%d,%d)",
			term.Region, hsp.CobsQuery(), hsp.CobsTarget())
	}
}

func TestComputeEndTerminalProducesValidRegion(t *testing.T) {
	hsp := simpleHSP(5, 5, 10, 6, 2)
	term, ok := ComputeEndTerminal(hsp, 2, 2, 2, 2, 20, 20, 0)
	if !ok {
		t.Fatal("expected a valid end terminal region")
	}
	if term.Region.QueryStart < hsp.CobsQuery() || term.Region.TargetStart < hsp.CobsTarget() {
		t.Fatalf("end terminal must not start before the HSP's cobs point: %+v vs cobs (%d,%d)",
			term.Region, hsp.CobsQuery(), hsp.CobsTarget())
	}
}

func TestHSPQualityFilterRejectsPoorLeftover(t *testing.T) {
	hsp := &HSP{
		QueryStart: 0, TargetStart: 0, QueryAdvance: 1, TargetAdvance: 1,
		Length: 10, Cobs: 2, Score: 20,
		MatchScore: func(step int) c4.Score {
			if step < 4 {
				return -5 // poor leftover before cobs
			}
			return 2
		},
		SelfScore: func(int) c4.Score { return 10 },
	}
	// Quality threshold of 90% should reject a leftover averaging -50%.
	if hsp.quality(0, 2, 90) {
		t.Fatal("expected a poor-quality leftover to fail the quality filter")
	}
	if !hsp.quality(0, 2, 0) {
		t.Fatal("a zero quality threshold should never reject")
	}
}

func codonHSP(qStart, tStart, length, cobs int, perStep c4.Score) *HSP {
	return &HSP{
		QueryStart: qStart, TargetStart: tStart,
		QueryAdvance: 3, TargetAdvance: 1,
		Length: length, Cobs: cobs,
		Score:      c4.Score(length) * perStep,
		MatchScore: func(int) c4.Score { return perStep },
		SelfScore:  func(int) c4.Score { return perStep },
	}
}

// TestComputeStartTerminalRespectsWordBoundary covers spec.md's Testable
// Property #6 for a non-degenerate (codon-advance) HSP: the grown-and-
// trimmed region corner must still land on a multiple of the HSP's advances
// from its cobs point, not just at QueryAdvance == TargetAdvance == 1.
func TestComputeStartTerminalRespectsWordBoundary(t *testing.T) {
	hsp := codonHSP(30, 10, 10, 4, 2)
	term, ok := ComputeStartTerminal(hsp, 5, 5, 5, 5, 60, 60, 0)
	if !ok {
		t.Fatal("expected a valid start terminal region")
	}
	queryWidth := hsp.CobsQuery() - term.Region.QueryStart
	targetWidth := hsp.CobsTarget() - term.Region.TargetStart
	if queryWidth%hsp.QueryAdvance != 0 {
		t.Fatalf("query width %d is not a multiple of QueryAdvance %d", queryWidth, hsp.QueryAdvance)
	}
	if targetWidth%hsp.TargetAdvance != 0 {
		t.Fatalf("target width %d is not a multiple of TargetAdvance %d", targetWidth, hsp.TargetAdvance)
	}
}

func TestComputeJoinFindsValidSplit(t *testing.T) {
	src := simpleHSP(0, 0, 10, 6, 3)
	dst := simpleHSP(8, 8, 10, 2, 3)
	join, ok := ComputeJoin(src, dst, 2, 2, 2, 2, 30, 30, 0)
	if !ok {
		t.Fatal("expected a valid join region")
	}
	if join.Region.QueryStart > src.CobsQuery() || join.Region.QueryEnd() < dst.CobsQuery() {
		t.Fatalf("join region should span from src cobs to dst cobs: %+v", join.Region)
	}
}
