package hpair

import (
	"testing"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/heuristic"
)

// buildUngappedModel is a minimal closed C4 model: Start -match-> Match
// -match-> ... -> End, with a query/target self-loop span so a gap between
// two HSPs is admissible. Scored +2 per match step.
func buildUngappedModel(t *testing.T) (*c4.Model, c4.StateID) {
	t.Helper()
	m := c4.Create("hpair-test")
	matchCalc, err := m.AddCalc("match", 2, func(int, int) c4.Score { return 2 }, nil, nil, c4.ProtectNone)
	if err != nil {
		t.Fatal(err)
	}
	gapCalc, err := m.AddCalc("gap", 0, func(int, int) c4.Score { return -1 }, nil, nil, c4.ProtectNone)
	if err != nil {
		t.Fatal(err)
	}
	zeroCalc, err := m.AddCalc("zero", 0, nil, nil, nil, c4.ProtectNone)
	if err != nil {
		t.Fatal(err)
	}
	matchState, err := m.AddState("match")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddTransition("enter", c4.NoID, matchState, 1, 1, matchCalc, c4.LabelMatch, &c4.Match{}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddTransition("leave", matchState, c4.NoID, 0, 0, zeroCalc, c4.LabelNone, nil); err != nil {
		t.Fatal(err)
	}
	qLoop, err := m.AddTransition("qgap", matchState, matchState, 1, 0, gapCalc, c4.LabelNone, nil)
	if err != nil {
		t.Fatal(err)
	}
	tLoop, err := m.AddTransition("tgap", matchState, matchState, 0, 1, gapCalc, c4.LabelNone, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddSpan("gap", matchState, 0, 1000, 0, 1000, qLoop, tLoop); err != nil {
		t.Fatal(err)
	}
	m.ConfigureStartState(c4.ScopeAnywhere, nil)
	m.ConfigureEndState(c4.ScopeAnywhere, nil)
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	return m, matchState
}

func twoHSP() []*heuristic.HSP {
	mk := func(qs, ts, length, cobs int) *heuristic.HSP {
		return &heuristic.HSP{
			QueryStart: qs, TargetStart: ts, QueryAdvance: 1, TargetAdvance: 1,
			Length: length, Cobs: cobs, Score: c4.Score(length) * 2,
			MatchScore: func(int) c4.Score { return 2 },
			SelfScore:  func(int) c4.Score { return 2 },
		}
	}
	return []*heuristic.HSP{mk(0, 0, 5, 2), mk(10, 10, 5, 3)}
}

func TestNewHeuristicBuildsAllMatrices(t *testing.T) {
	model, matchState := buildUngappedModel(t)
	matches := []MatchState{{State: matchState, QueryAdvance: 1, TargetAdvance: 1}}
	h, err := NewHeuristic(model, matches, Config{
		InternalQuery: 2, ExternalQuery: 2, InternalTarget: 2, ExternalTarget: 2,
		JoinFilter: 4, Threshold: 0, MaxQuery: 20, MaxTarget: 20,
	})
	if err != nil {
		t.Fatalf("NewHeuristic: %v", err)
	}
	if h.startBound[matchState] == nil || h.endBound[matchState] == nil {
		t.Fatal("expected terminal bounds for the match state")
	}
	if h.joinBound[[2]c4.StateID{matchState, matchState}] == nil {
		t.Fatal("expected a join bound for (match, match)")
	}
}

func TestHPairFindsAnAlignment(t *testing.T) {
	model, matchState := buildUngappedModel(t)
	matches := []MatchState{{State: matchState, QueryAdvance: 1, TargetAdvance: 1}}
	h, err := NewHeuristic(model, matches, Config{
		InternalQuery: 2, ExternalQuery: 2, InternalTarget: 2, ExternalTarget: 2,
		JoinFilter: 4, Threshold: c4.ImpossiblyLow, MaxQuery: 20, MaxTarget: 20,
	})
	if err != nil {
		t.Fatalf("NewHeuristic: %v", err)
	}
	hsps := twoHSP()
	hp := New(h, nil, []HSPSet{{Match: matches[0], HSPs: hsps}})

	aln, ok := hp.NextPath(c4.ImpossiblyLow)
	if !ok {
		t.Fatal("expected at least one alignment")
	}
	if aln.Score <= 0 {
		t.Fatalf("expected a positive-scoring alignment, got %d", aln.Score)
	}
	if len(aln.Operations) == 0 {
		t.Fatal("expected at least one traced operation")
	}
}
