package sdp

import (
	"testing"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/region"
	"github.com/katalvlaran/gappedaligner/internal/subopt"
)

func TestLookaheadSetGetMoveNext(t *testing.T) {
	l := NewLookahead[int](3)
	if !l.Set(0, 10) {
		t.Fatal("Set(0) should succeed on a fresh window")
	}
	if !l.Set(2, 12) {
		t.Fatal("Set(2) should succeed within the window")
	}
	if l.Set(4, 99) {
		t.Fatal("Set(4) should fail, 4 is outside maxAdvance=3")
	}
	if v, ok := l.Get(2); !ok || v != 12 {
		t.Fatalf("Get(2) = %d, %v; want 12, true", v, ok)
	}
	if got := l.Occupied(); len(got) != 2 {
		t.Fatalf("Occupied() = %v, want 2 entries", got)
	}

	l.Move(2)
	if v, ok := l.Get(2); !ok || v != 12 {
		t.Fatalf("after Move(2), Get(2) = %d, %v; want 12, true (retained)", v, ok)
	}
	if _, ok := l.Get(0); ok {
		t.Fatal("after Move(2), Get(0) should be gone (evicted)")
	}
	if !l.Set(5, 50) {
		t.Fatal("Set(5) should now succeed, base=2 and maxAdvance=3 covers up to 5")
	}
}

func TestLookaheadNextAdvancesToNextOccupied(t *testing.T) {
	l := NewLookahead[int](4)
	l.Set(3, 30)
	base, found := l.Next()
	if !found || base != 3 {
		t.Fatalf("Next() = %d, %v; want 3, true", base, found)
	}
	if v, ok := l.Get(3); !ok || v != 30 {
		t.Fatalf("Get(3) after Next = %d, %v; want 30, true", v, ok)
	}
}

func TestBoundaryInsertMergesAdjacentSameSeedRuns(t *testing.T) {
	b := NewBoundary()
	b.Insert(Interval{Lo: 0, Hi: 3, SeedID: 1})
	b.Insert(Interval{Lo: 4, Hi: 6, SeedID: 1})
	b.Insert(Interval{Lo: 10, Hi: 12, SeedID: 2})

	runs := b.Select(0, 20)
	if len(runs) != 2 {
		t.Fatalf("expected 2 merged runs, got %d: %+v", len(runs), runs)
	}
	var seed1 Interval
	for _, r := range runs {
		if r.SeedID == 1 {
			seed1 = r
		}
	}
	if seed1.Lo != 0 || seed1.Hi != 6 {
		t.Fatalf("seed 1's runs should have merged into [0,6], got %+v", seed1)
	}
}

func TestBoundaryInvalidateSplitsOverlappingRuns(t *testing.T) {
	b := NewBoundary()
	b.Insert(Interval{Lo: 0, Hi: 10, SeedID: 1})
	b.Invalidate(4, 6)

	runs := b.Select(0, 10)
	if len(runs) != 2 {
		t.Fatalf("expected run split into 2 pieces, got %d: %+v", len(runs), runs)
	}
	for _, r := range runs {
		if r.Lo <= 6 && r.Hi >= 4 {
			t.Fatalf("invalidated range [4,6] should not remain in %+v", r)
		}
	}
}

func TestSTracebackCollapsesRunsAndLinearizes(t *testing.T) {
	tb := NewSTraceback()
	id := tb.Root()
	id = tb.Extend(id, 7)
	id = tb.Extend(id, 7)
	id = tb.Extend(id, 7)
	id = tb.Extend(id, 9)

	ops := tb.Linearize(id)
	if len(ops) != 2 {
		t.Fatalf("expected run-length collapse into 2 operations, got %d: %+v", len(ops), ops)
	}
	if ops[0].Transition != 7 || ops[0].Length != 3 {
		t.Fatalf("first op should be (7, len 3), got %+v", ops[0])
	}
	if ops[1].Transition != 9 || ops[1].Length != 1 {
		t.Fatalf("second op should be (9, len 1), got %+v", ops[1])
	}
}

func TestSTracebackRetainFreezesSharedCell(t *testing.T) {
	tb := NewSTraceback()
	shared := tb.Extend(tb.Root(), 1)
	tb.Retain(shared)

	forkA := tb.Extend(shared, 1)
	if forkA != shared {
		t.Fatal("Extend on a retained (shared) cell must not grow it in place")
	}

	opsA := tb.Linearize(forkA)
	if len(opsA) != 2 {
		t.Fatalf("fork should see 2 separate run entries once shared cell is frozen, got %d: %+v", len(opsA), opsA)
	}
}

func TestSparseCacheRecordBestForget(t *testing.T) {
	sc := NewSparseCache()
	sp := &c4.Span{MinQuery: 0, MaxQuery: 100, MinTarget: 0, MaxTarget: 100}

	sc.Record(1, 10, 10, 5, 0)
	sc.Record(1, 12, 50, 9, 0)

	best, found := sc.Best(1, sp, 20, 60)
	if !found {
		t.Fatal("expected a best entry")
	}
	if best.score != 9 {
		t.Fatalf("expected the higher-scoring entry (9), got %d", best.score)
	}

	sc.Forget(1, 0, 20, 0, 60)
	if _, found := sc.Best(1, sp, 20, 60); found {
		t.Fatal("expected Forget to remove both entries in range")
	}
}

// buildLinearModel is a minimal closed model: Start --enter--> M --step-->
// M (self-loop, +2 per step) --leave--> End, plus a query/target self-loop
// span on M so Scheduler can exercise span-history bridging too.
func buildLinearModel(t *testing.T) (*c4.Model, c4.StateID) {
	t.Helper()
	m := c4.Create("sdp-test")
	stepCalc, err := m.AddCalc("step", 2, func(int, int) c4.Score { return 2 }, nil, nil, c4.ProtectNone)
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
	mid, err := m.AddState("mid")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddTransition("enter", c4.NoID, mid, 1, 1, stepCalc, c4.LabelMatch, &c4.Match{}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddTransition("step", mid, mid, 1, 1, stepCalc, c4.LabelMatch, &c4.Match{}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddTransition("leave", mid, c4.NoID, 0, 0, zeroCalc, c4.LabelNone, nil); err != nil {
		t.Fatal(err)
	}
	qLoop, err := m.AddTransition("qgap", mid, mid, 1, 0, gapCalc, c4.LabelNone, nil)
	if err != nil {
		t.Fatal(err)
	}
	tLoop, err := m.AddTransition("tgap", mid, mid, 0, 1, gapCalc, c4.LabelNone, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddSpan("gap", mid, 0, 1000, 0, 1000, qLoop, tLoop); err != nil {
		t.Fatal(err)
	}
	m.ConfigureStartState(c4.ScopeAnywhere, nil)
	m.ConfigureEndState(c4.ScopeAnywhere, nil)
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	return m, mid
}

func TestSchedulerRunReachesEnd(t *testing.T) {
	model, mid := buildLinearModel(t)
	reg := region.New(0, 0, 20, 20)
	sched := NewScheduler(model, Config{Region: reg, Direction: Forward}, subopt.New())

	seeds := []Seed{{SeedID: 1, State: mid, QueryPos: 2, TargetPos: 2, Score: 4}}
	result := sched.Run(seeds)

	if !result.Reached {
		t.Fatal("expected the forward pass to reach the model's End state")
	}
	if result.Score <= 4 {
		t.Fatalf("expected a score greater than the seed's own (4), got %d", result.Score)
	}
	if len(result.Operations) == 0 {
		t.Fatal("expected at least one traced operation")
	}
}

func TestSchedulerRunReverse(t *testing.T) {
	model, mid := buildLinearModel(t)
	reg := region.New(0, 0, 20, 20)
	sched := NewScheduler(model, Config{Region: reg, Direction: Reverse}, nil)

	seeds := []Seed{{SeedID: 1, State: mid, QueryPos: 10, TargetPos: 10, Score: 4}}
	result := sched.Run(seeds)

	if !result.Reached {
		t.Fatal("expected the reverse pass to reach the model's Start state")
	}
	if result.EndQuery > 10 || result.EndTarget > 10 {
		t.Fatalf("reverse pass should only move toward smaller coordinates, got (%d,%d)", result.EndQuery, result.EndTarget)
	}
}

func TestSchedulerInvalidateDropsBoundaryAndSpanHistory(t *testing.T) {
	model, mid := buildLinearModel(t)
	reg := region.New(0, 0, 20, 20)
	sched := NewScheduler(model, Config{Region: reg, Direction: Forward}, nil)

	seeds := []Seed{{SeedID: 1, State: mid, QueryPos: 2, TargetPos: 2, Score: 4}}
	sched.Run(seeds)

	if len(sched.Bound.Select(0, 20)) == 0 {
		t.Fatal("expected Boundary to record touched cells after Run")
	}
	sched.Invalidate(0, 20, 0, 20)
	if len(sched.Bound.Select(0, 20)) != 0 {
		t.Fatal("expected Invalidate to drop every boundary run in range")
	}
}
