package gam

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/models"
	"github.com/katalvlaran/gappedaligner/internal/scoring"
	"github.com/katalvlaran/gappedaligner/internal/viterbi"
)

func validArgs() Args {
	return Args{
		Model:   models.Ungapped,
		BestN:   1,
		Quality: 0.5,
	}
}

func TestArgsValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(a *Args)
		wantErr bool
	}{
		{"valid", func(a *Args) {}, false},
		{"percent too low", func(a *Args) { a.Percent = -1 }, true},
		{"percent too high", func(a *Args) { a.Percent = 101 }, true},
		{"negative refinement boundary", func(a *Args) { a.RefinementBoundary = -1 }, true},
		{"negative join filter", func(a *Args) { a.JoinFilter = -1 }, true},
		{"quality too high", func(a *Args) { a.Quality = 150 }, true},
		{"negative terminal range", func(a *Args) { a.TerminalRangeInternal = -1 }, true},
		{"unknown refinement", func(a *Args) { a.Refinement = RefineMode(99) }, true},
		{"negative memory limit", func(a *Args) { a.TracebackMemoryLimit = -1 }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := validArgs()
			c.mutate(&a)
			err := a.Validate()
			if c.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func scoreAln(s int64) *c4.Alignment { return &c4.Alignment{Score: c4.Score(s)} }

func TestBestNStateTieAndEvictRule(t *testing.T) {
	st := newBestNState()
	st.submit(scoreAln(10), 2)
	st.submit(scoreAln(10), 2) // ties the worst: both kept even though bestN==2 already full
	st.submit(scoreAln(8), 2)  // worse than worst(10) but heap already at tieCount==2>=bestN: dropped
	st.submit(scoreAln(12), 2) // better than worst: admitted; only 1 entry sits above the 10-tier (< bestN), so no eviction
	out := st.drain()
	require.Len(t, out, 3)
	require.Equal(t, c4.Score(12), out[0].Score)
}

func TestBestNStateUnboundedKeepsEverything(t *testing.T) {
	st := newBestNState()
	st.submit(scoreAln(1), 0)
	st.submit(scoreAln(5), 0)
	st.submit(scoreAln(3), 0)
	out := st.drain()
	require.Len(t, out, 3)
	require.Equal(t, []c4.Score{5, 3, 1}, []c4.Score{out[0].Score, out[1].Score, out[2].Score})
}

func dnaCtx(query, target string) *scoring.Context {
	return &scoring.Context{
		Query:     &scoring.Sequence{ID: "q", Symbols: []byte(query)},
		Target:    &scoring.Sequence{ID: "t", Symbols: []byte(target)},
		DNASubmat: scoring.SimpleDNA(5, -4),
	}
}

func TestGAMSubmitExhaustiveMatch(t *testing.T) {
	ctx := dnaCtx("ACGT", "ACGT")
	built, err := models.Open(models.Ungapped, "dna", "dna", ctx)
	require.NoError(t, err)

	g, err := New(built, ctx, Args{Model: models.Ungapped, BestN: 1}, Options{})
	require.NoError(t, err)

	require.NoError(t, g.Submit(ctx.Query, ctx.Target, nil))
	out := g.Report()
	require.Len(t, out, 1)
	require.Equal(t, c4.Score(20), out[0].Score)
}

func TestGAMSubmitExhaustiveBelowThresholdYieldsNothing(t *testing.T) {
	ctx := dnaCtx("ACGT", "ACGT")
	built, err := models.Open(models.Ungapped, "dna", "dna", ctx)
	require.NoError(t, err)

	g, err := New(built, ctx, Args{Model: models.Ungapped, BestN: 1, Score: 1000}, Options{})
	require.NoError(t, err)

	require.NoError(t, g.Submit(ctx.Query, ctx.Target, nil))
	require.Empty(t, g.Report())
}

func TestGAMNewRejectsInvalidArgs(t *testing.T) {
	ctx := dnaCtx("ACGT", "ACGT")
	built, err := models.Open(models.Ungapped, "dna", "dna", ctx)
	require.NoError(t, err)

	_, err = New(built, ctx, Args{Percent: -1}, Options{})
	require.Error(t, err)
}

func TestSelfScoreSumSumsDiagonal(t *testing.T) {
	ctx := dnaCtx("ACGT", "ACGT")
	require.Equal(t, c4.Score(20), selfScoreSum(ctx, ctx.Query))
}

func TestOpsFromPathCollapsesRuns(t *testing.T) {
	path := []viterbi.PathStep{
		{Transition: c4.NoID, QueryPos: 0, TargetPos: 0},
		{Transition: 1, QueryPos: 1, TargetPos: 1},
		{Transition: 1, QueryPos: 2, TargetPos: 2},
		{Transition: 2, QueryPos: 2, TargetPos: 3},
		{Transition: 1, QueryPos: 3, TargetPos: 4},
	}
	ops := opsFromPath(path)
	require.Equal(t, []c4.Operation{
		{Transition: 1, Length: 2},
		{Transition: 2, Length: 1},
		{Transition: 1, Length: 1},
	}, ops)
}

func TestBoundingRegionFromPath(t *testing.T) {
	path := []viterbi.PathStep{
		{QueryPos: 2, TargetPos: 3},
		{QueryPos: 5, TargetPos: 1},
		{QueryPos: 4, TargetPos: 7},
	}
	reg := boundingRegionFromPath(path)
	require.Equal(t, 2, reg.QueryStart)
	require.Equal(t, 1, reg.TargetStart)
	require.Equal(t, 3, reg.QueryLength)
	require.Equal(t, 6, reg.TargetLength)
}
