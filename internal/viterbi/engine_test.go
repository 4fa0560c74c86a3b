package viterbi

import (
	"testing"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/region"
	"github.com/stretchr/testify/require"
)

// buildEditDistance constructs the global Levenshtein-style model used by
// spec.md §8 scenario S1: one match state with a self-loop that scores 0 on
// an identical pair and -1 otherwise, plus self-loop query/target gaps at
// -1, entered and exited through zero-cost (0,0) bookend transitions so the
// model carries a single non-distinguished state (corner-to-corner global
// alignment).
func buildEditDistance(t *testing.T, query, target []byte) *c4.Model {
	t.Helper()
	m := c4.Create("edit_distance")
	match, err := m.AddState("match")
	require.NoError(t, err)

	zero, err := m.AddCalc("zero", 0, nil, nil, nil, c4.ProtectNone)
	require.NoError(t, err)
	subst, err := m.AddCalc("subst", 0, func(qpos, tpos int) c4.Score {
		if query[qpos-1] == target[tpos-1] {
			return 0
		}
		return -1
	}, nil, nil, c4.ProtectNone)
	require.NoError(t, err)
	indel, err := m.AddCalc("indel", -1, func(int, int) c4.Score { return -1 }, nil, nil, c4.ProtectNone)
	require.NoError(t, err)

	_, err = m.AddTransition("enter", c4.NoID, match, 0, 0, zero, c4.LabelNone, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("subst", match, match, 1, 1, subst, c4.LabelMatch, &c4.Match{})
	require.NoError(t, err)
	_, err = m.AddTransition("query_gap", match, match, 1, 0, indel, c4.LabelGap, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("target_gap", match, match, 0, 1, indel, c4.LabelGap, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("exit", match, c4.NoID, 0, 0, zero, c4.LabelNone, nil)
	require.NoError(t, err)

	m.ConfigureStartState(c4.ScopeCorner, nil)
	m.ConfigureEndState(c4.ScopeCorner, nil)
	require.NoError(t, m.Close())
	return m
}

func TestCalculateEditDistanceScenarioS1(t *testing.T) {
	query := []byte("gtgcactacgtacgtnatcgtgcttnaacgcgtacgtgatngtgcttgaacgtacgtacgtgatcgtgcttga")
	target := []byte("actacgtacgtgatcgtgcaacgcactacgtacgtgancttgaacgcactacgtacgtgatcgtgcntgaacgn")
	m := buildEditDistance(t, query, target)
	reg := region.New(0, 0, len(query), len(target))

	scoreRes, err := Calculate(m, reg, nil, ModeScore, Options{})
	require.NoError(t, err)
	require.Equal(t, c4.Score(-23), scoreRes.Score)

	pathRes, err := Calculate(m, reg, nil, ModePath, Options{})
	require.NoError(t, err)
	require.Equal(t, scoreRes.Score, pathRes.Score)
	require.NotEmpty(t, pathRes.Path)
	require.Equal(t, m.StartState(), pathRes.Path[0].State)
	last := pathRes.Path[len(pathRes.Path)-1]
	require.Equal(t, m.EndState(), last.State)
	require.Equal(t, len(query), last.QueryPos)
	require.Equal(t, len(target), last.TargetPos)
}

func TestCalculateCheckpointedMatchesFullPath(t *testing.T) {
	query := []byte("gtgcactacgtacgtnatcgtgcttnaacgcgtacgtgatngtgcttgaacgtacgtacgtgatcgtgcttga")
	target := []byte("actacgtacgtgatcgtgcaacgcactacgtacgtgancttgaacgcactacgtacgtgatcgtgcntgaacgn")
	m := buildEditDistance(t, query, target)
	reg := region.New(0, 0, len(query), len(target))

	full, err := Calculate(m, reg, nil, ModePath, Options{})
	require.NoError(t, err)

	// A tiny memory limit forces a handful of sections across the target
	// dimension; the stitched path must land on the identical score.
	checkpointed, err := Calculate(m, reg, nil, ModeCheckpoints, Options{MemoryLimit: 4096})
	require.NoError(t, err)
	require.Equal(t, full.Score, checkpointed.Score)
	require.Equal(t, len(full.Path), len(checkpointed.Path))
}

func TestCalculateRegionRejectsOpenModel(t *testing.T) {
	m := c4.Create("open")
	_, err := Calculate(m, region.New(0, 0, 1, 1), nil, ModeScore, Options{})
	require.Error(t, err)
}

func TestCalculateUnreachableWhenScopeImpossible(t *testing.T) {
	// A state reachable from Start only via a query-advancing transition,
	// feeding straight into End with a (0,0) transition, can never satisfy
	// a corner end scope over a region with nonzero target length.
	m := c4.Create("no_target_consumption")
	a, err := m.AddState("a")
	require.NoError(t, err)
	zero, err := m.AddCalc("zero", 0, nil, nil, nil, c4.ProtectNone)
	require.NoError(t, err)
	_, err = m.AddTransition("enter", c4.NoID, a, 1, 0, zero, c4.LabelNone, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("exit", a, c4.NoID, 0, 0, zero, c4.LabelNone, nil)
	require.NoError(t, err)
	m.ConfigureStartState(c4.ScopeCorner, nil)
	m.ConfigureEndState(c4.ScopeCorner, nil)
	require.NoError(t, m.Close())

	reg := region.New(0, 0, 1, 1)
	res, err := Calculate(m, reg, nil, ModeScore, Options{})
	require.Error(t, err)
	require.False(t, res.Reached)
}
