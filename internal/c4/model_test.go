package c4

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/katalvlaran/gappedaligner/internal/engineerr"
	"github.com/stretchr/testify/require"
)

// buildEditDistance constructs the trivial "edit distance" model used by
// scenario S1 in spec.md §8: one match state, match scores 0, indels score
// -1, global start/end (CORNER scope).
func buildEditDistance(t *testing.T) *Model {
	t.Helper()
	m := Create("edit_distance")
	match, err := m.AddState("match")
	require.NoError(t, err)

	zero, err := m.AddCalc("zero", 0, nil, nil, nil, ProtectNone)
	require.NoError(t, err)
	indel, err := m.AddCalc("indel", -1, func(int, int) Score { return -1 }, nil, nil, ProtectNone)
	require.NoError(t, err)

	_, err = m.AddTransition("match", NoID, match, 1, 1, zero, LabelMatch, &Match{})
	require.NoError(t, err)
	_, err = m.AddTransition("query_gap", match, match, 1, 0, indel, LabelGap, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("target_gap", match, match, 0, 1, indel, LabelGap, nil)
	require.NoError(t, err)
	_, err = m.AddTransition("end", match, NoID, 0, 0, zero, LabelNone, nil)
	require.NoError(t, err)

	m.ConfigureStartState(ScopeCorner, nil)
	m.ConfigureEndState(ScopeCorner, nil)
	require.NoError(t, m.Close())
	return m
}

func TestCloseComputesAdvancesAndRejectsMutation(t *testing.T) {
	m := buildEditDistance(t)
	require.Equal(t, 1, m.MaxQueryAdvance())
	require.Equal(t, 1, m.MaxTargetAdvance())
	require.False(t, m.IsOpen())

	_, err := m.AddState("extra")
	require.Error(t, err)
	var ce *engineerr.Error
	require.True(t, errors.As(err, &ce))
	require.Equal(t, engineerr.KindModelInvariantViolated, ce.Kind)
}

func TestAddTransitionRejectsDegenerateTransition(t *testing.T) {
	m := Create("bad")
	s, _ := m.AddState("s")
	_, err := m.AddTransition("start", NoID, s, 0, 0, NoID, LabelNone, nil)
	require.Error(t, err, "AddTransition itself should reject the degenerate transition")
}

func TestCloseRejectsOrphanState(t *testing.T) {
	m := Create("orphan")
	_, err := m.AddState("lonely")
	require.NoError(t, err)
	zero, _ := m.AddCalc("zero", 0, nil, nil, nil, ProtectNone)
	_, err = m.AddTransition("direct", NoID, NoID, 1, 1, zero, LabelNone, nil)
	require.NoError(t, err)
	err = m.Close()
	require.Error(t, err)
	require.True(t, errors.Is(err, engineerr.ErrModelInvariantViolated))
}

func TestPathIsPossible(t *testing.T) {
	m := buildEditDistance(t)
	match, _ := m.SelectSingleTransition(LabelMatch)
	require.True(t, m.PathIsPossible(m.StartState(), m.Transition(match).Output))
}

func TestCopyIsIndependent(t *testing.T) {
	m := buildEditDistance(t)
	cp, err := m.Copy()
	require.NoError(t, err)
	require.Equal(t, m.MaxQueryAdvance(), cp.MaxQueryAdvance())
	require.Equal(t, len(m.Transitions()), len(cp.Transitions()))
}

func TestDerivedModelTransitionMapRoundTrips(t *testing.T) {
	m := buildEditDistance(t)
	matchT, _ := m.SelectSingleTransition(LabelMatch)
	match := m.Transition(matchT).Output

	dm, err := CreateDerivedModel(m, match, match, ScopeAnywhere, nil, ScopeAnywhere, nil)
	require.NoError(t, err)
	require.NotEmpty(t, dm.Derived.Transitions())

	var derivedGapID TransitionID = -1
	for i, tr := range dm.Derived.Transitions() {
		if tr.Label == LabelGap {
			derivedGapID = TransitionID(i)
			break
		}
	}
	require.NotEqual(t, TransitionID(-1), derivedGapID)

	derivedAlignment := &Alignment{
		Operations: []Operation{{Transition: derivedGapID, Length: 3}},
		Model:      dm.Derived,
	}
	imported := ImportDerived(dm, derivedAlignment)
	require.Equal(t, m, imported.Model)
	originalID := dm.TransitionMap[derivedGapID]
	require.Equal(t, LabelGap, m.Transition(originalID).Label)
	require.Equal(t, imported.Operations[0].Transition, originalID)

	want := &Alignment{
		Operations: []Operation{{Transition: originalID, Length: 3}},
		Model:      m,
	}
	if diff := cmp.Diff(want, imported, cmpopts.IgnoreFields(Alignment{}, "Model")); diff != "" {
		t.Fatalf("alignment imported from derived model mismatch (-want +got):\n%s", diff)
	}
}
