package c4

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTwoStateOpenModel(t *testing.T) (*Model, StateID, StateID) {
	t.Helper()
	m := Create("insertable")
	mid, err := m.AddState("mid")
	require.NoError(t, err)
	zero, _ := m.AddCalc("zero", 0, nil, nil, nil, ProtectNone)
	_, err = m.AddTransition("enter", NoID, mid, 1, 1, zero, LabelMatch, &Match{})
	require.NoError(t, err)
	_, err = m.AddTransition("leave", mid, NoID, 0, 0, zero, LabelNone, nil)
	require.NoError(t, err)
	return m, m.StartState(), mid
}

func TestInsertSplicesSubModelBetweenStates(t *testing.T) {
	target, _, mid := buildTwoStateOpenModel(t)

	insert := Create("utr")
	utrState, err := insert.AddState("utr_state")
	require.NoError(t, err)
	penalty, _ := insert.AddCalc("utr_penalty", 0, func(int, int) Score { return -2 }, nil, nil, ProtectNone)
	_, err = insert.AddTransition("into_utr", NoID, utrState, 0, 1, penalty, LabelNone, nil)
	require.NoError(t, err)
	_, err = insert.AddTransition("out_of_utr", utrState, NoID, 0, 0, penalty, LabelNone, nil)
	require.NoError(t, err)

	endState, err := target.AddState("inserted_end")
	require.NoError(t, err)
	require.NoError(t, Insert(target, insert, mid, endState))

	require.NoError(t, target.Close())
	require.True(t, target.PathIsPossible(mid, endState))
}

func TestMakeStereoProducesTwoIndependentCopies(t *testing.T) {
	m := buildEditDistance(t)
	a, b, err := m.MakeStereo("_5prime", "_3prime")
	require.NoError(t, err)
	require.Equal(t, "edit_distance_5prime", a.Name)
	require.Equal(t, "edit_distance_3prime", b.Name)
	require.Equal(t, len(m.Transitions()), len(a.Transitions()))
	require.Equal(t, len(m.Transitions()), len(b.Transitions()))
}
