package rangeindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryRectangle(t *testing.T) {
	tree := Build([]Point[int]{
		{Query: 1, Target: 1, Payload: 10},
		{Query: 2, Target: 5, Payload: 20},
		{Query: 3, Target: 2, Payload: 30},
		{Query: 10, Target: 10, Payload: 40},
	})
	got := tree.Query(1, 3, 0, 4)
	assert.Len(t, got, 2)
	for _, p := range got {
		assert.NotEqual(t, 40, p.Payload)
		assert.NotEqual(t, 20, p.Payload)
	}
}

func TestAnyShortCircuits(t *testing.T) {
	tree := Build([]Point[string]{
		{Query: 1, Target: 1, Payload: "a"},
		{Query: 2, Target: 2, Payload: "b"},
	})
	assert.True(t, tree.Any(0, 5, 0, 5, func(p Point[string]) bool { return p.Payload == "b" }))
	assert.False(t, tree.Any(0, 5, 0, 5, func(p Point[string]) bool { return p.Payload == "z" }))
}

func TestSortedByTargetThenQuery(t *testing.T) {
	tree := Build([]Point[int]{
		{Query: 5, Target: 1, Payload: 1},
		{Query: 1, Target: 1, Payload: 2},
		{Query: 0, Target: 0, Payload: 3},
	})
	sorted := tree.SortedByTargetThenQuery()
	assert.Equal(t, []int{3, 2, 1}, []int{sorted[0].Payload, sorted[1].Payload, sorted[2].Payload})
}
