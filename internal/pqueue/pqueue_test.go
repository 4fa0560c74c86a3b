package pqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func less(a, b int) bool { return a < b }

func TestPushPopOrdering(t *testing.T) {
	q := New(less)
	for _, v := range []int{5, 1, 4, 2, 3} {
		q.Push(v)
	}
	var got []int
	for q.Len() > 0 {
		got = append(got, q.Pop().Value)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestUpdateReheapifies(t *testing.T) {
	q := New(less)
	a := q.Push(10)
	b := q.Push(20)
	require.Equal(t, 10, q.Peek().Value)

	b.Value = 1
	q.Update(b)
	assert.Equal(t, 1, q.Peek().Value)

	a.Value = 0
	q.Update(a)
	assert.Equal(t, 0, q.Peek().Value)
}

func TestRemoveArbitraryNode(t *testing.T) {
	q := New(less)
	nodes := make([]*Node[int], 0, 5)
	for _, v := range []int{5, 1, 4, 2, 3} {
		nodes = append(nodes, q.Push(v))
	}
	for _, n := range nodes {
		if n.Value == 4 {
			q.Remove(n)
		}
	}
	var got []int
	for q.Len() > 0 {
		got = append(got, q.Pop().Value)
	}
	assert.Equal(t, []int{1, 2, 3, 5}, got)
}

func TestMaxHeapVariant(t *testing.T) {
	q := New(func(a, b int) bool { return a > b })
	for _, v := range []int{5, 1, 4, 2, 3} {
		q.Push(v)
	}
	assert.Equal(t, 5, q.Pop().Value)
	assert.Equal(t, 4, q.Pop().Value)
}
