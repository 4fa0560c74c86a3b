package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryTargetEnds(t *testing.T) {
	r := New(5, 10, 3, 4)
	assert.Equal(t, 8, r.QueryEnd())
	assert.Equal(t, 14, r.TargetEnd())
	assert.Equal(t, 12, r.Area())
}

func TestIsWithin(t *testing.T) {
	outer := New(0, 0, 100, 100)
	inner := New(10, 10, 5, 5)
	assert.True(t, inner.IsWithin(outer))
	assert.False(t, outer.IsWithin(inner))
}

func TestIsSame(t *testing.T) {
	a := New(1, 2, 3, 4)
	b := New(1, 2, 3, 4)
	c := New(1, 2, 3, 5)
	assert.True(t, a.IsSame(b))
	assert.False(t, a.IsSame(c))
}

func TestContains(t *testing.T) {
	r := New(2, 3, 4, 4)
	assert.True(t, r.Contains(2, 3))
	assert.True(t, r.Contains(5, 6))
	assert.False(t, r.Contains(6, 6))
	assert.False(t, r.Contains(1, 3))
}

func TestIntersect(t *testing.T) {
	a := New(0, 0, 10, 10)
	b := New(5, 5, 10, 10)
	got := Intersect(a, b)
	assert.Equal(t, New(5, 5, 5, 5), got)

	c := New(20, 20, 5, 5)
	got2 := Intersect(a, c)
	assert.False(t, got2.Area() > 0)
}
