package viterbi

import "github.com/katalvlaran/gappedaligner/internal/c4"

// Cell is one DP cell: a score plus one payload per shadow designation,
// matching spec.md §3's "(score, shadow_0, ..., shadow_{K-1})" vector.
type Cell struct {
	Score   c4.Score
	Shadows []c4.Score
}

func blankCell(k int) Cell {
	c := Cell{Score: c4.ImpossiblyLow}
	if k > 0 {
		c.Shadows = make([]c4.Score, k)
	}
	return c
}

func (c Cell) cloneShadows() []c4.Score {
	if len(c.Shadows) == 0 {
		return nil
	}
	out := make([]c4.Score, len(c.Shadows))
	copy(out, c.Shadows)
	return out
}
