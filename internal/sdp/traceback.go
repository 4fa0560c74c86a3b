package sdp

import (
	"github.com/katalvlaran/gappedaligner/internal/arena"
	"github.com/katalvlaran/gappedaligner/internal/c4"
)

// TracebackID addresses one STraceback cell; arena.NoID is the empty chain
// (the root, "no operations yet").
type TracebackID = arena.ID

type tbCell struct {
	transition c4.TransitionID
	length     int64
	prev       TracebackID
	refcount   int
}

// STraceback is a reference-counted traceback DAG (spec.md §4.F): cells
// `(transition, length, prev)`, so multiple in-flight chains can share a
// common tail without copying it. Extend grows a chain by one transition,
// Release drops a chain no scheduler cell still points to, and Linearize
// reads a chain back out as run-length `(transition, length)` operations.
type STraceback struct {
	cells *arena.Arena[tbCell]
}

// NewSTraceback returns an empty traceback DAG.
func NewSTraceback() *STraceback {
	return &STraceback{cells: arena.New[tbCell](64)}
}

// Root is the empty chain every fresh seed starts from.
func (s *STraceback) Root() TracebackID { return arena.NoID }

// Extend appends transition to the chain ending at prev and returns the new
// chain's id. Consecutive identical transitions collapse into one cell's
// Length when prev is not shared by any other chain (refcount == 0),
// matching a match/gap run's run-length encoding; once a cell is shared
// (Retain'd) it becomes immutable and Extend always allocates a fresh cell
// on top of it instead.
func (s *STraceback) Extend(prev TracebackID, transition c4.TransitionID) TracebackID {
	if prev != arena.NoID {
		p := s.cells.Get(prev)
		if p.transition == transition && p.refcount == 0 {
			p.length++
			return prev
		}
	}
	return s.cells.Alloc(tbCell{transition: transition, length: 1, prev: prev})
}

// Retain marks id as shared by one more live scheduler cell, freezing it
// against Extend's in-place run-length growth (a shared cell must not have
// its tail mutated out from under a sibling chain).
func (s *STraceback) Retain(id TracebackID) {
	if id != arena.NoID {
		s.cells.Get(id).refcount++
	}
}

// Release drops one reference to id's chain, walking back through any
// cell count that falls to zero (spec.md's reference-counted cells).
func (s *STraceback) Release(id TracebackID) {
	for id != arena.NoID {
		c := s.cells.Get(id)
		if c.refcount > 0 {
			c.refcount--
			return
		}
		id = c.prev
	}
}

// Linearize reads the chain ending at id back out in start-to-end order as
// run-length `(transition, length)` operations.
func (s *STraceback) Linearize(id TracebackID) []c4.Operation {
	var rev []c4.Operation
	for id != arena.NoID {
		c := s.cells.Get(id)
		rev = append(rev, c4.Operation{Transition: c.transition, Length: c.length})
		id = c.prev
	}
	out := make([]c4.Operation, len(rev))
	for i, op := range rev {
		out[len(rev)-1-i] = op
	}
	return out
}
