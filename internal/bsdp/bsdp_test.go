package bsdp

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/katalvlaran/gappedaligner/internal/c4"
)

// passthrough callbacks confirm every optimistic score unchanged, modelling
// an HPair caller whose SAR bounds are already exact.
func passthrough() Callbacks[string] {
	return Callbacks[string]{
		ConfirmStart: func(n Node[string]) c4.Score { return n.StartScore },
		UpdateStart:  func(n Node[string], _ int) c4.Score { return n.StartScore },
		ConfirmEnd:   func(n Node[string]) c4.Score { return n.EndScore },
		UpdateEnd:    func(n Node[string], _ int) c4.Score { return n.EndScore },
		ConfirmEdge:  func(e Edge) c4.Score { return e.JoinScore },
		UpdateEdge:   func(e Edge, _ int) c4.Score { return e.JoinScore },
	}
}

// TestNextPathFindsBestChain reproduces spec.md scenario S5: four nodes
// scoring (0,100,0) each, A->B->C->D joins at 0, plus a direct A->D shortcut
// at -50. The best chain is the full A->B->C->D walk at 400 (four node
// scores of 100, zero-cost joins).
func TestNextPathFindsBestChain(t *testing.T) {
	g := New(passthrough(), 0)
	a := g.AddNode("A", 0, 100, 0, true, false)
	b := g.AddNode("B", 0, 100, 0, false, false)
	c := g.AddNode("C", 0, 100, 0, false, false)
	d := g.AddNode("D", 0, 100, 0, false, true)

	g.AddEdge(a, b, 0)
	g.AddEdge(b, c, 0)
	g.AddEdge(c, d, 0)
	g.AddEdge(a, d, -50)

	path, ok := g.NextPath(c4.ImpossiblyLow + 1)
	if !ok {
		t.Fatal("expected a path")
	}
	want := Path[string]{
		Nodes: []NodeID{a, b, c, d},
		Edges: []EdgeID{0, 1, 2},
		Score: 400,
	}
	if diff := cmp.Diff(want, path); diff != "" {
		t.Fatalf("best chain mismatch (-want +got):\n%s", diff)
	}

	if _, ok := g.NextPath(c4.ImpossiblyLow + 1); ok {
		t.Fatal("expected no second path: every node already used")
	}
}

// TestNextPathRespectsThreshold checks a chain scoring below threshold is
// reported as absent even though it is the only remaining candidate.
func TestNextPathRespectsThreshold(t *testing.T) {
	g := New(passthrough(), 0)
	a := g.AddNode("A", 0, 10, 0, true, false)
	b := g.AddNode("B", 0, 10, 0, false, true)
	g.AddEdge(a, b, 0)

	if _, ok := g.NextPath(21); ok {
		t.Fatal("expected threshold 21 to reject a 20-point chain")
	}
	path, ok := g.NextPath(20)
	if !ok || path.Score != 20 {
		t.Fatalf("expected a 20-point chain, got %+v ok=%v", path, ok)
	}
}

// TestNextPathSkipsUsedNodes verifies two disjoint chains are both
// extractable in score order, and reusing a node already marked used is
// never offered.
func TestNextPathSkipsUsedNodes(t *testing.T) {
	g := New(passthrough(), 0)
	a1 := g.AddNode("A1", 0, 50, 0, true, true)
	a2 := g.AddNode("A2", 0, 30, 0, true, true)

	first, ok := g.NextPath(c4.ImpossiblyLow + 1)
	if !ok || first.Score != 50 {
		t.Fatalf("expected the higher-scoring singleton node first, got %+v", first)
	}
	if first.Nodes[0] != a1 {
		t.Fatalf("expected a1 extracted first, got %v", first.Nodes[0])
	}

	second, ok := g.NextPath(c4.ImpossiblyLow + 1)
	if !ok || second.Score != 30 || second.Nodes[0] != a2 {
		t.Fatalf("expected a2 next, got %+v ok=%v", second, ok)
	}

	if _, ok := g.NextPath(c4.ImpossiblyLow + 1); ok {
		t.Fatal("both nodes used, expected no further path")
	}
}

// TestJoinFilterPrunesWeakEdges checks that with joinFilter=1, a node with
// two outgoing edges keeps only the best one (no tie at the cutoff here).
func TestJoinFilterPrunesWeakEdges(t *testing.T) {
	g := New(passthrough(), 1)
	a := g.AddNode("A", 0, 10, 0, true, false)
	b := g.AddNode("B", 0, 10, 0, false, true)
	c := g.AddNode("C", 0, 10, 0, false, true)
	g.AddEdge(a, b, 5)
	g.AddEdge(a, c, -5)

	g.Finalize()
	if g.Edge(0).dropped {
		t.Fatal("expected the better A->B edge to survive the join filter")
	}
	if !g.Edge(1).dropped {
		t.Fatal("expected the worse A->C edge to be dropped by the join filter")
	}
}
