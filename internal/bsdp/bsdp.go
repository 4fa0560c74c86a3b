// Package bsdp implements Bounded Sparse DP (spec.md §4.G): enumerate, in
// decreasing total score, the best walks through a graph of HSP nodes and
// join edges, confirming optimistic bounds against an exact cost function
// only as each candidate chain is extracted.
package bsdp

import (
	"github.com/katalvlaran/gappedaligner/internal/arena"
	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/pqueue"
)

type (
	NodeID = arena.ID
	EdgeID = arena.ID
)

// nodeState is the three-shape per-node union spec.md §9 calls out
// ("new -> initialised -> used"), represented as a tagged enum instead of
// an in-place pointer-punning union.
type nodeState int

const (
	nodeNew nodeState = iota
	nodeInitialised
	nodeUsed
)

// Node is one HSP candidate: an optimistic (start, own, end) score triple
// plus validity/usage flags. Payload carries whatever the caller needs to
// recover the HSP this node represents (HPair stores an HSP index here).
type Node[T any] struct {
	Payload T

	StartScore c4.Score
	NodeScore  c4.Score
	EndScore   c4.Score
	ValidStart bool
	ValidEnd   bool

	ConfirmedStart bool
	ConfirmedEnd   bool
	startMailbox   int
	endMailbox     int

	state      nodeState
	outEdges   []EdgeID
	inEdges    []EdgeID
	storedTotal c4.Score
}

// Edge is a possible join from Src to Dst carrying an optimistic
// join_score, confirmed lazily and re-checked via mailbox/path_count
// whenever a later emitted path might have invalidated it.
type Edge struct {
	Src, Dst  NodeID
	JoinScore c4.Score
	confirmed bool
	mailbox   int
	dropped   bool
}

// Callbacks groups the caller-supplied cost functions BSDP confirms
// against. Every Confirm/Update function may only ever *lower* the score
// it's given (spec.md's "optimistic bound, confirmation can only reduce").
type Callbacks[T any] struct {
	ConfirmStart func(Node[T]) c4.Score
	UpdateStart  func(Node[T], int) c4.Score
	ConfirmEnd   func(Node[T]) c4.Score
	UpdateEnd    func(Node[T], int) c4.Score
	ConfirmEdge  func(Edge) c4.Score
	UpdateEdge   func(Edge, int) c4.Score
}

// Graph is a BSDP instance: one per independent alignment search (HPair
// builds a fresh Graph per query/target pair).
type Graph[T any] struct {
	nodes     *arena.Arena[Node[T]]
	edges     *arena.Arena[Edge]
	callbacks Callbacks[T]
	joinFilter int

	pathCount int
	nodePQ    *pqueue.Queue[NodeID]
	nodeItems map[NodeID]*pqueue.Node[NodeID]
	finalised bool
}

// New returns an empty Graph. joinFilter is the J parameter of spec.md
// §4.G's join filter; 0 disables it.
func New[T any](cb Callbacks[T], joinFilter int) *Graph[T] {
	return &Graph[T]{
		nodes:      arena.New[Node[T]](8),
		edges:      arena.New[Edge](16),
		callbacks:  cb,
		joinFilter: joinFilter,
		nodeItems:  make(map[NodeID]*pqueue.Node[NodeID]),
	}
}

// AddNode allocates a node. Must be called before Finalize.
func (g *Graph[T]) AddNode(payload T, startScore, nodeScore, endScore c4.Score, validStart, validEnd bool) NodeID {
	id := g.nodes.Alloc(Node[T]{
		Payload: payload, StartScore: startScore, NodeScore: nodeScore, EndScore: endScore,
		ValidStart: validStart, ValidEnd: validEnd,
	})
	return id
}

// AddEdge allocates a possible join from src to dst. Must be called before
// Finalize.
func (g *Graph[T]) AddEdge(src, dst NodeID, joinScore c4.Score) EdgeID {
	id := g.edges.Alloc(Edge{Src: src, Dst: dst, JoinScore: joinScore})
	g.nodes.Get(src).outEdges = append(g.nodes.Get(src).outEdges, id)
	g.nodes.Get(dst).inEdges = append(g.nodes.Get(dst).inEdges, id)
	return id
}

// Node returns a pointer to the node at id.
func (g *Graph[T]) Node(id NodeID) *Node[T] { return g.nodes.Get(id) }

// Edge returns a pointer to the edge at id.
func (g *Graph[T]) Edge(id EdgeID) *Edge { return g.edges.Get(id) }

// Finalize applies the join filter (if configured) and builds the node
// priority queue. No more AddNode/AddEdge calls are allowed afterward.
func (g *Graph[T]) Finalize() {
	if g.finalised {
		return
	}
	if g.joinFilter > 0 {
		g.applyJoinFilter()
	}
	g.nodePQ = pqueue.New(func(a, b NodeID) bool {
		return g.nodes.Get(a).storedTotal > g.nodes.Get(b).storedTotal
	})
	for i, n := range g.nodes.All() {
		if n.state == nodeUsed {
			continue
		}
		id := arena.ID(i)
		_, chain := g.bestContinuation(id, map[NodeID]bool{})
		_ = chain
		g.recomputeTotal(id)
		g.nodeItems[id] = g.nodePQ.Push(id)
	}
	g.finalised = true
}

// edgeValue is the rough "start + node + edge + node + end" bound spec.md
// §4.G's join filter ranks candidate edges by.
func (g *Graph[T]) edgeValue(e Edge) c4.Score {
	src, dst := g.nodes.Get(e.Src), g.nodes.Get(e.Dst)
	v := src.NodeScore + e.JoinScore + dst.NodeScore
	if src.ValidStart {
		v = c4.Add(v, src.StartScore)
	}
	if dst.ValidEnd {
		v = c4.Add(v, dst.EndScore)
	}
	return v
}

// applyJoinFilter keeps, per node, at most joinFilter outgoing and
// joinFilter incoming edges by edgeValue. When the edge in place
// joinFilter+1 ties the cutoff value, every edge at that value is removed
// together, so ties straddling the cut are never split.
func (g *Graph[T]) applyJoinFilter() {
	outKeep := make(map[EdgeID]bool)
	inKeep := make(map[EdgeID]bool)
	mark := func(ids []EdgeID, keep map[EdgeID]bool) {
		type scored struct {
			id  EdgeID
			val c4.Score
		}
		list := make([]scored, len(ids))
		for i, id := range ids {
			list[i] = scored{id, g.edgeValue(*g.edges.Get(id))}
		}
		for i := 1; i < len(list); i++ {
			for j := i; j > 0 && list[j].val > list[j-1].val; j-- {
				list[j], list[j-1] = list[j-1], list[j]
			}
		}
		if len(list) <= g.joinFilter {
			for _, s := range list {
				keep[s.id] = true
			}
			return
		}
		cutoff := list[g.joinFilter-1].val
		tiedPastCut := list[g.joinFilter].val == cutoff
		for _, s := range list {
			if s.val > cutoff || (s.val == cutoff && !tiedPastCut) {
				keep[s.id] = true
			}
		}
	}
	for _, n := range g.nodes.All() {
		mark(n.outEdges, outKeep)
		mark(n.inEdges, inKeep)
	}
	// An edge survives only if both its source and its destination admit
	// it among their top joinFilter neighbours (spec.md: "admitted by both
	// endpoints").
	for i := range g.edges.All() {
		id := arena.ID(i)
		if !outKeep[id] || !inKeep[id] {
			g.edges.Get(id).dropped = true
		}
	}
}

func (g *Graph[T]) liveOutEdges(id NodeID) []EdgeID {
	var out []EdgeID
	for _, eid := range g.nodes.Get(id).outEdges {
		if !g.edges.Get(eid).dropped {
			out = append(out, eid)
		}
	}
	return out
}

// bestContinuation is the recursive evaluation of top_partial(id) and the
// edge chain achieving it; results are not cached, so every call re-walks
// the live subgraph below id. Used nodes are treated as unreachable.
// This replaces the original's incremental per-node edge-pqueue
// maintenance with a full recompute per next_path call — see DESIGN.md for
// why that substitution is safe at this engine's scale.
func (g *Graph[T]) bestContinuation(id NodeID, visiting map[NodeID]bool) (c4.Score, []EdgeID) {
	n := g.nodes.Get(id)
	if n.state == nodeUsed || visiting[id] {
		return c4.ImpossiblyLow, nil
	}
	visiting[id] = true
	defer delete(visiting, id)

	best := c4.ImpossiblyLow
	var bestChain []EdgeID
	if n.ValidEnd {
		best = c4.Add(n.NodeScore, n.EndScore)
	}
	for _, eid := range g.liveOutEdges(id) {
		e := g.edges.Get(eid)
		if g.nodes.Get(e.Dst).state == nodeUsed {
			continue
		}
		dstScore, dstChain := g.bestContinuation(e.Dst, visiting)
		if dstScore == c4.ImpossiblyLow {
			continue
		}
		cand := c4.Add(c4.Add(n.NodeScore, e.JoinScore), dstScore)
		if cand > best {
			best = cand
			bestChain = append([]EdgeID{eid}, dstChain...)
		}
	}
	return best, bestChain
}

func (g *Graph[T]) recomputeTotal(id NodeID) {
	n := g.nodes.Get(id)
	cont, _ := g.bestContinuation(id, map[NodeID]bool{})
	if n.ValidStart && cont != c4.ImpossiblyLow {
		n.storedTotal = c4.Add(n.StartScore, cont)
	} else {
		n.storedTotal = c4.ImpossiblyLow
	}
}

// Path is one extracted BSDP chain, in src-to-dst order.
type Path[T any] struct {
	Nodes []NodeID
	Edges []EdgeID
	Score c4.Score
}

// NextPath returns the best remaining chain scoring at least threshold, or
// ok=false once no chain clears threshold (spec.md's next_path).
func (g *Graph[T]) NextPath(threshold c4.Score) (Path[T], bool) {
	if !g.finalised {
		g.Finalize()
	}
	for {
		if g.nodePQ.Len() == 0 {
			return Path[T]{}, false
		}
		top := g.nodePQ.Peek()
		id := top.Value

		// Validate: recompute until the top is stable under recomputation.
		for {
			before := g.nodePQ.Peek().Value
			g.recomputeTotal(before)
			g.nodePQ.Update(g.nodeItems[before])
			if g.nodePQ.Peek().Value == before {
				break
			}
		}
		top = g.nodePQ.Peek()
		id = top.Value
		n := g.nodes.Get(id)
		if n.storedTotal < threshold {
			return Path[T]{}, false
		}

		_, chain := g.bestContinuation(id, map[NodeID]bool{})
		if ok := g.confirmChain(id, chain); !ok {
			continue // a confirmation lowered a score; re-validate from scratch
		}

		path := g.extractChain(id, chain)
		g.markUsed(path)
		g.pathCount++
		delete(g.nodeItems, id)
		g.nodePQ.Remove(top)
		return path, true
	}
}

// confirmChain walks the chain calling Confirm/Update callbacks. Returns
// false if any confirmation changed a score (caller must re-validate).
func (g *Graph[T]) confirmChain(id NodeID, chain []EdgeID) bool {
	n := g.nodes.Get(id)
	stable := true
	if n.ValidStart {
		var s c4.Score
		if !n.ConfirmedStart {
			s = g.callbacks.ConfirmStart(*n)
			n.ConfirmedStart = true
		} else if n.startMailbox < g.pathCount {
			s = g.callbacks.UpdateStart(*n, n.startMailbox)
		} else {
			s = n.StartScore
		}
		n.startMailbox = g.pathCount
		if s < n.StartScore {
			n.StartScore = s
			stable = false
		}
	}
	cur := id
	for _, eid := range chain {
		e := g.edges.Get(eid)
		var s c4.Score
		if !e.confirmed {
			s = g.callbacks.ConfirmEdge(*e)
			e.confirmed = true
		} else if e.mailbox < g.pathCount {
			s = g.callbacks.UpdateEdge(*e, e.mailbox)
		} else {
			s = e.JoinScore
		}
		e.mailbox = g.pathCount
		if s < e.JoinScore {
			e.JoinScore = s
			stable = false
		}
		cur = e.Dst
	}
	last := g.nodes.Get(cur)
	if last.ValidEnd {
		var s c4.Score
		if !last.ConfirmedEnd {
			s = g.callbacks.ConfirmEnd(*last)
			last.ConfirmedEnd = true
		} else if last.endMailbox < g.pathCount {
			s = g.callbacks.UpdateEnd(*last, last.endMailbox)
		} else {
			s = last.EndScore
		}
		last.endMailbox = g.pathCount
		if s < last.EndScore {
			last.EndScore = s
			stable = false
		}
	}
	return stable
}

func (g *Graph[T]) extractChain(id NodeID, chain []EdgeID) Path[T] {
	nodes := []NodeID{id}
	cur := id
	score := g.nodes.Get(id).StartScore
	if !g.nodes.Get(id).ValidStart {
		score = 0
	}
	score = c4.Add(score, g.nodes.Get(id).NodeScore)
	for _, eid := range chain {
		e := g.edges.Get(eid)
		score = c4.Add(score, e.JoinScore)
		cur = e.Dst
		nodes = append(nodes, cur)
		score = c4.Add(score, g.nodes.Get(cur).NodeScore)
	}
	if g.nodes.Get(cur).ValidEnd {
		score = c4.Add(score, g.nodes.Get(cur).EndScore)
	}
	return Path[T]{Nodes: nodes, Edges: chain, Score: score}
}

func (g *Graph[T]) markUsed(p Path[T]) {
	for _, id := range p.Nodes {
		g.nodes.Get(id).state = nodeUsed
		if item, ok := g.nodeItems[id]; ok && id != p.Nodes[0] {
			g.nodePQ.Remove(item)
			delete(g.nodeItems, id)
		}
	}
}
