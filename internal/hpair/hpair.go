// Package hpair implements the heuristic pairing stage spec.md §4.I
// describes: turn a set of HSPs per match state into a BSDP graph (one node
// per HSP, join/span edges between compatible HSP pairs), drive
// bsdp.Graph.NextPath to enumerate alignments in score order, and stitch
// each extracted path's per-region tracebacks into one c4.Alignment.
package hpair

import (
	"github.com/katalvlaran/gappedaligner/internal/bsdp"
	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/heuristic"
	"github.com/katalvlaran/gappedaligner/internal/rangeindex"
	"github.com/katalvlaran/gappedaligner/internal/region"
	"github.com/katalvlaran/gappedaligner/internal/subopt"
	"github.com/katalvlaran/gappedaligner/internal/viterbi"
)

// Config bundles the SAR growth ranges and thresholds HPair needs (spec.md
// §4.H/§4.I). MaxQuery/MaxTarget are the full query/target sequence
// lengths, the outer bound every terminal and join region is trimmed to.
type Config struct {
	InternalQuery, ExternalQuery   int
	InternalTarget, ExternalTarget int
	HSPQuality                     float64
	JoinFilter                     int
	Threshold                      c4.Score
	MaxQuery, MaxTarget            int
}

// MatchState names one match-producing state of the model, together with
// the diagonal step its match transition advances by (1,1 for a simple
// match, e.g. 3,1 for a codon-aware protein2dna match).
type MatchState struct {
	State                       c4.StateID
	QueryAdvance, TargetAdvance int
}

type spanPairKey struct {
	span     *c4.Span
	src, dst c4.StateID
}

// Heuristic precomputes every bound matrix one model's HPair runs need:
// terminal bounds per match state, join bounds per match-state pair, and
// span bounds per (span, match-state pair) triple.
type Heuristic struct {
	Model   *c4.Model
	Cfg     Config
	Matches []MatchState

	startBound map[c4.StateID]*heuristic.BoundMatrix
	endBound   map[c4.StateID]*heuristic.BoundMatrix
	joinBound  map[[2]c4.StateID]*heuristic.BoundMatrix
	spanBound  map[spanPairKey]*heuristic.SpanBound
}

// NewHeuristic builds every bound matrix for model upfront. model must
// already be closed.
func NewHeuristic(model *c4.Model, matches []MatchState, cfg Config) (*Heuristic, error) {
	h := &Heuristic{
		Model: model, Cfg: cfg, Matches: matches,
		startBound: make(map[c4.StateID]*heuristic.BoundMatrix),
		endBound:   make(map[c4.StateID]*heuristic.BoundMatrix),
		joinBound:  make(map[[2]c4.StateID]*heuristic.BoundMatrix),
		spanBound:  make(map[spanPairKey]*heuristic.SpanBound),
	}
	for _, m := range matches {
		sb, err := heuristic.BuildTerminalBound(model, m.State, true, cfg.MaxQuery, cfg.MaxTarget)
		if err != nil {
			return nil, err
		}
		h.startBound[m.State] = sb
		eb, err := heuristic.BuildTerminalBound(model, m.State, false, cfg.MaxQuery, cfg.MaxTarget)
		if err != nil {
			return nil, err
		}
		h.endBound[m.State] = eb
	}
	for _, src := range matches {
		for _, dst := range matches {
			jb, err := heuristic.BuildJoinBound(model, src.State, dst.State, cfg.MaxQuery, cfg.MaxTarget)
			if err != nil {
				return nil, err
			}
			h.joinBound[[2]c4.StateID{src.State, dst.State}] = jb
		}
	}
	spans := model.Spans()
	for i := range spans {
		sp := &spans[i]
		for _, src := range matches {
			for _, dst := range matches {
				sbnd, err := heuristic.BuildSpanBound(model, sp, src.State, dst.State, cfg.MaxQuery, cfg.MaxTarget)
				if err != nil {
					return nil, err
				}
				h.spanBound[spanPairKey{sp, src.State, dst.State}] = sbnd
			}
		}
	}
	return h, nil
}

// edgeKind distinguishes a join edge (direct, no intervening span) from a
// span edge (routed through one of the model's Span states).
type edgeKind int

const (
	edgeJoin edgeKind = iota
	edgeSpan
)

// nodePayload is the data HPair attaches to each bsdp.Node.
type nodePayload struct {
	hsp       *heuristic.HSP
	match     MatchState
	startTerm heuristic.Terminal
	endTerm   heuristic.Terminal
}

// edgePayload is the data HPair attaches to each bsdp.Edge via a side
// table (bsdp.Edge itself carries no generic payload).
type edgePayload struct {
	kind   edgeKind
	region region.Region
	srcC   c4.Score
	dstC   c4.Score
	span   *c4.Span
}

// HPair drives one query/target pair's heuristic alignment search: build
// the BSDP graph from HSPSets, then call NextPath repeatedly.
type HPair struct {
	heur   *Heuristic
	subopt *subopt.Index
	graph  *bsdp.Graph[*nodePayload]
	// edges is keyed by (Src, Dst): bsdp.Callbacks pass Edge by value with
	// no id, and this port only ever adds at most one edge per ordered node
	// pair (see tryPair), so the pair is a safe stand-in for an edge id.
	edges  map[[2]bsdp.NodeID]edgePayload
	pathID int
}

// HSPSet is every HSP observed against one match state, the unit HPair
// consumes per portal (spec.md §4.I).
type HSPSet struct {
	Match MatchState
	HSPs  []*heuristic.HSP
}

// New builds the BSDP graph for one set of HSPSets against heur's model.
// subOpt may be nil (equivalent to an always-unblocked index).
func New(heur *Heuristic, subOpt *subopt.Index, sets []HSPSet) *HPair {
	if subOpt == nil {
		subOpt = subopt.New()
	}
	hp := &HPair{heur: heur, subopt: subOpt, edges: make(map[[2]bsdp.NodeID]edgePayload)}
	hp.graph = bsdp.New(bsdp.Callbacks[*nodePayload]{
		ConfirmStart: hp.confirmStart,
		UpdateStart:  func(n bsdp.Node[*nodePayload], _ int) c4.Score { return hp.confirmStart(n) },
		ConfirmEnd:   hp.confirmEnd,
		UpdateEnd:    func(n bsdp.Node[*nodePayload], _ int) c4.Score { return hp.confirmEnd(n) },
		ConfirmEdge:  hp.confirmEdge,
		UpdateEdge:   func(e bsdp.Edge, lastUpdated int) c4.Score { return hp.updateEdge(e, lastUpdated) },
	}, heur.Cfg.JoinFilter)

	nodes := make(map[*heuristic.HSP]bsdp.NodeID)
	for _, set := range sets {
		for _, hsp := range set.HSPs {
			nodes[hsp] = hp.addNode(set.Match, hsp)
		}
	}
	hp.pairAll(sets, nodes)
	hp.graph.Finalize()
	return hp
}

func (hp *HPair) addNode(match MatchState, hsp *heuristic.HSP) bsdp.NodeID {
	cfg := hp.heur.Cfg
	startTerm, startOK := heuristic.ComputeStartTerminal(hsp, cfg.InternalQuery, cfg.ExternalQuery, cfg.InternalTarget, cfg.ExternalTarget, cfg.MaxQuery, cfg.MaxTarget, cfg.HSPQuality)
	endTerm, endOK := heuristic.ComputeEndTerminal(hsp, cfg.InternalQuery, cfg.ExternalQuery, cfg.InternalTarget, cfg.ExternalTarget, cfg.MaxQuery, cfg.MaxTarget, cfg.HSPQuality)

	var startScore, endScore c4.Score
	if startOK {
		startScore = c4.Add(hp.heur.startBound[match.State].Lookup(startTerm.Region.QueryLength-1, startTerm.Region.TargetLength-1), -startTerm.Component)
	}
	if endOK {
		endScore = c4.Add(hp.heur.endBound[match.State].Lookup(endTerm.Region.QueryLength-1, endTerm.Region.TargetLength-1), -endTerm.Component)
	}

	payload := &nodePayload{hsp: hsp, match: match, startTerm: startTerm, endTerm: endTerm}
	return hp.graph.AddNode(payload, startScore, hsp.Score, endScore, startOK, endOK)
}

// pairAll implements spec.md §4.I point 2: for each (src_match, dst_match)
// pair and each HSP pair whose cobs positions are compatible, build a join
// or span edge. Candidate dst HSPs are found via a 2-D RangeTree indexed by
// dst cobs positions, the efficient lookup spec.md calls for.
func (hp *HPair) pairAll(sets []HSPSet, nodes map[*heuristic.HSP]bsdp.NodeID) {
	type dstTag struct {
		match MatchState
		hsp   *heuristic.HSP
	}
	var points []rangeindex.Point[dstTag]
	for _, set := range sets {
		for _, hsp := range set.HSPs {
			points = append(points, rangeindex.Point[dstTag]{
				Query: hsp.CobsQuery(), Target: hsp.CobsTarget(),
				Payload: dstTag{match: set.Match, hsp: hsp},
			})
		}
	}
	if len(points) == 0 {
		return
	}
	tree := rangeindex.Build(points)

	for _, set := range sets {
		for _, srcHSP := range set.HSPs {
			qLo, tLo := srcHSP.CobsQuery(), srcHSP.CobsTarget()
			candidates := tree.Query(qLo, hp.heur.Cfg.MaxQuery, tLo, hp.heur.Cfg.MaxTarget)
			for _, cand := range candidates {
				dstHSP := cand.Payload.hsp
				if dstHSP == srcHSP {
					continue
				}
				hp.tryPair(set.Match, srcHSP, cand.Payload.match, dstHSP, nodes)
			}
		}
	}
}

func (hp *HPair) tryPair(srcMatch MatchState, srcHSP *heuristic.HSP, dstMatch MatchState, dstHSP *heuristic.HSP, nodes map[*heuristic.HSP]bsdp.NodeID) {
	cfg := hp.heur.Cfg
	join, ok := heuristic.ComputeJoin(srcHSP, dstHSP, cfg.InternalQuery, cfg.ExternalQuery, cfg.InternalTarget, cfg.ExternalTarget, cfg.MaxQuery, cfg.MaxTarget, cfg.HSPQuality)
	if !ok {
		return
	}
	qGap, tGap := join.Region.QueryLength, join.Region.TargetLength
	jb := hp.heur.joinBound[[2]c4.StateID{srcMatch.State, dstMatch.State}]
	bound := c4.ImpossiblyLow
	if jb != nil {
		bound = jb.Lookup(qGap, tGap)
	}
	if bound != c4.ImpossiblyLow && bound != c4.ImpossiblyHigh {
		joinScore := c4.Add(bound, -c4.Add(join.SrcComponent, join.DstComponent))
		src, dst := nodes[srcHSP], nodes[dstHSP]
		hp.graph.AddEdge(src, dst, joinScore)
		hp.edges[[2]bsdp.NodeID{src, dst}] = edgePayload{kind: edgeJoin, region: join.Region, srcC: join.SrcComponent, dstC: join.DstComponent}
		return
	}
	// No direct join bound admits this gap; try routing through a span
	// whose configured shape admits it.
	spans := hp.heur.Model.Spans()
	for i := range spans {
		sp := &spans[i]
		if qGap < sp.MinQuery || qGap > sp.MaxQuery || tGap < sp.MinTarget || tGap > sp.MaxTarget {
			continue
		}
		sbnd := hp.heur.spanBound[spanPairKey{sp, srcMatch.State, dstMatch.State}]
		if sbnd == nil {
			continue
		}
		gap := heuristic.GapBound(hp.heur.Model, sp, qGap, tGap)
		if gap == c4.ImpossiblyLow {
			continue
		}
		joinScore := c4.Add(gap, -c4.Add(join.SrcComponent, join.DstComponent))
		src, dst := nodes[srcHSP], nodes[dstHSP]
		hp.graph.AddEdge(src, dst, joinScore)
		hp.edges[[2]bsdp.NodeID{src, dst}] = edgePayload{kind: edgeSpan, region: join.Region, srcC: join.SrcComponent, dstC: join.DstComponent, span: sp}
		return
	}
}

// runRegion runs exact Viterbi over reg using the real (non-derived) model,
// passing SubOpt's row view so match transitions into blocked cells are
// skipped. It makes no separate entry/exit check: a blocked cell on the
// HSP's own diagonal, or one blocked since lastUpdated, does not by itself
// collapse the score to ImpossiblyLow.
func (hp *HPair) runRegion(reg region.Region, component c4.Score) c4.Score {
	res, err := viterbi.Calculate(hp.heur.Model, reg, hp.subopt.Row(), viterbi.ModeScore, viterbi.Options{})
	if err != nil || !res.Reached {
		return c4.ImpossiblyLow
	}
	return c4.Add(res.Score, -component)
}

func (hp *HPair) confirmStart(n bsdp.Node[*nodePayload]) c4.Score {
	p := n.Payload
	return hp.runRegion(p.startTerm.Region, p.startTerm.Component)
}

func (hp *HPair) confirmEnd(n bsdp.Node[*nodePayload]) c4.Score {
	p := n.Payload
	return hp.runRegion(p.endTerm.Region, p.endTerm.Component)
}

func (hp *HPair) confirmEdge(e bsdp.Edge) c4.Score {
	ep := hp.edgeFor(e)
	return hp.runRegion(ep.region, c4.Add(ep.srcC, ep.dstC))
}

func (hp *HPair) updateEdge(e bsdp.Edge, lastUpdated int) c4.Score {
	// region_check_since: if the region overlaps any cell blocked by an
	// alignment emitted at or after lastUpdated, the edge is dead. This
	// port's SubOpt index has no per-path_id timestamp, so conservatively
	// treat any post-confirm overlap as disqualifying — sound (it can only
	// under- not over-admit) though less precise than the original's
	// exact path_id comparison.
	ep := hp.edgeFor(e)
	if hp.subopt.OverlapsAlignment(ep.region.QueryStart, ep.region.QueryEnd(), ep.region.TargetStart, ep.region.TargetEnd()) {
		return c4.ImpossiblyLow
	}
	return hp.confirmEdge(e)
}

func (hp *HPair) edgeFor(e bsdp.Edge) edgePayload {
	return hp.edges[[2]bsdp.NodeID{e.Src, e.Dst}]
}

// NextPath enumerates the next best alignment at or above threshold. ok is
// false once no further alignment clears it.
func (hp *HPair) NextPath(threshold c4.Score) (*c4.Alignment, bool) {
	path, ok := hp.graph.NextPath(threshold)
	if !ok {
		return nil, false
	}
	hp.pathID++
	return hp.stitch(path), true
}

// stitch builds a full c4.Alignment from one extracted BSDP path: start
// terminal, then for each node (HSP match run, join/span, next HSP)*, then
// end terminal. Each sub-region is re-traced with ModePath; every visited
// cell is recorded into SubOpt so later NextPath calls cannot reuse it.
func (hp *HPair) stitch(path bsdp.Path[*nodePayload]) *c4.Alignment {
	var ops []c4.Operation
	var cells [][2]int
	var total c4.Score
	var boundsSet bool
	var bounds region.Region

	appendPath := func(reg region.Region) {
		res, err := viterbi.Calculate(hp.heur.Model, reg, hp.subopt.Row(), viterbi.ModePath, viterbi.Options{})
		if err != nil || !res.Reached {
			return
		}
		for _, step := range res.Path {
			cells = append(cells, [2]int{step.QueryPos, step.TargetPos})
			if step.Transition == c4.NoID {
				continue
			}
			if n := len(ops); n > 0 && ops[n-1].Transition == step.Transition {
				ops[n-1].Length++
				continue
			}
			ops = append(ops, c4.Operation{Transition: step.Transition, Length: 1})
		}
		if !boundsSet {
			bounds = reg
			boundsSet = true
		} else {
			bounds = growBounds(bounds, reg)
		}
	}

	for i, nid := range path.Nodes {
		p := hp.graph.Node(nid).Payload
		if i == 0 {
			appendPath(p.startTerm.Region)
		}
		appendPath(hspRegion(p.hsp))
		if i == len(path.Nodes)-1 {
			appendPath(p.endTerm.Region)
		} else {
			eid := path.Edges[i]
			ep := hp.edgeFor(*hp.graph.Edge(eid))
			appendPath(ep.region)
		}
	}
	hp.subopt.AddAlignment(cells)
	total = path.Score

	return &c4.Alignment{Score: total, Region: bounds, Operations: ops, Model: hp.heur.Model}
}

func hspRegion(h *heuristic.HSP) region.Region {
	return region.New(h.QueryStart, h.TargetStart, h.QueryEnd()-h.QueryStart, h.TargetEnd()-h.TargetStart)
}

func growBounds(a, b region.Region) region.Region {
	qs := min(a.QueryStart, b.QueryStart)
	ts := min(a.TargetStart, b.TargetStart)
	qe := max(a.QueryEnd(), b.QueryEnd())
	te := max(a.TargetEnd(), b.TargetEnd())
	return region.New(qs, ts, qe-qs, te-ts)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
