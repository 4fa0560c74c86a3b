package gam

import (
	"sort"
	"sync"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/engineerr"
	"github.com/katalvlaran/gappedaligner/internal/gamlog"
	"github.com/katalvlaran/gappedaligner/internal/hpair"
	"github.com/katalvlaran/gappedaligner/internal/models"
	"github.com/katalvlaran/gappedaligner/internal/region"
	"github.com/katalvlaran/gappedaligner/internal/scoring"
	"github.com/katalvlaran/gappedaligner/internal/sdp"
	"github.com/katalvlaran/gappedaligner/internal/subopt"
	"github.com/katalvlaran/gappedaligner/internal/viterbi"
)

// GAM is the Gapped Alignment Manager (spec.md §4.J): one instance binds a
// built model and scoring context to a fixed Args, and accepts any number
// of query/target submissions before Report drains the accumulated
// alignments. A GAM is safe for concurrent Submit calls.
type GAM struct {
	built *models.Built
	ctx   *scoring.Context
	args  Args
	log   gamlog.Logger

	mu                     sync.Mutex
	thresholds             map[string]c4.Score
	bestN                  map[string]*bestNState
	unbounded              []*c4.Alignment
	warnedExhaustiveSubopt bool
}

// New validates args and returns a ready GAM bound to built and ctx.
func New(built *models.Built, ctx *scoring.Context, args Args, opts Options) (*GAM, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	if built == nil || built.Model == nil {
		return nil, engineerr.New("GAM.New", engineerr.KindInvalidArgument)
	}
	return &GAM{
		built:      built,
		ctx:        ctx,
		args:       args,
		log:        gamlog.OrNoop(opts.Logger),
		thresholds: make(map[string]c4.Score),
		bestN:      make(map[string]*bestNState),
	}, nil
}

// Submit aligns query against target and records every alignment the
// configured path produces. hsps, when non-empty, seeds the heuristic
// (Args.UseGappedExtension == false) or seeded-SDP (== true) path;
// otherwise GAM falls back to exhaustive Viterbi over the full rectangle
// (spec.md §1: HSP discovery itself is out of scope, so an empty hsps
// slice always means "no seeds available", not "seed and find none").
func (g *GAM) Submit(query, target *scoring.Sequence, hsps []hpair.HSPSet) error {
	if query == nil || target == nil {
		return engineerr.New("GAM.Submit", engineerr.KindInvalidArgument)
	}
	threshold := g.thresholdFor(query)

	var alns []*c4.Alignment
	switch {
	case len(hsps) == 0:
		if g.args.UseSubopt && !g.args.UseGappedExtension {
			g.warnExhaustiveSubopt()
		}
		alns = g.submitExhaustive(threshold, query, target)
	case g.args.UseGappedExtension:
		alns = g.submitSDP(threshold, query, target, hsps)
	default:
		var err error
		alns, err = g.submitHeuristic(threshold, query, target, hsps)
		if err != nil {
			return err
		}
	}

	for _, aln := range alns {
		g.record(query.ID, g.refine(aln, query, target))
	}
	return nil
}

// Report drains every query's accumulated alignments. With Args.BestN > 0
// the order is query-id order, then descending score within a query
// (spec.md §4.J); unbounded runs (BestN <= 0) report in submission order.
func (g *GAM) Report() []*c4.Alignment {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.args.BestN <= 0 {
		return append([]*c4.Alignment(nil), g.unbounded...)
	}
	ids := make([]string, 0, len(g.bestN))
	for id := range g.bestN {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*c4.Alignment
	for _, id := range ids {
		out = append(out, g.bestN[id].drain()...)
	}
	return out
}

func (g *GAM) record(queryID string, aln *c4.Alignment) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.args.BestN <= 0 {
		g.unbounded = append(g.unbounded, aln)
		return
	}
	st, ok := g.bestN[queryID]
	if !ok {
		st = newBestNState()
		g.bestN[queryID] = st
	}
	st.submit(aln, g.args.BestN)
}

func (g *GAM) warnExhaustiveSubopt() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.warnedExhaustiveSubopt {
		return
	}
	g.warnedExhaustiveSubopt = true
	g.log.Warnw("exhaustive Viterbi with suboptimal enumeration; expect O(subopt count) full-matrix passes", "model", g.args.Model.String())
}

// thresholdFor applies spec.md §4.J's percent-of-self floor, caching per
// query ID since self-score only depends on the query.
func (g *GAM) thresholdFor(query *scoring.Sequence) c4.Score {
	g.mu.Lock()
	if t, ok := g.thresholds[query.ID]; ok {
		g.mu.Unlock()
		return t
	}
	g.mu.Unlock()

	floor := c4.Score(g.args.Score)
	if g.args.Percent > 0 {
		self := selfScoreSum(g.ctx, query)
		pct := c4.Score(float64(self) * g.args.Percent / 100)
		if pct > floor {
			floor = pct
		}
	}

	g.mu.Lock()
	g.thresholds[query.ID] = floor
	g.mu.Unlock()
	return floor
}

// refine re-scores aln per Args.Refinement, keeping the original whenever
// the refined run errors, fails to reach End, or scores lower (spec.md
// §4.J: "the refined score must be >= original; if lower, keep original").
func (g *GAM) refine(aln *c4.Alignment, query, target *scoring.Sequence) *c4.Alignment {
	if g.args.Refinement == RefineNone {
		return aln
	}

	var reg region.Region
	switch g.args.Refinement {
	case RefineFull:
		reg = region.New(0, 0, query.Len(), target.Len())
	case RefineRegion:
		b := g.args.RefinementBoundary
		qs := max(0, aln.Region.QueryStart-b)
		ts := max(0, aln.Region.TargetStart-b)
		qe := min(query.Len(), aln.Region.QueryEnd()+b)
		te := min(target.Len(), aln.Region.TargetEnd()+b)
		reg = region.New(qs, ts, qe-qs, te-ts)
	default:
		return aln
	}

	res, err := viterbi.Calculate(g.built.Model, reg, nil, viterbi.ModePath, viterbi.Options{MemoryLimit: g.args.TracebackMemoryLimit})
	if err != nil || !res.Reached || res.Score < aln.Score {
		return aln
	}
	return &c4.Alignment{
		Score:      res.Score,
		Region:     boundingRegionFromPath(res.Path),
		Operations: opsFromPath(res.Path),
		Model:      g.built.Model,
	}
}

// submitExhaustive runs full-rectangle Viterbi, optionally iterating
// suboptimal alignments by blocking each emitted path's cells before the
// next pass (spec.md §4.E "SubOpt integration").
func (g *GAM) submitExhaustive(threshold c4.Score, query, target *scoring.Sequence) []*c4.Alignment {
	reg := region.New(0, 0, query.Len(), target.Len())
	idx := subopt.New()
	var out []*c4.Alignment
	for {
		res, err := viterbi.Calculate(g.built.Model, reg, idx.Row(), viterbi.ModePath, viterbi.Options{MemoryLimit: g.args.TracebackMemoryLimit})
		if err != nil || !res.Reached || res.Score < threshold {
			break
		}
		out = append(out, &c4.Alignment{
			Score:      res.Score,
			Region:     boundingRegionFromPath(res.Path),
			Operations: opsFromPath(res.Path),
			Model:      g.built.Model,
		})
		if !g.args.UseSubopt {
			break
		}
		idx.AddAlignment(cellsFromPath(res.Path))
	}
	return out
}

// submitHeuristic drives the graph-joined HSP path (internal/hpair over
// internal/bsdp), iterating NextPath while UseSubopt holds.
func (g *GAM) submitHeuristic(threshold c4.Score, query, target *scoring.Sequence, hsps []hpair.HSPSet) ([]*c4.Alignment, error) {
	cfg := hpair.Config{
		InternalQuery:  g.args.TerminalRangeInternal,
		ExternalQuery:  g.args.TerminalRangeExternal,
		InternalTarget: g.args.TerminalRangeInternal,
		ExternalTarget: g.args.TerminalRangeExternal,
		HSPQuality:     g.args.Quality,
		JoinFilter:     g.args.JoinFilter,
		Threshold:      threshold,
		MaxQuery:       query.Len(),
		MaxTarget:      target.Len(),
	}
	heur, err := hpair.NewHeuristic(g.built.Model, uniqueMatchStates(hsps), cfg)
	if err != nil {
		return nil, engineerr.Wrap("GAM.Submit", engineerr.KindModelInvariantViolated, err)
	}
	hp := hpair.New(heur, subopt.New(), hsps)

	var out []*c4.Alignment
	for {
		aln, ok := hp.NextPath(threshold)
		if !ok {
			break
		}
		out = append(out, aln)
		if !g.args.UseSubopt {
			break
		}
	}
	return out, nil
}

// submitSDP drives the seeded banded path (internal/sdp), using each
// HSP's start cell and score as a scheduler seed. This is the
// UseGappedExtension == true branch: it bypasses internal/hpair entirely,
// since the seeds it needs are already exactly what an HSP gives us.
func (g *GAM) submitSDP(threshold c4.Score, query, target *scoring.Sequence, hsps []hpair.HSPSet) []*c4.Alignment {
	seeds := seedsFromHSPSets(hsps)
	if len(seeds) == 0 {
		return nil
	}

	reg := region.New(0, 0, query.Len(), target.Len())
	idx := subopt.New()
	var out []*c4.Alignment
	for {
		sched := sdp.NewScheduler(g.built.Model, sdp.Config{Region: reg, Direction: sdp.Forward, Dropoff: c4.Score(g.args.Dropoff)}, idx)
		res := sched.Run(seeds)
		if !res.Reached || res.Score < threshold {
			break
		}
		start, ok := seedByID(seeds, res.SeedID)
		if !ok {
			break
		}
		out = append(out, &c4.Alignment{
			Score:      res.Score,
			Region:     region.New(start.QueryPos, start.TargetPos, res.EndQuery-start.QueryPos, res.EndTarget-start.TargetPos),
			Operations: res.Operations,
			Model:      g.built.Model,
		})
		if !g.args.UseSubopt || g.args.SinglePassSubopt {
			break
		}
		idx.AddAlignment(cellsFromOperations(g.built.Model, start.QueryPos, start.TargetPos, res.Operations))
	}
	return out
}
