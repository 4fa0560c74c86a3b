// Package gam implements the Gapped Alignment Manager, the top-level
// orchestrator spec.md §4.J / §6 describes: per-query best-N bookkeeping,
// percent-of-self thresholding, suboptimal iteration, optional refinement,
// and result emission, wired over internal/models, internal/hpair, and
// internal/sdp.
package gam

import (
	"fmt"

	"github.com/katalvlaran/gappedaligner/internal/engineerr"
	"github.com/katalvlaran/gappedaligner/internal/models"
)

// RefineMode selects GAM's post-pass refinement strategy (spec.md §4.J).
type RefineMode int

const (
	// RefineNone skips refinement; a heuristic alignment is reported as-is.
	RefineNone RefineMode = iota
	// RefineRegion re-runs full-model Viterbi over the alignment's region
	// grown by Args.RefinementBoundary on each side, clipped to sequence
	// bounds.
	RefineRegion
	// RefineFull re-runs full-model Viterbi over the entire query/target
	// rectangle.
	RefineFull
)

func (r RefineMode) String() string {
	switch r {
	case RefineNone:
		return "none"
	case RefineRegion:
		return "region"
	case RefineFull:
		return "full"
	default:
		return "unknown"
	}
}

// Args is GAM's argument surface (spec.md §6's recognised-name table),
// given Go field names instead of the original's flag-string keys. CLI
// flag parsing itself is out of scope (spec.md §1); callers populate Args
// directly or, for the demo binary, from cobra flags (cmd/exonerate-go-demo).
type Args struct {
	Model models.ModelType

	// Score is the absolute score threshold a reported alignment must clear.
	Score int64
	// Percent raises that floor per-query to max(Score, Percent*SelfScore/100).
	Percent float64
	// BestN keeps only the N highest-scoring alignments per query; <= 0
	// means unbounded.
	BestN int

	UseSubopt          bool
	UseGappedExtension bool

	Refinement         RefineMode
	RefinementBoundary int

	JoinFilter int

	TerminalRangeInternal, TerminalRangeExternal int
	JoinRangeInternal, JoinRangeExternal         int
	SpanRangeInternal, SpanRangeExternal         int

	FrameshiftPenalty int32

	Quality float64

	Dropoff          int64
	SinglePassSubopt bool

	TracebackMemoryLimit int
}

// Validate reports the first InvalidArgument-kind violation, mirroring
// dtw.Options.Validate()'s single-pass range-check style.
func (a *Args) Validate() error {
	if a.Percent < 0 || a.Percent > 100 {
		return engineerr.Wrap("Args.Validate", engineerr.KindInvalidArgument, fmt.Errorf("percent %.2f out of [0,100]", a.Percent))
	}
	if a.RefinementBoundary < 0 {
		return engineerr.Wrap("Args.Validate", engineerr.KindInvalidArgument, fmt.Errorf("refinement boundary %d is negative", a.RefinementBoundary))
	}
	if a.JoinFilter < 0 {
		return engineerr.Wrap("Args.Validate", engineerr.KindInvalidArgument, fmt.Errorf("join filter %d is negative", a.JoinFilter))
	}
	if a.Quality < 0 || a.Quality > 100 {
		return engineerr.Wrap("Args.Validate", engineerr.KindInvalidArgument, fmt.Errorf("quality %.2f out of [0,100]", a.Quality))
	}
	if a.TerminalRangeInternal < 0 || a.TerminalRangeExternal < 0 || a.JoinRangeInternal < 0 || a.JoinRangeExternal < 0 || a.SpanRangeInternal < 0 || a.SpanRangeExternal < 0 {
		return engineerr.Wrap("Args.Validate", engineerr.KindInvalidArgument, fmt.Errorf("range sizes must be non-negative"))
	}
	if a.Refinement != RefineNone && a.Refinement != RefineRegion && a.Refinement != RefineFull {
		return engineerr.Wrap("Args.Validate", engineerr.KindInvalidArgument, fmt.Errorf("unknown refinement mode %d", a.Refinement))
	}
	if a.TracebackMemoryLimit < 0 {
		return engineerr.Wrap("Args.Validate", engineerr.KindInvalidArgument, fmt.Errorf("traceback memory limit %d is negative", a.TracebackMemoryLimit))
	}
	return nil
}
