// Package c4 implements the declarative pairwise finite-state machine that
// the Viterbi, SDP, BSDP and heuristic subsystems all consume: states,
// scored transitions, shadows, portals and spans, with an explicit
// open/close lifecycle (spec.md §3 "C4 model" and §4.C).
package c4

import "github.com/katalvlaran/gappedaligner/internal/arena"

// Score is the DP accumulator type. It must tolerate the sentinel values
// below participating in ordinary arithmetic comparisons, so it stays a
// plain signed integer rather than a type wrapping under/overflow checks at
// every operation — protection is opt-in per Calc (see Protect).
type Score int64

// Sentinels for "unreachable" and its arithmetic-saturation counterpart.
// Matches C4_IMPOSSIBLY_LOW_SCORE / C4_IMPOSSIBLY_HIGH_SCORE exactly so test
// vectors ported from the original stay numerically comparable.
const (
	ImpossiblyLow  Score = -987654321
	ImpossiblyHigh Score = 987654321
)

// Add returns base+delta, except that ImpossiblyLow absorbs any addition:
// once a path is unreachable it stays unreachable regardless of further
// calc scores (spec.md §3 "arithmetic on it remains impossibly-low").
func Add(base, delta Score) Score {
	if base == ImpossiblyLow {
		return ImpossiblyLow
	}
	return base + delta
}

// Max returns the greater of a and b under ordinary integer ordering; since
// ImpossiblyLow is far below any real score this also implements "unreached
// cells lose to any reached cell".
func Max(a, b Score) Score {
	if a > b {
		return a
	}
	return b
}

// Scope restricts where a path may start or end in the DP rectangle.
type Scope int

const (
	ScopeAnywhere Scope = iota
	ScopeEdge
	ScopeQuery
	ScopeTarget
	ScopeCorner
)

func (s Scope) String() string {
	switch s {
	case ScopeAnywhere:
		return "ANYWHERE"
	case ScopeEdge:
		return "EDGE"
	case ScopeQuery:
		return "QUERY"
	case ScopeTarget:
		return "TARGET"
	case ScopeCorner:
		return "CORNER"
	default:
		return "UNKNOWN"
	}
}

// Admits reports whether a cell at the given position may host a start (or
// end) event for this scope. atQueryEdge/atTargetEdge tell whether the
// position sits on the query/target boundary being tested (position 0 for a
// start scope, the region's query/target end for an end scope).
func (s Scope) Admits(atQueryEdge, atTargetEdge bool) bool {
	switch s {
	case ScopeAnywhere:
		return true
	case ScopeEdge:
		return atQueryEdge || atTargetEdge
	case ScopeQuery:
		return atQueryEdge
	case ScopeTarget:
		return atTargetEdge
	case ScopeCorner:
		return atQueryEdge && atTargetEdge
	default:
		return false
	}
}

// Label is the semantic tag carried by a Transition.
type Label int

const (
	LabelNone Label = iota
	LabelMatch
	LabelGap
	LabelNER
	LabelSS5
	LabelSS3
	LabelIntron
	LabelSplitCodon
	LabelFrameshift
)

func (l Label) String() string {
	switch l {
	case LabelNone:
		return "NONE"
	case LabelMatch:
		return "MATCH"
	case LabelGap:
		return "GAP"
	case LabelNER:
		return "NER"
	case LabelSS5:
		return "SS5"
	case LabelSS3:
		return "SS3"
	case LabelIntron:
		return "INTRON"
	case LabelSplitCodon:
		return "SPLIT_CODON"
	case LabelFrameshift:
		return "FRAMESHIFT"
	default:
		return "UNKNOWN"
	}
}

// Protect flags request saturating behaviour from a Calc's accumulator
// instead of silent wraparound.
type Protect int

const (
	ProtectNone      Protect = 0
	ProtectOverflow  Protect = 1 << 0
	ProtectUnderflow Protect = 1 << 1
)

// StateID, TransitionID, CalcID, ShadowID, PortalID and SpanID are arena
// indices into the owning Model's respective arenas.
type (
	StateID      = arena.ID
	TransitionID = arena.ID
	CalcID       = arena.ID
	ShadowID     = arena.ID
	PortalID     = arena.ID
	SpanID       = arena.ID
)

// NoID marks the absence of a reference (e.g. a Match span's QueryLoop).
const NoID = arena.NoID
