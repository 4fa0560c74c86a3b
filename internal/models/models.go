// Package models builds the twelve predefined C4 models spec.md §4.K
// describes: named procedures that each close a declarative FSM wired to a
// scoring.Context, differing in which alphabets/match types they admit,
// whether they carry intron/frameshift/NER states, and their start/end
// scopes (spec.md's "each model... differ[s] in... alphabets... match
// types... intron/frameshift/NER states... EDGE/CORNER/ANYWHERE").
package models

import (
	"fmt"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/scoring"
)

// ModelType selects one of the twelve predefined models (spec.md §6's
// `model` argument).
type ModelType int

const (
	Ungapped ModelType = iota
	AffineLocal
	AffineGlobal
	AffineEndsFreeQuery
	Est2Genome
	NER
	Protein2DNA
	Protein2Genome
	CodingToCoding
	CodingToGenome
	CdnaToGenome
	GenomeToGenome
)

func (t ModelType) String() string {
	switch t {
	case Ungapped:
		return "ungapped"
	case AffineLocal:
		return "affine:local"
	case AffineGlobal:
		return "affine:global"
	case AffineEndsFreeQuery:
		return "affine:bestfit"
	case Est2Genome:
		return "est2genome"
	case NER:
		return "ner"
	case Protein2DNA:
		return "protein2dna"
	case Protein2Genome:
		return "protein2genome"
	case CodingToCoding:
		return "coding2coding"
	case CodingToGenome:
		return "coding2genome"
	case CdnaToGenome:
		return "cdna2genome"
	case GenomeToGenome:
		return "genome2genome"
	default:
		return "unknown"
	}
}

// Built is what every Build* function returns: the closed model plus the
// states a caller needs to plant HSP seeds on or wire into
// internal/hpair.MatchState (spec.md §6's `open_model` return value,
// expanded with the extra handles this port's hpair/sdp callers need).
type Built struct {
	Model *c4.Model

	// Match is the model's primary homology state: where an HSP's matched
	// residues live.
	Match c4.StateID

	// Frameshift is the codon-recovery helper state for protein<->DNA/codon
	// models, c4.NoID otherwise.
	Frameshift c4.StateID

	// Intron is the (first, or only) intron/NER state, c4.NoID for models
	// without one.
	Intron c4.StateID

	// IntronQuery is a second intron state on the query axis, used only by
	// GenomeToGenome (introns on both sequences); c4.NoID otherwise.
	IntronQuery c4.StateID

	// DualMatch mirrors the original's translate_both/dual_match flag
	// (spec.md §5): Protein2Genome may score either reading frame of a
	// translated target. Threading the flag into scoring itself (picking
	// which frame's translation a Calc reads) is the scoring.Context
	// caller's concern; Built only surfaces whether this model instance
	// was configured for it.
	DualMatch bool
}

// Open builds model t over ctx, matching spec.md §6's
// `open_model(ModelType, query_alphabet, target_alphabet) → Model`. The
// alphabet strings are accepted for interface parity and included in any
// error message; the actual symbol scoring is entirely driven by ctx's
// substitution matrices and codon table; models validate the scoring
// wiring they need (e.g. a DNA submat) rather than the alphabet names
// themselves; translation table wrangling and alphabet parsing are out of
// scope (spec.md §1).
func Open(t ModelType, queryAlphabet, targetAlphabet string, ctx *scoring.Context) (*Built, error) {
	switch t {
	case Ungapped:
		return buildUngapped(ctx)
	case AffineLocal:
		return buildAffine(ctx, c4.ScopeAnywhere)
	case AffineGlobal:
		return buildAffine(ctx, c4.ScopeCorner)
	case AffineEndsFreeQuery:
		return buildAffine(ctx, c4.ScopeQuery)
	case Est2Genome:
		return buildEst2Genome(ctx)
	case NER:
		return buildNER(ctx)
	case Protein2DNA:
		return buildProtein2DNA(ctx, false)
	case Protein2Genome:
		return buildProtein2Genome(ctx)
	case CodingToCoding:
		return buildCodingToCoding(ctx)
	case CodingToGenome:
		return buildCodingToGenome(ctx)
	case CdnaToGenome:
		return buildCdnaToGenome(ctx)
	case GenomeToGenome:
		return buildGenomeToGenome(ctx)
	default:
		return nil, fmt.Errorf("models.Open: unknown model type %d for alphabets %q/%q", t, queryAlphabet, targetAlphabet)
	}
}
