package models

import (
	"fmt"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/scoring"
)

// codonMatchCalc scores a (1,3)-advance transition by translating the codon
// at tpos and looking it up in ctx.ProteinSubmat against the query's amino
// acid at qpos — spec.md §4.K's protein2dna/protein2genome description
// ("codon-to-amino-acid match transitions advancing query by 1, target by
// 3, scored via ctx.Translate + the protein substitution matrix").
func codonMatchCalc(m *c4.Model, ctx *scoring.Context) (c4.CalcID, error) {
	if ctx.ProteinSubmat == nil {
		return c4.NoID, fmt.Errorf("models: protein model requires ctx.ProteinSubmat")
	}
	return m.AddCalc("codon_match", c4.Score(ctx.ProteinSubmat.Default), func(qpos, tpos int) c4.Score {
		aa := ctx.Translate(ctx.Target, tpos)
		return c4.Score(ctx.ProteinSubmat.Score(ctx.Query.At(qpos), aa))
	}, nil, nil, c4.ProtectNone)
}

func proteinSelfScore(ctx *scoring.Context) func(pos int) c4.Score {
	return func(pos int) c4.Score {
		aa := ctx.Query.At(pos)
		return c4.Score(ctx.ProteinSubmat.Score(aa, aa))
	}
}

// buildFrameshiftStates is the concrete frame-recovery wiring used by every
// codon-based model: two entry transitions (skip one base, skip two bases)
// each priced at ctx.Penalties.FrameshiftPenalty, and two exit transitions
// (resync at 0 extra bases, resync after a third base) priced free.
func buildFrameshiftStates(m *c4.Model, match c4.StateID, ctx *scoring.Context) (c4.StateID, error) {
	fs, err := m.AddState("frameshift")
	if err != nil {
		return c4.NoID, err
	}
	penalty, err := m.AddCalc("frameshift_penalty", c4.Score(ctx.Penalties.FrameshiftPenalty), func(int, int) c4.Score {
		return c4.Score(ctx.Penalties.FrameshiftPenalty)
	}, nil, nil, c4.ProtectNone)
	if err != nil {
		return c4.NoID, err
	}
	zero, err := m.AddCalc("frameshift_zero", 0, nil, nil, nil, c4.ProtectNone)
	if err != nil {
		return c4.NoID, err
	}
	if _, err := m.AddTransition("frameshift_skip1", match, fs, 0, 1, penalty, c4.LabelNone, nil); err != nil {
		return c4.NoID, err
	}
	if _, err := m.AddTransition("frameshift_skip2", match, fs, 0, 2, penalty, c4.LabelNone, nil); err != nil {
		return c4.NoID, err
	}
	if _, err := m.AddTransition("frameshift_resync0", fs, match, 0, 0, zero, c4.LabelNone, nil); err != nil {
		return c4.NoID, err
	}
	if _, err := m.AddTransition("frameshift_resync3", fs, match, 0, 3, zero, c4.LabelNone, nil); err != nil {
		return c4.NoID, err
	}
	return fs, nil
}

// buildProtein2DNA wires a protein-query/DNA-target model: codon match
// (1,3), affine gap states on both axes (query-residue gaps and
// target-triplet gaps), and frameshift recovery. dualMatch is threaded
// through to Built.DualMatch (spec.md §5's translate_both option); this
// port scores a single reading frame per Calc call regardless, since frame
// selection is ctx.Translate's concern (spec.md §1, out of scope here).
func buildProtein2DNA(ctx *scoring.Context, dualMatch bool) (*Built, error) {
	m := c4.Create("protein2dna")
	matchCalc, err := codonMatchCalc(m, ctx)
	if err != nil {
		return nil, err
	}
	zero, err := m.AddCalc("zero", 0, nil, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	open, err := m.AddCalc("gap_open", c4.Score(ctx.Penalties.GapOpen), func(int, int) c4.Score { return c4.Score(ctx.Penalties.GapOpen) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	extend, err := m.AddCalc("gap_extend", c4.Score(ctx.Penalties.GapExtend), func(int, int) c4.Score { return c4.Score(ctx.Penalties.GapExtend) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	match, err := m.AddState("match")
	if err != nil {
		return nil, err
	}
	self := proteinSelfScore(ctx)
	if _, err := m.AddTransition("enter", c4.NoID, match, 1, 3, matchCalc, c4.LabelMatch, &c4.Match{SelfScore: self}); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("step", match, match, 1, 3, matchCalc, c4.LabelMatch, &c4.Match{SelfScore: self}); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("leave", match, c4.NoID, 0, 0, zero, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	if _, _, err := addAffineGapStates(m, match, open, extend, zero); err != nil {
		return nil, err
	}
	fs, err := buildFrameshiftStates(m, match, ctx)
	if err != nil {
		return nil, err
	}
	m.ConfigureStartState(c4.ScopeAnywhere, nil)
	m.ConfigureEndState(c4.ScopeAnywhere, nil)
	if err := m.Close(); err != nil {
		return nil, err
	}
	return &Built{Model: m, Match: match, Frameshift: fs, Intron: c4.NoID, IntronQuery: c4.NoID, DualMatch: dualMatch}, nil
}

// buildProtein2Genome layers an intron state (scored via DNA splice
// penalties, bounded on the target axis) onto protein2dna, and enables
// DualMatch — spec.md §4.K's protein2genome description and §5's
// translate_both supplement.
func buildProtein2Genome(ctx *scoring.Context) (*Built, error) {
	built, err := buildProtein2DNA(ctx, true)
	if err != nil {
		return nil, err
	}
	m := built.Model
	m.Open()
	five, err := m.AddCalc("five_prime_ss", c4.Score(ctx.Penalties.FivePrimeSplice), func(int, int) c4.Score { return c4.Score(ctx.Penalties.FivePrimeSplice) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	three, err := m.AddCalc("three_prime_ss", c4.Score(ctx.Penalties.ThreePrimeSplice), func(int, int) c4.Score { return c4.Score(ctx.Penalties.ThreePrimeSplice) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	zero, err := m.AddCalc("zero_intron", 0, nil, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	intron, err := addIntronSpan(m, built.Match, five, three, zero, ctx.Penalties.MinIntron, ctx.Penalties.MaxIntron, false)
	if err != nil {
		return nil, err
	}
	if err := m.Close(); err != nil {
		return nil, err
	}
	built.Intron = intron
	return built, nil
}

// buildCodingToCoding wires a coding(query)-to-coding(target) model: codon
// match (3,3), frame-preserving affine indels that advance by whole codons,
// and frameshift recovery — spec.md §4.K's coding2coding description.
func buildCodingToCoding(ctx *scoring.Context) (*Built, error) {
	m := c4.Create("coding2coding")
	matchCalc, err := codonCodonMatchCalc(m, ctx)
	if err != nil {
		return nil, err
	}
	zero, err := m.AddCalc("zero", 0, nil, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	open, err := m.AddCalc("gap_open", c4.Score(ctx.Penalties.GapOpen), func(int, int) c4.Score { return c4.Score(ctx.Penalties.GapOpen) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	extend, err := m.AddCalc("gap_extend", c4.Score(ctx.Penalties.GapExtend), func(int, int) c4.Score { return c4.Score(ctx.Penalties.GapExtend) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	match, err := m.AddState("match")
	if err != nil {
		return nil, err
	}
	self := dnaSelfScore(ctx)
	if _, err := m.AddTransition("enter", c4.NoID, match, 3, 3, matchCalc, c4.LabelMatch, &c4.Match{SelfScore: self}); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("step", match, match, 3, 3, matchCalc, c4.LabelMatch, &c4.Match{SelfScore: self}); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("leave", match, c4.NoID, 0, 0, zero, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	ins, err := m.AddState("ins_codon")
	if err != nil {
		return nil, err
	}
	del, err := m.AddState("del_codon")
	if err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("ins_codon_open", match, ins, 3, 0, open, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("ins_codon_extend", ins, ins, 3, 0, extend, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("ins_codon_close", ins, match, 0, 0, zero, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("del_codon_open", match, del, 0, 3, open, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("del_codon_extend", del, del, 0, 3, extend, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("del_codon_close", del, match, 0, 0, zero, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	fs, err := buildFrameshiftStates(m, match, ctx)
	if err != nil {
		return nil, err
	}
	m.ConfigureStartState(c4.ScopeAnywhere, nil)
	m.ConfigureEndState(c4.ScopeAnywhere, nil)
	if err := m.Close(); err != nil {
		return nil, err
	}
	return &Built{Model: m, Match: match, Frameshift: fs, Intron: c4.NoID, IntronQuery: c4.NoID}, nil
}

// codonCodonMatchCalc scores a (3,3)-advance transition by translating both
// the query and target codons and comparing amino acids via ctx.ProteinSubmat.
func codonCodonMatchCalc(m *c4.Model, ctx *scoring.Context) (c4.CalcID, error) {
	if ctx.ProteinSubmat == nil {
		return c4.NoID, fmt.Errorf("models: coding model requires ctx.ProteinSubmat")
	}
	return m.AddCalc("codon_codon_match", c4.Score(ctx.ProteinSubmat.Default), func(qpos, tpos int) c4.Score {
		qaa := ctx.Translate(ctx.Query, qpos)
		taa := ctx.Translate(ctx.Target, tpos)
		return c4.Score(ctx.ProteinSubmat.Score(qaa, taa))
	}, nil, nil, c4.ProtectNone)
}

// buildCodingToGenome layers a target-axis intron onto coding2coding —
// spec.md §4.K's coding2genome description.
func buildCodingToGenome(ctx *scoring.Context) (*Built, error) {
	built, err := buildCodingToCoding(ctx)
	if err != nil {
		return nil, err
	}
	m := built.Model
	m.Open()
	five, err := m.AddCalc("five_prime_ss", c4.Score(ctx.Penalties.FivePrimeSplice), func(int, int) c4.Score { return c4.Score(ctx.Penalties.FivePrimeSplice) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	three, err := m.AddCalc("three_prime_ss", c4.Score(ctx.Penalties.ThreePrimeSplice), func(int, int) c4.Score { return c4.Score(ctx.Penalties.ThreePrimeSplice) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	zero, err := m.AddCalc("zero_intron", 0, nil, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	intron, err := addIntronSpan(m, built.Match, five, three, zero, ctx.Penalties.MinIntron, ctx.Penalties.MaxIntron, false)
	if err != nil {
		return nil, err
	}
	if err := m.Close(); err != nil {
		return nil, err
	}
	built.Intron = intron
	return built, nil
}

// buildCdnaToGenome is an est2genome-shaped affine DNA model with an
// additional UTR sub-model spliced onto the start/end via c4.Insert —
// spec.md §5's supplemented "UTR sub-models via insert" feature. The UTR
// sub-model is an ungapped-style free-running state admitting untranslated
// flanking sequence at a flat low per-base cost before/after the coding
// match region.
func buildCdnaToGenome(ctx *scoring.Context) (*Built, error) {
	built, err := buildEst2Genome(ctx)
	if err != nil {
		return nil, err
	}
	utr := c4.Create("utr")
	utrCalc, err := utr.AddCalc("utr_base", c4.Score(ctx.Penalties.GapExtend), func(int, int) c4.Score {
		return c4.Score(ctx.Penalties.GapExtend)
	}, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	utrState, err := utr.AddState("utr")
	if err != nil {
		return nil, err
	}
	utrEnter, err := utr.AddState("utr_enter")
	if err != nil {
		return nil, err
	}
	utrExit, err := utr.AddState("utr_exit")
	if err != nil {
		return nil, err
	}
	if _, err := utr.AddTransition("utr_in", c4.NoID, utrEnter, 0, 0, utrCalc, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	if _, err := utr.AddTransition("utr_step", utrEnter, utrState, 1, 1, utrCalc, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	if _, err := utr.AddTransition("utr_loop", utrState, utrState, 1, 1, utrCalc, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	if _, err := utr.AddTransition("utr_out", utrState, utrExit, 0, 0, utrCalc, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	// utr stays open: c4.Insert requires both models open.

	m := built.Model
	m.Open()
	if err := c4.Insert(m, utr, built.Match, built.Match); err != nil {
		return nil, err
	}
	if err := m.Close(); err != nil {
		return nil, err
	}
	return built, nil
}
