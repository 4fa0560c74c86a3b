package models

import (
	"fmt"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/scoring"
)

// dnaMatchCalc builds a (1,1)-advance match Calc scored from ctx's DNA
// substitution matrix.
func dnaMatchCalc(m *c4.Model, ctx *scoring.Context) (c4.CalcID, error) {
	if ctx.DNASubmat == nil {
		return c4.NoID, fmt.Errorf("models: DNA model requires ctx.DNASubmat")
	}
	return m.AddCalc("match", c4.Score(ctx.DNASubmat.Default), func(qpos, tpos int) c4.Score {
		return c4.Score(ctx.DNASubmat.Score(ctx.Query.At(qpos), ctx.Target.At(tpos)))
	}, nil, nil, c4.ProtectNone)
}

// dnaSelfScore is the per-query-position self-match score used by HSP
// MatchScore/SelfScore (spec.md §4.H/§4.J's percent-of-self thresholding):
// a residue's best possible score against itself.
func dnaSelfScore(ctx *scoring.Context) func(pos int) c4.Score {
	return func(pos int) c4.Score {
		sym := ctx.Query.At(pos)
		return c4.Score(ctx.DNASubmat.Score(sym, sym))
	}
}

// addAffineGapStates wires a pair of affine gap states (query-insert,
// target-insert) onto match, each reached by an `open`-penalty transition
// from match and a `close` (zero-cost) transition back, with a self-loop
// `extend`-penalty transition — spec.md §4.K's affine description ("gap-open
// modelled by transitions from match to gap with open penalty, gap-extend
// by gap-to-gap with extend penalty, gap-close by gap-to-match at 0").
func addAffineGapStates(m *c4.Model, match c4.StateID, open, extend, zero c4.CalcID) (insState, delState c4.StateID, err error) {
	insState, err = m.AddState("ins")
	if err != nil {
		return c4.NoID, c4.NoID, err
	}
	delState, err = m.AddState("del")
	if err != nil {
		return c4.NoID, c4.NoID, err
	}
	if _, err = m.AddTransition("ins_open", match, insState, 1, 0, open, c4.LabelNone, nil); err != nil {
		return
	}
	if _, err = m.AddTransition("ins_extend", insState, insState, 1, 0, extend, c4.LabelNone, nil); err != nil {
		return
	}
	if _, err = m.AddTransition("ins_close", insState, match, 0, 0, zero, c4.LabelNone, nil); err != nil {
		return
	}
	if _, err = m.AddTransition("del_open", match, delState, 0, 1, open, c4.LabelNone, nil); err != nil {
		return
	}
	if _, err = m.AddTransition("del_extend", delState, delState, 0, 1, extend, c4.LabelNone, nil); err != nil {
		return
	}
	if _, err = m.AddTransition("del_close", delState, match, 0, 0, zero, c4.LabelNone, nil); err != nil {
		return
	}
	return insState, delState, nil
}

func buildUngapped(ctx *scoring.Context) (*Built, error) {
	m := c4.Create("ungapped")
	matchCalc, err := dnaMatchCalc(m, ctx)
	if err != nil {
		return nil, err
	}
	match, err := m.AddState("match")
	if err != nil {
		return nil, err
	}
	self := dnaSelfScore(ctx)
	if _, err := m.AddTransition("enter", c4.NoID, match, 1, 1, matchCalc, c4.LabelMatch, &c4.Match{SelfScore: self}); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("step", match, match, 1, 1, matchCalc, c4.LabelMatch, &c4.Match{SelfScore: self}); err != nil {
		return nil, err
	}
	zero, err := m.AddCalc("zero", 0, nil, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("leave", match, c4.NoID, 0, 0, zero, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	m.ConfigureStartState(c4.ScopeAnywhere, nil)
	m.ConfigureEndState(c4.ScopeAnywhere, nil)
	if err := m.Close(); err != nil {
		return nil, err
	}
	return &Built{Model: m, Match: match, Frameshift: c4.NoID, Intron: c4.NoID, IntronQuery: c4.NoID}, nil
}

// buildAffine is the shared skeleton for AffineLocal/AffineGlobal/
// AffineEndsFreeQuery: they differ only in start/end scope (spec.md §4.K's
// "whether start/end scopes are EDGE/CORNER/ANYWHERE").
func buildAffine(ctx *scoring.Context, scope c4.Scope) (*Built, error) {
	m := c4.Create("affine")
	matchCalc, err := dnaMatchCalc(m, ctx)
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
	if _, err := m.AddTransition("enter", c4.NoID, match, 1, 1, matchCalc, c4.LabelMatch, &c4.Match{SelfScore: self}); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("step", match, match, 1, 1, matchCalc, c4.LabelMatch, &c4.Match{SelfScore: self}); err != nil {
		return nil, err
	}
	if _, err := m.AddTransition("leave", match, c4.NoID, 0, 0, zero, c4.LabelNone, nil); err != nil {
		return nil, err
	}
	if _, _, err := addAffineGapStates(m, match, open, extend, zero); err != nil {
		return nil, err
	}
	m.ConfigureStartState(scope, nil)
	m.ConfigureEndState(scope, nil)
	if err := m.Close(); err != nil {
		return nil, err
	}
	return &Built{Model: m, Match: match, Frameshift: c4.NoID, Intron: c4.NoID, IntronQuery: c4.NoID}, nil
}
