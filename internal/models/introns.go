package models

import (
	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/scoring"
)

// addIntronSpan wires a bounded free-content state onto host: a zero-advance
// entry transition scored by five (the splice donor / region-open score), a
// self-loop advancing only the query or only the target axis, bounded by
// [minLen, maxLen] via a Span, and a zero-advance exit transition scored by
// three (splice acceptor / region-close score) — spec.md §4.K's est2genome
// description ("an intron state with five_prime_ss/three_prime_ss scoring
// transitions and a span... bounded by min_intron..max_intron").
func addIntronSpan(m *c4.Model, host c4.StateID, five, three, loop c4.CalcID, minLen, maxLen int, onQuery bool) (c4.StateID, error) {
	intron, err := m.AddState("intron")
	if err != nil {
		return c4.NoID, err
	}
	if _, err := m.AddTransition("intron_enter", host, intron, 0, 0, five, c4.LabelNone, nil); err != nil {
		return c4.NoID, err
	}
	if _, err := m.AddTransition("intron_exit", intron, host, 0, 0, three, c4.LabelNone, nil); err != nil {
		return c4.NoID, err
	}
	var loopT c4.TransitionID
	if onQuery {
		loopT, err = m.AddTransition("intron_loop", intron, intron, 1, 0, loop, c4.LabelNone, nil)
	} else {
		loopT, err = m.AddTransition("intron_loop", intron, intron, 0, 1, loop, c4.LabelNone, nil)
	}
	if err != nil {
		return c4.NoID, err
	}
	if onQuery {
		if _, err := m.AddSpan("intron_span", intron, minLen, maxLen, 0, 0, loopT, c4.NoID); err != nil {
			return c4.NoID, err
		}
	} else {
		if _, err := m.AddSpan("intron_span", intron, 0, 0, minLen, maxLen, c4.NoID, loopT); err != nil {
			return c4.NoID, err
		}
	}
	return intron, nil
}

func buildEst2Genome(ctx *scoring.Context) (*Built, error) {
	built, err := buildAffine(ctx, c4.ScopeAnywhere)
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
	zero, err := m.AddCalc("zero", 0, nil, nil, nil, c4.ProtectNone)
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

// buildNER wires a bounded non-equivalent region onto a plain affine model:
// a stretch of target sequence admitted at a flat open/extend cost without
// being scored against the query at all (spec.md §4.K's "NER states").
func buildNER(ctx *scoring.Context) (*Built, error) {
	built, err := buildAffine(ctx, c4.ScopeAnywhere)
	if err != nil {
		return nil, err
	}
	m := built.Model
	m.Open()
	open, err := m.AddCalc("ner_open", c4.Score(ctx.Penalties.NEROpen), func(int, int) c4.Score { return c4.Score(ctx.Penalties.NEROpen) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	extend, err := m.AddCalc("ner_extend", c4.Score(ctx.Penalties.NERExtend), func(int, int) c4.Score { return c4.Score(ctx.Penalties.NERExtend) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	ner, err := addIntronSpan(m, built.Match, open, extend, extend, ctx.Penalties.MinNER, ctx.Penalties.MaxNER, false)
	if err != nil {
		return nil, err
	}
	if err := m.Close(); err != nil {
		return nil, err
	}
	built.Intron = ner
	return built, nil
}

// buildGenomeToGenome extends est2genome with a second intron state on the
// query axis, admitting introns in both sequences — spec.md §4.K's
// genome2genome composition note.
func buildGenomeToGenome(ctx *scoring.Context) (*Built, error) {
	built, err := buildEst2Genome(ctx)
	if err != nil {
		return nil, err
	}
	m := built.Model
	m.Open()
	five, err := m.AddCalc("five_prime_ss_q", c4.Score(ctx.Penalties.FivePrimeSplice), func(int, int) c4.Score { return c4.Score(ctx.Penalties.FivePrimeSplice) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	three, err := m.AddCalc("three_prime_ss_q", c4.Score(ctx.Penalties.ThreePrimeSplice), func(int, int) c4.Score { return c4.Score(ctx.Penalties.ThreePrimeSplice) }, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	zero, err := m.AddCalc("zero_q", 0, nil, nil, nil, c4.ProtectNone)
	if err != nil {
		return nil, err
	}
	intronQuery, err := addIntronSpan(m, built.Match, five, three, zero, ctx.Penalties.MinIntron, ctx.Penalties.MaxIntron, true)
	if err != nil {
		return nil, err
	}
	if err := m.Close(); err != nil {
		return nil, err
	}
	built.IntronQuery = intronQuery
	return built, nil
}
