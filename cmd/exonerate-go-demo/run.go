package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/gappedaligner/gam"
	"github.com/katalvlaran/gappedaligner/internal/models"
	"github.com/katalvlaran/gappedaligner/internal/scoring"
)

func runDemo(cmd *cobra.Command, f *demoFlags) error {
	modelType, err := parseModel(f.model)
	if err != nil {
		return err
	}
	refine, err := parseRefinement(f.refine)
	if err != nil {
		return err
	}

	ctx := &scoring.Context{
		Query:     &scoring.Sequence{ID: "query", Symbols: []byte(f.query)},
		Target:    &scoring.Sequence{ID: "target", Symbols: []byte(f.target)},
		DNASubmat: scoring.SimpleDNA(f.match, f.mismatch),
		Penalties: scoring.Penalties{
			GapOpen:   f.gapOpen,
			GapExtend: f.gapExtend,
			// est2genome/ner need splice/NER penalties too; the demo uses
			// fixed defaults since there is no per-model flag surface here.
			FivePrimeSplice:  -20,
			ThreePrimeSplice: -20,
			MinIntron:        4,
			MaxIntron:        1000,
			NEROpen:          -8,
			NERExtend:        -1,
			MinNER:           2,
			MaxNER:           1000,
		},
	}

	built, err := models.Open(modelType, "dna", "dna", ctx)
	if err != nil {
		return fmt.Errorf("opening model: %w", err)
	}

	g, err := gam.New(built, ctx, gam.Args{
		Model:              modelType,
		Score:              f.score,
		Percent:            f.percent,
		BestN:              f.bestN,
		UseSubopt:          f.useSubopt,
		Refinement:         refine,
		RefinementBoundary: f.refinementBoundary,
	}, gam.Options{})
	if err != nil {
		return fmt.Errorf("constructing GAM: %w", err)
	}

	if err := g.Submit(ctx.Query, ctx.Target, nil); err != nil {
		return fmt.Errorf("submitting alignment: %w", err)
	}

	out := cmd.OutOrStdout()
	alignments := g.Report()
	if len(alignments) == 0 {
		fmt.Fprintln(out, "no alignment reached the configured threshold")
		return nil
	}
	for i, aln := range alignments {
		fmt.Fprintf(out, "alignment %d: score=%d region=%+v\n", i, aln.Score, aln.Region)
		for _, op := range aln.Operations {
			tr := built.Model.Transition(op.Transition)
			fmt.Fprintf(out, "  %-12s x%d\n", tr.Name, op.Length)
		}
	}
	return nil
}
