package main

import (
	"github.com/spf13/cobra"
)

// demoFlags mirrors gam.Args's most commonly tuned fields as flat CLI
// flags (spec.md §6's argument surface, given Go-flag names).
type demoFlags struct {
	query  string
	target string
	model  string

	match    int32
	mismatch int32
	gapOpen  int32
	gapExtend int32

	score   int64
	percent float64
	bestN   int

	useSubopt          bool
	refine             string
	refinementBoundary int
}

func newRootCmd() *cobra.Command {
	f := &demoFlags{}
	cmd := &cobra.Command{
		Use:   "exonerate-go-demo",
		Short: "Demonstration CLI over gam.GAM",
		Long: `exonerate-go-demo runs the gappedaligner engine over two raw DNA
sequences given on the command line and prints the resulting alignments.

FASTA parsing, alphabets, translation tables and HSP discovery are out of
scope (spec.md §1); --query/--target take literal symbol strings and no
seeding is performed, so every run uses GAM's exhaustive Viterbi path.`,
		Example: `  exonerate-go-demo --query ACGTACGT --target ACGTTCGT --model affine:local`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.query, "query", "", "query DNA sequence (required)")
	flags.StringVar(&f.target, "target", "", "target DNA sequence (required)")
	flags.StringVar(&f.model, "model", "affine:local", "model: ungapped, affine:local, affine:global, affine:bestfit, est2genome, ner")
	flags.Int32Var(&f.match, "match", 5, "match score")
	flags.Int32Var(&f.mismatch, "mismatch", -4, "mismatch score")
	flags.Int32Var(&f.gapOpen, "gap-open", -10, "gap open penalty")
	flags.Int32Var(&f.gapExtend, "gap-extend", -1, "gap extend penalty")
	flags.Int64Var(&f.score, "score", 0, "absolute score threshold")
	flags.Float64Var(&f.percent, "percent", 0, "percent-of-self score threshold, 0-100")
	flags.IntVar(&f.bestN, "best-n", 1, "keep only the N best alignments per query; <= 0 is unbounded")
	flags.BoolVar(&f.useSubopt, "subopt", false, "enumerate suboptimal alignments as well as the best one")
	flags.StringVar(&f.refine, "refine", "none", "refinement mode: none, region, full")
	flags.IntVar(&f.refinementBoundary, "refinement-boundary", 0, "region-refinement growth, in residues, on each side")

	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}
