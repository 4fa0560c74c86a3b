// Command exonerate-go-demo is a thin CLI front door over gam.GAM (spec.md
// §1's "CLI argument parsing is out of scope for the core" — this is a
// caller-side convenience, not a reimplementation of exonerate's own CLI).
// It takes two raw DNA sequences on the command line and reports the
// alignments gam.GAM produces for them under one of the DNA model types;
// FASTA parsing, alphabets, and translation tables stay out of scope, so
// the codon-aware model types are not reachable from this demo.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
