package models

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gappedaligner/internal/c4"
	"github.com/katalvlaran/gappedaligner/internal/scoring"
)

func dnaTestContext() *scoring.Context {
	return &scoring.Context{
		Query:     &scoring.Sequence{ID: "q", Symbols: []byte("ACGTACGTAC")},
		Target:    &scoring.Sequence{ID: "t", Symbols: []byte("ACGTACGTACGTACGTACGTACGTACGTACGTACGTACGT")},
		DNASubmat: scoring.SimpleDNA(5, -4),
		Penalties: scoring.Penalties{
			GapOpen: -10, GapExtend: -1,
			FivePrimeSplice: -5, ThreePrimeSplice: -5,
			MinIntron: 4, MaxIntron: 30,
			NEROpen: -8, NERExtend: -1, MinNER: 2, MaxNER: 20,
			FrameshiftPenalty: -12,
		},
	}
}

func codonTable() map[[3]byte]byte {
	return map[[3]byte]byte{
		{'A', 'C', 'G'}: 'A',
		{'T', 'A', 'C'}: 'T',
		{'G', 'T', 'A'}: 'G',
	}
}

func proteinTestContext() *scoring.Context {
	ctx := dnaTestContext()
	ctx.Query = &scoring.Sequence{ID: "q", Symbols: []byte("ATG")}
	ctx.ProteinSubmat = scoring.SimpleDNA(8, -6)
	ctx.CodonTable = codonTable()
	return ctx
}

func requireClosed(t *testing.T, b *Built, err error) *Built {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, b)
	require.NotNil(t, b.Model)
	require.False(t, b.Model.IsOpen(), "Open() must return a closed model")
	require.NotEqual(t, c4.NoID, b.Match)
	return b
}

func TestOpenDNAModels(t *testing.T) {
	ctx := dnaTestContext()
	for _, mt := range []ModelType{Ungapped, AffineLocal, AffineGlobal, AffineEndsFreeQuery, Est2Genome, NER} {
		t.Run(mt.String(), func(t *testing.T) {
			b, err := Open(mt, "dna", "dna", ctx)
			requireClosed(t, b, err)
		})
	}
}

func TestOpenIntronModelsExposeIntronState(t *testing.T) {
	ctx := dnaTestContext()
	b, err := Open(Est2Genome, "dna", "dna", ctx)
	requireClosed(t, b, err)
	require.NotEqual(t, c4.NoID, b.Intron)
}

func TestOpenGenomeToGenomeHasTwoIntronStates(t *testing.T) {
	ctx := dnaTestContext()
	b, err := Open(GenomeToGenome, "dna", "dna", ctx)
	requireClosed(t, b, err)
	require.NotEqual(t, c4.NoID, b.Intron)
	require.NotEqual(t, c4.NoID, b.IntronQuery)
	require.NotEqual(t, b.Intron, b.IntronQuery)
}

func TestOpenCodonModels(t *testing.T) {
	ctx := proteinTestContext()
	for _, mt := range []ModelType{Protein2DNA, Protein2Genome, CodingToCoding, CodingToGenome} {
		t.Run(mt.String(), func(t *testing.T) {
			b, err := Open(mt, "protein", "dna", ctx)
			requireClosed(t, b, err)
			require.NotEqual(t, c4.NoID, b.Frameshift)
		})
	}
}

func TestOpenProtein2GenomeSetsDualMatch(t *testing.T) {
	ctx := proteinTestContext()
	b, err := Open(Protein2Genome, "protein", "dna", ctx)
	requireClosed(t, b, err)
	require.True(t, b.DualMatch)
}

func TestOpenCdnaToGenomeSplicesUTR(t *testing.T) {
	ctx := dnaTestContext()
	b, err := Open(CdnaToGenome, "dna", "dna", ctx)
	requireClosed(t, b, err)
	require.NotEqual(t, c4.NoID, b.Intron)

	foundUTR := false
	for _, s := range b.Model.States() {
		if s.Name == "utr" {
			foundUTR = true
			break
		}
	}
	require.True(t, foundUTR, "expected an inserted utr state")
}

func TestOpenUnknownModelTypeErrors(t *testing.T) {
	ctx := dnaTestContext()
	_, err := Open(ModelType(999), "dna", "dna", ctx)
	require.Error(t, err)
}

func TestDNAModelWithoutSubmatErrors(t *testing.T) {
	ctx := dnaTestContext()
	ctx.DNASubmat = nil
	_, err := Open(Ungapped, "dna", "dna", ctx)
	require.Error(t, err)
}
