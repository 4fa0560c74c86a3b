package scoring

// Penalties groups the constant costs models.go wires into gap/intron/NER/
// frameshift calcs. Zero values are not special-cased: the builders in
// internal/models add each of these transitions whatever its penalty, so
// an unset penalty makes the transition score 0.
type Penalties struct {
	GapOpen          int32
	GapExtend        int32
	IntronOpenPenalty int32
	FivePrimeSplice   int32
	ThreePrimeSplice  int32
	MinIntron         int
	MaxIntron         int
	FrameshiftPenalty int32
	NEROpen           int32
	NERExtend         int32
	MinNER            int
	MaxNER            int
}

// Context is the concrete ScoringContext every model in internal/models
// closes over. It is opaque to c4/viterbi/bsdp/sdp — they only ever see the
// c4.ScoreFunc closures built from it.
type Context struct {
	Query  *Sequence
	Target *Sequence

	DNASubmat     *SubstitutionMatrix
	ProteinSubmat *SubstitutionMatrix

	Penalties Penalties

	// CodonTable maps a 3-symbol DNA codon to a single amino-acid symbol,
	// used by protein<->DNA/codon models. Translation itself (building this
	// table, handling ambiguity) is out of scope; callers supply it ready-made.
	CodonTable map[[3]byte]byte

	// gcCache is a slot for regional GC-content values (e.g. for splice
	// site scoring); no code in this module writes or reads it.
	gcCache map[int]float64
}

// NewContext builds a Context over query/target with the given matrices,
// penalties and codon table (nil codon table is fine for DNA/DNA or
// protein/protein models).
func NewContext(query, target *Sequence, dna, protein *SubstitutionMatrix, penalties Penalties, codonTable map[[3]byte]byte) *Context {
	return &Context{
		Query: query, Target: target,
		DNASubmat: dna, ProteinSubmat: protein,
		Penalties: penalties, CodonTable: codonTable,
	}
}

// Translate returns the amino-acid symbol for the codon starting at pos in
// seq, or 0 if the codon is incomplete or unknown.
func (c *Context) Translate(seq *Sequence, pos int) byte {
	if pos+3 > seq.Len() {
		return 0
	}
	codon := [3]byte{seq.At(pos), seq.At(pos + 1), seq.At(pos + 2)}
	return c.CodonTable[codon]
}
