package scoring

// SubstitutionMatrix maps a pair of symbols to a score, e.g. BLOSUM62 for
// protein-protein matches or a simple match/mismatch matrix for DNA.
// Construction (parsing a matrix file) is out of scope; callers build one
// with NewSubstitutionMatrix and Set.
type SubstitutionMatrix struct {
	scores  map[[2]byte]int32
	byte2x  bool // informational only
	Default int32
}

// NewSubstitutionMatrix returns an empty matrix whose Score defaults to def
// for any unset pair.
func NewSubstitutionMatrix(def int32) *SubstitutionMatrix {
	return &SubstitutionMatrix{scores: make(map[[2]byte]int32), Default: def}
}

// Set records the score for (a, b) and its symmetric pair (b, a).
func (m *SubstitutionMatrix) Set(a, b byte, score int32) {
	m.scores[[2]byte{a, b}] = score
	m.scores[[2]byte{b, a}] = score
}

// Score returns the configured score for (a, b), or Default if unset.
func (m *SubstitutionMatrix) Score(a, b byte) int32 {
	if v, ok := m.scores[[2]byte{a, b}]; ok {
		return v
	}
	return m.Default
}

// SimpleDNA builds a match/mismatch-only matrix over {A,C,G,T,N}, with N
// always scoring mismatch (a conservative default matching how the
// original treats ambiguity codes outside an explicit matrix file).
func SimpleDNA(match, mismatch int32) *SubstitutionMatrix {
	m := NewSubstitutionMatrix(mismatch)
	for _, b := range []byte{'A', 'C', 'G', 'T'} {
		m.Set(b, b, match)
	}
	return m
}
