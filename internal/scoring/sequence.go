// Package scoring is the opaque ScoringContext collaborator spec.md §4.D
// describes: it threads substitution matrices, penalty constants and
// per-region init/exit hooks through model calcs, without the engine
// (internal/c4, internal/viterbi, ...) ever inspecting it. FASTA parsing,
// alphabets and translation tables are out of scope (spec.md §1); Sequence
// here is the minimal opaque handle the engine's callers are expected to
// already have built.
package scoring

// Sequence is a symbol slice plus an identifier. Construction, alphabet
// validation and translation are entirely the caller's concern.
type Sequence struct {
	ID      string
	Symbols []byte
}

// Len returns the number of symbols.
func (s *Sequence) Len() int { return len(s.Symbols) }

// At returns the symbol at pos, or 0 if out of range.
func (s *Sequence) At(pos int) byte {
	if pos < 0 || pos >= len(s.Symbols) {
		return 0
	}
	return s.Symbols[pos]
}
