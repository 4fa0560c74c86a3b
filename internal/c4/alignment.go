package c4

import "github.com/katalvlaran/gappedaligner/internal/region"

// Operation is one step of a traced alignment path: the transition taken
// and how many times it repeated consecutively (match/gap runs collapse
// into a single Operation with Length > 1, matching vulgar/cigar-style
// run-length encoding that the (out-of-scope) output formatters expect).
type Operation struct {
	Transition TransitionID
	Length     int64
}

// Alignment is the engine's one output type (spec.md §6): a score, the
// region it covers, and the operation list a caller renders to
// sugar/cigar/vulgar/GFF/ryo — all of which are out of scope here.
type Alignment struct {
	Score      Score
	Region     region.Region
	Operations []Operation
	Model      *Model
}
