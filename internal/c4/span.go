package c4

// Span declares a state in which the path may emit bounded free content —
// an intron or an NER region — whose cost is priced by a separate loop
// model rather than by materialising every intervening cell. QueryLoop and
// TargetLoop, when set, are self-loop transitions on SpanState that advance
// only the query or only the target respectively; either may be NoID if the
// span never grows in that dimension (e.g. a strictly-intron span only
// grows the target).
type Span struct {
	Name        string
	id          SpanID
	SpanState   StateID
	MinQuery    int
	MaxQuery    int
	MinTarget   int
	MaxTarget   int
	QueryLoop   TransitionID
	TargetLoop  TransitionID
}

// ID returns the span's arena id, assigned when Model.AddSpan allocates it.
func (s *Span) ID() SpanID { return s.id }
