package c4

// Match is the payload carried by a transition labelled LabelMatch: the
// query/target advance it already implies (AdvanceQuery/AdvanceTarget on
// the owning Transition), plus a per-position self-score used by percent-
// of-self thresholding (spec.md §4.J) and HSP-quality filtering (§4.H), and
// a mask predicate for soft-masked regions.
type Match struct {
	SelfScore func(pos int) Score
	Masked    func(pos int) bool
}

// Transition connects an input state to an output state, advancing the
// query and/or target by a fixed amount and applying Calc's score. Input ==
// NoID means the transition starts at the model's Start state; Output ==
// NoID means it ends at the model's End state — AddTransition resolves
// both to the real state ids before storing them here.
type Transition struct {
	Name           string
	id             TransitionID
	Input          StateID
	Output         StateID
	Calc           CalcID // NoID means "emits zero"
	AdvanceQuery   int
	AdvanceTarget  int
	Label          Label
	Match          *Match // non-nil iff Label == LabelMatch
	DstShadowList  []ShadowID
}

// ID returns the transition's arena id, assigned when Model.AddTransition
// allocates it.
func (t *Transition) ID() TransitionID { return t.id }

// IsMatch reports whether the transition carries a Match payload.
func (t *Transition) IsMatch() bool { return t.Label == LabelMatch }

// IsSpan reports whether the transition is a self-loop with no calc, the
// C4_Transition_is_span predicate's Go equivalent. A genuine span loop
// (C4_Span.QueryLoop/TargetLoop) always carries a calc (the cost of
// extending the span by one position), so this only ever matches a
// degenerate construction. Neither AddTransition nor Model.Close rejects a
// calc-less self-loop that advances at least one axis; they reject only
// calc-less transitions with zero advance.
func (t *Transition) IsSpan() bool {
	return t.Input == t.Output && t.Calc == NoID
}
