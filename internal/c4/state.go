package c4

// State is a node of the model's transition graph. Two distinguished
// states, Start and End, are created automatically by Create and carry the
// scope configured via ConfigureStartState/ConfigureEndState.
type State struct {
	Name               string
	id                 StateID
	InputTransitions   []TransitionID
	OutputTransitions  []TransitionID
	ShadowsStartingHere []ShadowID
}

// ID returns the state's arena id (valid only once the owning model has
// allocated it, which happens immediately at AddState/Create time — unlike
// transitions/calcs/shadows, state ids are not deferred to Close).
func (s *State) ID() StateID { return s.id }
