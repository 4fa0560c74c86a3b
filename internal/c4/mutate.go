package c4

import "github.com/katalvlaran/gappedaligner/internal/arena"

// RemoveState detaches state id from the model: every transition touching
// it is also removed. Requires an open model; Start and End cannot be
// removed.
func (m *Model) RemoveState(id StateID) error {
	if !m.isOpen {
		return errClosed("C4_Model.RemoveState")
	}
	if id == m.startState || id == m.endState {
		return errInvariant("C4_Model.RemoveState", "cannot remove Start or End state")
	}
	s := m.State(id)
	for _, tid := range append(append([]TransitionID{}, s.InputTransitions...), s.OutputTransitions...) {
		_ = m.RemoveTransition(tid)
	}
	s.InputTransitions = nil
	s.OutputTransitions = nil
	s.ShadowsStartingHere = nil
	return nil
}

// RemoveTransition detaches transition id from its input/output states and
// clears it from any portal/shadow that referenced it. Requires an open
// model.
func (m *Model) RemoveTransition(id TransitionID) error {
	if !m.isOpen {
		return errClosed("C4_Model.RemoveTransition")
	}
	t := m.Transition(id)
	removeID(&m.State(t.Input).OutputTransitions, id)
	removeID(&m.State(t.Output).InputTransitions, id)
	for i := range m.portals.All() {
		p := m.portals.Get(arena.ID(i))
		removeID(&p.Transitions, id)
	}
	for _, sid := range t.DstShadowList {
		sh := m.Shadow(sid)
		removeID(&sh.DstTransitions, id)
	}
	t.DstShadowList = nil
	return nil
}

func removeID(list *[]TransitionID, id TransitionID) {
	out := (*list)[:0]
	for _, v := range *list {
		if v != id {
			out = append(out, v)
		}
	}
	*list = out
}

// Insert splices the open sub-model `insert` into `m` between src and dst:
// every state/transition/calc/shadow/portal/span of insert is copied into
// m with freshly allocated ids, insert's Start state is merged into src
// (every transition leaving insert's Start now leaves src) and insert's End
// state is merged into dst (every transition entering insert's End now
// enters dst). Both models must be open.
func Insert(target, insert *Model, src, dst StateID) error {
	if !target.isOpen || !insert.isOpen {
		return errInvariant("C4_Model.Insert", "both target and insert must be open")
	}
	stateMap := make(map[StateID]StateID, insert.states.Len())
	stateMap[insert.startState] = src
	stateMap[insert.endState] = dst
	for i, s := range insert.states.All() {
		oldID := StateID(i)
		if oldID == insert.startState || oldID == insert.endState {
			continue
		}
		newID, _ := target.AddState(s.Name)
		stateMap[oldID] = newID
	}
	calcMap := make(map[CalcID]CalcID, insert.calcs.Len())
	for i, c := range insert.calcs.All() {
		newID, _ := target.AddCalc(c.Name, c.MaxScore, c.ScoreFunc, c.Init, c.Exit, c.Protect)
		calcMap[CalcID(i)] = newID
	}
	transMap := make(map[TransitionID]TransitionID, insert.transitions.Len())
	for i, t := range insert.transitions.All() {
		calc := NoID
		if t.Calc != NoID {
			calc = calcMap[t.Calc]
		}
		newID, err := target.AddTransition(t.Name, stateMap[t.Input], stateMap[t.Output], t.AdvanceQuery, t.AdvanceTarget, calc, t.Label, t.Match)
		if err != nil {
			return err
		}
		transMap[TransitionID(i)] = newID
	}
	for _, sh := range insert.shadows.All() {
		var newSrc []StateID
		for _, s := range sh.SrcStates {
			newSrc = append(newSrc, stateMap[s])
		}
		var newDst []TransitionID
		for _, t := range sh.DstTransitions {
			newDst = append(newDst, transMap[t])
		}
		if _, err := target.AddShadow(sh.Name, newSrc, newDst, sh.StartFunc, sh.EndFunc); err != nil {
			return err
		}
	}
	for _, sp := range insert.spans.All() {
		ql, tl := NoID, NoID
		if sp.QueryLoop != NoID {
			ql = transMap[sp.QueryLoop]
		}
		if sp.TargetLoop != NoID {
			tl = transMap[sp.TargetLoop]
		}
		if _, err := target.AddSpan(sp.Name, stateMap[sp.SpanState], sp.MinQuery, sp.MaxQuery, sp.MinTarget, sp.MaxTarget, ql, tl); err != nil {
			return err
		}
	}
	for _, p := range insert.portals.All() {
		calc := NoID
		if p.Calc != NoID {
			calc = calcMap[p.Calc]
		}
		newPortal, _ := target.AddPortal(p.Name, calc, p.AdvanceQuery, p.AdvanceTarget)
		for _, t := range p.Transitions {
			target.AddTransitionToPortal(newPortal, transMap[t])
		}
	}
	return nil
}

// MakeStereo returns two independent copies of m (each made by Copy), the
// first renamed m.Name+suffixA and the second m.Name+suffixB. Only the
// model names get the suffixes; states, calcs, transitions, shadows, spans
// and portals keep their names in both copies. It does not mutate m. No
// builder in internal/models calls it.
func (m *Model) MakeStereo(suffixA, suffixB string) (a, b *Model, err error) {
	a, err = m.Copy()
	if err != nil {
		return nil, nil, err
	}
	a.Rename(m.Name + suffixA)
	b, err = m.Copy()
	if err != nil {
		return nil, nil, err
	}
	b.Rename(m.Name + suffixB)
	return a, b, nil
}
