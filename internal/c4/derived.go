package c4

// DerivedModel is a sub-model pruned down to only the states/transitions
// that lie on some path from src to dst in an original (closed) model, with
// its own start/end scope and cell hooks. TransitionMap lets a traceback
// produced against Derived be re-expressed in terms of Original's
// transition ids, so it can be stitched onto a host Alignment (spec.md §4.C
// "Derived models").
type DerivedModel struct {
	Original       *Model
	Derived        *Model
	TransitionMap  map[TransitionID]TransitionID // derived id -> original id
}

// CreateDerivedModel builds a DerivedModel restricted to src->dst paths of
// original. original must already be closed.
func CreateDerivedModel(original *Model, src, dst StateID,
	startScope Scope, startCellFunc StartCellFunc,
	endScope Scope, endCellFunc EndCellFunc) (*DerivedModel, error) {

	forward := reachableForward(original, src)
	backward := reachableBackward(original, dst)
	kept := make(map[StateID]bool)
	for s := range forward {
		if backward[s] {
			kept[s] = true
		}
	}
	kept[src] = true
	kept[dst] = true

	derived := Create(original.Name + ".derived")
	stateMap := make(map[StateID]StateID)
	stateMap[src] = derived.startState
	stateMap[dst] = derived.endState
	for i, s := range original.States() {
		id := StateID(i)
		if id == src || id == dst || !kept[id] {
			continue
		}
		newID, _ := derived.AddState(s.Name)
		stateMap[id] = newID
	}

	calcMap := make(map[CalcID]CalcID)
	for i, c := range original.calcs.All() {
		newID, _ := derived.AddCalc(c.Name, c.MaxScore, c.ScoreFunc, c.Init, c.Exit, c.Protect)
		calcMap[CalcID(i)] = newID
	}

	transMap := make(map[TransitionID]TransitionID)
	derivedToOriginal := make(map[TransitionID]TransitionID)
	for i, t := range original.Transitions() {
		id := TransitionID(i)
		inKept, outKept := kept[t.Input], kept[t.Output]
		if !inKept || !outKept {
			continue
		}
		// Drop transitions that only reach End/leave Start of the ORIGINAL
		// model when src/dst aren't themselves that state: a kept state
		// reached forward from src and backward from dst is legitimate,
		// but the original Start/End states themselves must map only
		// through src/dst.
		in, inOK := stateMap[t.Input]
		if t.Input == src {
			// When src == dst, stateMap[src] holds the derived End; a
			// transition leaving src still starts at the derived Start.
			in, inOK = derived.startState, true
		}
		out, outOK := stateMap[t.Output]
		if !inOK || !outOK {
			continue
		}
		calc := NoID
		if t.Calc != NoID {
			calc = calcMap[t.Calc]
		}
		newID, err := derived.AddTransition(t.Name, nilIfStart(derived, in), nilIfEnd(derived, out), t.AdvanceQuery, t.AdvanceTarget, calc, t.Label, t.Match)
		if err != nil {
			continue
		}
		transMap[id] = newID
		derivedToOriginal[newID] = id
	}

	for _, sh := range original.Shadows() {
		var newSrc []StateID
		ok := true
		for _, s := range sh.SrcStates {
			ns, found := stateMap[s]
			if !found {
				ok = false
				break
			}
			newSrc = append(newSrc, ns)
		}
		if !ok {
			continue
		}
		var newDst []TransitionID
		for _, t := range sh.DstTransitions {
			if nt, found := transMap[t]; found {
				newDst = append(newDst, nt)
			}
		}
		if len(newDst) == 0 {
			continue
		}
		derived.AddShadow(sh.Name, newSrc, newDst, sh.StartFunc, sh.EndFunc)
	}

	for _, sp := range original.Spans() {
		ss, found := stateMap[sp.SpanState]
		if !found {
			continue
		}
		ql, tl := NoID, NoID
		if sp.QueryLoop != NoID {
			if v, ok := transMap[sp.QueryLoop]; ok {
				ql = v
			}
		}
		if sp.TargetLoop != NoID {
			if v, ok := transMap[sp.TargetLoop]; ok {
				tl = v
			}
		}
		derived.AddSpan(sp.Name, ss, sp.MinQuery, sp.MaxQuery, sp.MinTarget, sp.MaxTarget, ql, tl)
	}

	derived.ConfigureStartState(startScope, startCellFunc)
	derived.ConfigureEndState(endScope, endCellFunc)
	if err := derived.Close(); err != nil {
		return nil, err
	}

	return &DerivedModel{Original: original, Derived: derived, TransitionMap: derivedToOriginal}, nil
}

func nilIfStart(m *Model, id StateID) StateID {
	if id == m.startState {
		return NoID
	}
	return id
}

func nilIfEnd(m *Model, id StateID) StateID {
	if id == m.endState {
		return NoID
	}
	return id
}

func reachableForward(m *Model, from StateID) map[StateID]bool {
	visited := map[StateID]bool{from: true}
	queue := []StateID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, tid := range m.State(cur).OutputTransitions {
			next := m.Transition(tid).Output
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

func reachableBackward(m *Model, to StateID) map[StateID]bool {
	visited := map[StateID]bool{to: true}
	queue := []StateID{to}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, tid := range m.State(cur).InputTransitions {
			prev := m.Transition(tid).Input
			if !visited[prev] {
				visited[prev] = true
				queue = append(queue, prev)
			}
		}
	}
	return visited
}

// ImportDerived rewrites a traceback produced against dm.Derived back onto
// dm.Original's transition ids, the operation spec.md's testable property
// 11 requires to round-trip.
func ImportDerived(dm *DerivedModel, derivedAlignment *Alignment) *Alignment {
	ops := make([]Operation, len(derivedAlignment.Operations))
	for i, op := range derivedAlignment.Operations {
		ops[i] = Operation{Transition: dm.TransitionMap[op.Transition], Length: op.Length}
	}
	return &Alignment{
		Score:      derivedAlignment.Score,
		Region:     derivedAlignment.Region,
		Operations: ops,
		Model:      dm.Original,
	}
}
