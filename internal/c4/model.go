package c4

import (
	"fmt"

	"github.com/katalvlaran/gappedaligner/internal/arena"
)

// StartCellFunc builds the initial shadow vector for a path starting at
// (queryPos, targetPos); a nil StartCellFunc means "zero vector".
type StartCellFunc func(queryPos, targetPos int) []Score

// EndCellFunc observes the final cell of a path ending at (queryPos,
// targetPos). cell[0] is the score; cell[1:] are shadow slots indexed by
// Shadow.Designation.
type EndCellFunc func(cell []Score, queryPos, targetPos int)

// Model is a declarative pairwise FSM: states, calcs, transitions, shadows,
// portals and spans, mutable while open and immutable while closed
// (spec.md §3 "Lifecycle invariants").
type Model struct {
	Name string

	states      *arena.Arena[State]
	transitions *arena.Arena[Transition]
	calcs       *arena.Arena[Calc]
	shadows     *arena.Arena[Shadow]
	portals     *arena.Arena[Portal]
	spans       *arena.Arena[Span]

	startState StateID
	endState   StateID

	startScope     Scope
	startCellFunc  StartCellFunc
	endScope       Scope
	endCellFunc    EndCellFunc

	isOpen bool

	maxQueryAdvance         int
	maxTargetAdvance        int
	totalShadowDesignations int
	processOrder            []StateID
}

// Create opens a blank model with a Start and an End state already
// allocated (the "two distinguished states" of spec.md §3).
func Create(name string) *Model {
	m := &Model{
		Name:        name,
		states:      arena.New[State](8),
		transitions: arena.New[Transition](16),
		calcs:       arena.New[Calc](8),
		shadows:     arena.New[Shadow](4),
		portals:     arena.New[Portal](4),
		spans:       arena.New[Span](2),
		startScope:  ScopeAnywhere,
		endScope:    ScopeAnywhere,
		isOpen:      true,
	}
	m.startState = m.states.Alloc(State{Name: "start"})
	m.states.Get(m.startState).id = m.startState
	m.endState = m.states.Alloc(State{Name: "end"})
	m.states.Get(m.endState).id = m.endState
	return m
}

// Open re-opens a closed model for further mutation.
func (m *Model) Open() { m.isOpen = true }

// IsOpen reports whether the model currently accepts mutators.
func (m *Model) IsOpen() bool { return m.isOpen }

// StartState returns the model's distinguished start state id.
func (m *Model) StartState() StateID { return m.startState }

// EndState returns the model's distinguished end state id.
func (m *Model) EndState() StateID { return m.endState }

// MaxQueryAdvance returns the largest AdvanceQuery over all transitions,
// computed at Close.
func (m *Model) MaxQueryAdvance() int { return m.maxQueryAdvance }

// MaxTargetAdvance returns the largest AdvanceTarget over all transitions,
// computed at Close.
func (m *Model) MaxTargetAdvance() int { return m.maxTargetAdvance }

// TotalShadowDesignations returns the number of per-cell shadow slots,
// computed at Close.
func (m *Model) TotalShadowDesignations() int { return m.totalShadowDesignations }

// StartScope returns the configured start scope.
func (m *Model) StartScope() Scope { return m.startScope }

// EndScope returns the configured end scope.
func (m *Model) EndScope() Scope { return m.endScope }

// StartCellFuncValue returns the configured start-cell builder, or nil.
func (m *Model) StartCellFuncValue() StartCellFunc { return m.startCellFunc }

// EndCellFuncValue returns the configured end-cell observer, or nil.
func (m *Model) EndCellFuncValue() EndCellFunc { return m.endCellFunc }

// State returns a pointer to the state at id.
func (m *Model) State(id StateID) *State { return m.states.Get(id) }

// Transition returns a pointer to the transition at id.
func (m *Model) Transition(id TransitionID) *Transition { return m.transitions.Get(id) }

// Calc returns a pointer to the calc at id.
func (m *Model) Calc(id CalcID) *Calc { return m.calcs.Get(id) }

// Shadow returns a pointer to the shadow at id.
func (m *Model) Shadow(id ShadowID) *Shadow { return m.shadows.Get(id) }

// Portal returns a pointer to the portal at id.
func (m *Model) Portal(id PortalID) *Portal { return m.portals.Get(id) }

// Span returns a pointer to the span at id.
func (m *Model) Span(id SpanID) *Span { return m.spans.Get(id) }

// States returns every allocated state, in allocation order.
func (m *Model) States() []State { return m.states.All() }

// Transitions returns every allocated transition, in allocation order.
func (m *Model) Transitions() []Transition { return m.transitions.All() }

// Shadows returns every allocated shadow, in allocation order.
func (m *Model) Shadows() []Shadow { return m.shadows.All() }

// Spans returns every allocated span, in allocation order.
func (m *Model) Spans() []Span { return m.spans.All() }

// Portals returns every allocated portal, in allocation order.
func (m *Model) Portals() []Portal { return m.portals.All() }

// Rename sets the model's display name.
func (m *Model) Rename(name string) { m.Name = name }

// AddState allocates a new state and returns its id.
func (m *Model) AddState(name string) (StateID, error) {
	if !m.isOpen {
		return NoID, errClosed("C4_Model.AddState")
	}
	id := m.states.Alloc(State{Name: name})
	m.states.Get(id).id = id
	return id, nil
}

// AddCalc allocates a new scoring unit and returns its id.
func (m *Model) AddCalc(name string, maxScore Score, scoreFunc ScoreFunc, initFunc, exitFunc PrepFunc, protect Protect) (CalcID, error) {
	if !m.isOpen {
		return NoID, errClosed("C4_Model.AddCalc")
	}
	id := m.calcs.Alloc(Calc{
		Name:      name,
		MaxScore:  maxScore,
		ScoreFunc: scoreFunc,
		Init:      initFunc,
		Exit:      exitFunc,
		Protect:   protect,
	})
	m.calcs.Get(id).id = id
	return id, nil
}

// AddTransition allocates a new transition from input to output. NoID for
// input means "from Start"; NoID for output means "to End".
func (m *Model) AddTransition(name string, input, output StateID, advanceQuery, advanceTarget int, calc CalcID, label Label, match *Match) (TransitionID, error) {
	if !m.isOpen {
		return NoID, errClosed("C4_Model.AddTransition")
	}
	if input == NoID {
		input = m.startState
	}
	if output == NoID {
		output = m.endState
	}
	if !m.states.Valid(input) || !m.states.Valid(output) {
		return NoID, errInvariant("C4_Model.AddTransition", "input/output state not in this model")
	}
	if advanceQuery == 0 && advanceTarget == 0 && calc == NoID {
		return NoID, errInvariant("C4_Model.AddTransition", "zero-advance transition with no calc is a degenerate no-op")
	}
	if calc != NoID && !m.calcs.Valid(calc) {
		return NoID, errInvariant("C4_Model.AddTransition", "calc not in this model")
	}
	if label == LabelMatch && match == nil {
		return NoID, errInvariant("C4_Model.AddTransition", "MATCH transition requires a Match payload")
	}
	id := m.transitions.Alloc(Transition{
		Name:          name,
		Input:         input,
		Output:        output,
		Calc:          calc,
		AdvanceQuery:  advanceQuery,
		AdvanceTarget: advanceTarget,
		Label:         label,
		Match:         match,
	})
	m.transitions.Get(id).id = id
	m.State(input).OutputTransitions = append(m.State(input).OutputTransitions, id)
	m.State(output).InputTransitions = append(m.State(output).InputTransitions, id)
	return id, nil
}

// AddShadow allocates a new shadow accumulator. An empty srcStates means
// "the Start state"; an empty dstTransitions means "every transition into
// End".
func (m *Model) AddShadow(name string, srcStates []StateID, dstTransitions []TransitionID, startFunc func(int, int) Score, endFunc func(Score, int, int) Score) (ShadowID, error) {
	if !m.isOpen {
		return NoID, errClosed("C4_Model.AddShadow")
	}
	if len(srcStates) == 0 {
		srcStates = []StateID{m.startState}
	}
	if len(dstTransitions) == 0 {
		for _, tid := range m.State(m.endState).InputTransitions {
			dstTransitions = append(dstTransitions, tid)
		}
	}
	id := m.shadows.Alloc(Shadow{
		Name:           name,
		SrcStates:      append([]StateID(nil), srcStates...),
		DstTransitions: append([]TransitionID(nil), dstTransitions...),
		StartFunc:      startFunc,
		EndFunc:        endFunc,
	})
	m.shadows.Get(id).id = id
	for _, sid := range srcStates {
		m.State(sid).ShadowsStartingHere = append(m.State(sid).ShadowsStartingHere, id)
	}
	for _, tid := range dstTransitions {
		m.Transition(tid).DstShadowList = append(m.Transition(tid).DstShadowList, id)
	}
	return id, nil
}

// AddPortal allocates a new portal declaring the (advanceQuery,
// advanceTarget) word length used by transitions appended to it via
// AddTransitionToPortal.
func (m *Model) AddPortal(name string, calc CalcID, advanceQuery, advanceTarget int) (PortalID, error) {
	if !m.isOpen {
		return NoID, errClosed("C4_Model.AddPortal")
	}
	id := m.portals.Alloc(Portal{Name: name, Calc: calc, AdvanceQuery: advanceQuery, AdvanceTarget: advanceTarget})
	m.portals.Get(id).id = id
	return id, nil
}

// AddTransitionToPortal records that transition uses portal.
func (m *Model) AddTransitionToPortal(portal PortalID, transition TransitionID) {
	p := m.Portal(portal)
	p.Transitions = append(p.Transitions, transition)
}

// AddSpan allocates a new span declaring a bounded free-content state.
func (m *Model) AddSpan(name string, spanState StateID, minQuery, maxQuery, minTarget, maxTarget int, queryLoop, targetLoop TransitionID) (SpanID, error) {
	if !m.isOpen {
		return NoID, errClosed("C4_Model.AddSpan")
	}
	id := m.spans.Alloc(Span{
		Name: name, SpanState: spanState,
		MinQuery: minQuery, MaxQuery: maxQuery,
		MinTarget: minTarget, MaxTarget: maxTarget,
		QueryLoop: queryLoop, TargetLoop: targetLoop,
	})
	m.spans.Get(id).id = id
	return id, nil
}

// ConfigureStartState sets the start scope and optional custom start-cell
// builder. Unlike other mutators this works on both open and closed models.
func (m *Model) ConfigureStartState(scope Scope, cellStartFunc StartCellFunc) {
	m.startScope = scope
	m.startCellFunc = cellStartFunc
}

// ConfigureEndState sets the end scope and optional custom end-cell
// observer. Works on both open and closed models.
func (m *Model) ConfigureEndState(scope Scope, cellEndFunc EndCellFunc) {
	m.endScope = scope
	m.endCellFunc = cellEndFunc
}

// RemoveAllShadows clears every shadow and its back-references. Requires an
// open model.
func (m *Model) RemoveAllShadows() error {
	if !m.isOpen {
		return errClosed("C4_Model.RemoveAllShadows")
	}
	m.shadows = arena.New[Shadow](0)
	for i := range m.states.All() {
		m.states.Get(arena.ID(i)).ShadowsStartingHere = nil
	}
	for i := range m.transitions.All() {
		m.transitions.Get(arena.ID(i)).DstShadowList = nil
	}
	return nil
}

// SelectTransitions returns every transition carrying label.
func (m *Model) SelectTransitions(label Label) []TransitionID {
	var out []TransitionID
	for i, t := range m.transitions.All() {
		if t.Label == label {
			out = append(out, arena.ID(i))
		}
	}
	return out
}

// SelectSingleTransition returns the sole transition carrying label, or
// ok=false if zero or more than one match.
func (m *Model) SelectSingleTransition(label Label) (TransitionID, bool) {
	sel := m.SelectTransitions(label)
	if len(sel) != 1 {
		return NoID, false
	}
	return sel[0], true
}

// PathIsPossible performs a reachability search over the transition graph,
// ignoring advances, from src to dst.
func (m *Model) PathIsPossible(src, dst StateID) bool {
	if src == dst {
		return true
	}
	visited := make(map[StateID]bool)
	queue := []StateID{src}
	visited[src] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, tid := range m.State(cur).OutputTransitions {
			next := m.Transition(tid).Output
			if next == dst {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// Close finalises the model: ids are already assigned by allocation order,
// so Close's job is to validate invariants, assign shadow designations, and
// compute MaxQueryAdvance/MaxTargetAdvance.
func (m *Model) Close() error {
	if !m.isOpen {
		return nil
	}
	if !m.PathIsPossible(m.startState, m.endState) {
		return errInvariant("C4_Model.Close", "no reachable path from start to end")
	}
	for i, s := range m.states.All() {
		id := StateID(i)
		if id == m.startState || id == m.endState {
			continue
		}
		if len(s.InputTransitions) == 0 && len(s.OutputTransitions) == 0 {
			return errInvariant("C4_Model.Close", fmt.Sprintf("orphan state %q", s.Name))
		}
	}
	for i, t := range m.transitions.All() {
		if t.AdvanceQuery == 0 && t.AdvanceTarget == 0 && t.Calc == NoID {
			return errInvariant("C4_Model.Close", fmt.Sprintf("transition %q is a degenerate no-op", t.Name))
		}
		if t.AdvanceQuery > m.maxQueryAdvance {
			m.maxQueryAdvance = t.AdvanceQuery
		}
		if t.AdvanceTarget > m.maxTargetAdvance {
			m.maxTargetAdvance = t.AdvanceTarget
		}
		_ = i
	}
	for i := range m.shadows.All() {
		m.shadows.Get(arena.ID(i)).Designation = i
	}
	m.totalShadowDesignations = m.shadows.Len()

	order, err := topologicalStateOrder(m)
	if err != nil {
		return err
	}
	m.processOrder = order

	m.isOpen = false
	return nil
}

// ProcessOrder returns the state visit order the Viterbi engine must use
// when filling one DP cell: states joined by a zero-advance ("same-cell")
// transition are ordered so the source is always visited before the
// destination, matching how a same-cell gap-close transition depends on
// the gap state's value computed earlier in that same (queryPos, targetPos)
// pass. Ties are broken by allocation order for determinism.
func (m *Model) ProcessOrder() []StateID { return m.processOrder }

// topologicalStateOrder computes ProcessOrder via Kahn's algorithm over the
// subgraph of zero-advance transitions.
func topologicalStateOrder(m *Model) ([]StateID, error) {
	n := m.states.Len()
	adj := make([][]int, n)
	indeg := make([]int, n)
	for _, t := range m.transitions.All() {
		if t.AdvanceQuery == 0 && t.AdvanceTarget == 0 {
			src, dst := int(t.Input), int(t.Output)
			adj[src] = append(adj[src], dst)
			indeg[dst]++
		}
	}
	var ready []int
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}
	order := make([]StateID, 0, n)
	visited := make([]bool, n)
	for len(ready) > 0 {
		// Smallest-id-first keeps the order deterministic across runs.
		minIdx := 0
		for i := 1; i < len(ready); i++ {
			if ready[i] < ready[minIdx] {
				minIdx = i
			}
		}
		cur := ready[minIdx]
		ready = append(ready[:minIdx], ready[minIdx+1:]...)
		if visited[cur] {
			continue
		}
		visited[cur] = true
		order = append(order, StateID(cur))
		for _, next := range adj[cur] {
			indeg[next]--
			if indeg[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	if len(order) != n {
		return nil, errInvariant("C4_Model.Close", "same-cell (zero-advance) transition cycle")
	}
	return order, nil
}

// Copy returns a closed deep copy of m. If m is open it is closed first (a
// copy of an invalid open model still fails with the same error Close
// would report).
func (m *Model) Copy() (*Model, error) {
	if m.isOpen {
		if err := m.Close(); err != nil {
			return nil, err
		}
	}
	cp := &Model{
		Name:           m.Name,
		states:         arena.New[State](m.states.Len()),
		transitions:    arena.New[Transition](m.transitions.Len()),
		calcs:          arena.New[Calc](m.calcs.Len()),
		shadows:        arena.New[Shadow](m.shadows.Len()),
		portals:        arena.New[Portal](m.portals.Len()),
		spans:          arena.New[Span](m.spans.Len()),
		startScope:     m.startScope,
		startCellFunc:  m.startCellFunc,
		endScope:       m.endScope,
		endCellFunc:    m.endCellFunc,
		maxQueryAdvance:         m.maxQueryAdvance,
		maxTargetAdvance:        m.maxTargetAdvance,
		totalShadowDesignations: m.totalShadowDesignations,
		processOrder:            append([]StateID(nil), m.processOrder...),
	}
	for i, s := range m.states.All() {
		cp.states.Alloc(State{
			Name:                s.Name,
			id:                  StateID(i),
			InputTransitions:    append([]TransitionID(nil), s.InputTransitions...),
			OutputTransitions:   append([]TransitionID(nil), s.OutputTransitions...),
			ShadowsStartingHere: append([]ShadowID(nil), s.ShadowsStartingHere...),
		})
	}
	for i, c := range m.calcs.All() {
		c.id = CalcID(i)
		cp.calcs.Alloc(c)
	}
	for i, t := range m.transitions.All() {
		t.id = TransitionID(i)
		t.DstShadowList = append([]ShadowID(nil), t.DstShadowList...)
		cp.transitions.Alloc(t)
	}
	for i, s := range m.shadows.All() {
		s.id = ShadowID(i)
		s.SrcStates = append([]StateID(nil), s.SrcStates...)
		s.DstTransitions = append([]TransitionID(nil), s.DstTransitions...)
		cp.shadows.Alloc(s)
	}
	for i, p := range m.portals.All() {
		p.id = PortalID(i)
		p.Transitions = append([]TransitionID(nil), p.Transitions...)
		cp.portals.Alloc(p)
	}
	for i, sp := range m.spans.All() {
		sp.id = SpanID(i)
		cp.spans.Alloc(sp)
	}
	cp.startState = m.startState
	cp.endState = m.endState
	cp.isOpen = false
	return cp, nil
}
