package c4

// Portal names one (advance_query, advance_target) pair and every
// transition that uses it. Seeders use portals to decide which word length
// to scan for; SAR (internal/heuristic) uses them to check that an HSP's
// own advance is compatible with a candidate match transition.
type Portal struct {
	Name          string
	id            PortalID
	Calc          CalcID
	AdvanceQuery  int
	AdvanceTarget int
	Transitions   []TransitionID
}

// ID returns the portal's arena id, assigned when Model.AddPortal allocates
// it.
func (p *Portal) ID() PortalID { return p.id }
