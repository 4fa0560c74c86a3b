package c4

import "github.com/katalvlaran/gappedaligner/internal/region"

// ScoreFunc is the opaque per-calc score lookup spec.md §4.D describes:
// pure with respect to (queryPos, targetPos) within one Init/Exit bracket.
// The engine never constructs one itself; models build ScoreFuncs as
// closures over a scoring.Context (internal/scoring) supplied by the
// caller, so c4 never imports the scoring package.
type ScoreFunc func(queryPos, targetPos int) Score

// PrepFunc brackets a calc's use across one DP region: Init runs once
// before any Score call in the region, Exit once after the last.
type PrepFunc func(r region.Region)

// Calc is one scoring unit attached to a Transition. A nil ScoreFunc means
// "emits zero" (spec.md's calc of bottom, written Calc(nil) here).
type Calc struct {
	Name      string
	id        CalcID
	MaxScore  Score
	ScoreFunc ScoreFunc
	Init      PrepFunc
	Exit      PrepFunc
	Protect   Protect
}

// ID returns the calc's arena id, assigned when Model.AddCalc allocates it.
func (c *Calc) ID() CalcID { return c.id }

// Score evaluates the calc at (queryPos, targetPos), applying overflow/
// underflow clamping when Protect requests it. A nil ScoreFunc returns 0.
func (c *Calc) Score(queryPos, targetPos int) Score {
	if c.ScoreFunc == nil {
		return 0
	}
	s := c.ScoreFunc(queryPos, targetPos)
	if c.Protect&ProtectOverflow != 0 && s > ImpossiblyHigh {
		return ImpossiblyHigh
	}
	if c.Protect&ProtectUnderflow != 0 && s < ImpossiblyLow {
		return ImpossiblyLow
	}
	return s
}

// RunInit invokes Init for r, if set.
func (c *Calc) RunInit(r region.Region) {
	if c.Init != nil {
		c.Init(r)
	}
}

// RunExit invokes Exit for r, if set.
func (c *Calc) RunExit(r region.Region) {
	if c.Exit != nil {
		c.Exit(r)
	}
}
