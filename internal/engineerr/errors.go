// Package engineerr centralizes the cross-package error taxonomy used by
// every component of the alignment engine, following the lvlath convention
// of package-level sentinel errors checked with errors.Is/errors.As.
//
// Errors:
//
//	ErrModelInvariantViolated - a C4 model invariant was broken.
//	ErrIncompatibleAlphabets  - a sequence does not match model expectations.
//	ErrUnreachable            - Viterbi never reported a cell via the end hook.
//	ErrScoreOverflow          - a protected calc saturated its accumulator.
//	ErrResourceExceeded       - a reduced-space section rounded to zero cells.
//	ErrInvalidArgument        - a GAM argument is out of its valid range.
package engineerr

import (
	"errors"
	"fmt"
)

// Kind classifies an *Error for programmatic dispatch without string
// comparison, mirroring lvlath/matrix's documented error-priority scheme.
type Kind int

const (
	// KindModelInvariantViolated marks a broken C4 model invariant.
	KindModelInvariantViolated Kind = iota
	// KindIncompatibleAlphabets marks a sequence/model alphabet mismatch.
	KindIncompatibleAlphabets
	// KindUnreachable marks a Viterbi pass whose end hook never fired.
	KindUnreachable
	// KindScoreOverflow marks a protected calc that saturated.
	KindScoreOverflow
	// KindResourceExceeded marks a reduced-space section that rounds to zero.
	KindResourceExceeded
	// KindInvalidArgument marks an out-of-range GAM argument.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindModelInvariantViolated:
		return "model invariant violated"
	case KindIncompatibleAlphabets:
		return "incompatible alphabets"
	case KindUnreachable:
		return "unreachable"
	case KindScoreOverflow:
		return "score overflow"
	case KindResourceExceeded:
		return "resource exceeded"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// Sentinel errors. Use errors.Is against these for coarse-grained kind
// matching, or errors.As against *Error for the operation and cause.
var (
	ErrModelInvariantViolated = errors.New("engine: model invariant violated")
	ErrIncompatibleAlphabets  = errors.New("engine: incompatible alphabets")
	ErrUnreachable            = errors.New("engine: end state unreachable")
	ErrScoreOverflow          = errors.New("engine: score overflow")
	ErrResourceExceeded       = errors.New("engine: resource exceeded")
	ErrInvalidArgument        = errors.New("engine: invalid argument")
)

func sentinelFor(kind Kind) error {
	switch kind {
	case KindModelInvariantViolated:
		return ErrModelInvariantViolated
	case KindIncompatibleAlphabets:
		return ErrIncompatibleAlphabets
	case KindUnreachable:
		return ErrUnreachable
	case KindScoreOverflow:
		return ErrScoreOverflow
	case KindResourceExceeded:
		return ErrResourceExceeded
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return errors.New("engine: unknown error")
	}
}

// Error is the structured error type every package in this module returns
// for taxonomy-classified failures. Op names the failing operation (e.g.
// "C4_Model.Close", "Viterbi.Calculate"); Cause, when present, is wrapped
// and reachable via errors.Unwrap.
type Error struct {
	Kind  Kind
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return sentinelFor(e.Kind)
}

// Is lets errors.Is(err, ErrXxx) match an *Error of the corresponding Kind
// even when Cause is non-nil and unrelated to the sentinel.
func (e *Error) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

// New constructs an *Error for op/kind with no wrapped cause.
func New(op string, kind Kind) *Error {
	return &Error{Op: op, Kind: kind}
}

// Wrap constructs an *Error for op/kind wrapping cause.
func Wrap(op string, kind Kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Cause: cause}
}
