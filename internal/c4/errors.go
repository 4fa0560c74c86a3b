package c4

import (
	"fmt"

	"github.com/katalvlaran/gappedaligner/internal/engineerr"
)

func errInvariant(op, reason string) error {
	return engineerr.Wrap(op, engineerr.KindModelInvariantViolated, fmt.Errorf("%s", reason))
}

func errClosed(op string) error {
	return errInvariant(op, "model is closed, cannot mutate")
}

func errOpen(op string) error {
	return errInvariant(op, "model is open, cannot be used for DP")
}
