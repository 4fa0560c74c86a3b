package gam

import "github.com/katalvlaran/gappedaligner/internal/gamlog"

// Options carries construction-time dependencies that are not part of the
// per-alignment Args (spec.md §4.J). The zero value is valid: a nil Logger
// is replaced by a no-op logger.
type Options struct {
	Logger gamlog.Logger
}
