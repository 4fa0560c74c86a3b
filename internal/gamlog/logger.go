// Package gamlog wraps a zap.SugaredLogger for the one component of the
// engine with genuinely observable runtime behaviour: GAM's one-shot warning
// about slow exhaustive+subopt runs. GAM drops a region's Unreachable or
// ScoreOverflow result without logging it. Every other package (C4, Viterbi, BSDP, SDP)
// stays silent — logging inside a hot DP loop would dominate its runtime.
package gamlog

import "go.uber.org/zap"

// Logger is the narrow logging surface GAM depends on. *zap.SugaredLogger
// satisfies it directly.
type Logger interface {
	Warnw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
}

// noop discards everything; it is the default when a caller does not supply
// a Logger via gam.Options.
type noop struct{}

func (noop) Warnw(string, ...interface{}) {}
func (noop) Infow(string, ...interface{}) {}

// NewNoop returns a Logger that discards all records.
func NewNoop() Logger { return noop{} }

// NewZap builds a Logger backed by a production zap.Logger, sugared.
func NewZap() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// OrNoop returns l if non-nil, otherwise a no-op Logger. Components should
// call this once at construction rather than nil-checking on every log call.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NewNoop()
	}
	return l
}
