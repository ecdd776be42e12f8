// Package hwerr collects this module's public error taxonomy, so a caller
// outside core/aiger never has to import either package just to do an
// errors.As/errors.Is check.
//
// InvariantBreach and SolverFailure are aliases of the core package's types
// (core is where they are actually raised); IngestError is defined here and
// Timeout re-exports core.ErrTimeout — parsing errors and reachability-loop
// timeouts are the only two recoverable error kinds.
package hwerr

import (
	"errors"
	"fmt"

	"github.com/gipsyh/aig-go/core"
)

// InvariantBreach is raised when an internal contract of the AIG store is
// violated. Fatal: the caller must discard the *core.Circuit.
type InvariantBreach = core.InvariantBreach

// SolverFailure wraps an error from the underlying SAT solver. Fatal: the
// caller must discard the *core.Circuit.
type SolverFailure = core.SolverFailure

// Timeout is returned when a reachability run's context is cancelled or its
// deadline elapses between iterations. Recoverable: the caller may retry
// with a larger budget or a fresh context.
var Timeout = core.ErrTimeout

// IngestError reports a malformed AIGER file: a header field out of range,
// a literal referencing an undeclared variable, or a truncated binary delta.
// Recoverable: the caller may report the bad line/offset and move on to the
// next input file.
type IngestError struct {
	Offset int64 // byte offset in the source stream, -1 when unknown (always for line-anchored errors)
	Line   int   // 1-based line number for the ASCII format, 0 for binary
	Msg    string
}

func (e *IngestError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("aiger: line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("aiger: offset %d: %s", e.Offset, e.Msg)
}

// ErrIngest is the sentinel every IngestError wraps.
var ErrIngest = errors.New("aiger: malformed input")

func (e *IngestError) Unwrap() error { return ErrIngest }

// NewIngestError builds an IngestError anchored to an ASCII line number.
func NewIngestError(line int, format string, args ...any) error {
	return &IngestError{Line: line, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// NewIngestErrorAt builds an IngestError anchored to a binary byte offset.
func NewIngestErrorAt(offset int64, format string, args ...any) error {
	return &IngestError{Line: 0, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
