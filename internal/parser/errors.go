package parser

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by ParseError.
var (
	ErrNoImports         = errors.New("no imports survived filtering")
	ErrNoPrecedingReturn = errors.New("no function return precedes the dangling call")
	ErrUnbalancedTrace   = errors.New("call and return counts never balance")
)

// ErrorCode categorizes fatal parse errors.
type ErrorCode string

const (
	// ErrCodeNoImports means no root could be named.
	ErrCodeNoImports ErrorCode = "NO_IMPORTS"

	// ErrCodeNoPrecedingReturn means synthesis found no return before a
	// dangling call.
	ErrCodeNoPrecedingReturn ErrorCode = "NO_PRECEDING_RETURN"

	// ErrCodeUnbalancedTrace means synthesis ran past the start of the
	// trace without balancing calls and returns.
	ErrCodeUnbalancedTrace ErrorCode = "UNBALANCED_TRACE"
)

// ParseError aborts a parse. No partial tree accompanies it.
type ParseError struct {
	Code    ErrorCode
	Message string

	// EventIndex is the trace position of the offending event, or -1.
	EventIndex int

	Err error
}

func (e *ParseError) Error() string {
	if e.EventIndex >= 0 {
		return fmt.Sprintf("%s: %s (event=%d)", e.Code, e.Message, e.EventIndex)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of a wrapped ParseError, or "".
func CodeOf(err error) ErrorCode {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// DiagnosticCode categorizes non-fatal anomalies.
type DiagnosticCode string

const (
	// DiagImportChainBroken: an importer was not on the current import
	// path; the remaining imports were not added to the skeleton.
	DiagImportChainBroken DiagnosticCode = "IMPORT_CHAIN_BROKEN"

	// DiagAnchorNotFound: no call's origin matched a skeleton node, so no
	// calls were populated.
	DiagAnchorNotFound DiagnosticCode = "ANCHOR_NOT_FOUND"

	// DiagDroppedCall: a dangling call could not be bridged and is not in
	// the tree.
	DiagDroppedCall DiagnosticCode = "DROPPED_CALL"
)

// Diagnostic records a non-fatal anomaly.
type Diagnostic struct {
	Code    DiagnosticCode `json:"code"`
	Message string         `json:"message"`

	// EventIndex is the trace position concerned, or -1 for synthesized
	// events and whole-trace conditions.
	EventIndex int `json:"event_index"`
}

func (d Diagnostic) String() string {
	if d.EventIndex >= 0 {
		return fmt.Sprintf("%s: %s (event=%d)", d.Code, d.Message, d.EventIndex)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}
