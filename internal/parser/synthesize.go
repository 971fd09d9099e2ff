package parser

import (
	"fmt"
	"slices"

	"github.com/roach88/calltree/internal/event"
)

// synthesize fabricates the missing caller frame of a dangling call.
//
// Scanning back from the call, the nearest return marks a frame that has
// already closed. The scan continues from that return (counting it once
// more) until calls and returns balance; the call at the balance point
// opened the frame that was active when the dangling call happened. The
// synthesized call goes from that frame's callee to the dangling call's
// origin, copying the reference call's site and arguments.
func (s *state) synthesize(w pendingCall) (pendingCall, error) {
	ret := -1
	for k := w.origin; k >= 0; k-- {
		if s.trace[k].Kind() == event.KindFunctionReturn {
			ret = k
			break
		}
	}
	if ret < 0 {
		return pendingCall{}, &ParseError{
			Code:       ErrCodeNoPrecedingReturn,
			Message:    fmt.Sprintf("cannot synthesize a caller for %q", w.call.From),
			EventIndex: w.index,
			Err:        ErrNoPrecedingReturn,
		}
	}

	calls, returns := 0, 1
	ref := -1
	for k := ret; k >= 0; k-- {
		switch s.trace[k].Kind() {
		case event.KindFunctionCall:
			calls++
		case event.KindFunctionReturn:
			returns++
		}
		if calls == returns {
			ref = k
			break
		}
	}
	if ref < 0 {
		return pendingCall{}, &ParseError{
			Code:       ErrCodeUnbalancedTrace,
			Message:    fmt.Sprintf("cannot synthesize a caller for %q: %d calls, %d returns before event %d", w.call.From, calls, returns, ret),
			EventIndex: w.index,
			Err:        ErrUnbalancedTrace,
		}
	}

	// Counts only meet right after a call is counted.
	refCall, _ := s.trace[ref].Call()
	synth := &event.FunctionCall{
		From:        refCall.To,
		To:          w.call.From,
		CallingFile: refCall.CallingFile,
		CallingLine: refCall.CallingLine,
		Args:        slices.Clone(refCall.Args),
	}

	s.log.Debug("synthesized call",
		"from", synth.From,
		"to", synth.To,
		"reference_event", ref,
		"dangling_event", w.index,
	)

	return pendingCall{call: synth, index: -1, origin: ref}, nil
}
