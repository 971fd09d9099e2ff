package parser

import (
	"slices"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/event"
)

// flattenIndirection re-attributes calls made inside an intermediary.
//
// A call immediately followed by the start of a different function went
// through a wrapper or proxy. Until the call's matching return (same from,
// to and calling line), every call whose origin is the intermediary is
// rewritten to originate from the call's intended target. Returns the
// number of rewritten calls.
func (s *state) flattenIndirection() int {
	rewritten := 0

	for i := 0; i+1 < len(s.trace); i++ {
		call, ok := s.trace[i].Call()
		if !ok {
			continue
		}
		start, ok := s.trace[i+1].Start()
		if !ok || call.To == start.Name {
			continue
		}

		for j := i; j < len(s.trace); j++ {
			if ret, ok := s.trace[j].Return(); ok &&
				ret.From == call.From && ret.To == call.To && ret.CallingLine == call.CallingLine {
				break
			}
			if inner, ok := s.trace[j].Call(); ok && inner.From == start.Name {
				inner.From = call.To
				rewritten++
			}
		}
	}

	if rewritten > 0 {
		s.log.Debug("indirection flattened", "rewritten_calls", rewritten)
	}
	return rewritten
}

// pendingCall is one entry of the population work-list.
type pendingCall struct {
	call *event.FunctionCall

	// index is the trace position, or -1 for a synthesized call.
	index int

	// origin is where synthesis starts scanning back from. For trace calls
	// it equals index; for synthesized calls it is the reference frame.
	origin int

	// bridged is set once a synthesized call has been queued for this
	// entry. A bridged call that dangles again is dropped.
	bridged bool
}

// populate threads every call onto the tree starting at anchor.
//
// The work-list holds the trace's calls in order. A call whose origin is
// neither the cursor nor reachable by WalkUp gets a synthesized caller
// frame inserted in front of it, and the same position is processed again.
func (s *state) populate(anchor calltree.NodeID) error {
	work := make([]pendingCall, 0, s.trace.Count(event.KindFunctionCall))
	for _, e := range s.trace {
		if call, ok := e.Call(); ok {
			work = append(work, pendingCall{call: call, index: e.Index, origin: e.Index})
		}
	}

	cursor := anchor
	for i := 0; i < len(work); {
		w := &work[i]

		if w.call.From != s.tree.Name(cursor) {
			caller, ok := s.tree.WalkUp(cursor, w.call.From, s.opts.ModuleSuffix)
			if !ok {
				if w.bridged {
					s.drop(w, "caller %q still unreachable after synthesizing a frame", w.call.From)
					i++
					continue
				}

				synth, err := s.synthesize(*w)
				if err != nil {
					if s.opts.Synthesis == SynthesisFail {
						return err
					}
					s.drop(w, "caller %q unreachable and no frame could be synthesized: %v", w.call.From, err)
					i++
					continue
				}

				w.bridged = true
				work = slices.Insert(work, i, synth)
				s.synthesized = append(s.synthesized, event.Event{Index: -1, Payload: synth.call})
				continue
			}
			cursor = caller
		}

		cursor = s.tree.AddChild(cursor, w.call.To)
		s.attached++
		i++
	}
	return nil
}

func (s *state) drop(w *pendingCall, format string, args ...any) {
	s.dropped++
	s.diagnose(DiagDroppedCall, w.index, format, args...)
}
