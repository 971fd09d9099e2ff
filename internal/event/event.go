package event

import (
	"encoding/json"
	"slices"
)

// Kind is the "type" tag of a trace record.
type Kind string

const (
	KindImport         Kind = "import"
	KindModuleStart    Kind = "moduleStart"
	KindFunctionStart  Kind = "functionStart"
	KindFunctionCall   Kind = "functionCall"
	KindFunctionReturn Kind = "functionReturn"
)

// ValidKinds lists every tag the decoder accepts.
var ValidKinds = []Kind{
	KindImport,
	KindModuleStart,
	KindFunctionStart,
	KindFunctionCall,
	KindFunctionReturn,
}

// Payload is the variant-specific part of an event.
// The interface is sealed: only the types in this package implement it.
type Payload interface {
	Kind() Kind
	payload()
}

// Import records sourcePath importing importPath.
// Either path may be empty; the entry file has no importer.
type Import struct {
	SourcePath string
	ImportPath string
}

// ModuleStart records a module's top-level code starting to run.
type ModuleStart struct {
	File string
}

// FunctionStart records entry into a function body.
type FunctionStart struct {
	Name string
	File string
	Line int
}

// FunctionCall records a call from one function (or module) to another.
// Args are opaque and kept as raw JSON in call order.
type FunctionCall struct {
	From        string
	To          string
	CallingFile string
	CallingLine int
	Args        []json.RawMessage
}

// FunctionReturn records a call returning to its call site.
type FunctionReturn struct {
	From        string
	To          string
	CallingFile string
	CallingLine int
}

func (*Import) Kind() Kind         { return KindImport }
func (*ModuleStart) Kind() Kind    { return KindModuleStart }
func (*FunctionStart) Kind() Kind  { return KindFunctionStart }
func (*FunctionCall) Kind() Kind   { return KindFunctionCall }
func (*FunctionReturn) Kind() Kind { return KindFunctionReturn }

func (*Import) payload()         {}
func (*ModuleStart) payload()    {}
func (*FunctionStart) payload()  {}
func (*FunctionCall) payload()   {}
func (*FunctionReturn) payload() {}

// Event is one trace record.
//
// Index is the event's position in the original trace. It is assigned by
// the parser; decoded values are ignored. Synthesized events use -1.
type Event struct {
	Index   int
	Payload Payload
}

// Kind returns the payload's tag, or "" for an empty event.
func (e Event) Kind() Kind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// Call returns the payload if the event is a FunctionCall.
func (e Event) Call() (*FunctionCall, bool) {
	c, ok := e.Payload.(*FunctionCall)
	return c, ok
}

// Return returns the payload if the event is a FunctionReturn.
func (e Event) Return() (*FunctionReturn, bool) {
	r, ok := e.Payload.(*FunctionReturn)
	return r, ok
}

// Start returns the payload if the event is a FunctionStart.
func (e Event) Start() (*FunctionStart, bool) {
	s, ok := e.Payload.(*FunctionStart)
	return s, ok
}

// Labels returns the from/to pair of a call or return event.
// ok is false for every other kind.
func (e Event) Labels() (from, to string, ok bool) {
	switch p := e.Payload.(type) {
	case *FunctionCall:
		return p.From, p.To, true
	case *FunctionReturn:
		return p.From, p.To, true
	}
	return "", "", false
}

// NewImport creates an Import event.
func NewImport(sourcePath, importPath string) Event {
	return Event{Payload: &Import{SourcePath: sourcePath, ImportPath: importPath}}
}

// NewModuleStart creates a ModuleStart event.
func NewModuleStart(file string) Event {
	return Event{Payload: &ModuleStart{File: file}}
}

// NewFunctionStart creates a FunctionStart event.
func NewFunctionStart(name, file string, line int) Event {
	return Event{Payload: &FunctionStart{Name: name, File: file, Line: line}}
}

// NewFunctionCall creates a FunctionCall event.
func NewFunctionCall(from, to, callingFile string, callingLine int, args ...json.RawMessage) Event {
	return Event{Payload: &FunctionCall{
		From:        from,
		To:          to,
		CallingFile: callingFile,
		CallingLine: callingLine,
		Args:        args,
	}}
}

// NewFunctionReturn creates a FunctionReturn event.
func NewFunctionReturn(from, to, callingFile string, callingLine int) Event {
	return Event{Payload: &FunctionReturn{
		From:        from,
		To:          to,
		CallingFile: callingFile,
		CallingLine: callingLine,
	}}
}

// Trace is an ordered sequence of events in emission order.
type Trace []Event

// Clone returns a deep copy of the trace.
// The parser rewrites payloads in place; callers that need the raw trace
// afterwards parse a clone.
func (t Trace) Clone() Trace {
	if t == nil {
		return nil
	}
	out := make(Trace, len(t))
	for i, e := range t {
		out[i] = Event{Index: e.Index, Payload: clonePayload(e.Payload)}
	}
	return out
}

func clonePayload(p Payload) Payload {
	switch v := p.(type) {
	case *Import:
		c := *v
		return &c
	case *ModuleStart:
		c := *v
		return &c
	case *FunctionStart:
		c := *v
		return &c
	case *FunctionCall:
		c := *v
		c.Args = slices.Clone(v.Args)
		return &c
	case *FunctionReturn:
		c := *v
		return &c
	}
	return nil
}

// Count returns the number of events of the given kind.
func (t Trace) Count(kind Kind) int {
	n := 0
	for _, e := range t {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}
