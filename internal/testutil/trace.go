package testutil

import (
	"encoding/json"

	"github.com/roach88/calltree/internal/event"
)

// TraceBuilder assembles traces for tests in emission order.
//
//	trace := testutil.NewTrace().
//	    Import("", "a.js").
//	    Call("TLS", "main", "a.js", 1).
//	    Start("main", "a.js", 1).
//	    Return("TLS", "main", "a.js", 1).
//	    Build()
type TraceBuilder struct {
	events event.Trace
}

// NewTrace starts an empty trace.
func NewTrace() *TraceBuilder {
	return &TraceBuilder{}
}

// Import appends an Import event.
func (b *TraceBuilder) Import(sourcePath, importPath string) *TraceBuilder {
	b.events = append(b.events, event.NewImport(sourcePath, importPath))
	return b
}

// Module appends a ModuleStart event.
func (b *TraceBuilder) Module(file string) *TraceBuilder {
	b.events = append(b.events, event.NewModuleStart(file))
	return b
}

// Start appends a FunctionStart event.
func (b *TraceBuilder) Start(name, file string, line int) *TraceBuilder {
	b.events = append(b.events, event.NewFunctionStart(name, file, line))
	return b
}

// Call appends a FunctionCall event. Args are JSON-encoded; values that
// cannot be encoded are stored as null.
func (b *TraceBuilder) Call(from, to, file string, line int, args ...any) *TraceBuilder {
	raw := make([]json.RawMessage, len(args))
	for i, a := range args {
		data, err := json.Marshal(a)
		if err != nil {
			data = []byte("null")
		}
		raw[i] = data
	}
	if len(raw) == 0 {
		raw = nil
	}
	b.events = append(b.events, event.NewFunctionCall(from, to, file, line, raw...))
	return b
}

// Return appends a FunctionReturn event.
func (b *TraceBuilder) Return(from, to, file string, line int) *TraceBuilder {
	b.events = append(b.events, event.NewFunctionReturn(from, to, file, line))
	return b
}

// Invoke appends the call/start/return triple of a leaf call.
func (b *TraceBuilder) Invoke(from, to, file string, line int) *TraceBuilder {
	return b.Call(from, to, file, line).Start(to, file, line).Return(from, to, file, line)
}

// Build returns the assembled trace. Each call returns a fresh deep copy.
func (b *TraceBuilder) Build() event.Trace {
	return b.events.Clone()
}
