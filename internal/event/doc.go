// Package event defines the trace records emitted by the runtime tracer.
//
// A trace is an ordered sequence of events in emission order. The order is
// never re-sorted; the parser only rewrites labels in place.
//
// Each Event carries a sealed Payload. Exactly five payload types exist:
//
//   - *Import: one module importing another
//   - *ModuleStart: a module's top-level code starting to run
//   - *FunctionStart: a function body being entered
//   - *FunctionCall: a call site invoking a function
//   - *FunctionReturn: a call returning to its call site
//
// Consumers switch on the payload type. Records with any other "type" tag
// are rejected at decode time with ErrUnknownKind.
//
// # Wire Format
//
// The tracer writes one flat JSON object per event:
//
//	{"type": "functionCall", "from": "main", "to": "helper",
//	 "callingFile": "src/a.js", "callingLine": 12, "args": [1, "x"]}
//
// A trace file is either a JSON array of such objects or JSONL (one object
// per line), optionally gzip-compressed. See ReadFile.
package event
