// Package parser reconstructs a call tree from a runtime trace.
//
// The trace is a flat, time-ordered log of imports, module starts, function
// starts, calls and returns. Parse turns it into a calltree.Tree in four
// stages:
//
//  1. Normalize assigns indices, renames "constructor" labels and resolves
//     the implicit top-level scope ("TLS") to concrete file names.
//  2. ResolveImports filters third-party, built-in and tracer imports and
//     strips the temporary-directory prefix from paths.
//  3. The skeleton builder nests the import map into a module tree and
//     locates the anchor: the node that made the first observed call.
//  4. The call populator flattens calls made through intermediaries, then
//     threads every call onto the tree from the anchor, synthesizing a
//     missing caller frame when a call's origin is not reachable.
//
// # Ownership
//
// All per-parse state (trace, tree, cursor, diagnostics) lives in a value
// owned by one Parse call. Nothing is shared between calls, so concurrent
// parses of different traces are safe. A single trace must not be parsed
// concurrently: Parse rewrites its payloads in place.
//
// # Failure Model
//
// Parse either returns a complete tree or a *ParseError and no tree.
// Non-fatal anomalies (anchor not found, broken import chain, dropped
// calls) are reported as Diagnostics on the Result and logged at Warn.
// Whether a failed synthesis drops the call or aborts the parse is chosen
// by Options.Synthesis.
package parser
