// Package harness provides conformance testing for the call-tree parser.
//
// A scenario pairs a trace with the tree it must reconstruct. The harness
// parses the trace, persists the run to an in-memory store, reads the tree
// back and checks the outcome against the scenario's expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	options:                  # optional, same schema as the config file
//	  synthesis: fail
//	events:                   # or: trace: traces/file.jsonl
//	  - {type: import, sourcePath: "", importPath: a.js}
//	  - {type: moduleStart, file: a.js}
//	  - {type: functionCall, from: TLS, to: main, callingFile: a.js, callingLine: 1}
//	expect:
//	  root: Entry
//	  tree: |
//	    Entry
//	      a.js
//	        main
//	  diagnostics: []         # omit to skip the check
//	  error: NO_IMPORTS       # expected fatal error code instead of a tree
//	assertions:
//	  - type: path_exists
//	    path: [Entry, a.js, main]
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - path_exists: A root-to-node path of names exists
//   - path_absent: No such path exists
//   - children: The node at a path has exactly the given children, in order
//   - node_count: The tree has exactly count nodes
//   - stat: A parse stat (events, calls, imports, flattened, attached,
//     synthesized, dropped, nodes) equals count
//
// # Golden Files
//
// RunWithGolden snapshots the tree and diagnostic codes as canonical JSON
// and compares them with testdata/golden/{name}.golden using goldie.
// Diagnostic messages are not part of the snapshot.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/callback_synthesis.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
