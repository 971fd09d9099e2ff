// Package config loads parser settings from a YAML or CUE file.
//
// Every field is optional. Unset fields keep the value from
// parser.DefaultOptions, so an empty file is valid and changes nothing.
//
// Example YAML:
//
//	labels:
//	  top_level_scope: TLS
//	  entry: Entry
//	paths:
//	  module_suffix: .mjs
//	  exclude: [node_modules, "node:", vendor]
//	synthesis: fail
//
// CUE files use the same field names and are checked against the
// embedded #Config schema, which rejects unknown fields.
package config
