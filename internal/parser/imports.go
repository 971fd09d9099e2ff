package parser

import (
	"strings"

	"github.com/roach88/calltree/internal/event"
)

// ImportDefinition is one retained import, paths already stripped.
type ImportDefinition struct {
	SourcePath string `json:"source_path"`
	ImportPath string `json:"import_path"`

	// Index is the trace position of the Import event.
	Index int `json:"index"`
}

// ResolveImports scans a normalized trace for imports worth nesting.
//
// An import is dropped when either path contains an exclude marker or the
// import path ends in the tracer's own module. Retained paths have their
// temporary-directory prefix stripped (see StripTmpDir). The result keeps
// trace order and is not deduplicated. An empty source path on the first
// entry is relabeled opts.EntryName.
//
// Returns a *ParseError wrapping ErrNoImports if nothing is retained.
func ResolveImports(trace event.Trace, opts Options) ([]ImportDefinition, error) {
	var imports []ImportDefinition

	for _, e := range trace {
		imp, ok := e.Payload.(*event.Import)
		if !ok {
			continue
		}
		if excluded(imp, opts) {
			continue
		}
		imports = append(imports, ImportDefinition{
			SourcePath: StripTmpDir(imp.SourcePath, opts.TmpMarker, opts.PathSeparator),
			ImportPath: StripTmpDir(imp.ImportPath, opts.TmpMarker, opts.PathSeparator),
			Index:      e.Index,
		})
	}

	if len(imports) == 0 {
		return nil, &ParseError{
			Code:       ErrCodeNoImports,
			Message:    "no import survived filtering, the tree has no root",
			EventIndex: -1,
			Err:        ErrNoImports,
		}
	}

	if imports[0].SourcePath == "" {
		imports[0].SourcePath = opts.EntryName
	}
	return imports, nil
}

func excluded(imp *event.Import, opts Options) bool {
	for _, m := range opts.ExcludeMarkers {
		if strings.Contains(imp.SourcePath, m) || strings.Contains(imp.ImportPath, m) {
			return true
		}
	}
	return opts.MonitorSuffix != "" && strings.HasSuffix(imp.ImportPath, opts.MonitorSuffix)
}

// StripTmpDir removes everything up to and including the first path
// segment containing marker. Paths without such a segment are returned
// unchanged.
//
//	StripTmpDir("/tmp/tmp-abc123/src/a.js", "tmp-", "/") == "src/a.js"
func StripTmpDir(path, marker, sep string) string {
	segments := strings.Split(path, sep)
	for i, seg := range segments {
		if strings.Contains(seg, marker) {
			return strings.Join(segments[i+1:], sep)
		}
	}
	return path
}
