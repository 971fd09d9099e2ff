package parser

import (
	"github.com/roach88/calltree/internal/event"
)

// Normalize prepares a raw trace in place:
//
//   - Index is set to each event's position.
//   - Call and return labels equal to opts.Constructor become
//     opts.ConstructorAlias.
//   - The top-level scope label is resolved. A call or return whose from is
//     the top-level scope takes its own calling file; one whose to is the
//     top-level scope takes the file of the most recent ModuleStart (the
//     label itself if no module has started yet).
//
// Normalize never fails.
func Normalize(trace event.Trace, opts Options) {
	currentTop := opts.TopLevelScope

	for i := range trace {
		trace[i].Index = i

		switch p := trace[i].Payload.(type) {
		case *event.ModuleStart:
			currentTop = p.File
		case *event.FunctionCall:
			p.From = renameConstructor(p.From, opts)
			p.To = renameConstructor(p.To, opts)
			if p.From == opts.TopLevelScope {
				p.From = p.CallingFile
			}
			if p.To == opts.TopLevelScope {
				p.To = currentTop
			}
		case *event.FunctionReturn:
			p.From = renameConstructor(p.From, opts)
			p.To = renameConstructor(p.To, opts)
			if p.From == opts.TopLevelScope {
				p.From = p.CallingFile
			}
			if p.To == opts.TopLevelScope {
				p.To = currentTop
			}
		case *event.Import, *event.FunctionStart:
		}
	}
}

func renameConstructor(label string, opts Options) string {
	if opts.Constructor != "" && label == opts.Constructor {
		return opts.ConstructorAlias
	}
	return label
}
