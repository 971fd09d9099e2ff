package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a record's "type" tag is not one of
// ValidKinds.
var ErrUnknownKind = errors.New("unknown event type")

// record is the flat wire shape shared by every event kind.
type record struct {
	Type        Kind              `json:"type"`
	Index       *int              `json:"index,omitempty"`
	SourcePath  string            `json:"sourcePath,omitempty"`
	ImportPath  string            `json:"importPath,omitempty"`
	Name        string            `json:"name,omitempty"`
	File        string            `json:"file,omitempty"`
	Line        int               `json:"line,omitempty"`
	From        string            `json:"from,omitempty"`
	To          string            `json:"to,omitempty"`
	CallingFile string            `json:"callingFile,omitempty"`
	CallingLine int               `json:"callingLine,omitempty"`
	Args        []json.RawMessage `json:"args,omitempty"`
}

// UnmarshalJSON decodes a flat tracer record.
// The "index" field is ignored: indices are assigned by the parser.
func (e *Event) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	var p Payload
	switch r.Type {
	case KindImport:
		p = &Import{SourcePath: r.SourcePath, ImportPath: r.ImportPath}
	case KindModuleStart:
		p = &ModuleStart{File: r.File}
	case KindFunctionStart:
		p = &FunctionStart{Name: r.Name, File: r.File, Line: r.Line}
	case KindFunctionCall:
		p = &FunctionCall{
			From:        r.From,
			To:          r.To,
			CallingFile: r.CallingFile,
			CallingLine: r.CallingLine,
			Args:        r.Args,
		}
	case KindFunctionReturn:
		p = &FunctionReturn{
			From:        r.From,
			To:          r.To,
			CallingFile: r.CallingFile,
			CallingLine: r.CallingLine,
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, r.Type)
	}

	*e = Event{Payload: p}
	return nil
}

// MarshalJSON encodes the event in the tracer's flat wire shape,
// including the assigned index.
func (e Event) MarshalJSON() ([]byte, error) {
	idx := e.Index
	r := record{Type: e.Kind(), Index: &idx}

	switch p := e.Payload.(type) {
	case *Import:
		r.SourcePath = p.SourcePath
		r.ImportPath = p.ImportPath
	case *ModuleStart:
		r.File = p.File
	case *FunctionStart:
		r.Name = p.Name
		r.File = p.File
		r.Line = p.Line
	case *FunctionCall:
		r.From = p.From
		r.To = p.To
		r.CallingFile = p.CallingFile
		r.CallingLine = p.CallingLine
		r.Args = p.Args
	case *FunctionReturn:
		r.From = p.From
		r.To = p.To
		r.CallingFile = p.CallingFile
		r.CallingLine = p.CallingLine
	default:
		return nil, fmt.Errorf("marshal event %d: empty payload", e.Index)
	}

	return json.Marshal(r)
}
