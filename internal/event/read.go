package event

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/calltree/internal/canonical"
)

// DomainTrace is the hash domain for raw trace identity.
const DomainTrace = "calltree/trace/v1"

// maxLineSize bounds a single JSONL record. Call events carry argument
// values, which can be large.
const maxLineSize = 16 * 1024 * 1024

// Decode reads a JSON array of events.
func Decode(r io.Reader) (Trace, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}

	trace := make(Trace, len(raw))
	for i, msg := range raw {
		if err := json.Unmarshal(msg, &trace[i]); err != nil {
			return nil, fmt.Errorf("decode trace: event %d: %w", i, err)
		}
	}
	return trace, nil
}

// DecodeLines reads JSONL: one event object per line. Blank lines are skipped.
func DecodeLines(r io.Reader) (Trace, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var trace Trace
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("decode trace: line %d: %w", lineNo, err)
		}
		trace = append(trace, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("decode trace: line %d: %w", lineNo+1, err)
	}
	return trace, nil
}

// ReadFile loads a trace file. The format is chosen by extension:
// ".jsonl" and ".ndjson" are line-delimited, anything else is a JSON array.
// A trailing ".gz" is decompressed first.
func ReadFile(path string) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	name := path
	if strings.EqualFold(filepath.Ext(name), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip trace: %w", err)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".jsonl", ".ndjson":
		return DecodeLines(r)
	default:
		return Decode(r)
	}
}

// Hash returns a content identity for the trace in its current state.
// Two traces with the same events in the same order hash equally.
func (t Trace) Hash() (string, error) {
	if t == nil {
		t = Trace{}
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("hash trace: %w", err)
	}
	return canonical.HashWithDomain(DomainTrace, data), nil
}
