package harness

import (
	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/parser"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Tree is the reconstructed tree, nil when the parse failed.
	Tree *calltree.Tree `json:"tree,omitempty"`

	// Diagnostics are the non-fatal anomalies the parse reported.
	Diagnostics []parser.Diagnostic `json:"diagnostics"`

	// ErrorCode is the fatal parse error code, empty on success.
	ErrorCode parser.ErrorCode `json:"error_code,omitempty"`

	Stats parser.Stats `json:"stats"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Diagnostics: []parser.Diagnostic{},
		Errors:      []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// DiagnosticCodes returns the codes of r.Diagnostics in order.
func (r *Result) DiagnosticCodes() []string {
	codes := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		codes[i] = string(d.Code)
	}
	return codes
}
