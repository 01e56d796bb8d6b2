// Package render defines the rendering error taxonomy shared by template
// engine implementations and the pipeline.
package render

import "fmt"

// ErrorKind classifies a rendering failure.
type ErrorKind string

const (
	// UndefinedVariable means the template references a name absent from the
	// bindings. Strict semantics: this is always a failure, never empty output.
	UndefinedVariable ErrorKind = "undefined_variable"
	// UndefinedFilter means the template applies a filter that is not
	// registered.
	UndefinedFilter ErrorKind = "undefined_filter"
	// FilterTypeMismatch means a registered filter received a value of a kind
	// it cannot transform.
	FilterTypeMismatch ErrorKind = "filter_type_mismatch"
	// SyntaxError means the template source could not be parsed.
	SyntaxError ErrorKind = "syntax_error"
)

// Error describes a rendering failure. Line is 1-based and zero when unknown;
// Expression names the offending variable, filter, or source fragment.
type Error struct {
	Kind       ErrorKind
	Line       int
	Expression string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("render: %s at line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("render: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// FilterError is returned by filter implementations when the input value does
// not fit the filter's domain. Engines map it to a FilterTypeMismatch Error
// naming both the filter and the value.
type FilterError struct {
	Filter string
	Value  any
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter %s: value %v: %s", e.Filter, e.Value, e.Reason)
}
