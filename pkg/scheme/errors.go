package scheme

import "fmt"

// LoadErrorKind distinguishes a syntactically broken definition from one that
// parses but violates a scheme invariant.
type LoadErrorKind string

const (
	// MalformedDefinition means the backing document could not be decoded.
	MalformedDefinition LoadErrorKind = "malformed_definition"
	// SchemaViolation means the document decoded but breaks an invariant
	// (duplicate parameter name, enum default outside options, and so on).
	SchemaViolation LoadErrorKind = "schema_violation"
)

// LoadError describes why a scheme definition failed to load. Detail is a
// human-readable explanation; Err carries the underlying decode error when
// the kind is MalformedDefinition.
type LoadError struct {
	Kind   LoadErrorKind
	Detail string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scheme: %s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("scheme: %s: %s", e.Kind, e.Detail)
}

func (e *LoadError) Unwrap() error { return e.Err }

func malformed(detail string, err error) *LoadError {
	return &LoadError{Kind: MalformedDefinition, Detail: detail, Err: err}
}

func violation(format string, args ...any) *LoadError {
	return &LoadError{Kind: SchemaViolation, Detail: fmt.Sprintf(format, args...)}
}
