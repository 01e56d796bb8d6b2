// Package scheme defines the declarative machining-process model: typed
// parameter definitions arranged in groups, template references, defaults,
// and macros, together with the YAML parsing and invariant checks that turn a
// scheme.yaml document into an immutable Scheme value.
package scheme
