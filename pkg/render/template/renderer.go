package template

// Renderer is the seam between the pipeline and a concrete template engine.
// Implementations are stateless per call and safe for concurrent use; a
// compiled-form cache keyed by source identity is permitted as long as it
// never changes observable output.
type Renderer interface {
	// RenderString renders template source against the bindings. Referencing
	// a name absent from the bindings is a failure (*render.Error with kind
	// UndefinedVariable), never silently empty output.
	RenderString(source string, bindings map[string]any) (string, error)

	// Variables reports the top-level variable names the template source
	// references, excluding loop-locals and engine builtins. Used to build
	// input forms and to enforce strict-undefined semantics.
	Variables(source string) ([]string, error)
}
