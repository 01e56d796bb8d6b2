package scheme

// ParamKind is the closed enumeration of parameter value kinds. The validator
// and the load-time invariant checks switch on this tag instead of inspecting
// runtime types.
type ParamKind string

const (
	KindNumber  ParamKind = "number"
	KindInteger ParamKind = "integer"
	KindString  ParamKind = "string"
	KindBoolean ParamKind = "boolean"
	KindEnum    ParamKind = "enum"
)

// Valid reports whether k is one of the declared kinds.
func (k ParamKind) Valid() bool {
	switch k {
	case KindNumber, KindInteger, KindString, KindBoolean, KindEnum:
		return true
	}
	return false
}

// ParameterDef describes a single typed parameter. Min and Max are only
// meaningful for number/integer kinds; Options only for enum. Default is nil
// when the definition declares no default value.
type ParameterDef struct {
	Name        string
	Kind        ParamKind
	Default     any
	Min         *float64
	Max         *float64
	Unit        string
	Description string
	Options     []string
	Required    bool
}

// HasDefault reports whether the definition carries a default value.
func (d ParameterDef) HasDefault() bool {
	return d.Default != nil
}

// ParameterGroup is a named, ordered collection of parameter definitions.
// Grouping is presentational; parameter names are unique across the whole
// scheme, not just within a group.
type ParameterGroup struct {
	Name   string
	Params []ParameterDef
}

// TemplateRef points at a template source file relative to the scheme
// directory. OutputName and OutputExt are hints for export collaborators; the
// engine itself never writes files.
type TemplateRef struct {
	Name        string
	File        string
	Description string
	OutputName  string
	OutputExt   string
}

// Macro is a named text snippet injected into every render context of its
// scheme. Validated parameter values win on name collision.
type Macro struct {
	Name        string
	Content     string
	Description string
}

// Scheme is an immutable machining-process definition: a parameter schema,
// default values, template references, and reusable macros. Schemes are built
// by Parse at repository load time and never mutated afterwards.
type Scheme struct {
	Name        string
	Description string
	Version     string
	Groups      []ParameterGroup
	Templates   []TemplateRef
	Defaults    map[string]any
	Macros      []Macro
}

// Param returns the definition for name, searching groups in order.
func (s *Scheme) Param(name string) (ParameterDef, bool) {
	for _, g := range s.Groups {
		for _, d := range g.Params {
			if d.Name == name {
				return d, true
			}
		}
	}
	return ParameterDef{}, false
}

// Template returns the template reference with the given display name.
func (s *Scheme) Template(name string) (TemplateRef, bool) {
	for _, t := range s.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return TemplateRef{}, false
}

// ParamCount returns the number of parameter definitions across all groups.
func (s *Scheme) ParamCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Params)
	}
	return n
}

// DefaultParams returns a copy of the scheme-level default value map.
func (s *Scheme) DefaultParams() map[string]any {
	out := make(map[string]any, len(s.Defaults))
	for k, v := range s.Defaults {
		out[k] = v
	}
	return out
}
